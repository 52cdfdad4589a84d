// Package wallpaper orchestrates a wallpaper change end to end: rate
// limiting, photo effects, dispatch to the active backend, state persistence
// and color generation. Only a dispatch failure fails the overall call;
// every other stage degrades and logs.
package wallpaper

import (
	"fmt"
	"math/rand/v2"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/wallkit/wallkit/internal/backend"
	"github.com/wallkit/wallkit/internal/effects"
	"github.com/wallkit/wallkit/internal/library"
	"github.com/wallkit/wallkit/internal/logger"
	"github.com/wallkit/wallkit/internal/settings"
	"github.com/wallkit/wallkit/internal/state"
	"github.com/wallkit/wallkit/internal/theme"
	"github.com/wallkit/wallkit/internal/toolexec"
)

// Target selectors accepted everywhere a connector is.
const (
	TargetAll    = "all"
	TargetActive = "active"
)

// minApplyInterval spaces out dispatches so keybind autorepeat cannot flood
// swww with overlapping transitions.
const minApplyInterval = time.Second

const stateFileName = "monitor_state.json"

// Manager runs the wallpaper application pipeline.
type Manager struct {
	settings  *settings.Store
	states    *state.Store
	pointer   *state.Pointer
	registry  *backend.Registry
	library   *library.Library
	generator *theme.Generator

	// fallback dispatches straight to swww when the backend dispatch
	// fails; swappable in tests.
	fallback func(image, output, transition, scaling string) error

	mu         sync.Mutex
	lastApply  time.Time
	lastEffect string

	now   func() time.Time
	sleep func(time.Duration)
}

// NewManager wires the pipeline from the loaded configuration.
func NewManager(cfg *settings.Store, reg *backend.Registry, run toolexec.Runner) *Manager {
	conf := cfg.Get()
	opts := backend.Options{
		TransitionFPS:      conf.TransitionFPS,
		TransitionDuration: conf.TransitionDuration,
	}
	return &Manager{
		settings:   cfg,
		states:     state.NewStore(filepath.Join(conf.CacheDir, stateFileName)),
		pointer:    state.NewPointer(conf.CurrentLink),
		registry:   reg,
		library:    library.New(conf.WallpaperDir),
		generator:  theme.NewGenerator(run, conf.CacheDir),
		fallback:   backend.DirectSwww(run, opts),
		lastEffect: cfg.Effect(),
		now:        time.Now,
		sleep:      time.Sleep,
	}
}

// Registry exposes the backend registry for status queries.
func (m *Manager) Registry() *backend.Registry { return m.registry }

// Library exposes the wallpaper library.
func (m *Manager) Library() *library.Library { return m.library }

// States exposes the per-monitor state store.
func (m *Manager) States() *state.Store { return m.states }

// Generator exposes the color generator.
func (m *Manager) Generator() *theme.Generator { return m.generator }

// Apply sets image on target and runs the full pipeline. target is a
// connector name, TargetActive for the focused monitor, or TargetAll (or
// empty) for every monitor.
func (m *Manager) Apply(image, target string) error {
	log := logger.WithComponent("pipeline")

	b, err := m.registry.Active()
	if err != nil {
		return err
	}

	m.rateLimit()

	displayed := m.decideEffect(image)
	effects.CleanupStale(m.settings.CacheDir(), effects.StaleTTL)

	connector, persistAll := m.resolveTarget(b, target)
	transition := m.sanitizeTransition(b)

	if err := m.dispatch(b, displayed, connector, transition); err != nil {
		return err
	}

	if err := m.pointer.Update(image); err != nil {
		log.Warn().Err(err).Msg("Could not update current-wallpaper link")
	}

	m.persist(b, image, connector, persistAll)

	m.generateColors(image)

	log.Info().
		Str("image", image).
		Str("target", target).
		Str("backend", b.Name()).
		Msg("Wallpaper applied")
	return nil
}

// Next applies the wallpaper after the current one on target.
func (m *Manager) Next(target string) (string, error) { return m.step(target, true) }

// Prev applies the wallpaper before the current one on target.
func (m *Manager) Prev(target string) (string, error) { return m.step(target, false) }

func (m *Manager) step(target string, forward bool) (string, error) {
	current := m.currentFor(target)
	var (
		image string
		err   error
	)
	if forward {
		image, err = m.library.Next(current)
	} else {
		image, err = m.library.Prev(current)
	}
	if err != nil {
		return "", err
	}
	return image, m.Apply(image, target)
}

// Random applies a random wallpaper, avoiding the one currently on target
// when more than one candidate exists.
func (m *Manager) Random(target string) (string, error) {
	wallpapers, err := m.library.List()
	if err != nil {
		return "", err
	}
	if len(wallpapers) == 0 {
		return "", fmt.Errorf("no wallpapers in %s", m.library.Dir())
	}

	current := m.currentFor(target)
	image := wallpapers[rand.IntN(len(wallpapers))]
	if image == current && len(wallpapers) > 1 {
		for _, w := range wallpapers {
			if w != current {
				image = w
				break
			}
		}
	}
	return image, m.Apply(image, target)
}

// Restore re-dispatches the persisted wallpaper of every known monitor,
// bootstrapping from the global link when the state document is empty.
// Missing image files are skipped, not errors.
func (m *Manager) Restore() error {
	log := logger.WithComponent("pipeline")

	b, err := m.registry.Active()
	if err != nil {
		return err
	}

	discovered := monitorConnectors(b)
	if err := m.states.SyncFromPointer(m.pointer, discovered); err != nil {
		log.Warn().Err(err).Msg("Could not bootstrap monitor state from link")
	}

	transition := m.sanitizeTransition(b)
	scaling := m.settings.Scaling()
	restored := 0
	for _, connector := range m.states.Connectors() {
		image := m.states.Get(connector)
		if image == "" {
			continue
		}
		if _, err := os.Stat(image); err != nil {
			log.Warn().Str("connector", connector).Str("image", image).Msg("Recorded wallpaper no longer exists, skipping")
			continue
		}
		target := connector
		if !b.SupportsPerMonitor() {
			target = ""
		}
		if err := b.SetWallpaper(image, target, transition, scaling); err != nil {
			log.Warn().Err(err).Str("connector", connector).Msg("Could not restore wallpaper")
			continue
		}
		restored++
		if !b.SupportsPerMonitor() {
			break
		}
	}
	if restored == 0 && len(m.states.Connectors()) > 0 {
		return fmt.Errorf("no wallpapers could be restored")
	}
	log.Info().Int("monitors", restored).Msg("Wallpapers restored")
	return nil
}

// rateLimit delays the caller until at least minApplyInterval has passed
// since the previous dispatch.
func (m *Manager) rateLimit() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.lastApply.IsZero() {
		if wait := minApplyInterval - m.now().Sub(m.lastApply); wait > 0 {
			m.sleep(wait)
		}
	}
	m.lastApply = m.now()
}

// decideEffect produces the image the backend should display. A failed
// transform falls back to the original and resets the recorded effect so the
// failure does not repeat on every change.
func (m *Manager) decideEffect(image string) string {
	log := logger.WithComponent("pipeline")
	effect := m.settings.Effect()

	m.mu.Lock()
	changed := effect != m.lastEffect
	m.lastEffect = effect
	m.mu.Unlock()
	if changed {
		effects.CleanupAll(m.settings.CacheDir())
	}

	if effect == effects.None {
		return image
	}
	displayed, err := effects.Apply(image, effect, m.settings.CacheDir())
	if err != nil {
		log.Warn().Err(err).Str("effect", effect).Msg("Effect failed, using original image")
		if err := m.settings.SetEffect(effects.None); err != nil {
			log.Warn().Err(err).Msg("Could not reset effect setting")
		}
		return image
	}
	return displayed
}

// resolveTarget maps a target selector to the backend connector argument and
// reports whether persistence covers every discovered monitor. A backend
// that cannot target a single output repaints all of them no matter the
// selector, so state has to follow suit or it diverges from the screen.
func (m *Manager) resolveTarget(b backend.Backend, target string) (connector string, persistAll bool) {
	if !b.SupportsPerMonitor() {
		return "", true
	}
	switch strings.ToLower(target) {
	case "", TargetAll:
		return "", true
	case TargetActive:
		if active := b.ActiveMonitor(); active != "" {
			return active, false
		}
		return "", true
	default:
		return target, false
	}
}

// sanitizeTransition normalizes the configured transition against the
// backend's capabilities. Backends without transitions get "none"; "none"
// and "random" against a transition-capable backend become "fade", since
// swww mishandles both.
func (m *Manager) sanitizeTransition(b backend.Backend) string {
	if !b.SupportsTransitions() {
		return backend.TransitionNone
	}
	transition := m.settings.Transition()
	if transition == backend.TransitionNone || transition == "random" {
		return backend.TransitionFade
	}
	return transition
}

// dispatch runs the backend tool, retrying exactly once via direct swww.
func (m *Manager) dispatch(b backend.Backend, image, connector, transition string) error {
	scaling := m.settings.Scaling()
	err := b.SetWallpaper(image, connector, transition, scaling)
	if err == nil {
		return nil
	}
	logger.WithComponent("pipeline").Warn().
		Err(err).
		Str("backend", b.Name()).
		Msg("Backend dispatch failed, trying swww directly")
	if fbErr := m.fallback(image, connector, transition, scaling); fbErr == nil {
		return nil
	}
	return err
}

// persist records the applied wallpaper per connector. Failures leave the
// wallpaper on screen; they are logged, never rolled back.
func (m *Manager) persist(b backend.Backend, image, connector string, persistAll bool) {
	log := logger.WithComponent("pipeline")
	if !persistAll {
		if err := m.states.Set(connector, image); err != nil {
			log.Warn().Err(err).Str("connector", connector).Msg("Could not persist monitor state")
		}
		return
	}
	for _, c := range monitorConnectors(b) {
		if err := m.states.Set(c, image); err != nil {
			log.Warn().Err(err).Str("connector", c).Msg("Could not persist monitor state")
		}
	}
}

// generateColors runs matugen on the original image when enabled; always
// soft.
func (m *Manager) generateColors(image string) {
	if !m.settings.MatugenEnabled() || !m.generator.Available() {
		return
	}
	if err := m.generator.Generate(image, m.settings.MatugenScheme()); err != nil {
		logger.WithComponent("pipeline").Warn().Err(err).Msg("Color generation failed")
	}
}

// currentFor returns the wallpaper recorded for target, preferring the state
// document and falling back to the global link.
func (m *Manager) currentFor(target string) string {
	connector := target
	switch strings.ToLower(target) {
	case "", TargetAll, TargetActive:
		if b, err := m.registry.Active(); err == nil {
			connector = b.ActiveMonitor()
		}
	}
	if connector != "" {
		if current := m.states.Get(connector); current != "" {
			return current
		}
	}
	current, _ := m.pointer.Read()
	return current
}

func monitorConnectors(b backend.Backend) []string {
	monitors := b.Monitors()
	out := make([]string, 0, len(monitors))
	for _, mon := range monitors {
		if mon.Connector != "" {
			out = append(out, mon.Connector)
		}
	}
	return out
}
