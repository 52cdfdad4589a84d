package backend

import (
	"sync"

	"github.com/wallkit/wallkit/internal/logger"
	"github.com/wallkit/wallkit/internal/toolexec"
)

// Registry probes candidate backends in preference order and holds the
// single active one for the process lifetime. Re-detection replaces the
// reference atomically; in-flight holders of the old backend finish
// against it.
type Registry struct {
	mu         sync.RWMutex
	candidates []Backend
	active     Backend
	detected   bool
}

// NewRegistry builds the candidate set in preference order: most specific
// compositor first, generic X11 last.
func NewRegistry(run toolexec.Runner, opts Options) *Registry {
	return &Registry{
		candidates: []Backend{
			NewHyprland(run, opts),
			NewNiri(run, opts),
			NewKDE(run, opts),
			NewLabwc(run, opts),
			NewX11(run, opts),
		},
	}
}

// NewRegistryWith builds a registry over an explicit candidate list,
// used by tests and by callers that restrict the probe set.
func NewRegistryWith(candidates ...Backend) *Registry {
	return &Registry{candidates: candidates}
}

// Detect probes candidates in order and activates the first available one.
// With no winner the registry stays in its no-backend state and ErrNoBackend
// is returned; callers fail fast rather than retry.
func (r *Registry) Detect() (Backend, error) {
	log := logger.WithComponent("registry")

	var active Backend
	for _, c := range r.candidates {
		if probe(c) {
			active = c
			break
		}
		log.Debug().Str("backend", c.Name()).Msg("Backend unavailable")
	}

	r.mu.Lock()
	r.active = active
	r.detected = true
	r.mu.Unlock()

	if active == nil {
		log.Error().Msg("No compatible wallpaper backend found")
		return nil, ErrNoBackend
	}
	log.Info().Str("backend", active.Name()).Msg("Backend detected")
	return active, nil
}

// probe shields detection from a panicking Available implementation; any
// failure to probe counts as unavailable.
func probe(b Backend) (ok bool) {
	defer func() {
		if r := recover(); r != nil {
			logger.WithComponent("registry").Warn().
				Str("backend", b.Name()).
				Interface("panic", r).
				Msg("Backend probe panicked")
			ok = false
		}
	}()
	return b.Available()
}

// Active returns the detected backend, running detection on first use.
func (r *Registry) Active() (Backend, error) {
	r.mu.RLock()
	active, detected := r.active, r.detected
	r.mu.RUnlock()

	if !detected {
		return r.Detect()
	}
	if active == nil {
		return nil, ErrNoBackend
	}
	return active, nil
}

// Redetect discards the active reference and repeats the full probe,
// e.g. after a monitor hot-plug.
func (r *Registry) Redetect() (Backend, error) {
	return r.Detect()
}

// Names lists every candidate backend name in preference order.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.candidates))
	for _, c := range r.candidates {
		names = append(names, c.Name())
	}
	return names
}

// ActiveName returns the active backend's name, or "" when undetected.
func (r *Registry) ActiveName() string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.active == nil {
		return ""
	}
	return r.active.Name()
}
