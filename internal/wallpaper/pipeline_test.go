package wallpaper

import (
	"errors"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wallkit/wallkit/internal/backend"
	"github.com/wallkit/wallkit/internal/monitor"
	"github.com/wallkit/wallkit/internal/settings"
	"github.com/wallkit/wallkit/internal/toolexec"
)

type dispatch struct {
	image, connector, transition, scaling string
}

type fakeBackend struct {
	monitors    []monitor.Monitor
	active      string
	perMonitor  bool
	transitions bool
	failures    int
	dispatches  []dispatch
}

func (f *fakeBackend) Name() string                   { return "fake" }
func (f *fakeBackend) Available() bool                { return true }
func (f *fakeBackend) Monitors() []monitor.Monitor    { return f.monitors }
func (f *fakeBackend) ActiveMonitor() string          { return f.active }
func (f *fakeBackend) CurrentWallpaper(string) string { return "" }
func (f *fakeBackend) SupportsPerMonitor() bool       { return f.perMonitor }
func (f *fakeBackend) SupportsTransitions() bool      { return f.transitions }

func (f *fakeBackend) SetWallpaper(image, connector, transition, scaling string) error {
	if f.failures > 0 {
		f.failures--
		return &backend.DispatchError{Tool: "fake", Detail: "boom"}
	}
	f.dispatches = append(f.dispatches, dispatch{image, connector, transition, scaling})
	return nil
}

func twoMonitors() []monitor.Monitor {
	dp := monitor.New("DP-1")
	dp.Primary = true
	hdmi := monitor.New("HDMI-A-1")
	return []monitor.Monitor{dp, hdmi}
}

func newTestManager(t *testing.T, fb *fakeBackend) *Manager {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)

	cfg, err := settings.NewStore(filepath.Join(home, "config.yaml"))
	require.NoError(t, err)

	run := toolexec.NewFake()
	run.MarkMissing("matugen")

	m := NewManager(cfg, backend.NewRegistryWith(fb), run)
	m.fallback = func(string, string, string, string) error {
		return errors.New("no fallback in tests")
	}
	m.sleep = func(time.Duration) {} // tests control pacing explicitly
	return m
}

func TestApplyAllPersistsEveryMonitor(t *testing.T) {
	fb := &fakeBackend{monitors: twoMonitors(), active: "DP-1", perMonitor: true, transitions: true}
	m := newTestManager(t, fb)

	require.NoError(t, m.Apply("/pics/a.png", TargetAll))

	require.Len(t, fb.dispatches, 1)
	assert.Empty(t, fb.dispatches[0].connector, "all-monitor dispatch uses an empty connector")
	assert.Equal(t, "/pics/a.png", m.states.Get("DP-1"))
	assert.Equal(t, "/pics/a.png", m.states.Get("HDMI-A-1"))

	target, err := m.pointer.Read()
	require.NoError(t, err)
	assert.Equal(t, "/pics/a.png", target)
}

func TestApplyActiveTargetsFocusedMonitor(t *testing.T) {
	fb := &fakeBackend{monitors: twoMonitors(), active: "DP-1", perMonitor: true, transitions: true}
	m := newTestManager(t, fb)

	require.NoError(t, m.Apply("/pics/a.png", TargetActive))

	require.Len(t, fb.dispatches, 1)
	assert.Equal(t, "DP-1", fb.dispatches[0].connector)
	assert.Equal(t, "/pics/a.png", m.states.Get("DP-1"))
	assert.Empty(t, m.states.Get("HDMI-A-1"))
}

func TestTransitionSanitization(t *testing.T) {
	cases := []struct {
		name        string
		configured  string
		transitions bool
		want        string
	}{
		{"none becomes fade", "none", true, "fade"},
		{"random becomes fade", "random", true, "fade"},
		{"wipe passes through", "wipe", true, "wipe"},
		{"no transition support", "wipe", false, "none"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			fb := &fakeBackend{monitors: twoMonitors(), transitions: tc.transitions}
			m := newTestManager(t, fb)
			require.NoError(t, m.settings.SetTransition(tc.configured))

			require.NoError(t, m.Apply("/pics/a.png", TargetAll))
			require.Len(t, fb.dispatches, 1)
			assert.Equal(t, tc.want, fb.dispatches[0].transition)
		})
	}
}

func TestApplySingleConnectorWithoutPerMonitorSupport(t *testing.T) {
	fb := &fakeBackend{monitors: twoMonitors(), active: "DP-1"}
	m := newTestManager(t, fb)

	require.NoError(t, m.Apply("/pics/a.png", "DP-1"))

	require.Len(t, fb.dispatches, 1)
	assert.Empty(t, fb.dispatches[0].connector,
		"a backend that repaints everything gets the all-monitor form")
	assert.Equal(t, "/pics/a.png", m.states.Get("DP-1"))
	assert.Equal(t, "/pics/a.png", m.states.Get("HDMI-A-1"),
		"state covers every repainted monitor")
}

func TestRateLimitSpacesDispatches(t *testing.T) {
	fb := &fakeBackend{monitors: twoMonitors(), transitions: true}
	m := newTestManager(t, fb)

	clock := time.Now()
	var slept time.Duration
	m.now = func() time.Time { return clock }
	m.sleep = func(d time.Duration) {
		slept += d
		clock = clock.Add(d)
	}

	require.NoError(t, m.Apply("/pics/a.png", TargetAll))
	assert.Zero(t, slept, "first apply is not delayed")

	clock = clock.Add(100 * time.Millisecond)
	require.NoError(t, m.Apply("/pics/b.png", TargetAll))
	assert.Equal(t, 900*time.Millisecond, slept,
		"second apply waits out the remainder of the interval")
}

func TestDispatchFallsBackToSwwwOnce(t *testing.T) {
	fb := &fakeBackend{monitors: twoMonitors(), transitions: true, failures: 1}
	m := newTestManager(t, fb)

	var fallbackCalls int
	m.fallback = func(image, _, _, _ string) error {
		fallbackCalls++
		assert.Equal(t, "/pics/a.png", image)
		return nil
	}

	require.NoError(t, m.Apply("/pics/a.png", TargetAll))
	assert.Equal(t, 1, fallbackCalls)
	assert.Equal(t, "/pics/a.png", m.states.Get("DP-1"), "state persists after fallback success")
}

func TestDispatchFailureFailsApply(t *testing.T) {
	fb := &fakeBackend{monitors: twoMonitors(), transitions: true, failures: 2}
	m := newTestManager(t, fb)

	err := m.Apply("/pics/a.png", TargetAll)
	var de *backend.DispatchError
	require.ErrorAs(t, err, &de)
	assert.Empty(t, m.states.Get("DP-1"), "failed dispatch persists nothing")

	target, readErr := m.pointer.Read()
	require.NoError(t, readErr)
	assert.Empty(t, target)
}

func writeTestImage(t *testing.T, dir string) string {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 16, 16))
	for y := 0; y < 16; y++ {
		for x := 0; x < 16; x++ {
			img.Set(x, y, color.RGBA{R: uint8(x * 16), G: uint8(y * 16), B: 200, A: 255})
		}
	}
	path := filepath.Join(dir, "wall.png")
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()
	require.NoError(t, png.Encode(f, img))
	return path
}

func TestEffectDerivativeDispatchedLinkKeepsOriginal(t *testing.T) {
	fb := &fakeBackend{monitors: twoMonitors(), transitions: true}
	m := newTestManager(t, fb)
	src := writeTestImage(t, t.TempDir())
	require.NoError(t, m.settings.SetEffect("grayscale"))

	require.NoError(t, m.Apply(src, TargetAll))

	require.Len(t, fb.dispatches, 1)
	assert.Contains(t, filepath.Base(fb.dispatches[0].image), "effect_grayscale_")

	target, err := m.pointer.Read()
	require.NoError(t, err)
	assert.Equal(t, src, target, "the link always tracks the original image")
	assert.Equal(t, src, m.states.Get("DP-1"), "state records the original image")
}

func TestFailedEffectFallsBackToOriginal(t *testing.T) {
	fb := &fakeBackend{monitors: twoMonitors(), transitions: true}
	m := newTestManager(t, fb)
	require.NoError(t, m.settings.SetEffect("grayscale"))

	// No such file: the transform fails, the original is dispatched.
	require.NoError(t, m.Apply("/pics/missing.png", TargetAll))

	require.Len(t, fb.dispatches, 1)
	assert.Equal(t, "/pics/missing.png", fb.dispatches[0].image)
	assert.Equal(t, "none", m.settings.Effect(), "a failing effect is reset")
}

func TestNextCyclesLibraryFromCurrent(t *testing.T) {
	fb := &fakeBackend{monitors: twoMonitors(), active: "DP-1", perMonitor: true, transitions: true}
	m := newTestManager(t, fb)

	dir := m.library.Dir()
	require.NoError(t, os.MkdirAll(dir, 0o755))
	for _, name := range []string{"a.png", "b.png", "c.png"} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("x"), 0o644))
	}
	require.NoError(t, m.states.Set("DP-1", filepath.Join(dir, "b.png")))

	applied, err := m.Next(TargetActive)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "c.png"), applied)
	assert.Equal(t, applied, m.states.Get("DP-1"))

	applied, err = m.Prev(TargetActive)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "b.png"), applied)
}

func TestRandomAvoidsCurrentWallpaper(t *testing.T) {
	fb := &fakeBackend{monitors: twoMonitors(), active: "DP-1", perMonitor: true, transitions: true}
	m := newTestManager(t, fb)

	dir := m.library.Dir()
	require.NoError(t, os.MkdirAll(dir, 0o755))
	for _, name := range []string{"a.png", "b.png"} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("x"), 0o644))
	}
	current := filepath.Join(dir, "a.png")
	require.NoError(t, m.states.Set("DP-1", current))

	for i := 0; i < 5; i++ {
		applied, err := m.Random(TargetActive)
		require.NoError(t, err)
		assert.NotEqual(t, current, applied)
		require.NoError(t, m.states.Set("DP-1", current))
	}
}

func writePlaceholder(t *testing.T, dir, name string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte("x"), 0o644))
	return path
}

func TestRestoreRedispatchesPersistedState(t *testing.T) {
	fb := &fakeBackend{monitors: twoMonitors(), perMonitor: true, transitions: true}
	m := newTestManager(t, fb)
	pics := t.TempDir()
	a := writePlaceholder(t, pics, "a.png")
	b := writePlaceholder(t, pics, "b.png")
	require.NoError(t, m.states.Set("DP-1", a))
	require.NoError(t, m.states.Set("HDMI-A-1", b))

	require.NoError(t, m.Restore())

	assert.Len(t, fb.dispatches, 2)
	byConn := map[string]string{}
	for _, d := range fb.dispatches {
		byConn[d.connector] = d.image
	}
	assert.Equal(t, a, byConn["DP-1"])
	assert.Equal(t, b, byConn["HDMI-A-1"])
}

func TestRestoreSkipsDeletedImages(t *testing.T) {
	fb := &fakeBackend{monitors: twoMonitors(), perMonitor: true, transitions: true}
	m := newTestManager(t, fb)
	pics := t.TempDir()
	a := writePlaceholder(t, pics, "a.png")
	require.NoError(t, m.states.Set("DP-1", a))
	require.NoError(t, m.states.Set("HDMI-A-1", filepath.Join(pics, "gone.png")))

	require.NoError(t, m.Restore())

	require.Len(t, fb.dispatches, 1)
	assert.Equal(t, a, fb.dispatches[0].image)
	assert.Equal(t, "DP-1", fb.dispatches[0].connector)
}

func TestRestoreBootstrapsFromLink(t *testing.T) {
	fb := &fakeBackend{monitors: twoMonitors(), perMonitor: true, transitions: true}
	m := newTestManager(t, fb)
	a := writePlaceholder(t, t.TempDir(), "a.png")
	require.NoError(t, m.pointer.Update(a))

	require.NoError(t, m.Restore())

	assert.Equal(t, a, m.states.Get("DP-1"))
	assert.Equal(t, a, m.states.Get("HDMI-A-1"))
	assert.Len(t, fb.dispatches, 2)
}
