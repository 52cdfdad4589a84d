package backend

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wallkit/wallkit/internal/monitor"
)

// fakeBackend is a scriptable Backend for registry tests.
type fakeBackend struct {
	name      string
	available bool
	panics    bool
	probes    int
}

func (f *fakeBackend) Name() string { return f.name }
func (f *fakeBackend) Available() bool {
	f.probes++
	if f.panics {
		panic("probe exploded")
	}
	return f.available
}
func (f *fakeBackend) Monitors() []monitor.Monitor              { return nil }
func (f *fakeBackend) ActiveMonitor() string                    { return "" }
func (f *fakeBackend) SetWallpaper(_, _, _, _ string) error     { return nil }
func (f *fakeBackend) CurrentWallpaper(string) string           { return "" }
func (f *fakeBackend) SupportsPerMonitor() bool                 { return true }
func (f *fakeBackend) SupportsTransitions() bool                { return true }

func TestDetectPicksFirstAvailable(t *testing.T) {
	first := &fakeBackend{name: "first"}
	second := &fakeBackend{name: "second", available: true}
	third := &fakeBackend{name: "third", available: true}

	r := NewRegistryWith(first, second, third)
	active, err := r.Detect()
	require.NoError(t, err)
	assert.Equal(t, "second", active.Name())
	// Detection stops at the first winner.
	assert.Equal(t, 0, third.probes)
}

func TestDetectIdempotentInStableEnvironment(t *testing.T) {
	r := NewRegistryWith(
		&fakeBackend{name: "a"},
		&fakeBackend{name: "b", available: true},
	)

	first, err := r.Detect()
	require.NoError(t, err)
	second, err := r.Detect()
	require.NoError(t, err)
	assert.Equal(t, first.Name(), second.Name())
}

func TestDetectNoBackendFailsFast(t *testing.T) {
	r := NewRegistryWith(&fakeBackend{name: "a"}, &fakeBackend{name: "b"})

	_, err := r.Detect()
	assert.ErrorIs(t, err, ErrNoBackend)

	// Subsequent Active calls fail fast without re-probing.
	_, err = r.Active()
	assert.ErrorIs(t, err, ErrNoBackend)
	assert.Empty(t, r.ActiveName())
}

func TestDetectSurvivesPanickingProbe(t *testing.T) {
	r := NewRegistryWith(
		&fakeBackend{name: "boom", panics: true},
		&fakeBackend{name: "ok", available: true},
	)
	active, err := r.Detect()
	require.NoError(t, err)
	assert.Equal(t, "ok", active.Name())
}

func TestActiveDetectsOnFirstUse(t *testing.T) {
	b := &fakeBackend{name: "only", available: true}
	r := NewRegistryWith(b)

	active, err := r.Active()
	require.NoError(t, err)
	assert.Equal(t, "only", active.Name())
	assert.Equal(t, 1, b.probes)

	// Second Active call reuses the detection result.
	_, err = r.Active()
	require.NoError(t, err)
	assert.Equal(t, 1, b.probes)
}

func TestRedetectRepeatsFullProbe(t *testing.T) {
	a := &fakeBackend{name: "a"}
	b := &fakeBackend{name: "b", available: true}
	r := NewRegistryWith(a, b)

	_, err := r.Detect()
	require.NoError(t, err)

	// Environment change: a becomes available and should win now.
	a.available = true
	active, err := r.Redetect()
	require.NoError(t, err)
	assert.Equal(t, "a", active.Name())
}

func TestNamesPreferenceOrder(t *testing.T) {
	r := NewRegistry(nil, Options{})
	assert.Equal(t, []string{"hyprland", "niri", "kde", "labwc", "x11"}, r.Names())
}
