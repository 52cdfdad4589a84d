package state

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStoreRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "monitor_state.json")

	s := NewStore(path)
	require.NoError(t, s.Set("DP-1", "/pics/a.png"))
	require.NoError(t, s.Set("HDMI-A-1", "/pics/b.png"))

	// Simulate a process restart.
	reloaded := NewStore(path)
	assert.Equal(t, "/pics/a.png", reloaded.Get("DP-1"))
	assert.Equal(t, "/pics/b.png", reloaded.Get("HDMI-A-1"))
	assert.ElementsMatch(t, []string{"DP-1", "HDMI-A-1"}, reloaded.Connectors())
}

func TestStoreSurvivesLeftoverTempFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "monitor_state.json")

	s := NewStore(path)
	require.NoError(t, s.Set("DP-1", "/pics/a.png"))

	// A crash after writing the temp file but before rename leaves a
	// stray temp file; the real document must be unaffected.
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".monitor_state-crash"), []byte("{partial"), 0o644))

	reloaded := NewStore(path)
	assert.Equal(t, "/pics/a.png", reloaded.Get("DP-1"))
}

func TestStoreCorruptDocumentStartsEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "monitor_state.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o644))

	s := NewStore(path)
	assert.Empty(t, s.Get("DP-1"))
	require.NoError(t, s.Set("DP-1", "/pics/a.png"))
	assert.Equal(t, "/pics/a.png", NewStore(path).Get("DP-1"))
}

func TestStoreKeepsStaleConnectors(t *testing.T) {
	path := filepath.Join(t.TempDir(), "monitor_state.json")
	s := NewStore(path)
	require.NoError(t, s.Set("DP-9", "/pics/old.png"))
	require.NoError(t, s.Set("DP-1", "/pics/new.png"))

	// DP-9 is no longer connected; its entry is tolerated, never pruned.
	reloaded := NewStore(path)
	assert.Equal(t, "/pics/old.png", reloaded.Get("DP-9"))
}

func TestPointerUpdateAndRead(t *testing.T) {
	dir := t.TempDir()
	target := filepath.Join(dir, "img.png")
	require.NoError(t, os.WriteFile(target, []byte("x"), 0o644))

	p := NewPointer(filepath.Join(dir, ".current-wallpaper"))

	got, err := p.Read()
	require.NoError(t, err)
	assert.Empty(t, got, "missing pointer reads as empty")

	require.NoError(t, p.Update(target))
	got, err = p.Read()
	require.NoError(t, err)
	assert.Equal(t, target, got)

	// Repointing over an existing link works and stays resolvable.
	target2 := filepath.Join(dir, "img2.png")
	require.NoError(t, os.WriteFile(target2, []byte("y"), 0o644))
	require.NoError(t, p.Update(target2))
	got, err = p.Read()
	require.NoError(t, err)
	assert.Equal(t, target2, got)
	_, err = os.Stat(got)
	assert.NoError(t, err)
}

func TestSyncFromPointerBootstrapsEmptyStore(t *testing.T) {
	dir := t.TempDir()
	target := filepath.Join(dir, "img.png")
	require.NoError(t, os.WriteFile(target, []byte("x"), 0o644))

	p := NewPointer(filepath.Join(dir, ".current-wallpaper"))
	require.NoError(t, p.Update(target))

	s := NewStore(filepath.Join(dir, "monitor_state.json"))
	require.NoError(t, s.SyncFromPointer(p, []string{"DP-1", "HDMI-A-1"}))
	assert.Equal(t, target, s.Get("DP-1"))
	assert.Equal(t, target, s.Get("HDMI-A-1"))
}

func TestSyncFromPointerLeavesPopulatedStoreAlone(t *testing.T) {
	dir := t.TempDir()
	target := filepath.Join(dir, "img.png")
	require.NoError(t, os.WriteFile(target, []byte("x"), 0o644))

	p := NewPointer(filepath.Join(dir, ".current-wallpaper"))
	require.NoError(t, p.Update(target))

	s := NewStore(filepath.Join(dir, "monitor_state.json"))
	require.NoError(t, s.Set("DP-1", "/pics/existing.png"))
	require.NoError(t, s.SyncFromPointer(p, []string{"DP-1", "HDMI-A-1"}))

	assert.Equal(t, "/pics/existing.png", s.Get("DP-1"))
	assert.Empty(t, s.Get("HDMI-A-1"))
}
