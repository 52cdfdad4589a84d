package library

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func populate(t *testing.T, dir string, names ...string) {
	t.Helper()
	for _, name := range names {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("x"), 0o644))
	}
}

func TestListFiltersAndSorts(t *testing.T) {
	dir := t.TempDir()
	populate(t, dir, "b.png", "a.jpg", "notes.txt", "c.WEBP", "d.jpeg")
	require.NoError(t, os.Mkdir(filepath.Join(dir, "sub.png"), 0o755))

	got, err := New(dir).List()
	require.NoError(t, err)
	assert.Equal(t, []string{
		filepath.Join(dir, "a.jpg"),
		filepath.Join(dir, "b.png"),
		filepath.Join(dir, "c.WEBP"),
		filepath.Join(dir, "d.jpeg"),
	}, got)
}

func TestListMissingDir(t *testing.T) {
	got, err := New(filepath.Join(t.TempDir(), "nope")).List()
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestNextWraps(t *testing.T) {
	dir := t.TempDir()
	populate(t, dir, "a.png", "b.png", "c.png")
	lib := New(dir)

	next, err := lib.Next(filepath.Join(dir, "a.png"))
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "b.png"), next)

	next, err = lib.Next(filepath.Join(dir, "c.png"))
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "a.png"), next)
}

func TestPrevWraps(t *testing.T) {
	dir := t.TempDir()
	populate(t, dir, "a.png", "b.png", "c.png")
	lib := New(dir)

	prev, err := lib.Prev(filepath.Join(dir, "a.png"))
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "c.png"), prev)
}

func TestStepFromUnknownCurrent(t *testing.T) {
	dir := t.TempDir()
	populate(t, dir, "a.png", "b.png")
	lib := New(dir)

	next, err := lib.Next("/somewhere/else.png")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "a.png"), next)

	prev, err := lib.Prev("")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "b.png"), prev)
}

func TestStepEmptyLibrary(t *testing.T) {
	lib := New(t.TempDir())
	_, err := lib.Next("")
	assert.Error(t, err)
}
