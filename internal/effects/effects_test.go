package effects

import (
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// writeTestImage writes a small colored PNG and returns its path.
func writeTestImage(t *testing.T, dir string) string {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 32, 32))
	for y := 0; y < 32; y++ {
		for x := 0; x < 32; x++ {
			img.Set(x, y, color.RGBA{R: uint8(x * 8), G: uint8(y * 8), B: 128, A: 255})
		}
	}
	path := filepath.Join(dir, "wall.png")
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()
	require.NoError(t, png.Encode(f, img))
	return path
}

func TestApplyNoneReturnsOriginal(t *testing.T) {
	dir := t.TempDir()
	src := writeTestImage(t, dir)
	out, err := Apply(src, None, dir)
	require.NoError(t, err)
	assert.Equal(t, src, out)
}

func TestApplyProducesDerivative(t *testing.T) {
	dir := t.TempDir()
	src := writeTestImage(t, dir)

	for _, effect := range Names() {
		out, err := Apply(src, effect, dir)
		require.NoError(t, err, effect)
		assert.NotEqual(t, src, out, effect)
		assert.Contains(t, filepath.Base(out), "effect_"+effect+"_", effect)
		_, err = os.Stat(out)
		assert.NoError(t, err, effect)
	}
}

func TestApplyUnknownEffect(t *testing.T) {
	dir := t.TempDir()
	src := writeTestImage(t, dir)
	_, err := Apply(src, "vortex", dir)
	assert.Error(t, err)
}

func TestApplyMissingImage(t *testing.T) {
	dir := t.TempDir()
	_, err := Apply(filepath.Join(dir, "nope.png"), "grayscale", dir)
	assert.Error(t, err)
}

func TestKnown(t *testing.T) {
	assert.True(t, Known(None))
	assert.True(t, Known("blur"))
	assert.False(t, Known("vortex"))
}

func TestCleanupStaleRespectsTTL(t *testing.T) {
	dir := t.TempDir()
	old := filepath.Join(dir, "effect_blur_old.jpg")
	fresh := filepath.Join(dir, "effect_blur_fresh.jpg")
	require.NoError(t, os.WriteFile(old, []byte("x"), 0o644))
	require.NoError(t, os.WriteFile(fresh, []byte("x"), 0o644))

	past := time.Now().Add(-10 * time.Minute)
	require.NoError(t, os.Chtimes(old, past, past))

	removed := CleanupStale(dir, StaleTTL)
	assert.Equal(t, 1, removed)
	_, err := os.Stat(fresh)
	assert.NoError(t, err)
	_, err = os.Stat(old)
	assert.True(t, os.IsNotExist(err))
}

func TestCleanupAllRemovesDerivativesAndPreviews(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"effect_blur_a.jpg", "preview_b.jpg", "unrelated.txt"} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("x"), 0o644))
	}

	removed := CleanupAll(dir)
	assert.Equal(t, 2, removed)
	_, err := os.Stat(filepath.Join(dir, "unrelated.txt"))
	assert.NoError(t, err, "non-derivative files are untouched")
}

func TestCleanupMissingDirIsHarmless(t *testing.T) {
	assert.Equal(t, 0, CleanupStale("/nonexistent/dir", StaleTTL))
	assert.Equal(t, 0, CleanupAll("/nonexistent/dir"))
}
