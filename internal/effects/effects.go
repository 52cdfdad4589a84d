// Package effects produces photo-effect derivatives of wallpaper images and
// manages their lifecycle in the temp directory. A derivative is always a
// disposable copy; the original image is never modified and remains the
// canonical wallpaper everywhere else in the system.
package effects

import (
	"fmt"
	"image"
	"image/color"
	_ "image/gif"
	"image/jpeg"
	_ "image/png"
	"os"
	"path/filepath"
	"strings"

	"github.com/nfnt/resize"
	"github.com/wallkit/wallkit/internal/logger"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// None is the identity effect: the original image is used directly.
const None = "none"

const jpegQuality = 95

type effectFunc func(image.Image) image.Image

// registry is the closed set of supported effects.
var registry = map[string]effectFunc{
	"grayscale": grayscale,
	"sepia":     sepia,
	"blur":      blur,
}

// Names returns the supported effect names (excluding "none").
func Names() []string {
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	return names
}

// Known reports whether name is "none" or a registered effect.
func Known(name string) bool {
	if name == None {
		return true
	}
	_, ok := registry[name]
	return ok
}

// Apply renders effect over the image at path and writes the derivative
// into tempDir, returning the derivative path. The "none" effect returns
// path unchanged. Any failure is the caller's cue to fall back to the
// original image.
func Apply(path, effect, tempDir string) (string, error) {
	if effect == None {
		return path, nil
	}
	fn, ok := registry[effect]
	if !ok {
		return "", fmt.Errorf("unknown effect %q", effect)
	}

	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("failed to open image: %w", err)
	}
	defer f.Close()

	src, _, err := image.Decode(f)
	if err != nil {
		return "", fmt.Errorf("failed to decode image: %w", err)
	}

	if err := os.MkdirAll(tempDir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create temp dir: %w", err)
	}

	base := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	out := filepath.Join(tempDir, fmt.Sprintf("effect_%s_%s.jpg", effect, base))

	dst, err := os.Create(out)
	if err != nil {
		return "", fmt.Errorf("failed to create derivative: %w", err)
	}
	defer dst.Close()

	if err := jpeg.Encode(dst, fn(src), &jpeg.Options{Quality: jpegQuality}); err != nil {
		os.Remove(out)
		return "", fmt.Errorf("failed to encode derivative: %w", err)
	}

	logger.WithComponent("effects").Debug().
		Str("effect", effect).
		Str("derivative", out).
		Msg("Derivative produced")
	return out, nil
}

func grayscale(src image.Image) image.Image {
	bounds := src.Bounds()
	dst := image.NewRGBA(bounds)
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			g := color.GrayModel.Convert(src.At(x, y)).(color.Gray)
			dst.Set(x, y, color.RGBA{R: g.Y, G: g.Y, B: g.Y, A: 0xff})
		}
	}
	return dst
}

func sepia(src image.Image) image.Image {
	bounds := src.Bounds()
	dst := image.NewRGBA(bounds)
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			r, g, b, _ := src.At(x, y).RGBA()
			fr, fg, fb := float64(r>>8), float64(g>>8), float64(b>>8)
			dst.Set(x, y, color.RGBA{
				R: clamp8(0.393*fr + 0.769*fg + 0.189*fb),
				G: clamp8(0.349*fr + 0.686*fg + 0.168*fb),
				B: clamp8(0.272*fr + 0.534*fg + 0.131*fb),
				A: 0xff,
			})
		}
	}
	return dst
}

// blur approximates a gaussian by collapsing the image and re-expanding it
// with bilinear interpolation. Much cheaper than a true convolution at
// wallpaper resolutions.
func blur(src image.Image) image.Image {
	bounds := src.Bounds()
	w := uint(bounds.Dx())
	h := uint(bounds.Dy())
	if w < 16 || h < 16 {
		return src
	}
	small := resize.Resize(w/8, h/8, src, resize.Bilinear)
	return resize.Resize(w, h, small, resize.Bilinear)
}

func clamp8(v float64) uint8 {
	if v > 255 {
		return 255
	}
	if v < 0 {
		return 0
	}
	return uint8(v)
}
