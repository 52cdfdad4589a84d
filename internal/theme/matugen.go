// Package theme generates color themes from wallpapers via matugen and
// propagates them to shell integrations. Everything here is an enhancement:
// failures degrade to "no color update" and never fail a wallpaper change.
package theme

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/wallkit/wallkit/internal/logger"
	"github.com/wallkit/wallkit/internal/toolexec"
)

const (
	// generateTimeout bounds matugen runs; large images can make it hang.
	generateTimeout = 30 * time.Second
	// probeTimeout bounds the availability check.
	probeTimeout = 5 * time.Second

	colorsFileName = "matugen_colors.json"
)

// Colors is the subset of the matugen palette the integrations consume.
// Primary, Surface and OnSurface are required; a palette missing any of
// them counts as a failed generation.
type Colors map[string]string

func (c Colors) get(key, fallback string) string {
	if v, ok := c[key]; ok && v != "" {
		return v
	}
	return fallback
}

// Generator invokes matugen and fans colors out to integrations.
type Generator struct {
	run      toolexec.Runner
	cacheDir string
}

// NewGenerator returns a Generator caching palettes under cacheDir.
func NewGenerator(run toolexec.Runner, cacheDir string) *Generator {
	return &Generator{run: run, cacheDir: cacheDir}
}

// Available reports whether matugen can be invoked.
func (g *Generator) Available() bool {
	if !g.run.LookPath("matugen") {
		return false
	}
	ctx, cancel := context.WithTimeout(context.Background(), probeTimeout)
	defer cancel()
	return g.run.Run(ctx, "matugen", "--version").Ok()
}

// Generate extracts a palette from the image (always the original, never a
// derivative), caches it, and applies the shell integrations. Every failure
// is soft: logged and reported as an error the caller may ignore.
func (g *Generator) Generate(image, scheme string) error {
	log := logger.WithComponent("theme")

	ctx, cancel := context.WithTimeout(context.Background(), generateTimeout)
	defer cancel()

	res := g.run.Run(ctx, "matugen", "image", image,
		"--mode", "dark",
		"--type", scheme,
		"--json", "hex",
	)
	if res.TimedOut() {
		return fmt.Errorf("matugen timed out after %s", generateTimeout)
	}
	if !res.Ok() {
		return fmt.Errorf("matugen failed: %s", res.ErrorText())
	}

	colors, err := parsePalette(res.Stdout)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(g.cacheDir, 0o755); err == nil {
		if err := os.WriteFile(filepath.Join(g.cacheDir, colorsFileName), res.Stdout, 0o644); err != nil {
			log.Warn().Err(err).Msg("Could not cache matugen palette")
		}
	}

	g.applyIntegrations(colors)
	log.Info().Str("scheme", scheme).Msg("Colors generated")
	return nil
}

// parsePalette validates the matugen JSON. matugen v2 nests the palette
// under colors.dark; older versions put it directly under colors.
func parsePalette(raw []byte) (Colors, error) {
	var doc struct {
		Colors json.RawMessage `json:"colors"`
	}
	if err := json.Unmarshal(raw, &doc); err != nil || doc.Colors == nil {
		return nil, fmt.Errorf("matugen output missing colors map")
	}

	var nested struct {
		Dark Colors `json:"dark"`
	}
	var colors Colors
	if err := json.Unmarshal(doc.Colors, &nested); err == nil && len(nested.Dark) > 0 {
		colors = nested.Dark
	} else if err := json.Unmarshal(doc.Colors, &colors); err != nil {
		return nil, fmt.Errorf("matugen output has unusable colors map")
	}

	for _, required := range []string{"primary", "surface", "on_surface"} {
		if colors.get(required, "") == "" {
			return nil, fmt.Errorf("matugen palette missing %q", required)
		}
	}
	return colors, nil
}

// CachedPalette returns the last generated palette, if any.
func (g *Generator) CachedPalette() (Colors, error) {
	data, err := os.ReadFile(filepath.Join(g.cacheDir, colorsFileName))
	if err != nil {
		return nil, err
	}
	return parsePalette(data)
}
