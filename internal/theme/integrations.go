package theme

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/wallkit/wallkit/internal/logger"
)

const cssMarker = "/* wallkit generated colors */"

// applyIntegrations writes the palette out to every integration whose
// config is present. Each integration is independently best-effort.
func (g *Generator) applyIntegrations(colors Colors) {
	home, err := os.UserHomeDir()
	if err != nil {
		return
	}
	log := logger.WithComponent("theme")

	if err := g.writeGTKColors(home, colors); err != nil {
		log.Warn().Err(err).Msg("Could not update GTK colors")
	}
	if err := g.writeTerminalColors(colors); err != nil {
		log.Warn().Err(err).Msg("Could not update terminal colors")
	}
	if err := g.updateWaybar(home, colors); err != nil {
		log.Warn().Err(err).Msg("Could not update waybar colors")
	}
	if err := g.updateNoctalia(home, colors); err != nil {
		log.Warn().Err(err).Msg("Could not update noctalia colors")
	}
}

func cssBlock(colors Colors) string {
	return fmt.Sprintf(`%s
:root {
  --wallkit-primary: %s;
  --wallkit-secondary: %s;
  --wallkit-background: %s;
  --wallkit-text: %s;
  --wallkit-accent: %s;
}
`, cssMarker,
		colors.get("primary", "#6366f1"),
		colors.get("secondary", "#8b5cf6"),
		colors.get("surface", "#1f2937"),
		colors.get("on_surface", "#ffffff"),
		colors.get("tertiary", "#f59e0b"))
}

// replaceManagedBlock strips a previously written wallkit block from css
// and appends the new one, leaving user content alone.
func replaceManagedBlock(existing, block string) string {
	if idx := strings.Index(existing, cssMarker); idx >= 0 {
		rest := existing[idx:]
		if end := strings.Index(rest, "}"); end >= 0 {
			existing = existing[:idx] + strings.TrimLeft(rest[end+1:], "\n")
		} else {
			existing = existing[:idx]
		}
	}
	existing = strings.TrimRight(existing, "\n")
	if existing == "" {
		return block
	}
	return existing + "\n\n" + block
}

func (g *Generator) writeGTKColors(home string, colors Colors) error {
	path := filepath.Join(home, ".config", "gtk-3.0", "gtk.css")
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	existing := ""
	if data, err := os.ReadFile(path); err == nil {
		existing = string(data)
	}
	return os.WriteFile(path, []byte(replaceManagedBlock(existing, cssBlock(colors))), 0o644)
}

func (g *Generator) writeTerminalColors(colors Colors) error {
	script := fmt.Sprintf(`#!/bin/sh
export WALLKIT_PRIMARY='%s'
export WALLKIT_SECONDARY='%s'
export WALLKIT_BACKGROUND='%s'
export WALLKIT_TEXT='%s'
export WALLKIT_ACCENT='%s'
`,
		colors.get("primary", "#6366f1"),
		colors.get("secondary", "#8b5cf6"),
		colors.get("surface", "#1f2937"),
		colors.get("on_surface", "#ffffff"),
		colors.get("tertiary", "#f59e0b"))

	if err := os.MkdirAll(g.cacheDir, 0o755); err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(g.cacheDir, "terminal_colors.sh"), []byte(script), 0o755)
}

// updateWaybar rewrites waybar's stylesheet block and signals a live
// reload; waybar re-reads its stylesheet on SIGUSR2.
func (g *Generator) updateWaybar(home string, colors Colors) error {
	styles := filepath.Join(home, ".config", "waybar", "style.css")
	data, err := os.ReadFile(styles)
	if err != nil {
		if os.IsNotExist(err) {
			return nil // waybar not in use
		}
		return err
	}
	if err := os.WriteFile(styles, []byte(replaceManagedBlock(string(data), cssBlock(colors))), 0o644); err != nil {
		return err
	}
	g.run.Run(context.Background(), "pkill", "-SIGUSR2", "waybar")
	return nil
}

// updateNoctalia converts the palette into noctalia-shell's colors.json and
// signals a reload.
func (g *Generator) updateNoctalia(home string, colors Colors) error {
	dir := filepath.Join(home, ".config", "noctalia")
	if _, err := os.Stat(dir); err != nil {
		if os.IsNotExist(err) {
			return nil // noctalia not in use
		}
		return err
	}

	palette := map[string]string{
		"mPrimary":          colors.get("primary", "#6366f1"),
		"mOnPrimary":        colors.get("on_primary", "#ffffff"),
		"mSecondary":        colors.get("secondary", "#8b5cf6"),
		"mOnSecondary":      colors.get("on_secondary", "#ffffff"),
		"mTertiary":         colors.get("tertiary", "#f59e0b"),
		"mOnTertiary":       colors.get("on_tertiary", "#ffffff"),
		"mSurface":          colors.get("surface", "#1f2937"),
		"mOnSurface":        colors.get("on_surface", "#ffffff"),
		"mSurfaceVariant":   colors.get("surface_variant", "#374151"),
		"mOnSurfaceVariant": colors.get("on_surface_variant", "#cccccc"),
		"mError":            colors.get("error", "#fd4663"),
		"mOnError":          colors.get("on_error", "#ffffff"),
		"mOutline":          colors.get("outline", "#666666"),
		"mShadow":           colors.get("shadow", "#000000"),
	}
	data, err := json.MarshalIndent(palette, "", "    ")
	if err != nil {
		return err
	}
	if err := os.WriteFile(filepath.Join(dir, "colors.json"), data, 0o644); err != nil {
		return err
	}
	g.run.Run(context.Background(), "pkill", "-SIGUSR1", "noctalia")
	return nil
}
