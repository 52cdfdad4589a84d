package backend

import (
	"context"
	"encoding/json"
	"os"
	"strings"

	"github.com/wallkit/wallkit/internal/logger"
	"github.com/wallkit/wallkit/internal/monitor"
	"github.com/wallkit/wallkit/internal/toolexec"
)

// Hyprland talks to the Hyprland compositor through hyprctl for discovery
// and swww for dispatch.
type Hyprland struct {
	run  toolexec.Runner
	swww swwwClient
}

// NewHyprland returns the Hyprland backend.
func NewHyprland(run toolexec.Runner, opts Options) *Hyprland {
	return &Hyprland{run: run, swww: swwwClient{run: run, opts: opts}}
}

func (b *Hyprland) Name() string { return "hyprland" }

func (b *Hyprland) Available() bool {
	if !strings.Contains(os.Getenv("XDG_CURRENT_DESKTOP"), "Hyprland") {
		return false
	}
	return b.run.Run(context.Background(), "hyprctl", "monitors").Ok()
}

func (b *Hyprland) Monitors() []monitor.Monitor {
	res := b.run.Run(context.Background(), "hyprctl", "monitors", "-j")
	if !res.Ok() {
		logger.WithComponent("hyprland").Warn().Str("stderr", res.ErrorText()).Msg("hyprctl discovery failed, falling back to swww")
		return monitor.ParseSwwwQuery(b.swww.query())
	}
	return monitor.ParseHyprctlMonitors(res.Stdout)
}

func (b *Hyprland) ActiveMonitor() string {
	// Tier 1: the focused flag in discovery output.
	for _, m := range b.Monitors() {
		if m.Primary {
			return m.Connector
		}
	}
	// Tier 2: the monitor owning the active workspace.
	res := b.run.Run(context.Background(), "hyprctl", "activeworkspace", "-j")
	if res.Ok() {
		var ws struct {
			Monitor string `json:"monitor"`
		}
		if err := json.Unmarshal(res.Stdout, &ws); err == nil && ws.Monitor != "" {
			return ws.Monitor
		}
	}
	// Tier 3: first discovered monitor.
	if monitors := b.Monitors(); len(monitors) > 0 {
		return monitors[0].Connector
	}
	return ""
}

func (b *Hyprland) SetWallpaper(image, connector, transition, scaling string) error {
	return b.swww.set(image, connector, transition, scaling)
}

func (b *Hyprland) CurrentWallpaper(connector string) string {
	if connector == "" {
		connector = b.ActiveMonitor()
		if connector == "" {
			return ""
		}
	}
	return b.swww.currentImage(connector)
}

func (b *Hyprland) SupportsPerMonitor() bool  { return true }
func (b *Hyprland) SupportsTransitions() bool { return true }
