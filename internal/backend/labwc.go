package backend

import (
	"context"
	"os"
	"strings"

	"github.com/wallkit/wallkit/internal/logger"
	"github.com/wallkit/wallkit/internal/monitor"
	"github.com/wallkit/wallkit/internal/toolexec"
)

// Labwc covers labwc and other plain wlroots stacking compositors:
// wlr-randr for discovery, swww for dispatch.
type Labwc struct {
	run  toolexec.Runner
	swww swwwClient
}

// NewLabwc returns the Labwc backend.
func NewLabwc(run toolexec.Runner, opts Options) *Labwc {
	return &Labwc{run: run, swww: swwwClient{run: run, opts: opts}}
}

func (b *Labwc) Name() string { return "labwc" }

func (b *Labwc) Available() bool {
	desktop := strings.ToLower(os.Getenv("XDG_CURRENT_DESKTOP"))
	if strings.Contains(desktop, "labwc") || strings.Contains(desktop, "wlroots") {
		return true
	}
	if os.Getenv("WAYLAND_DISPLAY") == "" {
		return false
	}
	return b.run.Run(context.Background(), "pgrep", "labwc").Ok()
}

func (b *Labwc) Monitors() []monitor.Monitor {
	res := b.run.Run(context.Background(), "wlr-randr")
	if !res.Ok() {
		logger.WithComponent("labwc").Warn().Str("stderr", res.ErrorText()).Msg("wlr-randr unavailable, using default monitor")
		def := monitor.New("default")
		def.Primary = true
		return []monitor.Monitor{def}
	}
	return monitor.ParseWlrRandr(string(res.Stdout))
}

func (b *Labwc) ActiveMonitor() string {
	// labwc exposes no focused-output query; fall through to the first
	// discovered monitor.
	if monitors := b.Monitors(); len(monitors) > 0 {
		return monitors[0].Connector
	}
	return ""
}

func (b *Labwc) SetWallpaper(image, connector, transition, scaling string) error {
	if connector == "default" {
		connector = ""
	}
	return b.swww.set(image, connector, transition, scaling)
}

func (b *Labwc) CurrentWallpaper(connector string) string {
	if connector == "" {
		connector = b.ActiveMonitor()
		if connector == "" {
			return ""
		}
	}
	return b.swww.currentImage(connector)
}

func (b *Labwc) SupportsPerMonitor() bool  { return b.swww.daemonAlive() }
func (b *Labwc) SupportsTransitions() bool { return b.swww.daemonAlive() }
