package backend

import (
	"context"
	"regexp"
	"strings"

	"github.com/wallkit/wallkit/internal/logger"
	"github.com/wallkit/wallkit/internal/monitor"
	"github.com/wallkit/wallkit/internal/toolexec"
)

var niriFocusedOutputRe = regexp.MustCompile(`Output\s+.*\(([^)]+)\)`)

// Niri drives the Niri scrollable-tiling compositor: niri msg for
// discovery, swww for dispatch.
type Niri struct {
	run  toolexec.Runner
	swww swwwClient
}

// NewNiri returns the Niri backend.
func NewNiri(run toolexec.Runner, opts Options) *Niri {
	return &Niri{run: run, swww: swwwClient{run: run, opts: opts}}
}

func (b *Niri) Name() string { return "niri" }

func (b *Niri) Available() bool {
	return b.run.LookPath("niri") && b.swww.daemonAlive()
}

func (b *Niri) Monitors() []monitor.Monitor {
	res := b.run.Run(context.Background(), "niri", "msg", "outputs")
	if !res.Ok() {
		logger.WithComponent("niri").Warn().Str("stderr", res.ErrorText()).Msg("niri discovery failed, falling back to swww")
		return monitor.ParseSwwwQuery(b.swww.query())
	}
	return monitor.ParseNiriOutputs(string(res.Stdout))
}

func (b *Niri) ActiveMonitor() string {
	// Tier 1: ask the compositor directly.
	res := b.run.Run(context.Background(), "niri", "msg", "focused-output")
	if res.Ok() {
		for _, line := range strings.Split(string(res.Stdout), "\n") {
			if m := niriFocusedOutputRe.FindStringSubmatch(line); m != nil {
				return m[1]
			}
		}
	}
	// Tier 2: locate the focused workspace's output.
	if conn := b.focusedWorkspaceOutput(); conn != "" {
		return conn
	}
	// Tier 3: first discovered monitor.
	if monitors := b.Monitors(); len(monitors) > 0 {
		return monitors[0].Connector
	}
	return ""
}

// focusedWorkspaceOutput walks `niri msg workspaces`, which groups
// workspaces under output headers and stars the focused one.
func (b *Niri) focusedWorkspaceOutput() string {
	res := b.run.Run(context.Background(), "niri", "msg", "workspaces")
	if !res.Ok() {
		return ""
	}
	current := ""
	for _, line := range strings.Split(string(res.Stdout), "\n") {
		if m := niriFocusedOutputRe.FindStringSubmatch(line); m != nil {
			current = m[1]
			continue
		}
		if strings.HasPrefix(strings.TrimSpace(line), "*") && current != "" {
			return current
		}
	}
	return ""
}

func (b *Niri) SetWallpaper(image, connector, transition, scaling string) error {
	return b.swww.set(image, connector, transition, scaling)
}

func (b *Niri) CurrentWallpaper(connector string) string {
	if connector == "" {
		connector = b.ActiveMonitor()
		if connector == "" {
			return ""
		}
	}
	return b.swww.currentImage(connector)
}

func (b *Niri) SupportsPerMonitor() bool  { return true }
func (b *Niri) SupportsTransitions() bool { return true }
