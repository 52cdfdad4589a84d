package backend

import (
	"context"
	"os"

	"github.com/BurntSushi/xgb"
	"github.com/BurntSushi/xgb/randr"
	"github.com/BurntSushi/xgb/xproto"
	"github.com/wallkit/wallkit/internal/logger"
	"github.com/wallkit/wallkit/internal/monitor"
	"github.com/wallkit/wallkit/internal/toolexec"
)

// X11 is the most generic backend: RandR over a direct X connection for
// discovery and feh (or xwallpaper) for dispatch. It is probed last and
// catches plain X sessions no specific backend claims.
type X11 struct {
	run toolexec.Runner
}

// NewX11 returns the generic X11 backend.
func NewX11(run toolexec.Runner, _ Options) *X11 {
	return &X11{run: run}
}

func (b *X11) Name() string { return "x11" }

func (b *X11) Available() bool {
	if os.Getenv("DISPLAY") == "" {
		return false
	}
	conn, err := xgb.NewConn()
	if err != nil {
		return false
	}
	conn.Close()
	return b.run.LookPath("feh") || b.run.LookPath("xwallpaper")
}

func (b *X11) Monitors() []monitor.Monitor {
	conn, err := xgb.NewConn()
	if err != nil {
		logger.WithComponent("x11").Warn().Err(err).Msg("Could not connect to X server")
		return nil
	}
	defer conn.Close()

	if err := randr.Init(conn); err != nil {
		logger.WithComponent("x11").Warn().Err(err).Msg("RandR extension unavailable")
		return nil
	}
	root := xproto.Setup(conn).DefaultScreen(conn).Root

	resources, err := randr.GetScreenResourcesCurrent(conn, root).Reply()
	if err != nil {
		logger.WithComponent("x11").Warn().Err(err).Msg("Could not query screen resources")
		return nil
	}

	var primary randr.Output
	if p, err := randr.GetOutputPrimary(conn, root).Reply(); err == nil {
		primary = p.Output
	}

	modes := make(map[randr.Mode]randr.ModeInfo, len(resources.Modes))
	for _, mi := range resources.Modes {
		modes[randr.Mode(mi.Id)] = mi
	}

	var monitors []monitor.Monitor
	for _, output := range resources.Outputs {
		info, err := randr.GetOutputInfo(conn, output, resources.ConfigTimestamp).Reply()
		if err != nil || info.Connection != randr.ConnectionConnected || info.Crtc == 0 {
			continue
		}
		rec := monitor.New(string(info.Name))
		rec.Primary = output == primary

		crtc, err := randr.GetCrtcInfo(conn, info.Crtc, resources.ConfigTimestamp).Reply()
		if err == nil {
			rec.Resolution = monitor.Resolution{Width: int(crtc.Width), Height: int(crtc.Height)}
			if mi, ok := modes[crtc.Mode]; ok {
				if total := int(mi.Htotal) * int(mi.Vtotal); total > 0 {
					rec.Refresh = float64(mi.DotClock) / float64(total)
				}
			}
		}
		monitors = append(monitors, rec)
	}
	return monitors
}

func (b *X11) ActiveMonitor() string {
	monitors := b.Monitors()
	for _, m := range monitors {
		if m.Primary {
			return m.Connector
		}
	}
	if len(monitors) > 0 {
		return monitors[0].Connector
	}
	return ""
}

// fehScalingFlags maps the generic resize modes onto feh background flags.
var fehScalingFlags = map[string]string{
	"crop":    "--bg-fill",
	"fit":     "--bg-max",
	"stretch": "--bg-scale",
	"center":  "--bg-center",
	"tile":    "--bg-tile",
}

func (b *X11) SetWallpaper(image, connector, transition, scaling string) error {
	// feh cannot target a single output and knows no transitions; the
	// pipeline has already normalized the request accordingly.
	if b.run.LookPath("feh") {
		flag, ok := fehScalingFlags[scaling]
		if !ok {
			flag = "--bg-fill"
		}
		res := b.run.Run(context.Background(), "feh", flag, image)
		if !res.Ok() {
			return &DispatchError{Tool: "feh", Detail: res.ErrorText()}
		}
		return nil
	}
	res := b.run.Run(context.Background(), "xwallpaper", "--zoom", image)
	if !res.Ok() {
		return &DispatchError{Tool: "xwallpaper", Detail: res.ErrorText()}
	}
	return nil
}

func (b *X11) CurrentWallpaper(string) string {
	// Plain X11 exposes no query for the displayed wallpaper.
	return ""
}

func (b *X11) SupportsPerMonitor() bool  { return false }
func (b *X11) SupportsTransitions() bool { return false }
