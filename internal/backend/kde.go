package backend

import (
	"context"
	"os"
	"strconv"
	"strings"

	"github.com/godbus/dbus/v5"
	"github.com/wallkit/wallkit/internal/logger"
	"github.com/wallkit/wallkit/internal/monitor"
	"github.com/wallkit/wallkit/internal/toolexec"
)

const (
	plasmaService         = "org.kde.plasmashell"
	plasmaShellPath       = "/PlasmaShell"
	plasmaEvaluateScript  = "org.kde.PlasmaShell.evaluateScript"
	plasmaDesktopScript   = `for (i = 0; i < desktops().length; i++) { d = desktops()[i]; print("desktop:" + i + ":screen:" + d.screen + "\n"); }`
	plasmaDesktopExtraKey = "plasma_desktop"
)

// KDE drives Plasma. Discovery runs through xrandr enriched with Plasma
// desktop indices over D-Bus; dispatch is hybrid: swww when its daemon is
// alive (for transitions), plasma-apply-wallpaperimage otherwise.
type KDE struct {
	run  toolexec.Runner
	swww swwwClient

	// connectBus is swappable in tests.
	connectBus func() (*dbus.Conn, error)
}

// NewKDE returns the KDE backend.
func NewKDE(run toolexec.Runner, opts Options) *KDE {
	return &KDE{
		run:        run,
		swww:       swwwClient{run: run, opts: opts},
		connectBus: func() (*dbus.Conn, error) { return dbus.ConnectSessionBus() },
	}
}

func (b *KDE) Name() string { return "kde" }

func (b *KDE) Available() bool {
	if !strings.Contains(os.Getenv("XDG_CURRENT_DESKTOP"), "KDE") {
		return false
	}
	conn, err := b.connectBus()
	if err != nil {
		return false
	}
	defer conn.Close()

	var names []string
	if err := conn.BusObject().Call("org.freedesktop.DBus.ListNames", 0).Store(&names); err != nil {
		return false
	}
	for _, name := range names {
		if name == plasmaService {
			return true
		}
	}
	return false
}

func (b *KDE) Monitors() []monitor.Monitor {
	res := b.run.Run(context.Background(), "xrandr", "--listmonitors")
	if !res.Ok() {
		logger.WithComponent("kde").Warn().Str("stderr", res.ErrorText()).Msg("xrandr discovery failed")
		return nil
	}
	monitors := monitor.ParseXrandrListMonitors(string(res.Stdout))

	// Best effort: attach Plasma's desktop-per-screen mapping so dispatch
	// consumers can correlate connectors with containments.
	desktops := b.plasmaDesktops()
	for i := range monitors {
		id, ok := desktops[i]
		if !ok {
			continue
		}
		if monitors[i].Extra == nil {
			monitors[i].Extra = make(map[string]string)
		}
		monitors[i].Extra[plasmaDesktopExtraKey] = id
	}
	return monitors
}

// plasmaDesktops maps screen index -> desktop containment index via a
// PlasmaShell script. Failure just means no Extra annotations.
func (b *KDE) plasmaDesktops() map[int]string {
	conn, err := b.connectBus()
	if err != nil {
		return nil
	}
	defer conn.Close()

	var out string
	obj := conn.Object(plasmaService, plasmaShellPath)
	if err := obj.Call(plasmaEvaluateScript, 0, plasmaDesktopScript).Store(&out); err != nil {
		logger.WithComponent("kde").Debug().Err(err).Msg("Plasma desktop mapping unavailable")
		return nil
	}

	mapping := make(map[int]string)
	for _, line := range strings.Split(out, "\n") {
		// desktop:<id>:screen:<n>
		parts := strings.Split(strings.TrimSpace(line), ":")
		if len(parts) != 4 || parts[0] != "desktop" || parts[2] != "screen" {
			continue
		}
		screen, err := strconv.Atoi(parts[3])
		if err != nil {
			continue
		}
		mapping[screen] = parts[1]
	}
	return mapping
}

func (b *KDE) ActiveMonitor() string {
	// Plasma exposes no focused-output query; the primary monitor is the
	// best approximation, then the first one.
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

func (b *KDE) SetWallpaper(image, connector, transition, scaling string) error {
	if b.swww.daemonAlive() && transition != TransitionNone {
		if err := b.swww.set(image, connector, transition, scaling); err == nil {
			return nil
		}
		logger.WithComponent("kde").Warn().Msg("swww dispatch failed, falling back to Plasma native tool")
	}
	return b.setNative(image)
}

// setNative applies the wallpaper through plasma-apply-wallpaperimage,
// which targets every screen and supports no transitions.
func (b *KDE) setNative(image string) error {
	res := b.run.Run(context.Background(), "plasma-apply-wallpaperimage", image)
	if !res.Ok() {
		return &DispatchError{Tool: "plasma-apply-wallpaperimage", Detail: res.ErrorText()}
	}
	return nil
}

func (b *KDE) CurrentWallpaper(connector string) string {
	if !b.swww.daemonAlive() {
		return ""
	}
	if connector == "" {
		connector = b.ActiveMonitor()
		if connector == "" {
			return ""
		}
	}
	return b.swww.currentImage(connector)
}

func (b *KDE) SupportsPerMonitor() bool { return b.swww.daemonAlive() }

func (b *KDE) SupportsTransitions() bool { return b.swww.daemonAlive() }
