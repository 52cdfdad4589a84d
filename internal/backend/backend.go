// Package backend abstracts "how to talk to one compositor family" behind a
// single capability set, and auto-detects the implementation to use.
package backend

import (
	"errors"
	"fmt"

	"github.com/wallkit/wallkit/internal/monitor"
)

// Transition names with special handling.
const (
	TransitionNone = "none"
	TransitionFade = "fade"
)

// ErrNoBackend is returned while no compositor backend has been detected.
var ErrNoBackend = errors.New("no compatible wallpaper backend found")

// DispatchError reports that the wallpaper-setting tool ran and failed.
// It is the only backend error that fails an overall apply call.
type DispatchError struct {
	Tool   string
	Detail string
}

func (e *DispatchError) Error() string {
	if e.Detail == "" {
		return fmt.Sprintf("%s failed to set wallpaper", e.Tool)
	}
	return fmt.Sprintf("%s failed to set wallpaper: %s", e.Tool, e.Detail)
}

// Backend is implemented once per compositor family. Implementations are
// mutually exclusive and never composed; each owns its own tool checks and
// shares no parsing state with siblings.
type Backend interface {
	// Name identifies the backend ("hyprland", "niri", ...).
	Name() string

	// Available is a cheap, side-effect-free probe used during
	// detection. It never panics; any failure to probe means false.
	Available() bool

	// Monitors runs the backend's discovery tool. On failure it falls
	// back to a secondary tool when one exists, else returns an empty
	// (never nil-dereferencing) slice.
	Monitors() []monitor.Monitor

	// ActiveMonitor returns the focused output connector, or "" when
	// even the first-monitor fallback yields nothing.
	ActiveMonitor() string

	// SetWallpaper invokes the platform tool. An empty connector targets
	// all monitors. Returns a *DispatchError when the tool fails.
	SetWallpaper(image, connector, transition, scaling string) error

	// CurrentWallpaper is a best-effort query of what is displayed on
	// connector (or the active monitor when empty); "" when the platform
	// exposes no such query.
	CurrentWallpaper(connector string) string

	// SupportsPerMonitor reports whether wallpapers can target a single
	// output.
	SupportsPerMonitor() bool

	// SupportsTransitions reports whether dispatch honors transition
	// parameters. The pipeline normalizes requests against this before
	// dispatching.
	SupportsTransitions() bool
}

// Options carries the tuning shared by every backend.
type Options struct {
	TransitionFPS      int
	TransitionDuration float64
}
