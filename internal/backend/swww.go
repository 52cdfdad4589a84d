package backend

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/wallkit/wallkit/internal/logger"
	"github.com/wallkit/wallkit/internal/toolexec"
)

// swww query can hang when the daemon is wedged, so probes are bounded.
const swwwQueryTimeout = 2 * time.Second

// A freshly launched swww-daemon needs a moment before it answers queries.
const (
	daemonStartPoll    = 200 * time.Millisecond
	daemonStartRetries = 5
)

// swwwClient wraps the swww CLI, the wallpaper-setting tool shared by every
// wlroots-family backend.
type swwwClient struct {
	run  toolexec.Runner
	opts Options
}

// daemonAlive reports whether the swww daemon answers a query.
func (c *swwwClient) daemonAlive() bool {
	ctx, cancel := context.WithTimeout(context.Background(), swwwQueryTimeout)
	defer cancel()
	return c.run.Run(ctx, "swww", "query").Ok()
}

// query returns the raw `swww query` output, or "" on failure.
func (c *swwwClient) query() string {
	ctx, cancel := context.WithTimeout(context.Background(), swwwQueryTimeout)
	defer cancel()
	res := c.run.Run(ctx, "swww", "query")
	if !res.Ok() {
		return ""
	}
	return string(res.Stdout)
}

// set dispatches one `swww img` invocation. An empty output targets every
// monitor. A "none" transition omits the transition flags entirely since
// swww is known to silently no-op on a literal none in some setups.
func (c *swwwClient) set(image, output, transition, scaling string) error {
	args := []string{"img", image}
	if transition != TransitionNone {
		args = append(args,
			"--transition-type", transition,
			"--transition-fps", fmt.Sprintf("%d", c.opts.TransitionFPS),
			"--transition-duration", fmt.Sprintf("%g", c.opts.TransitionDuration),
		)
	}
	if scaling != "" {
		args = append(args, "--resize", scaling)
	}
	if output != "" {
		args = append(args, "--outputs", output)
	}

	res := c.run.Run(context.Background(), "swww", args...)
	if !res.Ok() {
		return &DispatchError{Tool: "swww", Detail: res.ErrorText()}
	}
	logger.WithComponent("swww").Debug().
		Str("image", image).
		Str("output", output).
		Str("transition", transition).
		Msg("Wallpaper dispatched")
	return nil
}

// ensureDaemon reports whether the swww daemon answers, launching
// swww-daemon first when it is down. Session managers regularly run
// wallkit before the daemon is up.
func (c *swwwClient) ensureDaemon() bool {
	if c.daemonAlive() {
		return true
	}
	if !c.run.LookPath("swww-daemon") {
		return false
	}
	logger.WithComponent("swww").Info().Msg("swww daemon not running, starting it")
	if err := c.run.Start("swww-daemon"); err != nil {
		logger.WithComponent("swww").Warn().Err(err).Msg("Could not start swww-daemon")
		return false
	}
	for i := 0; i < daemonStartRetries; i++ {
		time.Sleep(daemonStartPoll)
		if c.daemonAlive() {
			return true
		}
	}
	return false
}

// DirectSwww returns a dispatcher that talks straight to swww, bypassing
// backend probing. Callers use it as a one-shot fallback when the active
// backend's own dispatch fails; a stopped daemon is started first.
func DirectSwww(run toolexec.Runner, opts Options) func(image, output, transition, scaling string) error {
	c := &swwwClient{run: run, opts: opts}
	return func(image, output, transition, scaling string) error {
		if !c.ensureDaemon() {
			return &DispatchError{Tool: "swww", Detail: "daemon not running"}
		}
		return c.set(image, output, transition, scaling)
	}
}

// currentImage extracts the displayed image path for output from
// `swww query` lines such as:
//
//	DP-1: 3440x1440, scale: 1, currently displaying: image: /home/u/a.png
func (c *swwwClient) currentImage(output string) string {
	for _, line := range strings.Split(c.query(), "\n") {
		if !strings.Contains(line, output) {
			continue
		}
		if _, path, ok := strings.Cut(line, "image:"); ok {
			return strings.Trim(strings.TrimSpace(path), `"'`)
		}
	}
	return ""
}
