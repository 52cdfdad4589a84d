package monitor

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/wallkit/wallkit/internal/logger"
)

// Patterns for plain `wlr-randr` output. Header lines are unindented and
// carry a quoted description:
//
//	LVDS-1 "Chimei Innolux Corporation 0x15B8 (LVDS-1)"
//	  Modes:
//	    1366x768 px, 60.046001 Hz (preferred, current)
//	  Scale: 1.000000
var (
	wlrHeaderRe = regexp.MustCompile(`^(\S+)\s+"([^"]*)"`)
	wlrModeRe   = regexp.MustCompile(`^(\d+)x(\d+)\s+px,\s*([\d.]+)\s*Hz`)
	wlrScaleRe  = regexp.MustCompile(`^Scale:\s*([\d.]+)`)
)

// ParseWlrRandr parses `wlr-randr` text output. The first monitor found is
// marked primary since wlroots compositors have no primary concept of their
// own.
func ParseWlrRandr(raw string) []Monitor {
	log := logger.WithComponent("wlr-randr-parser")

	var (
		monitors []Monitor
		current  *Monitor
	)
	flush := func() {
		if current != nil {
			monitors = upsert(monitors, *current)
			current = nil
		}
	}

	for _, line := range strings.Split(raw, "\n") {
		if line == "" {
			continue
		}

		if !strings.HasPrefix(line, " ") {
			if m := wlrHeaderRe.FindStringSubmatch(line); m != nil {
				flush()
				rec := New(m[1])
				if m[2] != "" {
					rec.Name = m[2]
				}
				current = &rec
			}
			continue
		}
		if current == nil {
			continue
		}

		trimmed := strings.TrimSpace(line)
		if m := wlrModeRe.FindStringSubmatch(trimmed); m != nil {
			// Only the active mode describes the monitor.
			if !strings.Contains(trimmed, "current") {
				continue
			}
			w, werr := strconv.Atoi(m[1])
			h, herr := strconv.Atoi(m[2])
			if werr != nil || herr != nil {
				log.Warn().Str("line", trimmed).Msg("Unparseable mode line, keeping Unknown resolution")
				continue
			}
			current.Resolution = Resolution{Width: w, Height: h}
			if hz, err := strconv.ParseFloat(m[3], 64); err == nil {
				current.Refresh = hz
			}
			continue
		}
		if m := wlrScaleRe.FindStringSubmatch(trimmed); m != nil {
			if scale, err := strconv.ParseFloat(m[1], 64); err == nil {
				current.Scale = scale
			} else {
				log.Warn().Str("line", trimmed).Msg("Unparseable scale, keeping default")
			}
		}
	}
	flush()

	if len(monitors) > 0 {
		monitors[0].Primary = true
	}
	return monitors
}
