package monitor

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/wallkit/wallkit/internal/logger"
)

// Patterns for `niri msg outputs`. A header line opens a new block; the
// continuation patterns are tried in order against every following line and
// anything unmatched is ignored.
var (
	niriOutputRe = regexp.MustCompile(`Output "([^"]+)" \(([^)]+)\)`)
	niriModeRe   = regexp.MustCompile(`Current mode:\s*(\d+)x(\d+)\s*@\s*([\d.]+)`)
	niriScaleRe  = regexp.MustCompile(`Scale:\s*([\d.]+)`)
)

// ParseNiriOutputs parses the free-text output of `niri msg outputs`. It
// never fails: malformed lines are skipped and whatever parsed cleanly is
// returned.
func ParseNiriOutputs(raw string) []Monitor {
	log := logger.WithComponent("niri-parser")

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
		line = strings.TrimSpace(line)

		if m := niriOutputRe.FindStringSubmatch(line); m != nil {
			flush()
			rec := New(m[2])
			rec.Name = m[1]
			current = &rec
			continue
		}
		if current == nil {
			continue
		}

		if m := niriModeRe.FindStringSubmatch(line); m != nil {
			w, werr := strconv.Atoi(m[1])
			h, herr := strconv.Atoi(m[2])
			if werr != nil || herr != nil {
				log.Warn().Str("line", line).Msg("Unparseable mode line, keeping Unknown resolution")
				continue
			}
			current.Resolution = Resolution{Width: w, Height: h}
			if hz, err := strconv.ParseFloat(m[3], 64); err == nil {
				current.Refresh = hz
			} else {
				log.Warn().Str("line", line).Msg("Unparseable refresh rate, keeping default")
			}
			continue
		}
		if m := niriScaleRe.FindStringSubmatch(line); m != nil {
			if scale, err := strconv.ParseFloat(m[1], 64); err == nil {
				current.Scale = scale
			} else {
				log.Warn().Str("line", line).Msg("Unparseable scale, keeping default")
			}
		}
	}
	flush()
	return monitors
}

// ParseSwwwQuery parses `swww query` output into connector-only records.
// Used as the discovery fallback when the compositor's own tool fails.
// Lines look like: "DP-1: 3440x1440, scale: 1, currently displaying: ...".
func ParseSwwwQuery(raw string) []Monitor {
	var monitors []Monitor
	for _, line := range strings.Split(strings.TrimSpace(raw), "\n") {
		line = strings.TrimSpace(line)
		name, _, ok := strings.Cut(line, ":")
		if !ok {
			continue
		}
		// Older swww prefixes each line with "Output ".
		name = strings.TrimSpace(strings.TrimPrefix(name, "Output"))
		if name == "" {
			continue
		}
		monitors = upsert(monitors, New(name))
	}
	return monitors
}
