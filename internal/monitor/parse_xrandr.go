package monitor

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/wallkit/wallkit/internal/logger"
)

// xrandrMonitorRe matches `xrandr --listmonitors` entries:
//
//	0: +*DP-1 3440/800x1440/340+0+0  DP-1
//
// The geometry is WIDTH/PHYSICALxHEIGHT/PHYSICAL+X+Y; the logical size is
// what we want. A leading '*' marks the primary monitor.
var xrandrMonitorRe = regexp.MustCompile(`^\s*\d+:\s+(\+?\*?)(\S+)\s+(\d+)/\d+x(\d+)/\d+\+\d+\+\d+\s+(\S+)`)

// ParseXrandrListMonitors parses `xrandr --listmonitors` output. The header
// line ("Monitors: N") and anything malformed are skipped.
func ParseXrandrListMonitors(raw string) []Monitor {
	log := logger.WithComponent("xrandr-parser")

	var monitors []Monitor
	for _, line := range strings.Split(raw, "\n") {
		m := xrandrMonitorRe.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		connector := m[5]
		rec := New(connector)
		rec.Primary = strings.Contains(m[1], "*")

		w, werr := strconv.Atoi(m[3])
		h, herr := strconv.Atoi(m[4])
		if werr == nil && herr == nil {
			rec.Resolution = Resolution{Width: w, Height: h}
		} else {
			log.Warn().Str("line", strings.TrimSpace(line)).Msg("Unparseable geometry, keeping Unknown resolution")
		}
		monitors = upsert(monitors, rec)
	}
	return monitors
}
