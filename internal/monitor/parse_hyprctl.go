package monitor

import (
	"encoding/json"

	"github.com/wallkit/wallkit/internal/logger"
)

// hyprctlMonitor mirrors the fields of `hyprctl monitors -j` we consume.
type hyprctlMonitor struct {
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Width       int     `json:"width"`
	Height      int     `json:"height"`
	RefreshRate float64 `json:"refreshRate"`
	Scale       float64 `json:"scale"`
	Focused     bool    `json:"focused"`
}

// ParseHyprctlMonitors parses the JSON emitted by `hyprctl monitors -j`.
// A record missing a field keeps the documented default; undecodable input
// yields an empty slice rather than an error.
func ParseHyprctlMonitors(raw []byte) []Monitor {
	var decoded []hyprctlMonitor
	if err := json.Unmarshal(raw, &decoded); err != nil {
		logger.WithComponent("hyprctl-parser").Warn().Err(err).Msg("Undecodable monitor JSON")
		return nil
	}

	var monitors []Monitor
	for _, hm := range decoded {
		if hm.Name == "" {
			continue
		}
		rec := New(hm.Name)
		if hm.Description != "" {
			rec.Name = hm.Description
		}
		if hm.Width > 0 && hm.Height > 0 {
			rec.Resolution = Resolution{Width: hm.Width, Height: hm.Height}
		}
		if hm.Scale > 0 {
			rec.Scale = hm.Scale
		}
		if hm.RefreshRate > 0 {
			rec.Refresh = hm.RefreshRate
		}
		rec.Primary = hm.Focused
		monitors = upsert(monitors, rec)
	}
	return monitors
}
