// Package monitor defines the canonical display record and the parsers that
// turn each compositor tool's raw output into it.
package monitor

import "fmt"

// Defaults applied when a discovery tool does not report a field.
const (
	DefaultScale   = 1.0
	DefaultRefresh = 60.0
)

// Resolution is a display mode size. The zero value is the "Unknown"
// sentinel used when discovery never reported a mode.
type Resolution struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

// Known reports whether the resolution was actually discovered.
func (r Resolution) Known() bool {
	return r.Width > 0 && r.Height > 0
}

func (r Resolution) String() string {
	if !r.Known() {
		return "Unknown"
	}
	return fmt.Sprintf("%dx%d", r.Width, r.Height)
}

// Monitor is the canonical description of one display. Records are
// recreated on every discovery call; the connector string is the only
// stable identity.
type Monitor struct {
	// Connector is the hardware identifier, e.g. "DP-1".
	Connector string `json:"connector"`
	// Name is the human label; may equal Connector.
	Name       string     `json:"name"`
	Resolution Resolution `json:"resolution"`
	Scale      float64    `json:"scale"`
	Refresh    float64    `json:"refresh_rate"`
	Primary    bool       `json:"primary"`
	// Extra carries backend-specific values (e.g. a Plasma desktop
	// index) passed through opaquely; only the owning backend reads it.
	Extra map[string]string `json:"extra,omitempty"`
}

// New returns a Monitor for connector with documented field defaults.
func New(connector string) Monitor {
	return Monitor{
		Connector: connector,
		Name:      connector,
		Scale:     DefaultScale,
		Refresh:   DefaultRefresh,
	}
}

// upsert appends m to list, or overwrites an existing record with the same
// connector in place. Duplicate connectors keep their original ordinal
// position; the last parsed record wins.
func upsert(list []Monitor, m Monitor) []Monitor {
	for i := range list {
		if list[i].Connector == m.Connector {
			list[i] = m
			return list
		}
	}
	return append(list, m)
}

// Connectors returns the connector of every monitor, in order.
func Connectors(list []Monitor) []string {
	out := make([]string, 0, len(list))
	for _, m := range list {
		out = append(out, m.Connector)
	}
	return out
}
