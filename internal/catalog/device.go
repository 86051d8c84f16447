package catalog

import "fmt"

// Device represents cached metadata for a single smart-switch device as
// reported by the vendor cloud. The metadata is refreshed out-of-band; the
// reconciliation engine treats it as read-only.
type Device struct {
	// ID is the vendor device identifier (e.g., "10004b093a")
	ID string `yaml:"id"`

	// Name is the user-assigned display name
	Name string `yaml:"name,omitempty"`

	// Online reports whether the cloud considers the device reachable
	Online bool `yaml:"online"`

	// MultiOutlet is the capability flag for multi-channel devices.
	// Absent (false) means the device has a single flat parameter namespace.
	MultiOutlet bool `yaml:"multi_outlet,omitempty"`

	// OutletCount is the number of independently switchable channels.
	// Only meaningful when MultiOutlet is set.
	OutletCount int `yaml:"outlet_count,omitempty"`

	// Extra holds the rest of the vendor metadata tree (brand, model,
	// firmware, network info). Kept as-is for ad-hoc introspection.
	Extra map[string]interface{} `yaml:"extra,omitempty"`
}

// String returns a human-readable string representation of the device
func (d *Device) String() string {
	state := "offline"
	if d.Online {
		state = "online"
	}
	if d.MultiOutlet {
		return fmt.Sprintf("%s (%s, %d outlets, %s)", d.Name, d.ID, d.OutletCount, state)
	}
	return fmt.Sprintf("%s (%s, %s)", d.Name, d.ID, state)
}
