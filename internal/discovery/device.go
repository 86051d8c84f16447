package discovery

import (
	"fmt"
	"time"
)

// Device represents a smart switch discovered on the local network
type Device struct {
	// ID is the vendor device identifier (e.g., "10004b093a")
	ID string

	// Model is the device model hint from the "type" TXT record
	Model string

	// Hostname is the mDNS hostname
	Hostname string

	// IP is the IPv4 address (e.g., "192.168.1.42")
	IP string

	// Port is the LAN API port
	Port int

	// Outlets is the advertised channel count (0 when not advertised;
	// single-channel devices usually omit it)
	Outlets int

	// Metadata contains additional mDNS TXT record data
	Metadata map[string]string

	// DiscoveredAt is when the device was discovered
	DiscoveredAt time.Time
}

// String returns a human-readable string representation of the device
func (d *Device) String() string {
	if d.Outlets > 1 {
		return fmt.Sprintf("Device %s (%s, %d outlets) at %s:%d", d.ID, d.Model, d.Outlets, d.IP, d.Port)
	}
	return fmt.Sprintf("Device %s (%s) at %s:%d", d.ID, d.Model, d.IP, d.Port)
}

// BaseURL returns the LAN API base URL for the device
func (d *Device) BaseURL() string {
	return fmt.Sprintf("http://%s:%d", d.IP, d.Port)
}

// GetMetadata retrieves a metadata value by key, or returns empty string if not found
func (d *Device) GetMetadata(key string) string {
	if d.Metadata == nil {
		return ""
	}
	return d.Metadata[key]
}
