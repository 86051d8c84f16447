// Package discovery provides mDNS-based LAN discovery for smart switches.
//
// Devices with LAN mode enabled advertise an "_ewelink._tcp" service whose
// TXT records carry the device ID, a model hint, and (for multi-channel
// devices) the outlet count. Discovery is a CLI convenience for checking
// which devices are reachable locally; the reconciliation engine itself talks
// to the cloud gateways and never depends on it.
//
// # Usage Example
//
//	devices, err := discovery.ScanForDevices(10 * time.Second)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	for _, device := range devices {
//	    fmt.Println(device)
//	}
//
// # Network Requirements
//
// - Requires multicast support on the network interface
// - Devices must be on the same local network segment
// - Firewall must allow mDNS (UDP port 5353)
//
// # Thread Safety
//
// This package is safe for concurrent use. Multiple discovery sessions can
// run simultaneously without interference.
package discovery
