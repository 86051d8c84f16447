package discovery

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/grandcat/zeroconf"
)

const (
	// ServiceType is the mDNS service type smart switches advertise when
	// LAN mode is enabled
	ServiceType = "_ewelink._tcp"

	// ServiceDomain is the mDNS domain (typically "local.")
	ServiceDomain = "local."

	// DefaultScanTimeout is the default timeout for device discovery
	DefaultScanTimeout = 10 * time.Second

	// DefaultPort is the default LAN API port for smart switches
	DefaultPort = 8081
)

// Scanner handles mDNS device discovery
type Scanner struct {
	// Timeout is the maximum time to wait for device discovery
	Timeout time.Duration
}

// NewScanner creates a new mDNS scanner with default settings
func NewScanner() *Scanner {
	return &Scanner{
		Timeout: DefaultScanTimeout,
	}
}

// ScanForDevices discovers all LAN-mode smart switches on the local network
// Returns a list of discovered devices or an error
func (s *Scanner) ScanForDevices() ([]*Device, error) {
	return s.ScanForDevicesWithContext(context.Background())
}

// ScanForDevicesWithContext discovers devices with a custom context
func (s *Scanner) ScanForDevicesWithContext(ctx context.Context) ([]*Device, error) {
	ctx, cancel := context.WithTimeout(ctx, s.Timeout)
	defer cancel()

	entries := make(chan *zeroconf.ServiceEntry)
	results := s.collectEntries(entries)

	resolver, err := zeroconf.NewResolver(nil)
	if err != nil {
		close(entries)
		<-results
		return nil, fmt.Errorf("failed to create mDNS resolver: %w", err)
	}

	if err := resolver.Browse(ctx, ServiceType, ServiceDomain, entries); err != nil {
		// Browse did not take ownership of the channel; release the collector
		close(entries)
		<-results
		return nil, fmt.Errorf("failed to browse for mDNS services: %w", err)
	}

	// The resolver closes entries after browse teardown, so the collector's
	// handover happens strictly after the last append.
	<-ctx.Done()
	return <-results, nil
}

// collectEntries drains service entries into a device list. The list is
// delivered on the returned channel only once entries is closed; until then
// the collector goroutine is the slice's sole owner.
func (s *Scanner) collectEntries(entries <-chan *zeroconf.ServiceEntry) <-chan []*Device {
	results := make(chan []*Device, 1)
	go func() {
		devices := make([]*Device, 0)
		for entry := range entries {
			device := s.parseServiceEntry(entry)
			if device != nil {
				devices = append(devices, device)
			}
		}
		results <- devices
	}()
	return results
}

// WaitForDevice waits for a specific device by device ID
// Returns the device or an error if not found within timeout
func (s *Scanner) WaitForDevice(deviceID string) (*Device, error) {
	return s.WaitForDeviceWithContext(context.Background(), deviceID)
}

// WaitForDeviceWithContext waits for a specific device with a custom context
func (s *Scanner) WaitForDeviceWithContext(ctx context.Context, deviceID string) (*Device, error) {
	ctx, cancel := context.WithTimeout(ctx, s.Timeout)
	defer cancel()

	entries := make(chan *zeroconf.ServiceEntry)
	deviceChan := make(chan *Device, 1)

	resolver, err := zeroconf.NewResolver(nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create mDNS resolver: %w", err)
	}

	go func() {
		for entry := range entries {
			device := s.parseServiceEntry(entry)
			if device != nil && device.ID == deviceID {
				deviceChan <- device
				cancel() // Found the device, cancel context
				return
			}
		}
	}()

	if err := resolver.Browse(ctx, ServiceType, ServiceDomain, entries); err != nil {
		close(entries)
		return nil, fmt.Errorf("failed to browse for mDNS services: %w", err)
	}

	select {
	case device := <-deviceChan:
		return device, nil
	case <-ctx.Done():
		return nil, fmt.Errorf("device %s not found within timeout", deviceID)
	}
}

// parseServiceEntry converts a zeroconf service entry to a Device
// Returns nil if the entry does not carry a device ID TXT record
func (s *Scanner) parseServiceEntry(entry *zeroconf.ServiceEntry) *Device {
	// Parse TXT records into metadata ("key=value" format)
	metadata := make(map[string]string)
	for _, txt := range entry.Text {
		parts := strings.SplitN(txt, "=", 2)
		if len(parts) == 2 {
			metadata[parts[0]] = parts[1]
		} else {
			metadata[parts[0]] = ""
		}
	}

	// The device ID TXT record is what marks a smart switch; service
	// instance names are too free-form to match on.
	deviceID := metadata["id"]
	if deviceID == "" {
		return nil
	}

	// Get IP address (prefer IPv4)
	var ip string
	for _, addr := range entry.AddrIPv4 {
		ip = addr.String()
		break
	}

	// Fallback to IPv6 if no IPv4
	if ip == "" && len(entry.AddrIPv6) > 0 {
		ip = entry.AddrIPv6[0].String()
	}

	if ip == "" {
		return nil
	}

	port := entry.Port
	if port == 0 {
		port = DefaultPort
	}

	// Multi-channel devices advertise their outlet count
	outlets := 0
	if raw, ok := metadata["outlets"]; ok {
		if n, err := strconv.Atoi(raw); err == nil {
			outlets = n
		}
	}

	return &Device{
		ID:           deviceID,
		Model:        metadata["type"],
		Hostname:     entry.HostName,
		IP:           ip,
		Port:         port,
		Outlets:      outlets,
		Metadata:     metadata,
		DiscoveredAt: time.Now(),
	}
}

// ScanForDevices is a convenience function to scan for devices with a custom timeout
func ScanForDevices(timeout time.Duration) ([]*Device, error) {
	scanner := NewScanner()
	scanner.Timeout = timeout
	return scanner.ScanForDevices()
}

// QuickScan performs a fast scan with a 3-second timeout
func QuickScan() ([]*Device, error) {
	scanner := NewScanner()
	scanner.Timeout = 3 * time.Second
	return scanner.ScanForDevices()
}

// FindDevice searches for a specific device by ID with default timeout
func FindDevice(deviceID string) (*Device, error) {
	scanner := NewScanner()
	return scanner.WaitForDevice(deviceID)
}
