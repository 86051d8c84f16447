package catalog

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"gopkg.in/yaml.v3"
)

// Source supplies the device list from the vendor cloud. It is implemented by
// the cloud client; the catalog never talks to the network itself.
type Source interface {
	ListDevices() ([]*Device, error)
}

// Catalog is the owned, in-memory device catalog. It is refreshed explicitly
// from a Source and optionally persisted as a YAML cache between runs. The
// reconciliation engine only ever reads from it.
type Catalog struct {
	mu          sync.RWMutex
	devices     map[string]*Device
	refreshedAt time.Time
}

// New creates an empty catalog.
func New() *Catalog {
	return &Catalog{
		devices: make(map[string]*Device),
	}
}

// Refresh replaces the catalog contents with the device list reported by the
// source. On error the previous contents are left untouched.
func (c *Catalog) Refresh(src Source) error {
	devices, err := src.ListDevices()
	if err != nil {
		return fmt.Errorf("failed to refresh device catalog: %w", err)
	}

	fresh := make(map[string]*Device, len(devices))
	for _, dev := range devices {
		if dev.ID == "" {
			continue
		}
		fresh[dev.ID] = dev
	}

	c.mu.Lock()
	c.devices = fresh
	c.refreshedAt = time.Now()
	c.mu.Unlock()

	return nil
}

// Find retrieves device metadata by device ID.
// Returns nil if the device is not in the catalog.
func (c *Catalog) Find(deviceID string) *Device {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.devices[deviceID]
}

// Devices returns all known devices sorted by ID.
func (c *Catalog) Devices() []*Device {
	c.mu.RLock()
	defer c.mu.RUnlock()

	list := make([]*Device, 0, len(c.devices))
	for _, dev := range c.devices {
		list = append(list, dev)
	}
	sort.Slice(list, func(i, j int) bool { return list[i].ID < list[j].ID })
	return list
}

// Len returns the number of devices in the catalog.
func (c *Catalog) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.devices)
}

// RefreshedAt returns when the catalog was last refreshed from a source.
// Zero if the catalog was never refreshed (or only loaded from cache).
func (c *Catalog) RefreshedAt() time.Time {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.refreshedAt
}

// SearchParameter returns the first value found for key anywhere in the
// device's cached metadata tree, searching depth-first. Top-level fields are
// checked before the nested vendor metadata. This is an introspection helper
// and plays no part in the reconciliation write path.
func (c *Catalog) SearchParameter(key string, deviceID string) (interface{}, bool) {
	dev := c.Find(deviceID)
	if dev == nil {
		return nil, false
	}

	switch key {
	case "id", "deviceid":
		return dev.ID, true
	case "name":
		return dev.Name, true
	case "online":
		return dev.Online, true
	}

	return searchTree(dev.Extra, key)
}

// searchTree walks nested maps and slices depth-first looking for key.
// Map keys are visited in sorted order so lookups are deterministic.
func searchTree(node interface{}, key string) (interface{}, bool) {
	switch v := node.(type) {
	case map[string]interface{}:
		if val, ok := v[key]; ok {
			return val, true
		}
		keys := make([]string, 0, len(v))
		for k := range v {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			if val, ok := searchTree(v[k], key); ok {
				return val, true
			}
		}
	case []interface{}:
		for _, item := range v {
			if val, ok := searchTree(item, key); ok {
				return val, true
			}
		}
	}
	return nil, false
}

// cacheFile is the on-disk YAML representation of the catalog.
type cacheFile struct {
	Version     int       `yaml:"version"`
	RefreshedAt time.Time `yaml:"refreshed_at,omitempty"`
	Devices     []*Device `yaml:"devices"`
}

// Save writes the catalog to path as YAML, creating parent directories as
// needed. The file is written with user-only permissions.
func (c *Catalog) Save(path string) error {
	c.mu.RLock()
	cache := cacheFile{
		Version:     1,
		RefreshedAt: c.refreshedAt,
		Devices:     make([]*Device, 0, len(c.devices)),
	}
	for _, dev := range c.devices {
		cache.Devices = append(cache.Devices, dev)
	}
	c.mu.RUnlock()

	sort.Slice(cache.Devices, func(i, j int) bool { return cache.Devices[i].ID < cache.Devices[j].ID })

	data, err := yaml.Marshal(&cache)
	if err != nil {
		return fmt.Errorf("failed to marshal catalog cache: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("failed to create cache directory: %w", err)
	}

	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("failed to write catalog cache: %w", err)
	}

	return nil
}

// Load replaces the catalog contents with a previously saved YAML cache.
func (c *Catalog) Load(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read catalog cache: %w", err)
	}

	var cache cacheFile
	if err := yaml.Unmarshal(data, &cache); err != nil {
		return fmt.Errorf("failed to parse catalog cache: %w", err)
	}

	devices := make(map[string]*Device, len(cache.Devices))
	for _, dev := range cache.Devices {
		if dev.ID == "" {
			continue
		}
		devices[dev.ID] = dev
	}

	c.mu.Lock()
	c.devices = devices
	c.refreshedAt = cache.RefreshedAt
	c.mu.Unlock()

	return nil
}
