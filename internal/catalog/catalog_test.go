package catalog

import (
	"errors"
	"path/filepath"
	"testing"
)

type stubSource struct {
	devices []*Device
	err     error
}

func (s *stubSource) ListDevices() ([]*Device, error) {
	return s.devices, s.err
}

func testDevices() []*Device {
	return []*Device{
		{
			ID:     "10004beef1",
			Name:   "desk lamp",
			Online: true,
			Extra: map[string]interface{}{
				"brandName": "SONOFF",
				"params": map[string]interface{}{
					"switch":    "on",
					"fwVersion": "3.5.1",
				},
			},
		},
		{
			ID:          "10004beef2",
			Name:        "power strip",
			Online:      false,
			MultiOutlet: true,
			OutletCount: 4,
			Extra: map[string]interface{}{
				"tags": []interface{}{
					map[string]interface{}{"room": "office"},
				},
			},
		},
	}
}

func TestRefreshAndFind(t *testing.T) {
	cat := New()
	if err := cat.Refresh(&stubSource{devices: testDevices()}); err != nil {
		t.Fatalf("Refresh() error = %v", err)
	}

	if got := cat.Len(); got != 2 {
		t.Fatalf("Len() = %d, want 2", got)
	}

	dev := cat.Find("10004beef1")
	if dev == nil {
		t.Fatal("Find() = nil, want device")
	}
	if dev.Name != "desk lamp" {
		t.Errorf("Name = %q, want desk lamp", dev.Name)
	}

	if cat.Find("missing") != nil {
		t.Error("Find() for unknown ID should return nil")
	}

	if cat.RefreshedAt().IsZero() {
		t.Error("RefreshedAt() is zero after a refresh")
	}
}

func TestRefreshErrorKeepsContents(t *testing.T) {
	cat := New()
	if err := cat.Refresh(&stubSource{devices: testDevices()}); err != nil {
		t.Fatalf("Refresh() error = %v", err)
	}

	err := cat.Refresh(&stubSource{err: errors.New("cloud unavailable")})
	if err == nil {
		t.Fatal("Refresh() error = nil, want failure")
	}
	if got := cat.Len(); got != 2 {
		t.Errorf("Len() = %d after failed refresh, want 2", got)
	}
}

func TestRefreshSkipsEmptyIDs(t *testing.T) {
	cat := New()
	src := &stubSource{devices: []*Device{
		{ID: "", Name: "ghost"},
		{ID: "real", Name: "real"},
	}}
	if err := cat.Refresh(src); err != nil {
		t.Fatalf("Refresh() error = %v", err)
	}
	if got := cat.Len(); got != 1 {
		t.Errorf("Len() = %d, want 1", got)
	}
}

func TestDevicesSorted(t *testing.T) {
	cat := New()
	src := &stubSource{devices: []*Device{
		{ID: "zz"}, {ID: "aa"}, {ID: "mm"},
	}}
	if err := cat.Refresh(src); err != nil {
		t.Fatalf("Refresh() error = %v", err)
	}

	list := cat.Devices()
	want := []string{"aa", "mm", "zz"}
	for i, id := range want {
		if list[i].ID != id {
			t.Errorf("Devices()[%d].ID = %q, want %q", i, list[i].ID, id)
		}
	}
}

func TestSearchParameter(t *testing.T) {
	cat := New()
	if err := cat.Refresh(&stubSource{devices: testDevices()}); err != nil {
		t.Fatalf("Refresh() error = %v", err)
	}

	tests := []struct {
		name     string
		key      string
		deviceID string
		want     interface{}
		found    bool
	}{
		{"top-level id", "id", "10004beef1", "10004beef1", true},
		{"top-level name", "name", "10004beef1", "desk lamp", true},
		{"top-level online", "online", "10004beef2", false, true},
		{"extra field", "brandName", "10004beef1", "SONOFF", true},
		{"nested param", "fwVersion", "10004beef1", "3.5.1", true},
		{"inside slice", "room", "10004beef2", "office", true},
		{"absent key", "voltage", "10004beef1", nil, false},
		{"unknown device", "name", "missing", nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, found := cat.SearchParameter(tt.key, tt.deviceID)
			if found != tt.found {
				t.Fatalf("found = %v, want %v", found, tt.found)
			}
			if got != tt.want {
				t.Errorf("value = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	cat := New()
	if err := cat.Refresh(&stubSource{devices: testDevices()}); err != nil {
		t.Fatalf("Refresh() error = %v", err)
	}

	path := filepath.Join(t.TempDir(), "cache", "catalog.yaml")
	if err := cat.Save(path); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	loaded := New()
	if err := loaded.Load(path); err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if got := loaded.Len(); got != 2 {
		t.Fatalf("Len() = %d after load, want 2", got)
	}

	strip := loaded.Find("10004beef2")
	if strip == nil {
		t.Fatal("Find() = nil after load")
	}
	if !strip.MultiOutlet || strip.OutletCount != 4 {
		t.Errorf("strip = %+v, want multi-outlet with 4 outlets", strip)
	}

	// Nested metadata survives the round trip
	if got, found := loaded.SearchParameter("brandName", "10004beef1"); !found || got != "SONOFF" {
		t.Errorf("SearchParameter after load = %v/%v, want SONOFF/true", got, found)
	}
}

func TestLoadMissingFile(t *testing.T) {
	cat := New()
	if err := cat.Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Error("Load() error = nil for missing file, want failure")
	}
}

func TestDeviceString(t *testing.T) {
	dev := &Device{ID: "abc", Name: "lamp", Online: true}
	if got := dev.String(); got == "" {
		t.Fatal("String() returned empty string")
	}

	offline := &Device{ID: "def", Name: "strip", MultiOutlet: true, OutletCount: 4}
	if got := offline.String(); got == "" {
		t.Fatal("String() returned empty string")
	}
}
