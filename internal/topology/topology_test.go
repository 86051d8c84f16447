package topology

import (
	"testing"

	"github.com/outletsync/outletsync/internal/catalog"
)

func TestResolve(t *testing.T) {
	tests := []struct {
		name string
		dev  *catalog.Device
		want Topology
	}{
		{"nil device", nil, Flat},
		{"plain outlet", &catalog.Device{ID: "a"}, Flat},
		{"flag false", &catalog.Device{ID: "a", MultiOutlet: false}, Flat},
		{"flag set", &catalog.Device{ID: "a", MultiOutlet: true, OutletCount: 4}, MultiOutlet},
		{"flag set without count", &catalog.Device{ID: "a", MultiOutlet: true}, MultiOutlet},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Resolve(tt.dev); got != tt.want {
				t.Errorf("Resolve() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestTopologyString(t *testing.T) {
	if got, want := Flat.String(), "flat"; got != want {
		t.Errorf("Flat.String() = %q, want %q", got, want)
	}
	if got, want := MultiOutlet.String(), "multi-outlet"; got != want {
		t.Errorf("MultiOutlet.String() = %q, want %q", got, want)
	}
}
