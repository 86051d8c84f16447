package topology

import "github.com/outletsync/outletsync/internal/catalog"

// Topology classifies how a device exposes its parameters.
type Topology int

const (
	// Flat devices expose a single parameter namespace (e.g., a one-gang
	// switch with a top-level "switch" parameter).
	Flat Topology = iota

	// MultiOutlet devices partition parameters by outlet index (e.g., a
	// four-channel power strip addressed as outlet 0..3).
	MultiOutlet
)

// String returns a human-readable name for the topology
func (t Topology) String() string {
	switch t {
	case Flat:
		return "flat"
	case MultiOutlet:
		return "multi-outlet"
	default:
		return "unknown"
	}
}

// Resolve classifies a device from its cached metadata. The capability flag
// is the only input: absent or false means Flat. Resolution is pure and never
// touches the network; the result is stable for the device's lifetime within
// a session.
func Resolve(dev *catalog.Device) Topology {
	if dev != nil && dev.MultiOutlet {
		return MultiOutlet
	}
	return Flat
}
