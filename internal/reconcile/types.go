package reconcile

import (
	"fmt"
	"sort"
)

// DesiredChange is one caller-requested target value. For flat devices only
// Param and Value are meaningful; for multi-outlet devices Outlet addresses
// the channel the parameter lives on.
type DesiredChange struct {
	Outlet int
	Param  string
	Value  interface{}
}

// Set builds a desired change for a flat device.
func Set(param string, value interface{}) DesiredChange {
	return DesiredChange{Outlet: -1, Param: param, Value: value}
}

// OutletSet builds a desired change for one outlet of a multi-outlet device.
func OutletSet(outlet int, param string, value interface{}) DesiredChange {
	return DesiredChange{Outlet: outlet, Param: param, Value: value}
}

// ChangeRecord describes one parameter whose desired value differs from the
// live value. Outlet is -1 for flat devices.
type ChangeRecord struct {
	Param  string
	Outlet int
	Old    interface{}
	New    interface{}
}

// String returns a human-readable description of the change
func (r ChangeRecord) String() string {
	if r.Outlet >= 0 {
		return fmt.Sprintf("outlet %d %q: %s -> %s", r.Outlet, r.Param, formatValue(r.Old), formatValue(r.New))
	}
	return fmt.Sprintf("%q: %s -> %s", r.Param, formatValue(r.Old), formatValue(r.New))
}

// OutletState is the parameter set of a single outlet. Gateways translate it
// to and from the vendor's flattened wire entries.
type OutletState struct {
	Outlet int
	Params map[string]interface{}
}

// Snapshot is a device's live state as last read from the remote API.
// For flat devices Params is populated; for multi-outlet devices Outlets is
// populated, ordered by outlet index. Snapshots are fetched fresh before
// every reconciliation and never reused across calls.
type Snapshot struct {
	Params  map[string]interface{}
	Outlets []OutletState
}

// OutletIndex returns the position of an outlet within the snapshot's outlet
// list, or -1 if the device does not report that outlet.
func (s *Snapshot) OutletIndex(outlet int) int {
	for i, o := range s.Outlets {
		if o.Outlet == outlet {
			return i
		}
	}
	return -1
}

// SortOutlets orders the outlet list by outlet index. Gateways call this
// after decoding so payload construction is deterministic.
func (s *Snapshot) SortOutlets() {
	sort.Slice(s.Outlets, func(i, j int) bool { return s.Outlets[i].Outlet < s.Outlets[j].Outlet })
}

// WritePayload is the minimal batched write for one device. For flat devices
// Params carries only the parameters that actually change. For multi-outlet
// devices Outlets carries the full updated outlet list, since the remote API
// replaces the whole list in one request.
type WritePayload struct {
	Params  map[string]interface{}
	Outlets []OutletState
}

// LiveGateway reads current parameter values from the remote side. Snapshot
// fetches all parameters; ReadParameter queries a single parameter (outlet is
// negative for flat devices). Implementations surface vendor failures as
// *RemoteError and everything else as opaque transport errors.
type LiveGateway interface {
	Snapshot(deviceID string) (*Snapshot, error)
	ReadParameter(deviceID string, outlet int, param string) (interface{}, error)
}

// CommandGateway submits a write payload for a device. A vendor rejection is
// returned as *RemoteError; any other error is a transport failure.
type CommandGateway interface {
	Submit(deviceID string, payload *WritePayload) error
}

// RemoteError is a non-zero error code reported by the vendor API, carrying
// the vendor's message verbatim.
type RemoteError struct {
	Code    int
	Message string
}

// Error implements the error interface
func (e *RemoteError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("remote error %d", e.Code)
	}
	return fmt.Sprintf("remote error %d: %s", e.Code, e.Message)
}
