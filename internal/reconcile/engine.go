package reconcile

import (
	"fmt"
	"sort"
	"sync"

	"github.com/outletsync/outletsync/internal/catalog"
	"github.com/outletsync/outletsync/internal/logging"
	"github.com/outletsync/outletsync/internal/topology"
)

// Engine computes the minimal diff between desired and live device state,
// submits only the changed parameters, and verifies the remote side actually
// converged. Writes for the same device are serialized internally; two
// concurrent Reconcile calls for one device never interleave their
// fetch/write/verify pipelines.
type Engine struct {
	live LiveGateway
	cmd  CommandGateway
	cat  *catalog.Catalog

	verify VerificationOptions

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// New creates an engine over the given gateways and catalog, with default
// verification tuning.
func New(live LiveGateway, cmd CommandGateway, cat *catalog.Catalog) *Engine {
	return &Engine{
		live:   live,
		cmd:    cmd,
		cat:    cat,
		verify: DefaultVerificationOptions(),
		locks:  make(map[string]*sync.Mutex),
	}
}

// SetVerification replaces the verification tuning.
func (e *Engine) SetVerification(opts VerificationOptions) {
	e.verify = opts
}

// deviceLock returns the write lock for a device, creating it on first use.
func (e *Engine) deviceLock(deviceID string) *sync.Mutex {
	e.mu.Lock()
	defer e.mu.Unlock()

	lock, ok := e.locks[deviceID]
	if !ok {
		lock = &sync.Mutex{}
		e.locks[deviceID] = lock
	}
	return lock
}

// Reconcile drives one device toward the desired changes. The whole batch is
// validated against a fresh live snapshot before any write is sent; a single
// invalid entry aborts the batch with zero writes. Parameters already at
// their desired value are dropped from the write payload. If anything
// remains, it is submitted as one batched write and every changed parameter
// is then read back until it matches or the retry budget runs out.
func (e *Engine) Reconcile(deviceID string, changes []DesiredChange) *Result {
	dev := e.cat.Find(deviceID)
	if dev == nil {
		return e.logged(deviceID, validationResult(UnknownDevice, "", -1, nil))
	}
	topo := topology.Resolve(dev)

	lock := e.deviceLock(deviceID)
	lock.Lock()
	defer lock.Unlock()

	// Fresh snapshot of all parameters. Fetching everything (not just the
	// requested subset) is what lets validation detect unknown keys.
	snap, err := e.live.Snapshot(deviceID)
	if err != nil {
		return e.logged(deviceID, gatewayResult(err, nil))
	}

	// Validate the entire batch before touching the network again.
	if res := validateBatch(topo, snap, changes); res != nil {
		return e.logged(deviceID, res)
	}

	// Diff desired against live, in input order.
	var messages []string
	var records []ChangeRecord
	for _, ch := range changes {
		if isNumericText(ch.Value) {
			messages = append(messages, advisoryMessage(topo, ch))
		}

		live, haveLive := liveValue(topo, snap, ch)
		if haveLive && looseEqual(ch.Value, live) {
			messages = append(messages, alreadySetMessage(topo, ch))
			continue
		}

		rec := ChangeRecord{Param: ch.Param, Outlet: -1, Old: live, New: ch.Value}
		if topo == topology.MultiOutlet {
			rec.Outlet = ch.Outlet
		}
		records = append(records, rec)
		messages = append(messages, rec.String())
	}

	if len(records) == 0 {
		return e.logged(deviceID, &Result{Outcome: AlreadyConverged, Messages: messages})
	}

	payload := buildPayload(topo, snap, records)
	if err := e.cmd.Submit(deviceID, payload); err != nil {
		return e.logged(deviceID, gatewayResult(err, messages))
	}

	res := e.verifyChanges(deviceID, topo, records, messages)
	res.Changes = records
	return e.logged(deviceID, res)
}

// ReconcileMany reconciles several devices and aggregates the per-device
// results. A failure on one device never aborts the others.
func (e *Engine) ReconcileMany(batch map[string][]DesiredChange) map[string]*Result {
	ids := make([]string, 0, len(batch))
	for id := range batch {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	results := make(map[string]*Result, len(batch))
	for _, id := range ids {
		results[id] = e.Reconcile(id, batch[id])
	}
	return results
}

// validateBatch checks every desired change for addressability against the
// snapshot. The first invalid entry aborts the batch; nil means all valid.
func validateBatch(topo topology.Topology, snap *Snapshot, changes []DesiredChange) *Result {
	for _, ch := range changes {
		switch topo {
		case topology.Flat:
			if _, ok := snap.Params[ch.Param]; !ok {
				return validationResult(UnknownParameter, ch.Param, -1, nil)
			}
		case topology.MultiOutlet:
			if snap.OutletIndex(ch.Outlet) < 0 {
				return validationResult(OutletNotFound, ch.Param, ch.Outlet, nil)
			}
		}
	}
	return nil
}

// liveValue looks up the current value for a desired change. For multi-outlet
// devices a parameter the outlet has never reported reads as absent and is
// treated as a change.
func liveValue(topo topology.Topology, snap *Snapshot, ch DesiredChange) (interface{}, bool) {
	if topo == topology.Flat {
		v, ok := snap.Params[ch.Param]
		return v, ok
	}
	idx := snap.OutletIndex(ch.Outlet)
	if idx < 0 {
		return nil, false
	}
	v, ok := snap.Outlets[idx].Params[ch.Param]
	return v, ok
}

// buildPayload assembles the single batched write. Flat devices get exactly
// the changed parameters. Multi-outlet devices get the full outlet list with
// the changed values substituted, because the remote API replaces the whole
// list per request.
func buildPayload(topo topology.Topology, snap *Snapshot, records []ChangeRecord) *WritePayload {
	if topo == topology.Flat {
		params := make(map[string]interface{}, len(records))
		for _, rec := range records {
			params[rec.Param] = rec.New
		}
		return &WritePayload{Params: params}
	}

	outlets := make([]OutletState, len(snap.Outlets))
	for i, o := range snap.Outlets {
		params := make(map[string]interface{}, len(o.Params))
		for k, v := range o.Params {
			params[k] = v
		}
		outlets[i] = OutletState{Outlet: o.Outlet, Params: params}
	}
	for _, rec := range records {
		idx := snap.OutletIndex(rec.Outlet)
		outlets[idx].Params[rec.Param] = rec.New
	}
	return &WritePayload{Outlets: outlets}
}

func alreadySetMessage(topo topology.Topology, ch DesiredChange) string {
	if topo == topology.MultiOutlet {
		return fmt.Sprintf("outlet %d %q already set to %s", ch.Outlet, ch.Param, formatValue(ch.Value))
	}
	return fmt.Sprintf("%q already set to %s", ch.Param, formatValue(ch.Value))
}

func advisoryMessage(topo topology.Topology, ch DesiredChange) string {
	if topo == topology.MultiOutlet {
		return fmt.Sprintf("advisory: outlet %d %q value looks numeric but was supplied as text", ch.Outlet, ch.Param)
	}
	return fmt.Sprintf("advisory: %q value looks numeric but was supplied as text", ch.Param)
}

// logged emits the reconciliation outcome to the structured log and returns
// the result unchanged.
func (e *Engine) logged(deviceID string, res *Result) *Result {
	logging.LogReconcile(deviceID, res.Outcome.String(), len(res.Changes), res.Messages)
	return res
}
