// Package reconcile implements the device parameter reconciliation engine.
//
// Given a desired partial state for a smart-switch or multi-outlet device,
// the engine determines the minimal set of changes against the device's
// last-known live state, submits only those changes, and verifies the remote
// side actually converged to the requested values.
//
// # Pipeline
//
// One Reconcile call is a strictly sequential pipeline:
//
//	fetch fresh snapshot -> validate whole batch -> diff -> batched write -> verify
//
// Validation is batch-atomic: every requested change must be addressable
// (known parameter for flat devices, known outlet index for multi-outlet
// devices) before any network write happens. A single invalid entry aborts
// the batch with zero writes sent.
//
// # Loose equality
//
// Desired and live values compare under an explicit loose rule: numeric
// values match by magnitude regardless of representation ("1" equals 1),
// everything else by canonical string form ("on" equals a non-string that
// prints as on). A numeric-looking string earns a non-fatal advisory in the
// message trail but is never blocked.
//
// # Outcomes
//
// Every pass returns a tagged Result rather than an error, so callers
// reconciling many devices can inspect and aggregate failures without
// aborting unrelated devices:
//
//	res := engine.Reconcile("10004b093a", []reconcile.DesiredChange{
//	    reconcile.Set("switch", "off"),
//	})
//	switch res.Outcome {
//	case reconcile.AlreadyConverged:
//	    // nothing to do, zero writes were issued
//	case reconcile.Applied:
//	    // write accepted and every change read back as desired
//	case reconcile.VerificationFailed:
//	    log.Printf("%s stuck at %v, wanted %v", res.FailedParam, res.Observed, res.Expected)
//	}
//
// # Concurrency
//
// Writes for the same device are serialized by an internal per-device lock;
// concurrent Reconcile calls for different devices proceed independently.
package reconcile
