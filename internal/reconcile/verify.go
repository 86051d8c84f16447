package reconcile

import (
	"errors"
	"time"

	"github.com/cenkalti/backoff"

	"github.com/outletsync/outletsync/internal/logging"
	"github.com/outletsync/outletsync/internal/topology"
)

// VerificationOptions configures how convergence verification behaves.
// Remote convergence is not instantaneous, so a single immediate read-back
// races with the device; verification instead polls with bounded retries and
// exponential backoff before declaring failure.
type VerificationOptions struct {
	// MaxRetries is the number of re-reads after the first attempt
	// Default: 3
	MaxRetries int

	// InitialDelay is the settle time before the first read-back
	// Default: 500ms
	InitialDelay time.Duration

	// RetryInterval is the starting delay between retries (doubled each
	// attempt up to MaxInterval)
	// Default: 1s
	RetryInterval time.Duration

	// MaxInterval caps the backoff delay between retries
	// Default: 5s
	MaxInterval time.Duration
}

// DefaultVerificationOptions returns sensible defaults for verification
func DefaultVerificationOptions() VerificationOptions {
	return VerificationOptions{
		MaxRetries:    3,
		InitialDelay:  500 * time.Millisecond,
		RetryInterval: 1 * time.Second,
		MaxInterval:   5 * time.Second,
	}
}

// errNotConverged marks a read-back that returned a value other than the
// desired one; it is retryable, unlike gateway errors.
var errNotConverged = errors.New("parameter has not converged")

// verifyChanges re-reads every changed parameter and confirms it matches the
// desired value under the loose-equality rule. The first parameter that
// fails to converge short-circuits with a VerificationFailed result naming
// the parameter, the expected value, and the last observed value.
func (e *Engine) verifyChanges(deviceID string, topo topology.Topology, records []ChangeRecord, messages []string) *Result {
	if e.verify.InitialDelay > 0 {
		time.Sleep(e.verify.InitialDelay)
	}

	for _, rec := range records {
		observed, err := e.verifyChange(deviceID, topo, rec)
		if err == nil {
			continue
		}
		if errors.Is(err, errNotConverged) {
			res := &Result{
				Outcome:     VerificationFailed,
				FailedParam: rec.Param,
				Expected:    rec.New,
				Observed:    observed,
				Messages:    messages,
			}
			res.addMessage("verification failed: %q expected %s, observed %s",
				rec.Param, formatValue(rec.New), formatValue(observed))
			return res
		}
		// Gateway error during read-back
		return gatewayResult(err, messages)
	}

	res := &Result{Outcome: Applied, Messages: messages}
	res.addMessage("all %d change(s) verified", len(records))
	return res
}

// verifyChange polls a single parameter until it reads back as the desired
// value or the retry budget is exhausted. It returns the last observed value
// together with errNotConverged when the device never converged, or the
// gateway error when a read-back itself failed.
func (e *Engine) verifyChange(deviceID string, topo topology.Topology, rec ChangeRecord) (interface{}, error) {
	outlet := -1
	if topo == topology.MultiOutlet {
		outlet = rec.Outlet
	}

	policy := backoff.NewExponentialBackOff()
	policy.InitialInterval = e.verify.RetryInterval
	policy.MaxInterval = e.verify.MaxInterval
	policy.MaxElapsedTime = 0
	policy.RandomizationFactor = 0

	var observed interface{}
	attempt := 0

	op := func() error {
		attempt++
		val, err := e.live.ReadParameter(deviceID, outlet, rec.Param)
		if err != nil {
			// Gateway failures are terminal for this pass
			return backoff.Permanent(err)
		}
		observed = val
		converged := looseEqual(rec.New, val)
		logging.LogVerification(deviceID, rec.Param, attempt, converged)
		if !converged {
			return errNotConverged
		}
		return nil
	}

	err := backoff.Retry(op, backoff.WithMaxRetries(policy, uint64(e.verify.MaxRetries)))
	return observed, err
}
