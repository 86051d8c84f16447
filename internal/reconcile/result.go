package reconcile

import (
	"errors"
	"fmt"
)

// Outcome is the tagged result of one reconciliation pass.
type Outcome int

const (
	// AlreadyConverged means every desired value matched the live state;
	// zero writes were issued. This is a normal outcome, not an error.
	AlreadyConverged Outcome = iota

	// Applied means the write was accepted and every changed parameter was
	// verified to have converged.
	Applied

	// ValidationFailed means the batch was rejected before any write was
	// sent (unknown parameter, unknown outlet, or unknown device).
	ValidationFailed

	// VerificationFailed means the write was accepted but a changed
	// parameter did not read back as the desired value within the retry
	// budget.
	VerificationFailed

	// RemoteRejected means the vendor API reported a non-zero error code.
	RemoteRejected

	// TransportFailed means a gateway failed below the vendor API level;
	// the underlying error is carried opaquely in Err.
	TransportFailed
)

// String returns a human-readable name for the outcome
func (o Outcome) String() string {
	switch o {
	case AlreadyConverged:
		return "already converged"
	case Applied:
		return "applied"
	case ValidationFailed:
		return "validation failed"
	case VerificationFailed:
		return "verification failed"
	case RemoteRejected:
		return "remote rejected"
	case TransportFailed:
		return "transport failed"
	default:
		return fmt.Sprintf("Outcome(%d)", o)
	}
}

// ValidationReason narrows a ValidationFailed outcome.
type ValidationReason int

const (
	ValidationNone ValidationReason = iota
	// UnknownDevice: the device ID is not in the catalog.
	UnknownDevice
	// UnknownParameter: a desired parameter is not present in the live snapshot.
	UnknownParameter
	// OutletNotFound: a desired outlet index is not reported by the device.
	OutletNotFound
)

// String returns a human-readable name for the validation reason
func (r ValidationReason) String() string {
	switch r {
	case UnknownDevice:
		return "unknown device"
	case UnknownParameter:
		return "unknown parameter"
	case OutletNotFound:
		return "outlet not found"
	default:
		return "none"
	}
}

// Result carries the outcome of a reconciliation pass along with the
// accumulated human-readable message trail (change descriptions, "already
// set" notices, advisories) for audit logging.
type Result struct {
	Outcome  Outcome
	Messages []string

	// Changes holds the computed diff. Populated for Applied and
	// VerificationFailed outcomes (the diff that was written).
	Changes []ChangeRecord

	// ValidationFailed details
	Reason    ValidationReason
	BadParam  string
	BadOutlet int

	// VerificationFailed details
	FailedParam string
	Expected    interface{}
	Observed    interface{}

	// RemoteRejected details (vendor error code and message)
	Code          int
	RemoteMessage string

	// TransportFailed underlying error, passed through uninterpreted
	Err error
}

// Converged reports whether the device ended up in the desired state.
func (r *Result) Converged() bool {
	return r.Outcome == AlreadyConverged || r.Outcome == Applied
}

func (r *Result) addMessage(format string, args ...interface{}) {
	r.Messages = append(r.Messages, fmt.Sprintf(format, args...))
}

func validationResult(reason ValidationReason, param string, outlet int, messages []string) *Result {
	res := &Result{
		Outcome:   ValidationFailed,
		Reason:    reason,
		BadParam:  param,
		BadOutlet: outlet,
		Messages:  messages,
	}
	switch reason {
	case UnknownParameter:
		res.addMessage("unknown parameter %q", param)
	case OutletNotFound:
		res.addMessage("outlet %d not found on device", outlet)
	case UnknownDevice:
		res.addMessage("device not found in catalog")
	}
	return res
}

// gatewayResult classifies a gateway error into RemoteRejected or
// TransportFailed, preserving the message trail accumulated so far.
func gatewayResult(err error, messages []string) *Result {
	var remote *RemoteError
	if errors.As(err, &remote) {
		res := &Result{
			Outcome:       RemoteRejected,
			Code:          remote.Code,
			RemoteMessage: remote.Message,
			Messages:      messages,
		}
		res.addMessage("remote rejected: code %d: %s", remote.Code, remote.Message)
		return res
	}
	res := &Result{
		Outcome:  TransportFailed,
		Err:      err,
		Messages: messages,
	}
	res.addMessage("transport failure: %v", err)
	return res
}
