package reconcile

import (
	"errors"
	"fmt"
	"testing"
)

func TestOutcomeString(t *testing.T) {
	tests := []struct {
		outcome Outcome
		want    string
	}{
		{AlreadyConverged, "already converged"},
		{Applied, "applied"},
		{ValidationFailed, "validation failed"},
		{VerificationFailed, "verification failed"},
		{RemoteRejected, "remote rejected"},
		{TransportFailed, "transport failed"},
	}

	for _, tt := range tests {
		if got := tt.outcome.String(); got != tt.want {
			t.Errorf("Outcome(%d).String() = %q, want %q", tt.outcome, got, tt.want)
		}
	}
}

func TestResultConverged(t *testing.T) {
	tests := []struct {
		outcome Outcome
		want    bool
	}{
		{AlreadyConverged, true},
		{Applied, true},
		{ValidationFailed, false},
		{VerificationFailed, false},
		{RemoteRejected, false},
		{TransportFailed, false},
	}

	for _, tt := range tests {
		res := &Result{Outcome: tt.outcome}
		if got := res.Converged(); got != tt.want {
			t.Errorf("Converged() for %v = %v, want %v", tt.outcome, got, tt.want)
		}
	}
}

func TestGatewayResultClassification(t *testing.T) {
	remote := &RemoteError{Code: 400, Message: "bad params"}
	res := gatewayResult(remote, nil)
	if res.Outcome != RemoteRejected {
		t.Errorf("Outcome = %v, want RemoteRejected", res.Outcome)
	}
	if res.Code != 400 || res.RemoteMessage != "bad params" {
		t.Errorf("Code/RemoteMessage = %d/%q, want 400/bad params", res.Code, res.RemoteMessage)
	}

	// A wrapped rejection still classifies as RemoteRejected
	wrapped := fmt.Errorf("submit failed: %w", remote)
	res = gatewayResult(wrapped, nil)
	if res.Outcome != RemoteRejected {
		t.Errorf("Outcome for wrapped error = %v, want RemoteRejected", res.Outcome)
	}
	if res.Code != 400 {
		t.Errorf("Code for wrapped error = %d, want 400", res.Code)
	}

	plain := errors.New("dial tcp: timeout")
	res = gatewayResult(plain, nil)
	if res.Outcome != TransportFailed {
		t.Errorf("Outcome = %v, want TransportFailed", res.Outcome)
	}
	if res.Err == nil {
		t.Error("Err = nil, want the transport error")
	}
}

func TestChangeRecordString(t *testing.T) {
	flat := ChangeRecord{Param: "switch", Outlet: -1, Old: "on", New: "off"}
	if got, want := flat.String(), `"switch": on -> off`; got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}

	multi := ChangeRecord{Param: "switch", Outlet: 2, Old: "off", New: "on"}
	if got, want := multi.String(), `outlet 2 "switch": off -> on`; got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}
}

func TestRemoteErrorError(t *testing.T) {
	err := &RemoteError{Code: 503, Message: "device offline"}
	got := err.Error()
	if got == "" {
		t.Fatal("Error() returned empty string")
	}
	var re *RemoteError
	if !errors.As(error(err), &re) {
		t.Error("errors.As failed to match *RemoteError")
	}
}
