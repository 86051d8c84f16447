package cloud

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/gorilla/websocket"

	"github.com/outletsync/outletsync/internal/reconcile"
)

var testUpgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// dispatchHandler decides the acknowledgement for each inbound frame.
type dispatchHandler func(in *frame) *frame

// newDispatchServer runs a WebSocket endpoint that acks login frames and
// delegates everything else to handle. It returns a Dispatch pointed at it.
func newDispatchServer(t *testing.T, logins *atomic.Int32, handle dispatchHandler) (*Dispatch, *httptest.Server) {
	t.Helper()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := testUpgrader.Upgrade(w, r, nil)
		if err != nil {
			t.Errorf("upgrade failed: %v", err)
			return
		}
		defer conn.Close()

		for {
			var in frame
			if err := conn.ReadJSON(&in); err != nil {
				return
			}

			var ack *frame
			if in.Action == "login" {
				if logins != nil {
					logins.Add(1)
				}
				ack = &frame{Sequence: in.Sequence}
			} else {
				ack = handle(&in)
			}
			if ack == nil {
				continue
			}
			if err := conn.WriteJSON(ack); err != nil {
				return
			}
		}
	}))
	t.Cleanup(server.Close)

	url := "ws" + strings.TrimPrefix(server.URL, "http")
	return NewDispatch(url, "token123"), server
}

func TestDispatchSubmit(t *testing.T) {
	var seen *frame
	d, _ := newDispatchServer(t, nil, func(in *frame) *frame {
		seen = in
		return &frame{Sequence: in.Sequence}
	})

	payload := &reconcile.WritePayload{Params: map[string]interface{}{"switch": "off"}}
	if err := d.Submit("10004beef1", payload); err != nil {
		t.Fatalf("Submit() error = %v", err)
	}
	defer d.Close()

	if seen == nil {
		t.Fatal("server saw no update frame")
	}
	if seen.Action != "update" {
		t.Errorf("action = %q, want update", seen.Action)
	}
	if seen.DeviceID != "10004beef1" {
		t.Errorf("deviceid = %q, want 10004beef1", seen.DeviceID)
	}
	if got := seen.Params["switch"]; got != "off" {
		t.Errorf("params switch = %v, want off", got)
	}
	if seen.Sequence == "" {
		t.Error("update frame carries no sequence")
	}
}

func TestDispatchSkipsUnrelatedFrames(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := testUpgrader.Upgrade(w, r, nil)
		if err != nil {
			t.Errorf("upgrade failed: %v", err)
			return
		}
		defer conn.Close()

		for {
			var in frame
			if err := conn.ReadJSON(&in); err != nil {
				return
			}
			if in.Action == "login" {
				conn.WriteJSON(&frame{Sequence: in.Sequence})
				continue
			}
			// Interleave a push before the real acknowledgement
			conn.WriteJSON(&frame{Action: "sysmsg", Sequence: "push-0001"})
			conn.WriteJSON(&frame{Sequence: in.Sequence})
		}
	}))
	t.Cleanup(server.Close)

	d := NewDispatch("ws"+strings.TrimPrefix(server.URL, "http"), "token123")
	defer d.Close()

	payload := &reconcile.WritePayload{Params: map[string]interface{}{"switch": "on"}}
	if err := d.Submit("10004beef1", payload); err != nil {
		t.Fatalf("Submit() error = %v", err)
	}
}

func TestDispatchSubmitRejected(t *testing.T) {
	d, _ := newDispatchServer(t, nil, func(in *frame) *frame {
		return &frame{Sequence: in.Sequence, Error: 503, Msg: "device offline"}
	})
	defer d.Close()

	payload := &reconcile.WritePayload{Params: map[string]interface{}{"switch": "off"}}
	err := d.Submit("10004beef1", payload)

	var remote *reconcile.RemoteError
	if !errors.As(err, &remote) {
		t.Fatalf("error type = %T, want *reconcile.RemoteError", err)
	}
	if remote.Code != 503 {
		t.Errorf("Code = %d, want 503", remote.Code)
	}
	if remote.Message != "device offline" {
		t.Errorf("Message = %q, want device offline", remote.Message)
	}
}

func TestDispatchLoginRejected(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := testUpgrader.Upgrade(w, r, nil)
		if err != nil {
			t.Errorf("upgrade failed: %v", err)
			return
		}
		defer conn.Close()

		var in frame
		if err := conn.ReadJSON(&in); err != nil {
			return
		}
		conn.WriteJSON(&frame{Sequence: in.Sequence, Error: 401, Msg: "token expired"})
	}))
	t.Cleanup(server.Close)

	d := NewDispatch("ws"+strings.TrimPrefix(server.URL, "http"), "stale")
	err := d.Connect()

	var remote *reconcile.RemoteError
	if !errors.As(err, &remote) {
		t.Fatalf("error type = %T, want *reconcile.RemoteError", err)
	}
	if remote.Code != 401 {
		t.Errorf("Code = %d, want 401", remote.Code)
	}
}

func TestDispatchReconnectsAfterClose(t *testing.T) {
	var logins atomic.Int32
	d, _ := newDispatchServer(t, &logins, func(in *frame) *frame {
		return &frame{Sequence: in.Sequence}
	})

	payload := &reconcile.WritePayload{Params: map[string]interface{}{"switch": "off"}}
	if err := d.Submit("10004beef1", payload); err != nil {
		t.Fatalf("first Submit() error = %v", err)
	}
	if err := d.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	if err := d.Submit("10004beef1", payload); err != nil {
		t.Fatalf("second Submit() error = %v", err)
	}
	defer d.Close()

	if got := logins.Load(); got != 2 {
		t.Errorf("logins = %d, want 2", got)
	}
}

func TestDispatchConnectTwiceIsNoop(t *testing.T) {
	var logins atomic.Int32
	d, _ := newDispatchServer(t, &logins, func(in *frame) *frame {
		return &frame{Sequence: in.Sequence}
	})
	defer d.Close()

	if err := d.Connect(); err != nil {
		t.Fatalf("Connect() error = %v", err)
	}
	if err := d.Connect(); err != nil {
		t.Fatalf("second Connect() error = %v", err)
	}
	if got := logins.Load(); got != 1 {
		t.Errorf("logins = %d, want 1", got)
	}
}
