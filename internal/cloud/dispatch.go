package cloud

import (
	"fmt"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"

	"github.com/outletsync/outletsync/internal/logging"
	"github.com/outletsync/outletsync/internal/reconcile"
)

const (
	// Time allowed to establish the WebSocket connection
	dialWait = 10 * time.Second

	// Time allowed to write a frame to the peer
	writeWait = 10 * time.Second

	// Time allowed to wait for the acknowledgement of a frame
	ackWait = 15 * time.Second
)

// Dispatch is the WebSocket command channel to the vendor cloud. It
// implements the engine's CommandGateway: each Submit sends one update frame
// and blocks until the matching-sequence acknowledgement arrives.
//
// One frame is in flight at a time; Submit calls are serialized on the
// connection.
type Dispatch struct {
	// URL is the dispatch endpoint (e.g., "wss://eu-disp.example.com/api/ws")
	URL string

	// Token is the access token presented in the login frame
	Token string

	mu   sync.Mutex
	conn *websocket.Conn
	seq  atomic.Int64
}

// NewDispatch creates a dispatch channel for the given endpoint and token.
// The connection is established lazily on first Submit, or explicitly via
// Connect.
func NewDispatch(url string, token string) *Dispatch {
	return &Dispatch{URL: url, Token: token}
}

// frame is the wire format of dispatch messages in both directions. Inbound
// acknowledgements carry the sequence of the frame they answer and a vendor
// error code.
type frame struct {
	Action   string                 `json:"action,omitempty"`
	DeviceID string                 `json:"deviceid,omitempty"`
	Params   map[string]interface{} `json:"params,omitempty"`
	Token    string                 `json:"token,omitempty"`
	Sequence string                 `json:"sequence,omitempty"`
	Error    int                    `json:"error,omitempty"`
	Msg      string                 `json:"msg,omitempty"`
}

// Connect dials the dispatch endpoint and performs the login exchange.
// Calling Connect on an already connected channel is a no-op.
func (d *Dispatch) Connect() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.connectLocked()
}

func (d *Dispatch) connectLocked() error {
	if d.conn != nil {
		return nil
	}

	dialer := websocket.Dialer{HandshakeTimeout: dialWait}
	conn, _, err := dialer.Dial(d.URL, nil)
	if err != nil {
		return fmt.Errorf("failed to dial dispatch endpoint: %w", err)
	}

	login := frame{
		Action:   "login",
		Token:    d.Token,
		Sequence: d.nextSequence(),
	}

	ack, err := d.roundTrip(conn, &login)
	if err != nil {
		_ = conn.Close()
		return fmt.Errorf("dispatch login failed: %w", err)
	}
	if ack.Error != 0 {
		_ = conn.Close()
		return &reconcile.RemoteError{Code: ack.Error, Message: ack.Msg}
	}

	logging.LogDispatch("", login.Sequence, "login_ok")
	d.conn = conn
	return nil
}

// Close shuts the channel down. A closed channel reconnects on the next Submit.
func (d *Dispatch) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.conn == nil {
		return nil
	}
	err := d.conn.Close()
	d.conn = nil
	return err
}

// Submit sends one batched update frame for a device and waits for its
// acknowledgement. A non-zero vendor error code in the acknowledgement is
// returned as *reconcile.RemoteError.
func (d *Dispatch) Submit(deviceID string, payload *reconcile.WritePayload) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if err := d.connectLocked(); err != nil {
		return err
	}

	update := frame{
		Action:   "update",
		DeviceID: deviceID,
		Params:   payloadParams(payload),
		Sequence: d.nextSequence(),
	}

	logging.LogDispatch(deviceID, update.Sequence, "update_sent")

	ack, err := d.roundTrip(d.conn, &update)
	if err != nil {
		// The stream is unsynchronized after a failed exchange; drop the
		// connection so the next Submit starts clean.
		_ = d.conn.Close()
		d.conn = nil
		return err
	}

	if ack.Error != 0 {
		logging.LogDispatch(deviceID, update.Sequence, "update_rejected")
		return &reconcile.RemoteError{Code: ack.Error, Message: ack.Msg}
	}

	logging.LogDispatch(deviceID, update.Sequence, "update_acked")
	return nil
}

// roundTrip writes one frame and reads until the matching-sequence
// acknowledgement arrives. Unrelated frames (device state pushes, pings
// encoded as text) are skipped; the read deadline bounds the whole wait.
func (d *Dispatch) roundTrip(conn *websocket.Conn, out *frame) (*frame, error) {
	if err := conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
		return nil, fmt.Errorf("failed to set write deadline: %w", err)
	}
	if err := conn.WriteJSON(out); err != nil {
		return nil, fmt.Errorf("failed to write dispatch frame: %w", err)
	}

	if err := conn.SetReadDeadline(time.Now().Add(ackWait)); err != nil {
		return nil, fmt.Errorf("failed to set read deadline: %w", err)
	}

	for {
		var in frame
		if err := conn.ReadJSON(&in); err != nil {
			return nil, fmt.Errorf("failed to read dispatch acknowledgement: %w", err)
		}
		if in.Sequence == out.Sequence {
			return &in, nil
		}
		// Not ours; keep reading until the deadline fires
		logging.Debug("Skipping unrelated dispatch frame")
	}
}

// nextSequence returns a fresh sequence token. Millisecond timestamps alone
// can collide under rapid submission, so a monotonic counter is appended.
func (d *Dispatch) nextSequence() string {
	n := d.seq.Add(1)
	return strconv.FormatInt(time.Now().UnixMilli(), 10) + strconv.FormatInt(n%10, 10)
}
