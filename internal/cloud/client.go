package cloud

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/outletsync/outletsync/internal/catalog"
	"github.com/outletsync/outletsync/internal/logging"
	"github.com/outletsync/outletsync/internal/reconcile"
)

const (
	// DefaultTimeout is the default HTTP request timeout
	DefaultTimeout = 10 * time.Second

	deviceListPath   = "/v1/device/list"
	deviceStatusPath = "/v1/device/status"
)

// Client is the HTTP adapter for the vendor cloud API. It implements the
// engine's LiveGateway (status reads) and the catalog Source (device list),
// and can also serve as a CommandGateway for setups where the WebSocket
// dispatch channel is unavailable.
//
// The client performs exactly one round-trip per call: transport-level
// retries are deliberately out of scope and left to the caller.
type Client struct {
	// BaseURL is the regional API endpoint (e.g., "https://eu-api.example.com")
	BaseURL string

	// Token is the OAuth2 access token, acquired out-of-band
	Token string

	// HTTPClient is the underlying HTTP client
	HTTPClient *http.Client
}

// NewClient creates a cloud API client for the given endpoint and token.
func NewClient(baseURL string, token string) *Client {
	return &Client{
		BaseURL:    strings.TrimRight(baseURL, "/"),
		Token:      token,
		HTTPClient: &http.Client{Timeout: DefaultTimeout},
	}
}

// SetTimeout sets the HTTP request timeout
func (c *Client) SetTimeout(timeout time.Duration) {
	c.HTTPClient.Timeout = timeout
}

// envelope is the vendor's JSON response wrapper. A non-zero error code
// carries the vendor message in msg.
type envelope struct {
	Error int             `json:"error"`
	Msg   string          `json:"msg"`
	Data  json.RawMessage `json:"data"`
}

// deviceRecord is the vendor's device list entry.
type deviceRecord struct {
	DeviceID    string                 `json:"deviceid"`
	Name        string                 `json:"name"`
	Online      bool                   `json:"online"`
	MultiOutlet bool                   `json:"multiOutlet"`
	OutletCount int                    `json:"outletCount"`
	Extra       map[string]interface{} `json:"extra"`
}

// statusData is the data payload of a status read.
type statusData struct {
	Params map[string]interface{} `json:"params"`
}

// doJSON performs one request, unwraps the vendor envelope, and decodes the
// data payload into out (which may be nil for write-style calls).
func (c *Client) doJSON(method string, path string, query url.Values, body io.Reader, out interface{}) error {
	endpoint := c.BaseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	req, err := http.NewRequest(method, endpoint, body)
	if err != nil {
		return fmt.Errorf("failed to create %s request: %w", method, err)
	}
	req.Header.Set("Authorization", "Bearer "+c.Token)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s failed: %w", method, path, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		logging.LogAPIRequest(method, path, resp.StatusCode, -1)
		return fmt.Errorf("%s %s: unexpected status code %d", method, path, resp.StatusCode)
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}

	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return fmt.Errorf("failed to parse response envelope: %w", err)
	}

	logging.LogAPIRequest(method, path, resp.StatusCode, env.Error)

	if env.Error != 0 {
		return &reconcile.RemoteError{Code: env.Error, Message: env.Msg}
	}

	if out != nil && len(env.Data) > 0 {
		if err := json.Unmarshal(env.Data, out); err != nil {
			return fmt.Errorf("failed to parse response data: %w", err)
		}
	}

	return nil
}

// ListDevices implements catalog.Source using the vendor device list.
func (c *Client) ListDevices() ([]*catalog.Device, error) {
	var data struct {
		Devices []deviceRecord `json:"devices"`
	}
	if err := c.doJSON(http.MethodGet, deviceListPath, nil, nil, &data); err != nil {
		return nil, err
	}

	devices := make([]*catalog.Device, 0, len(data.Devices))
	for _, rec := range data.Devices {
		devices = append(devices, &catalog.Device{
			ID:          rec.DeviceID,
			Name:        rec.Name,
			Online:      rec.Online,
			MultiOutlet: rec.MultiOutlet,
			OutletCount: rec.OutletCount,
			Extra:       rec.Extra,
		})
	}
	return devices, nil
}

// Snapshot fetches the current value of all parameters for a device.
func (c *Client) Snapshot(deviceID string) (*reconcile.Snapshot, error) {
	params, err := c.readStatus(deviceID, "")
	if err != nil {
		return nil, err
	}
	return snapshotFromParams(params), nil
}

// ReadParameter fetches the current value of a single parameter. For
// multi-outlet devices (outlet >= 0) the outlet list is queried and the
// requested outlet's value extracted; absent values read as nil.
func (c *Client) ReadParameter(deviceID string, outlet int, param string) (interface{}, error) {
	if outlet < 0 {
		params, err := c.readStatus(deviceID, param)
		if err != nil {
			return nil, err
		}
		return params[param], nil
	}

	params, err := c.readStatus(deviceID, "switches")
	if err != nil {
		return nil, err
	}
	snap := snapshotFromParams(params)
	idx := snap.OutletIndex(outlet)
	if idx < 0 {
		return nil, nil
	}
	return snap.Outlets[idx].Params[param], nil
}

// readStatus performs one status read. An empty selector fetches all
// parameters; otherwise selector is a comma-separated parameter list.
func (c *Client) readStatus(deviceID string, selector string) (map[string]interface{}, error) {
	query := url.Values{}
	query.Set("deviceid", deviceID)
	if selector != "" {
		query.Set("params", selector)
	}

	var data statusData
	if err := c.doJSON(http.MethodGet, deviceStatusPath, query, nil, &data); err != nil {
		return nil, err
	}
	if data.Params == nil {
		data.Params = map[string]interface{}{}
	}
	return data.Params, nil
}

// Submit implements CommandGateway over plain HTTP, for setups where the
// WebSocket dispatch channel is unavailable. The payload is posted as a
// partial status update.
func (c *Client) Submit(deviceID string, payload *reconcile.WritePayload) error {
	body := struct {
		DeviceID string                 `json:"deviceid"`
		Params   map[string]interface{} `json:"params"`
	}{
		DeviceID: deviceID,
		Params:   payloadParams(payload),
	}

	data, err := json.Marshal(&body)
	if err != nil {
		return fmt.Errorf("failed to marshal status update: %w", err)
	}

	return c.doJSON(http.MethodPost, deviceStatusPath, nil, strings.NewReader(string(data)), nil)
}

// payloadParams renders a write payload as the vendor params object. The
// outlet list travels under the "switches" key, each entry carrying its
// outlet index alongside the parameter values, mirroring the status read
// format.
func payloadParams(payload *reconcile.WritePayload) map[string]interface{} {
	if len(payload.Outlets) > 0 {
		switches := make([]interface{}, 0, len(payload.Outlets))
		for _, o := range payload.Outlets {
			entry := map[string]interface{}{"outlet": o.Outlet}
			for k, v := range o.Params {
				entry[k] = v
			}
			switches = append(switches, entry)
		}
		return map[string]interface{}{"switches": switches}
	}
	return payload.Params
}

// snapshotFromParams converts a vendor params object into a Snapshot. A
// "switches" list of outlet objects becomes the ordered outlet list; all
// top-level keys (including "switches" itself) stay visible as flat params
// so validation on flat devices sees the full namespace.
func snapshotFromParams(params map[string]interface{}) *reconcile.Snapshot {
	snap := &reconcile.Snapshot{Params: params}

	raw, ok := params["switches"].([]interface{})
	if !ok {
		return snap
	}

	for _, item := range raw {
		entry, ok := item.(map[string]interface{})
		if !ok {
			continue
		}
		outlet, ok := toOutletIndex(entry["outlet"])
		if !ok {
			continue
		}
		state := reconcile.OutletState{Outlet: outlet, Params: map[string]interface{}{}}
		for k, v := range entry {
			if k == "outlet" {
				continue
			}
			state.Params[k] = v
		}
		snap.Outlets = append(snap.Outlets, state)
	}
	snap.SortOutlets()

	return snap
}

// toOutletIndex extracts an outlet index from a decoded JSON value.
func toOutletIndex(v interface{}) (int, bool) {
	switch n := v.(type) {
	case float64:
		return int(n), true
	case int:
		return n, true
	default:
		return 0, false
	}
}
