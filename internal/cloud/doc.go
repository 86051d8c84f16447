// Package cloud contains the gateway adapters for the vendor cloud API.
//
// The reconciliation engine consumes two narrow contracts: a live-state
// gateway (read one, several, or all parameters of a device) and a command
// gateway (submit one batched write). This package implements both against
// the vendor's HTTP API and WebSocket dispatch channel:
//
//   - Client: HTTP adapter. Serves live-state reads and the device list for
//     the catalog, and can double as a command gateway where the WebSocket
//     channel is unavailable.
//   - Dispatch: WebSocket adapter. The preferred command gateway; sends one
//     update frame per write and waits for its acknowledgement.
//
// Vendor failures (non-zero error code in the response envelope or
// acknowledgement frame) surface as *reconcile.RemoteError with the vendor
// message verbatim. Everything below that level is returned as an opaque
// transport error which the engine passes through uninterpreted.
//
// Authentication flows are out of scope: the access token is acquired
// elsewhere and supplied via configuration. The adapters also perform no
// transport-level retries; each call is exactly one round-trip.
package cloud
