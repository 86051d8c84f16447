// Package logging provides structured logging for outletsync.
//
// This package wraps zap logger with convenience functions for common logging
// patterns used throughout the engine and the gateway adapters. It provides
// both general logging functions and specialized functions for
// reconciliation-specific logging needs.
//
// # Log Levels
//
// The package supports standard log levels:
//   - Debug: Detailed debugging info (message trails, verification attempts)
//   - Info: Normal operations (API requests, dispatches, reconcile outcomes)
//   - Warn: Non-fatal issues (advisories, slow convergence)
//   - Error: Fatal issues (startup failures, critical errors)
//
// # Structured Logging
//
// All log functions use structured fields for queryability:
//
//	logging.Info("Device reconciled",
//	    zap.String("device_id", "10004b093a"),
//	    zap.String("outcome", "applied"),
//	)
//
// # Specialized Logging
//
// The package provides domain-specific logging functions:
//
//	logging.LogAPIRequest("GET", "/v1/device/status", 200, 0)
//	logging.LogDispatch(deviceID, sequence, "update_sent")
//	logging.LogReconcile(deviceID, "applied", 2, result.Messages)
//	logging.LogVerification(deviceID, "switch", 1, true)
//
// # Configuration
//
// Logging is silent by default so CLI output stays clean. Set
// OUTLETSYNC_LOG_LEVEL to enable it, or initialize explicitly:
//
//	if err := logging.Initialize("debug"); err != nil {
//	    log.Fatal(err)
//	}
//	defer logging.Sync()
//
// # Thread Safety
//
// All logging functions are safe for concurrent use. The underlying zap logger
// handles synchronization automatically.
package logging
