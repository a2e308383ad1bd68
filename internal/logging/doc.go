// Package logging provides structured logging for lpac-console.
//
// This package wraps a zap logger with convenience functions. Logging is
// silent by default so that CLI output and the TUI stay clean; it is enabled
// with --log-level or the LPAC_CONSOLE_LOG_LEVEL environment variable.
//
// # Log Levels
//
//   - Debug: every API request and response
//   - Info: workflow state changes, view loads
//   - Warn: failed requests, reload failures after a successful action
//   - Error: unexpected failures
//
// # Specialized Logging
//
// API traffic:
//
//	logging.LogRequest("GET", "list_profiles", url)
//	logging.LogResponse("list_profiles", 200, elapsed, nil)
//
// Workflow transitions, always tagged with the operation id:
//
//	logging.LogTransition(op.ID, op.Name, "confirming", "executing")
//
// # Configuration
//
//	if err := logging.Initialize(level, logFile); err != nil {
//	    return err
//	}
//	defer logging.Sync()
//
// When a log file is given the level is written without colour codes.
//
// # Thread Safety
//
// All logging functions are safe for concurrent use. Initialize and SetLogger
// must be called before goroutines start logging.
package logging
