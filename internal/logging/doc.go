// Package logging provides structured logging for wifiprov.
//
// This package wraps a zap logger with convenience functions for the logging
// patterns used by the provisioning controller, the portal client and the
// portal simulator.
//
// # Log Levels
//
//   - Debug: Poll ticks, raw response bodies, skipped or coalesced requests
//   - Info: State transitions, scans, connect submissions, navigation
//   - Warn: Transport failures, malformed responses, backoff
//   - Error: Startup failures
//
// # Silent by Default
//
// The CLI and the TUI share the terminal with the logger, so logging is
// disabled unless a level is passed explicitly or WIFIPROV_LOG_LEVEL is set:
//
//	if err := logging.Initialize(logLevel); err != nil {
//	    return err
//	}
//	defer logging.Sync()
//
// Output goes to stderr in console format.
//
// # Credentials
//
// Passphrases must never reach the logger. Use LogCredentials, which records
// only the SSID, whether a username was supplied and the passphrase length.
package logging
