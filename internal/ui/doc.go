// Package ui provides terminal UI components for the wifiprov CLI.
//
// This package uses Lipgloss to render polished, non-interactive terminal
// output. The interactive front end lives in internal/tui; the components
// here follow a "print and move on" pattern for one-shot commands and for
// the headless connect flow.
//
// # Components
//
//   - Printer: writes headers, success boxes and error boxes to a writer
//   - ConsoleRenderer: a provision.Renderer that prints controller updates
//     as styled log lines
//   - Network rows: ranked scan results with colored signal bars
//   - Confirm: a typed confirmation prompt for destructive operations
//
// # Logging Integration
//
// This package expects logging to be controlled via the WIFIPROV_LOG_LEVEL
// environment variable. When unset, zap logging is silent so the curated
// output stays clean. Log output goes to stderr.
package ui
