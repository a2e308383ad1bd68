// Package ui provides terminal UI components for the lpac-console CLI.
//
// Components follow a "print once" pattern: they render styled output with
// Lipgloss and return, without taking over the terminal the way the TUI does.
//
// # Components
//
//   - Header: command banner showing the command and the router it targets
//   - Result: success, failure and warning boxes, built from a workflow.Outcome
//   - Spinner: indeterminate progress while an operation executes
//   - TerminalFeedback: the workflow.Feedback used by action commands
//   - FormatSnapshot: detailed, compact and json renderings of a loaded view
//
// # Confirmation
//
// TerminalFeedback prints a prompt box and reads the answer from its reader.
// Answers supplied on the command line (a nickname, the factory reset token,
// --remove) are consumed by the first prompt only, so a rejected answer falls
// back to reading the terminal instead of being re-submitted forever.
// Typed tokens are compared exactly; only the line terminator is stripped.
//
// # Logging Integration
//
// Logging is controlled by LPAC_CONSOLE_LOG_LEVEL. When unset, zap is silent
// and only the output of this package reaches the terminal.
package ui
