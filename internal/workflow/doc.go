// Package workflow drives state-changing actions against the eUICC.
//
// Every action is an Operation: a single request to one action endpoint,
// together with the prompt used to confirm it and the messages shown
// afterwards. A Controller admits one operation at a time and moves it
// through
//
//	Idle → Confirming → Executing → Succeeded|Failed → Idle
//
// Nothing is sent until the user has confirmed, and a confirmed operation
// is sent exactly once. Interactive surfaces (the TUI) call Begin, Accept,
// Execute and Resolve themselves; line-oriented surfaces (the CLI) hand a
// Feedback to Run.
package workflow
