// Package tui implements the interactive console built on Bubble Tea.
//
// The console has two screens. The router picker lists saved routers and
// the results of an mDNS scan, or takes an address typed by hand. The
// console screen shows one tab per loader.View.
//
// # Data Flow
//
// Every tab switch or reload starts a loader.Load in a command. Results are
// tagged with a sequence number and only the latest one is rendered, so a
// slow read from a previous tab never overwrites the current one.
//
// Rendering follows view.SelectBranch: unavailable and error branches get a
// failure box with troubleshooting tips, empty lists a short message, and
// ready views their data plus the controls from view.Actions and
// view.ItemActions.
//
// # Actions
//
// A control key begins an operation on the workflow.Controller and opens a
// confirmation modal for its prompt. Accepting the modal dispatches the
// single request in a command; while it runs every key except ctrl+c is
// ignored. The outcome is shown as a toast, and a success that asks for it
// reloads the current tab.
//
// A confirmation that fails validation (a wrong factory reset token, an
// empty nickname) keeps the modal open with the error under the input.
//
// # Keys
//
//	tab, shift+tab, 1-7   switch views
//	↑/↓                   move the list cursor or settings row
//	←/→                   cycle the selected driver in settings
//	enter                 edit the download form or the default SM-DP+
//	r                     reload
//	esc                   back to the router picker
//	?                     help
//	q, ctrl+c             quit
package tui
