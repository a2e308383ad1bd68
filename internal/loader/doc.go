// Package loader fetches the data behind each console view.
//
// A View names its read endpoints. Load issues all of them at once with an
// errgroup, waits for every one, and joins the results into a Snapshot. A
// failed read never aborts the load: its envelope is left empty and the
// cause is kept so the view can report it inline next to whatever did load.
//
// When a view requires lpac, the check_lpac read decides availability. An
// unavailable snapshot hides every other read behind an unavailable error.
//
// Loader also remembers the last loaded view; Reload re-fetches it after an
// action succeeds.
package loader
