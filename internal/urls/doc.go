// Package urls holds the external documentation links printed by
// troubleshooting hints, so they can be updated in one place.
//
// Usage:
//
//	import "github.com/muurk/lpac-console/internal/urls"
//
//	fmt.Printf("Install lpac first, see: %s\n", urls.LpacProject)
package urls
