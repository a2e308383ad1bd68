package view

import (
	"fmt"

	"github.com/muurk/lpac-console/internal/gateway"
	"github.com/muurk/lpac-console/internal/loader"
)

// Branch is the top-level shape a view renders as
type Branch int

const (
	BranchUnavailable Branch = iota
	BranchError
	BranchEmpty
	BranchReady
)

func (b Branch) String() string {
	switch b {
	case BranchUnavailable:
		return "unavailable"
	case BranchError:
		return "error"
	case BranchEmpty:
		return "empty"
	case BranchReady:
		return "ready"
	default:
		return fmt.Sprintf("Branch(%d)", b)
	}
}

// Selection is the chosen branch with the heading and text to show for it.
// Title and Message are empty for BranchReady.
type Selection struct {
	Branch  Branch
	Title   string
	Message string
	Hint    string
}

const (
	unavailableTitle   = "lpac Not Installed"
	unavailableMessage = "The lpac binary is not installed or not executable. Please install lpac package first."
)

var errorTitles = map[string]string{
	loader.Dashboard.Name:     "Failed to Load Dashboard",
	loader.Chip.Name:          "Failed to Get Chip Information",
	loader.Profiles.Name:      "Failed to Load Profiles",
	loader.Notifications.Name: "Failed to Load Notifications",
	loader.About.Name:         "Failed to Load System Information",
}

// SelectBranch decides how a snapshot renders. Unavailable wins over error,
// and error wins over empty.
func SelectBranch(s *loader.Snapshot) Selection {
	if !s.Available {
		return Selection{
			Branch:  BranchUnavailable,
			Title:   unavailableTitle,
			Message: unavailableMessage,
			Hint:    gateway.Hint(gateway.NewUnavailableError()),
		}
	}

	if err := s.PrimaryErr(); err != nil {
		title, ok := errorTitles[s.View.Name]
		if !ok {
			title = "Failed to Load " + s.View.Title
		}
		return Selection{
			Branch:  BranchError,
			Title:   title,
			Message: gateway.ShortMessage(err),
			Hint:    gateway.Hint(err),
		}
	}

	switch s.View.Name {
	case loader.Profiles.Name:
		if profiles, _ := s.Profiles(); len(profiles) == 0 {
			return Selection{
				Branch:  BranchEmpty,
				Title:   "No Profiles",
				Message: "No profiles installed on the eUICC. You can download a new profile from the Download view.",
			}
		}
	case loader.Notifications.Name:
		if notes, _ := s.Notifications(); len(notes) == 0 {
			return Selection{
				Branch:  BranchEmpty,
				Title:   "No pending notifications",
				Message: "Your eUICC has no pending notifications from SM-DP+ servers.",
			}
		}
	case loader.Chip.Name:
		if chip, _ := s.Chip(); chip.IsZero() {
			return Selection{
				Branch:  BranchEmpty,
				Title:   "No Chip Information Available",
				Message: "Unable to retrieve chip information. Please check if the eUICC chip is properly connected.",
			}
		}
	}

	return Selection{Branch: BranchReady}
}
