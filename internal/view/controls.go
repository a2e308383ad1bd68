package view

import (
	"github.com/muurk/lpac-console/internal/gateway"
	"github.com/muurk/lpac-console/internal/loader"
)

// Action identifies what a control triggers
type Action string

const (
	ActionEnable       Action = "enable"
	ActionDisable      Action = "disable"
	ActionRename       Action = "rename"
	ActionDelete       Action = "delete"
	ActionProcess      Action = "process"
	ActionRemove       Action = "remove"
	ActionProcessAll   Action = "process-all"
	ActionRemoveAll    Action = "remove-all"
	ActionDownload     Action = "download"
	ActionSaveSettings Action = "save-settings"
	ActionDiscover     Action = "discover"
	ActionFactoryReset Action = "factory-reset"
)

// Control is an action trigger offered to the user. Key is the keyboard
// shortcut used by the TUI.
type Control struct {
	Key         string
	Label       string
	Action      Action
	Destructive bool
}

// ProfileActions returns the controls for one profile. An enabled profile
// offers Disable and a disabled one offers Enable, never both.
func ProfileActions(p gateway.Profile) []Control {
	toggle := Control{Key: "e", Label: "Enable", Action: ActionEnable}
	if p.Enabled() {
		toggle = Control{Key: "e", Label: "Disable", Action: ActionDisable}
	}
	return []Control{
		toggle,
		{Key: "n", Label: "Rename", Action: ActionRename},
		{Key: "x", Label: "Delete", Action: ActionDelete, Destructive: true},
	}
}

// NotificationActions returns the controls for one notification
func NotificationActions(gateway.Notification) []Control {
	return []Control{
		{Key: "p", Label: "Process", Action: ActionProcess},
		{Key: "x", Label: "Remove", Action: ActionRemove, Destructive: true},
	}
}

// BulkNotificationActions returns the whole-list controls. Nothing is
// offered for an empty list.
func BulkNotificationActions(count int) []Control {
	if count <= 0 {
		return nil
	}
	return []Control{
		{Key: "P", Label: "Process All", Action: ActionProcessAll},
		{Key: "X", Label: "Remove All", Action: ActionRemoveAll, Destructive: true},
	}
}

// Actions returns the view-level controls of a snapshot. Controls only exist
// for a view in the ready branch, so an unavailable chip offers none.
func Actions(s *loader.Snapshot) []Control {
	if SelectBranch(s).Branch != BranchReady {
		return nil
	}

	switch s.View.Name {
	case loader.Notifications.Name:
		notes, _ := s.Notifications()
		return BulkNotificationActions(len(notes))
	case loader.Download.Name:
		return []Control{{Key: "d", Label: "Download Profile", Action: ActionDownload}}
	case loader.Settings.Name:
		return []Control{
			{Key: "s", Label: "Save Settings", Action: ActionSaveSettings},
			{Key: "f", Label: "Discover Profiles", Action: ActionDiscover},
			{Key: "R", Label: "Factory Reset", Action: ActionFactoryReset, Destructive: true},
		}
	}
	return nil
}

// ItemActions returns the controls for the list entry at index, or none
// when the view has no list or the index is out of range.
func ItemActions(s *loader.Snapshot, index int) []Control {
	if SelectBranch(s).Branch != BranchReady || index < 0 {
		return nil
	}

	switch s.View.Name {
	case loader.Profiles.Name:
		profiles, _ := s.Profiles()
		if index < len(profiles) {
			return ProfileActions(profiles[index])
		}
	case loader.Notifications.Name:
		notes, _ := s.Notifications()
		if index < len(notes) {
			return NotificationActions(notes[index])
		}
	}
	return nil
}

// Items returns the number of selectable list entries in a snapshot
func Items(s *loader.Snapshot) int {
	if SelectBranch(s).Branch != BranchReady {
		return 0
	}
	switch s.View.Name {
	case loader.Profiles.Name:
		profiles, _ := s.Profiles()
		return len(profiles)
	case loader.Notifications.Name:
		notes, _ := s.Notifications()
		return len(notes)
	}
	return 0
}

// Lookup finds the control bound to key in controls
func Lookup(controls []Control, key string) (Control, bool) {
	for _, c := range controls {
		if c.Key == key {
			return c, true
		}
	}
	return Control{}, false
}
