package workflow

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/muurk/lpac-console/internal/gateway"
)

// FactoryResetToken must be typed exactly to confirm a factory reset
const FactoryResetToken = "RESET"

// ErrNothingPending short-circuits bulk notification actions on an empty list
var ErrNothingPending = errors.New("no pending notifications")

// Kind separates single-item actions from bulk ones
type Kind int

const (
	KindSingle Kind = iota
	KindBulk
)

// Operation is a pending state-changing action: what to send, how to ask
// for confirmation and what to say afterwards.
type Operation struct {
	ID       string
	Name     string
	Kind     Kind
	Target   string
	Endpoint gateway.Endpoint
	Payload  map[string]any
	Prompt   Prompt

	ProgressMessage string
	SuccessMessage  string
	FailurePrefix   string
	ErrorPrefix     string

	// Reload asks for the view to be re-fetched after a success
	Reload bool

	validate func(Answer) error
	apply    func(Answer, map[string]any)
	describe func(gateway.Envelope) []Detail
}

func profileDetails(p gateway.Profile) []Detail {
	return []Detail{
		{Label: "Nickname", Value: p.DisplayName()},
		{Label: "ICCID", Value: p.ICCID},
	}
}

// EnableProfile switches the chip to p
func EnableProfile(p gateway.Profile) Operation {
	return Operation{
		Name:     "enable profile",
		Target:   p.ICCID,
		Endpoint: gateway.EndpointEnableProfile,
		Payload:  map[string]any{"iccid": p.ICCID, "refresh": true},
		Prompt: Prompt{
			Title:        "Enable Profile",
			Question:     "Are you sure you want to enable this profile?",
			Details:      profileDetails(p),
			ConfirmLabel: "Enable",
		},
		ProgressMessage: "Enabling profile...",
		SuccessMessage:  "Profile enabled successfully",
		FailurePrefix:   "Failed to enable profile",
		ErrorPrefix:     "Error enabling profile",
		Reload:          true,
	}
}

// DisableProfile disables p
func DisableProfile(p gateway.Profile) Operation {
	return Operation{
		Name:     "disable profile",
		Target:   p.ICCID,
		Endpoint: gateway.EndpointDisableProfile,
		Payload:  map[string]any{"iccid": p.ICCID, "refresh": true},
		Prompt: Prompt{
			Title:        "Disable Profile",
			Question:     "Are you sure you want to disable this profile?",
			Details:      profileDetails(p),
			ConfirmLabel: "Disable",
		},
		ProgressMessage: "Disabling profile...",
		SuccessMessage:  "Profile disabled successfully",
		FailurePrefix:   "Failed to disable profile",
		ErrorPrefix:     "Error disabling profile",
		Reload:          true,
	}
}

// ToggleProfile disables an enabled profile and enables a disabled one
func ToggleProfile(p gateway.Profile) Operation {
	if p.Enabled() {
		return DisableProfile(p)
	}
	return EnableProfile(p)
}

// DeleteProfile permanently removes p from the chip
func DeleteProfile(p gateway.Profile) Operation {
	return Operation{
		Name:     "delete profile",
		Target:   p.ICCID,
		Endpoint: gateway.EndpointDeleteProfile,
		Payload:  map[string]any{"iccid": p.ICCID, "confirmed": true},
		Prompt: Prompt{
			Title:        "Delete Profile",
			Question:     "Are you sure you want to delete this profile?",
			Details:      profileDetails(p),
			Warning:      "This action cannot be undone. The profile will be permanently deleted from the eUICC.",
			ConfirmLabel: "Delete",
			Destructive:  true,
		},
		ProgressMessage: "Deleting profile...",
		SuccessMessage:  "Profile deleted successfully",
		FailurePrefix:   "Failed to delete profile",
		ErrorPrefix:     "Error deleting profile",
		Reload:          true,
	}
}

// RenameProfile sets the nickname of p to the text entered at confirmation
func RenameProfile(p gateway.Profile) Operation {
	return Operation{
		Name:     "rename profile",
		Target:   p.ICCID,
		Endpoint: gateway.EndpointSetNickname,
		Payload:  map[string]any{"iccid": p.ICCID},
		Prompt: Prompt{
			Title:        "Set Profile Nickname",
			Details:      []Detail{{Label: "ICCID", Value: p.ICCID}},
			ConfirmLabel: "Save",
			Input: &Input{
				Label:       "Nickname",
				Placeholder: "Enter nickname",
				Initial:     p.Nickname,
				MaxLength:   gateway.MaxNicknameLength,
			},
		},
		ProgressMessage: "Setting nickname...",
		SuccessMessage:  "Nickname updated successfully",
		FailurePrefix:   "Failed to set nickname",
		ErrorPrefix:     "Error setting nickname",
		Reload:          true,
		validate: func(a Answer) error {
			return gateway.ValidateNickname(a.Text)
		},
		apply: func(a Answer, payload map[string]any) {
			payload["nickname"] = strings.TrimSpace(a.Text)
		},
	}
}

// DownloadProfile installs a new profile. The request is validated before
// an operation is created, so no prompt is ever shown for bad input.
func DownloadProfile(req gateway.DownloadRequest) (Operation, error) {
	if err := req.Validate(); err != nil {
		return Operation{}, err
	}

	var details []Detail
	if req.Manual() {
		details = append(details, Detail{Label: "SM-DP+ Address", Value: strings.TrimSpace(req.SMDP)})
		if id := strings.TrimSpace(req.MatchingID); id != "" {
			details = append(details, Detail{Label: "Matching ID", Value: id})
		}
	} else {
		details = append(details, Detail{Label: "Activation Code", Value: strings.TrimSpace(req.ActivationCode)})
	}

	return Operation{
		Name:     "download profile",
		Target:   req.Target(),
		Endpoint: gateway.EndpointDownloadProfile,
		Payload:  req.Payload(),
		Prompt: Prompt{
			Title:        "Download Profile",
			Question:     "Are you sure you want to download this profile?",
			Details:      details,
			Warning:      "This operation may take several minutes. Do not disconnect the eUICC during download.",
			ConfirmLabel: "Download",
		},
		ProgressMessage: "Downloading profile, this may take several minutes...",
		SuccessMessage:  "Profile downloaded successfully",
		FailurePrefix:   "Failed to download profile",
		ErrorPrefix:     "Error downloading profile",
		Reload:          true,
		describe: func(env gateway.Envelope) []Detail {
			var res gateway.DownloadResult
			if err := env.DecodeData(&res); err != nil || res.ICCID == "" {
				return nil
			}
			return []Detail{{Label: "ICCID", Value: string(res.ICCID)}}
		},
	}, nil
}

// ProcessNotification handles one notification with the SM-DP+ server and
// optionally removes it afterwards.
func ProcessNotification(n gateway.Notification, remove bool) Operation {
	seq := strconv.Itoa(n.SeqNumber)
	return Operation{
		Name:     "process notification",
		Target:   seq,
		Endpoint: gateway.EndpointProcessNotification,
		Payload:  map[string]any{"seq_number": n.SeqNumber, "remove": remove},
		Prompt: Prompt{
			Title:    "Process Notification",
			Question: "Process this notification from the SM-DP+ server?",
			Details: []Detail{
				{Label: "Sequence Number", Value: seq},
				{Label: "Operation", Value: n.Operation},
				{Label: "Address", Value: n.Address},
			},
			ConfirmLabel: "Process",
			Option:       &Option{Label: "Remove notification after processing", Default: remove},
		},
		ProgressMessage: "Processing notification...",
		SuccessMessage:  "Notification processed successfully",
		FailurePrefix:   "Failed to process notification",
		ErrorPrefix:     "Error processing notification",
		Reload:          true,
		apply: func(a Answer, payload map[string]any) {
			payload["remove"] = a.Option
		},
	}
}

// RemoveNotification deletes one notification without processing it
func RemoveNotification(n gateway.Notification) Operation {
	seq := strconv.Itoa(n.SeqNumber)
	return Operation{
		Name:     "remove notification",
		Target:   seq,
		Endpoint: gateway.EndpointRemoveNotification,
		Payload:  map[string]any{"seq_number": n.SeqNumber},
		Prompt: Prompt{
			Title:        "Remove Notification",
			Question:     "Remove this notification without processing?",
			Details:      []Detail{{Label: "Sequence Number", Value: seq}},
			Warning:      "The notification will be permanently removed from the eUICC.",
			ConfirmLabel: "Remove",
			Destructive:  true,
		},
		ProgressMessage: "Removing notification...",
		SuccessMessage:  "Notification removed successfully",
		FailurePrefix:   "Failed to remove notification",
		ErrorPrefix:     "Error removing notification",
		Reload:          true,
	}
}

// ProcessAllNotifications processes every pending notification in one
// backend call. count is the number currently listed.
func ProcessAllNotifications(count int) (Operation, error) {
	if count <= 0 {
		return Operation{}, ErrNothingPending
	}
	return Operation{
		Name:     "process all notifications",
		Kind:     KindBulk,
		Endpoint: gateway.EndpointProcessAllNotifications,
		Payload:  map[string]any{},
		Prompt: Prompt{
			Title:        "Process All Notifications",
			Question:     "Process all pending notifications from SM-DP+ servers?",
			Details:      []Detail{{Label: "Total Notifications", Value: strconv.Itoa(count)}},
			Warning:      "This operation may take several minutes if there are many notifications.",
			ConfirmLabel: "Process All",
		},
		ProgressMessage: fmt.Sprintf("Processing %d notification(s), this may take several minutes...", count),
		SuccessMessage:  "All notifications processed successfully",
		FailurePrefix:   "Failed to process all notifications",
		ErrorPrefix:     "Error processing notifications",
		Reload:          true,
	}, nil
}

// RemoveAllNotifications removes every pending notification in one backend call
func RemoveAllNotifications(count int) (Operation, error) {
	if count <= 0 {
		return Operation{}, ErrNothingPending
	}
	return Operation{
		Name:     "remove all notifications",
		Kind:     KindBulk,
		Endpoint: gateway.EndpointRemoveAllNotifications,
		Payload:  map[string]any{},
		Prompt: Prompt{
			Title:        "Remove All Notifications",
			Question:     "Remove all pending notifications without processing?",
			Details:      []Detail{{Label: "Total Notifications", Value: strconv.Itoa(count)}},
			Warning:      "All notifications will be permanently removed from the eUICC.",
			ConfirmLabel: "Remove All",
			Destructive:  true,
		},
		ProgressMessage: "Removing all notifications...",
		SuccessMessage:  "All notifications removed successfully",
		FailurePrefix:   "Failed to remove all notifications",
		ErrorPrefix:     "Error removing notifications",
		Reload:          true,
	}, nil
}

// DiscoverProfiles asks the SM-DS server for profiles waiting for this chip.
// Nothing on the chip changes, so the view is not reloaded.
func DiscoverProfiles() Operation {
	return Operation{
		Name:     "discover profiles",
		Endpoint: gateway.EndpointDiscoverProfiles,
		Payload:  map[string]any{},
		Prompt: Prompt{
			Title:        "Discover Profiles",
			Question:     "Discover available profiles from the default SM-DS server?",
			Warning:      "This will contact the SM-DS server and retrieve available profile information.",
			ConfirmLabel: "Discover",
		},
		ProgressMessage: "Discovering profiles...",
		SuccessMessage:  "Discovery complete",
		FailurePrefix:   "Failed to discover profiles",
		ErrorPrefix:     "Error discovering profiles",
		describe: func(env gateway.Envelope) []Detail {
			var res gateway.DiscoveryResult
			_ = env.DecodeData(&res)
			details := []Detail{{Label: "Found", Value: fmt.Sprintf("%d available profile(s)", len(res.Profiles))}}
			for i, p := range res.Profiles {
				details = append(details, Detail{Label: strconv.Itoa(i + 1), Value: string(p)})
			}
			return details
		},
	}
}

// FactoryReset deletes every profile and returns the chip to factory state.
// The user must type FactoryResetToken exactly.
func FactoryReset() Operation {
	return Operation{
		Name:     "factory reset",
		Endpoint: gateway.EndpointFactoryReset,
		Payload:  map[string]any{"confirmation": FactoryResetToken},
		Prompt: Prompt{
			Title:        "Factory Reset eUICC",
			Question:     "This will PERMANENTLY DELETE ALL PROFILES and reset the eUICC to factory state.",
			Warning:      "This action CANNOT BE UNDONE!",
			ConfirmLabel: "Factory Reset",
			Destructive:  true,
			Token:        FactoryResetToken,
			Input: &Input{
				Label:       "Confirmation",
				Placeholder: "Type RESET to confirm",
			},
		},
		ProgressMessage: "Resetting eUICC, this may take several minutes...",
		SuccessMessage:  "eUICC has been reset to factory state. All profiles have been deleted.",
		FailurePrefix:   "Failed to reset eUICC",
		ErrorPrefix:     "Error resetting eUICC",
		Reload:          true,
		validate: func(a Answer) error {
			if a.Text != FactoryResetToken {
				return gateway.NewValidationError(`Invalid confirmation. Type "RESET" exactly.`)
			}
			return nil
		},
	}
}

// SaveSettings submits the whole configuration, defaults included
func SaveSettings(s gateway.Settings) Operation {
	full := s.WithDefaults()
	details := make([]Detail, 0, len(full))
	for _, k := range full.Keys() {
		details = append(details, Detail{Label: k, Value: full[k]})
	}
	return Operation{
		Name:     "save settings",
		Endpoint: gateway.EndpointUpdateConfig,
		Payload:  full.Payload(),
		Prompt: Prompt{
			Title:        "Save Settings",
			Question:     "Save these settings to the router?",
			Details:      details,
			ConfirmLabel: "Save",
		},
		ProgressMessage: "Saving settings...",
		SuccessMessage:  "Settings saved successfully",
		FailurePrefix:   "Failed to save settings",
		ErrorPrefix:     "Error saving settings",
		Reload:          true,
	}
}
