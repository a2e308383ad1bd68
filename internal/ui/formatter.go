package ui

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/muurk/lpac-console/internal/gateway"
	"github.com/muurk/lpac-console/internal/loader"
	"github.com/muurk/lpac-console/internal/view"
)

// Format selects how a snapshot is printed
type Format string

const (
	FormatDetailed Format = "detailed"
	FormatCompact  Format = "compact"
	FormatJSON     Format = "json"
)

// ParseFormat validates a --format value
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(s)); f {
	case FormatDetailed, FormatCompact, FormatJSON:
		return f, nil
	case "":
		return FormatDetailed, nil
	default:
		return "", fmt.Errorf("unknown format %q (use detailed, compact or json)", s)
	}
}

// FormatSnapshot renders s in the given format
func FormatSnapshot(s *loader.Snapshot, f Format) (string, error) {
	switch f {
	case FormatJSON:
		return formatJSON(s)
	case FormatCompact:
		return formatCompact(s), nil
	default:
		return formatDetailed(s), nil
	}
}

func section(b *strings.Builder, title string) {
	if b.Len() > 0 {
		b.WriteString("\n")
	}
	fmt.Fprintf(b, "=== %s ===\n", title)
}

func row(b *strings.Builder, label, value string) {
	fmt.Fprintf(b, "%-24s %s\n", label+":", value)
}

func formatDetailed(s *loader.Snapshot) string {
	var b strings.Builder

	sel := view.SelectBranch(s)
	if sel.Branch != view.BranchReady {
		section(&b, sel.Title)
		b.WriteString(sel.Message + "\n")
		return b.String()
	}

	switch s.View.Name {
	case loader.Profiles.Name:
		profiles, _ := s.Profiles()
		section(&b, fmt.Sprintf("Installed Profiles (%d)", len(profiles)))
		for i, p := range profiles {
			if i > 0 {
				b.WriteString("\n")
			}
			row(&b, "Profile", p.DisplayName())
			row(&b, "Status", RenderBadge(view.ProfileBadge(p)))
			row(&b, "ICCID", view.OrDefault(p.ICCID, "Unknown"))
			row(&b, "Provider", view.OrDefault(p.ServiceProvider, "Unknown"))
			row(&b, "Class", view.OrDefault(p.Class, "N/A"))
		}

	case loader.Notifications.Name:
		notes, _ := s.Notifications()
		section(&b, fmt.Sprintf("Pending Notifications (%d)", len(notes)))
		for _, n := range notes {
			fmt.Fprintf(&b, "#%-5d %-12s %s\n", n.SeqNumber,
				view.OrDefault(n.Operation, "Unknown"), view.OrDefault(n.Address, "N/A"))
		}

	default:
		for _, sec := range view.Sections(s) {
			section(&b, sec.Title)
			for _, r := range sec.Rows {
				value := r.Value
				if r.Badge != nil {
					value = RenderBadge(*r.Badge)
				}
				row(&b, r.Label, value)
			}
			if sec.Note != "" {
				b.WriteString(sec.Note + "\n")
			}
		}
	}

	if n := s.Failures(); n > 0 {
		fmt.Fprintf(&b, "\n(%d secondary read(s) failed; some information may be missing)\n", n)
	}
	return b.String()
}

func formatCompact(s *loader.Snapshot) string {
	var b strings.Builder

	sel := view.SelectBranch(s)
	if sel.Branch != view.BranchReady {
		fmt.Fprintf(&b, "%s: %s\n", sel.Branch, sel.Title)
		return b.String()
	}

	switch s.View.Name {
	case loader.Dashboard.Name:
		sum, _ := s.Summary()
		fmt.Fprintf(&b, "Chip:          %s (EID: %s)\n", view.ChipStatusBadge(string(sum.ChipStatus)).Text, view.OrDefault(string(sum.EID), "N/A"))
		fmt.Fprintf(&b, "Profiles:      %d (%d enabled, %d disabled)\n", sum.ProfilesTotal, sum.ProfilesEnabled, sum.ProfilesDisabled)
		fmt.Fprintf(&b, "Notifications: %d pending\n", sum.NotificationsPending)
		if sum.FreeMemory != nil {
			fmt.Fprintf(&b, "Free Memory:   %s\n", view.FormatMemory(int(*sum.FreeMemory)))
		}
	case loader.Chip.Name:
		chip, _ := s.Chip()
		fmt.Fprintf(&b, "EID:      %s\n", view.OrDefault(string(chip.EID), "N/A"))
		if chip.Info2 != nil {
			fmt.Fprintf(&b, "Firmware: %s\n", view.OrDefault(string(chip.Info2.FirmwareVersion), "N/A"))
		}
		if chip.Capabilities != nil && chip.Capabilities.FreeMemory != nil {
			fmt.Fprintf(&b, "Free:     %s\n", view.FormatMemory(int(*chip.Capabilities.FreeMemory)))
		}
	case loader.Profiles.Name:
		profiles, _ := s.Profiles()
		for _, p := range profiles {
			fmt.Fprintf(&b, "%-8s %-20s %s\n", strings.ToLower(view.ProfileBadge(p).Text), p.ICCID, view.Truncate(p.DisplayName(), 32))
		}
	case loader.Notifications.Name:
		notes, _ := s.Notifications()
		for _, n := range notes {
			fmt.Fprintf(&b, "%d\t%s\t%s\n", n.SeqNumber, n.Operation, n.Address)
		}
	case loader.Download.Name, loader.Settings.Name:
		settings, _ := s.Settings()
		for _, k := range settings.Keys() {
			fmt.Fprintf(&b, "%s=%s\n", k, settings[k])
		}
	case loader.About.Name:
		info, _ := s.SystemInfo()
		fmt.Fprintf(&b, "luci-app-lpac %s, lpac %s, OpenWrt %s, LuCI %s\n",
			info.AppVersion, info.LpacVersion, info.OpenWrtVersion, info.LuCIVersion)
	}
	return b.String()
}

type snapshotJSON struct {
	View      string            `json:"view"`
	Available bool              `json:"available"`
	Branch    string            `json:"branch"`
	Message   string            `json:"message,omitempty"`
	Data      any               `json:"data,omitempty"`
	Errors    map[string]string `json:"errors,omitempty"`
}

func formatJSON(s *loader.Snapshot) (string, error) {
	sel := view.SelectBranch(s)
	out := snapshotJSON{
		View:      s.View.Name,
		Available: s.Available,
		Branch:    sel.Branch.String(),
		Message:   sel.Message,
	}

	for ep, r := range s.Results {
		err := r.Err
		if e := s.Err(ep); e != nil && !gateway.IsUnavailableError(e) {
			err = e
		}
		if err == nil {
			continue
		}
		if out.Errors == nil {
			out.Errors = map[string]string{}
		}
		out.Errors[string(ep)] = gateway.ShortMessage(err)
	}

	if sel.Branch == view.BranchReady || sel.Branch == view.BranchEmpty {
		switch s.View.Name {
		case loader.Dashboard.Name:
			out.Data, _ = s.Summary()
		case loader.Chip.Name:
			out.Data, _ = s.Chip()
		case loader.Profiles.Name:
			out.Data, _ = s.Profiles()
		case loader.Notifications.Name:
			out.Data, _ = s.Notifications()
		case loader.Download.Name:
			out.Data, _ = s.Settings()
		case loader.Settings.Name:
			settings, _ := s.Settings()
			out.Data = map[string]any{
				"settings":     settings,
				"apdu_drivers": s.APDUDrivers(),
				"http_drivers": s.HTTPDrivers(),
			}
		case loader.About.Name:
			out.Data, _ = s.SystemInfo()
		}
	}

	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal JSON: %w", err)
	}
	return string(data) + "\n", nil
}
