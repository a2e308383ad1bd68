package view

import (
	"strconv"
	"strings"

	"github.com/muurk/lpac-console/internal/gateway"
	"github.com/muurk/lpac-console/internal/loader"
)

// Row is one labelled value. A row with a Badge is rendered coloured.
type Row struct {
	Label string
	Value string
	Badge *Badge
}

// Section is a titled group of rows with an optional note underneath
type Section struct {
	Title string
	Rows  []Row
	Note  string
}

func badgeRow(label string, b Badge) Row {
	return Row{Label: label, Value: b.Text, Badge: &b}
}

// Sections lays out the read-only views (dashboard, chip, download,
// settings, about) for a ready snapshot. List views return nil; surfaces
// render those with their own cursor.
func Sections(s *loader.Snapshot) []Section {
	if SelectBranch(s).Branch != BranchReady {
		return nil
	}

	switch s.View.Name {
	case loader.Dashboard.Name:
		return dashboardSections(s)
	case loader.Chip.Name:
		return chipSections(s)
	case loader.Download.Name:
		settings, _ := s.Settings()
		return []Section{{
			Title: "Download Profile",
			Rows:  []Row{{Label: "Default SM-DP+", Value: OrDefault(settings[gateway.SettingDefaultSMDP], "(none)")}},
			Note:  "Use an activation code (LPA:1$...) or enter the SM-DP+ address manually.",
		}}
	case loader.Settings.Name:
		return settingsSections(s)
	case loader.About.Name:
		info, _ := s.SystemInfo()
		return []Section{{
			Title: "Version Information",
			Rows: []Row{
				{Label: "luci-app-lpac", Value: OrDefault(string(info.AppVersion), "Unknown")},
				{Label: "lpac", Value: OrDefault(string(info.LpacVersion), "Unknown")},
				{Label: "OpenWrt", Value: OrDefault(string(info.OpenWrtVersion), "Unknown")},
				{Label: "LuCI", Value: OrDefault(string(info.LuCIVersion), "Unknown")},
			},
		}}
	}
	return nil
}

func dashboardSections(s *loader.Snapshot) []Section {
	sum, _ := s.Summary()
	out := []Section{
		{
			Title: "eUICC Chip Status",
			Rows: []Row{
				badgeRow("Status", ChipStatusBadge(string(sum.ChipStatus))),
				{Label: "EID", Value: OrDefault(string(sum.EID), "EID not available")},
			},
		},
		{
			Title: "Profile Summary",
			Rows: []Row{
				{Label: "Total Profiles", Value: strconv.Itoa(int(sum.ProfilesTotal))},
				{Label: "Enabled", Value: strconv.Itoa(int(sum.ProfilesEnabled))},
				{Label: "Disabled", Value: strconv.Itoa(int(sum.ProfilesDisabled))},
			},
		},
	}

	notes := Section{
		Title: "Notifications",
		Rows:  []Row{badgeRow("Pending Notifications", NotificationsBadge(int(sum.NotificationsPending)))},
	}
	if sum.NotificationsPending > 0 {
		notes.Note = "You have pending notifications that require attention."
	}
	out = append(out, notes)

	if sum.FreeMemory != nil {
		out = append(out, Section{
			Title: "eUICC Memory",
			Rows:  []Row{{Label: "Free Memory", Value: FormatMemory(int(*sum.FreeMemory))}},
		})
	}
	return out
}

func chipSections(s *loader.Snapshot) []Section {
	chip, _ := s.Chip()
	out := []Section{{
		Title: "eUICC Identifier (EID)",
		Rows:  []Row{{Label: "EID", Value: OrDefault(string(chip.EID), "N/A")}},
	}}

	if chip.PlatformType != "" || chip.PlatformVersion != "" || chip.PlatformLabel != "" {
		out = append(out, Section{
			Title: "Platform Information",
			Rows: []Row{
				{Label: "Platform Type", Value: OrDefault(string(chip.PlatformType), "N/A")},
				{Label: "Platform Version", Value: OrDefault(string(chip.PlatformVersion), "N/A")},
				{Label: "Platform Label", Value: OrDefault(string(chip.PlatformLabel), "N/A")},
			},
		})
	}

	if info := chip.Info2; info != nil {
		sec := Section{Title: "eUICC Information"}
		for _, d := range []struct {
			label string
			value gateway.FlexString
		}{
			{"Profile Version", info.ProfileVersion},
			{"SVN", info.SVN},
			{"Firmware Version", info.FirmwareVersion},
			{"Extended Card Resource", info.ExtCardResource},
			{"UICC Capability", info.UICCCapability},
			{"JavaCard Version", info.JavacardVersion},
			{"GlobalPlatform Version", info.GlobalPlatformVersion},
			{"RSP Capability", info.RSPCapability},
			{"CI PKI IDs", info.CIPKIDListForVerification},
			{"Signing PKI IDs", info.CIPKIDListForSigning},
			{"PP Version", info.PPVersion},
			{"SAS Accreditation", info.SASAccreditationNumber},
		} {
			if d.value != "" {
				sec.Rows = append(sec.Rows, Row{Label: d.label, Value: string(d.value)})
			}
		}
		out = append(out, sec)
	}

	if caps := chip.Capabilities; caps != nil {
		sec := Section{Title: "Capabilities"}
		if caps.SupportedProfiles != nil {
			sec.Rows = append(sec.Rows, Row{Label: "Maximum Profiles", Value: strconv.Itoa(int(*caps.SupportedProfiles))})
		}
		if caps.FreeMemory != nil {
			sec.Rows = append(sec.Rows, Row{Label: "Free Memory", Value: FormatMemory(int(*caps.FreeMemory))})
		}
		out = append(out, sec)
	}
	return out
}

func settingsSections(s *loader.Snapshot) []Section {
	settings, _ := s.Settings()
	apdu := DriverOptions(s.APDUDrivers(), settings[gateway.SettingAPDUDriver])

	sec := Section{Title: "lpac Configuration"}
	sec.Rows = append(sec.Rows,
		Row{Label: "APDU Driver", Value: SelectedDriver(apdu, settings[gateway.SettingAPDUDriver])},
		Row{Label: "Available APDU Drivers", Value: strings.Join(apdu, ", ")},
	)
	if http := s.HTTPDrivers(); len(http) > 0 {
		sec.Rows = append(sec.Rows,
			Row{Label: "HTTP Driver", Value: OrDefault(settings[gateway.SettingHTTPDriver], gateway.DriverAuto)},
			Row{Label: "Available HTTP Drivers", Value: strings.Join(http, ", ")},
		)
	}
	sec.Rows = append(sec.Rows, Row{Label: "Default SM-DP+", Value: OrDefault(settings[gateway.SettingDefaultSMDP], "(none)")})
	for _, k := range settings.Keys() {
		switch k {
		case gateway.SettingAPDUDriver, gateway.SettingHTTPDriver, gateway.SettingDefaultSMDP:
		default:
			sec.Rows = append(sec.Rows, Row{Label: k, Value: settings[k]})
		}
	}
	sec.Note = SettingsNote(s)
	return []Section{sec}
}

// SettingsNote explains a failed configuration read, or returns "" when
// the configuration loaded.
func SettingsNote(s *loader.Snapshot) string {
	if _, err := s.Settings(); err != nil {
		return "Configuration could not be read (" + gateway.ShortMessage(err) + "). Defaults are shown."
	}
	return ""
}
