package view

import (
	"fmt"
	"slices"

	"github.com/charmbracelet/x/ansi"

	"github.com/muurk/lpac-console/internal/gateway"
)

// FormatMemory renders a size given in KB
func FormatMemory(kb int) string {
	if kb < 1024 {
		return fmt.Sprintf("%d KB", kb)
	}
	return fmt.Sprintf("%.1f MB", float64(kb)/1024)
}

// Tone is the colour family of a badge
type Tone int

const (
	ToneMuted Tone = iota
	ToneSuccess
	ToneWarning
	ToneDanger
)

// Badge is a short coloured status label
type Badge struct {
	Text string
	Tone Tone
}

// ProfileBadge labels a profile as enabled or disabled
func ProfileBadge(p gateway.Profile) Badge {
	if p.Enabled() {
		return Badge{Text: "Enabled", Tone: ToneSuccess}
	}
	return Badge{Text: "Disabled", Tone: ToneMuted}
}

// ChipStatusBadge labels the dashboard chip status. Anything other than
// "connected", including a missing status, reads as disconnected.
func ChipStatusBadge(status string) Badge {
	if status == "connected" {
		return Badge{Text: "Connected", Tone: ToneSuccess}
	}
	return Badge{Text: "Disconnected", Tone: ToneDanger}
}

// NotificationsBadge highlights a non-zero pending count
func NotificationsBadge(pending int) Badge {
	if pending > 0 {
		return Badge{Text: fmt.Sprintf("%d", pending), Tone: ToneWarning}
	}
	return Badge{Text: "0", Tone: ToneMuted}
}

// Truncate shortens s to at most width cells, ending with an ellipsis
func Truncate(s string, width int) string {
	if width <= 0 {
		return ""
	}
	if ansi.StringWidth(s) <= width {
		return s
	}
	return ansi.Truncate(s, width, "…")
}

// OrDefault returns fallback for an empty value
func OrDefault(value, fallback string) string {
	if value == "" {
		return fallback
	}
	return value
}

// DriverOptions returns the choices offered for the APDU driver. "auto" is
// prepended when the list is empty or does not contain the current driver.
func DriverOptions(drivers []string, current string) []string {
	opts := slices.Clone(drivers)
	if len(opts) == 0 || current == "" || !slices.Contains(opts, current) {
		if !slices.Contains(opts, gateway.DriverAuto) {
			opts = append([]string{gateway.DriverAuto}, opts...)
		}
	}
	return opts
}

// SelectedDriver returns the option that should appear selected
func SelectedDriver(options []string, current string) string {
	if current != "" && slices.Contains(options, current) {
		return current
	}
	return gateway.DriverAuto
}
