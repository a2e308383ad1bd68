package ui

import (
	"os"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"

	"github.com/muurk/lpac-console/internal/view"
	"github.com/muurk/lpac-console/internal/workflow"
)

// Color palette shared by the CLI boxes
var (
	PrimaryColor = lipgloss.Color("#7D56F4") // Purple - headers, borders
	SuccessColor = lipgloss.Color("#43BF6D") // Green - success, checkmarks
	ErrorColor   = lipgloss.Color("#FF5555") // Red - errors, X marks
	WarningColor = lipgloss.Color("#FFA500") // Orange - warnings
	MutedColor   = lipgloss.Color("#626262") // Gray - secondary info
	TextColor    = lipgloss.Color("#FFFFFF") // White - main content
)

// Layout constants
const (
	MinTerminalWidth = 60  // Minimum supported terminal width
	MaxContentWidth  = 100 // Maximum content width before capping
)

var (
	// HeaderTitleStyle is for the command title (e.g., "PROFILES")
	HeaderTitleStyle = lipgloss.NewStyle().
				Foreground(TextColor).
				Bold(true).
				PaddingLeft(2)

	// HeaderCommandStyle is for the command path (e.g., "lpac-console profiles list")
	HeaderCommandStyle = lipgloss.NewStyle().
				Foreground(MutedColor).
				PaddingLeft(2)

	// HeaderParamKeyStyle is for parameter keys (e.g., "Router:")
	HeaderParamKeyStyle = lipgloss.NewStyle().
				Foreground(MutedColor).
				PaddingLeft(2)

	HeaderParamValueStyle = lipgloss.NewStyle().
				Foreground(TextColor)

	ProgressLabelStyle = lipgloss.NewStyle().
				Foreground(TextColor)

	SpinnerStyle = lipgloss.NewStyle().
			Foreground(PrimaryColor)

	SuccessTitleStyle = lipgloss.NewStyle().
				Foreground(SuccessColor).
				Bold(true)

	ErrorTitleStyle = lipgloss.NewStyle().
			Foreground(ErrorColor).
			Bold(true)

	WarningTitleStyle = lipgloss.NewStyle().
				Foreground(WarningColor).
				Bold(true)

	ErrorMessageStyle = lipgloss.NewStyle().
				Foreground(ErrorColor)

	// ResultKeyStyle is for detail labels in prompts and results
	ResultKeyStyle = lipgloss.NewStyle().
			Foreground(MutedColor).
			Width(18)

	ResultValueStyle = lipgloss.NewStyle().
				Foreground(TextColor)

	MutedStyle = lipgloss.NewStyle().
			Foreground(MutedColor)

	TroubleshootingTitleStyle = lipgloss.NewStyle().
					Foreground(MutedColor).
					Bold(true)

	TroubleshootingItemStyle = lipgloss.NewStyle().
					Foreground(MutedColor)
)

// Markers
const (
	SuccessMarker = "✓"
	FailureMarker = "✗"
	WarningMarker = "⚠"
	InfoMarker    = "●"
)

// GetTerminalWidth returns the current terminal width, with fallback
func GetTerminalWidth() int {
	width, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || width < MinTerminalWidth {
		return MinTerminalWidth
	}
	if width > MaxContentWidth {
		return MaxContentWidth
	}
	return width
}

// HeaderBorderStyle returns the border style for command headers
func HeaderBorderStyle(width int) lipgloss.Style {
	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(PrimaryColor).
		Width(width - 2) // Account for border characters
}

// BoxStyle returns the double-bordered box used for prompts and results
func BoxStyle(width int, color lipgloss.Color) lipgloss.Style {
	return lipgloss.NewStyle().
		Border(lipgloss.DoubleBorder()).
		BorderForeground(color).
		Width(width-2).
		Padding(0, 2)
}

// TroubleshootingBoxStyle returns the border style for troubleshooting sections
func TroubleshootingBoxStyle(width int) lipgloss.Style {
	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(MutedColor).
		Width(width-12). // Indented within the outer box
		Padding(0, 1).
		MarginLeft(3)
}

// LevelColor maps a notification level to the palette
func LevelColor(level workflow.Level) lipgloss.Color {
	switch level {
	case workflow.LevelSuccess:
		return SuccessColor
	case workflow.LevelWarning:
		return WarningColor
	case workflow.LevelError:
		return ErrorColor
	default:
		return PrimaryColor
	}
}

// LevelStyle renders text in the colour of a notification level
func LevelStyle(level workflow.Level) lipgloss.Style {
	return lipgloss.NewStyle().Foreground(LevelColor(level)).Bold(true)
}

// LevelMarker maps a notification level to its marker
func LevelMarker(level workflow.Level) string {
	switch level {
	case workflow.LevelSuccess:
		return SuccessMarker
	case workflow.LevelWarning:
		return WarningMarker
	case workflow.LevelError:
		return FailureMarker
	default:
		return InfoMarker
	}
}

// ToneColor maps a badge tone to the palette
func ToneColor(tone view.Tone) lipgloss.Color {
	switch tone {
	case view.ToneSuccess:
		return SuccessColor
	case view.ToneWarning:
		return WarningColor
	case view.ToneDanger:
		return ErrorColor
	default:
		return MutedColor
	}
}

// RenderBadge renders a status badge in its tone colour
func RenderBadge(b view.Badge) string {
	return lipgloss.NewStyle().Foreground(ToneColor(b.Tone)).Bold(true).Render(b.Text)
}
