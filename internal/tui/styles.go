package tui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/muurk/lpac-console/internal/version"
)

// AppName is shown in the header of every screen
const AppName = "LPAC CONSOLE"

// Layout constants for responsive terminal width
const (
	MinTerminalWidth = 72
	MinModalWidth    = 40
	ModalWidth       = 64
	toastLimit       = 3
)

// Color palette
var (
	PrimaryColor   = lipgloss.Color("#7D56F4") // Purple
	SecondaryColor = lipgloss.Color("#43BF6D") // Green
	WarningColor   = lipgloss.Color("#FFA500") // Orange
	ErrorColor     = lipgloss.Color("#FF5555") // Red

	TextColor      = lipgloss.Color("#FFFFFF")
	SubtleColor    = lipgloss.Color("#626262")
	BorderColor    = lipgloss.Color("#7D56F4")
	HighlightColor = lipgloss.Color("#43BF6D")
)

var (
	ActiveTabStyle = lipgloss.NewStyle().
			Foreground(TextColor).
			Background(PrimaryColor).
			Bold(true).
			Padding(0, 1)

	TabStyle = lipgloss.NewStyle().
			Foreground(SubtleColor).
			Padding(0, 1)

	SectionTitleStyle = lipgloss.NewStyle().
				Foreground(PrimaryColor).
				Bold(true).
				MarginTop(1)

	LabelStyle = lipgloss.NewStyle().
			Foreground(SubtleColor).
			Width(24)

	ValueStyle = lipgloss.NewStyle().
			Foreground(TextColor)

	MutedStyle = lipgloss.NewStyle().
			Foreground(SubtleColor)

	ListItemStyle = lipgloss.NewStyle().
			PaddingLeft(2)

	SelectedListItemStyle = lipgloss.NewStyle().
				Foreground(HighlightColor).
				Bold(true)

	SpinnerStyle = lipgloss.NewStyle().
			Foreground(PrimaryColor)

	FocusedInputStyle = lipgloss.NewStyle().
				Foreground(PrimaryColor).
				Bold(true)

	BlurredInputStyle = lipgloss.NewStyle().
				Foreground(SubtleColor)

	ControlKeyStyle = lipgloss.NewStyle().
			Foreground(PrimaryColor).
			Bold(true)

	DangerControlKeyStyle = lipgloss.NewStyle().
				Foreground(ErrorColor).
				Bold(true)

	ModalErrorStyle = lipgloss.NewStyle().
			Foreground(ErrorColor).
			Bold(true)

	ModalWarningStyle = lipgloss.NewStyle().
				Foreground(WarningColor)
)

// BuildHeaderContent creates the header line with app name, version and the
// router the console talks to.
func BuildHeaderContent(router string) string {
	left := lipgloss.NewStyle().
		Foreground(TextColor).
		Bold(true).
		Render(AppName + " " + version.Version)

	if router == "" {
		return left
	}
	right := lipgloss.NewStyle().
		Foreground(SubtleColor).
		Render(router)
	return lipgloss.JoinHorizontal(lipgloss.Top, left, "  ", right)
}

// RenderApplicationContainer wraps a screen in the application frame:
// header, content and a footer with help text, filling the terminal.
func RenderApplicationContainer(content, footerText, router string, terminalWidth, terminalHeight int) string {
	if terminalWidth < MinTerminalWidth {
		terminalWidth = MinTerminalWidth
	}
	if terminalHeight < 10 {
		terminalHeight = 10
	}

	header := lipgloss.NewStyle().
		BorderStyle(lipgloss.Border{Bottom: "─"}).
		BorderForeground(BorderColor).
		Width(terminalWidth-4).
		Padding(0, 1).
		Render(BuildHeaderContent(router))

	footer := lipgloss.NewStyle().
		BorderStyle(lipgloss.Border{Top: "─"}).
		BorderForeground(BorderColor).
		Width(terminalWidth-4).
		Padding(0, 1).
		Render(MutedStyle.Render(footerText))

	body := lipgloss.NewStyle().
		Width(terminalWidth-4).
		Padding(0, 1).
		Render(content)

	// pin the footer to the bottom
	used := lipgloss.Height(header) + lipgloss.Height(footer) + 2
	if gap := terminalHeight - used - lipgloss.Height(body); gap > 0 {
		body = lipgloss.JoinVertical(lipgloss.Left, body, lipgloss.NewStyle().Height(gap).Render(""))
	}

	inner := lipgloss.JoinVertical(lipgloss.Left, header, body, footer)

	return lipgloss.NewStyle().
		Border(lipgloss.NormalBorder()).
		BorderForeground(BorderColor).
		Width(terminalWidth - 2).
		Render(inner)
}

// SafeModalWidth keeps a modal inside the terminal
func SafeModalWidth(requestedWidth, terminalWidth int) int {
	maxWidth := terminalWidth - 4
	if maxWidth < MinModalWidth {
		maxWidth = MinModalWidth
	}
	if requestedWidth < maxWidth {
		return requestedWidth
	}
	return maxWidth
}

// RenderModal centres modal content over a dimmed background
func RenderModal(modalContent string, terminalWidth, terminalHeight int) string {
	return lipgloss.Place(
		terminalWidth,
		terminalHeight,
		lipgloss.Center,
		lipgloss.Center,
		modalContent,
		lipgloss.WithWhitespaceChars("░"),
		lipgloss.WithWhitespaceForeground(lipgloss.Color("240")),
	)
}

// ModalBoxStyle is the frame of a confirmation modal
func ModalBoxStyle(width int, color lipgloss.Color) lipgloss.Style {
	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(color).
		Padding(1, 2).
		Width(width)
}
