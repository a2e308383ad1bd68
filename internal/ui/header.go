package ui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/muurk/lpac-console/internal/workflow"
)

// Header is the banner printed before a command's output
type Header struct {
	Title   string            // e.g., "PROFILES"
	Command string            // e.g., "lpac-console profiles list"
	Params  []workflow.Detail // e.g., Router: 192.168.1.1
	Width   int
}

// NewHeader creates a new header with the given values
func NewHeader(title, command string, params ...workflow.Detail) *Header {
	return &Header{
		Title:   title,
		Command: command,
		Params:  params,
		Width:   GetTerminalWidth(),
	}
}

// SetWidth sets the terminal width for responsive rendering
func (h *Header) SetWidth(width int) *Header {
	h.Width = width
	return h
}

// Render returns the styled header as a string
func (h *Header) Render() string {
	width := max(h.Width, MinTerminalWidth)

	titleLine := HeaderTitleStyle.Render(strings.ToUpper(h.Title))
	commandLine := HeaderCommandStyle.Render(h.Command)
	topSection := lipgloss.JoinVertical(lipgloss.Left, titleLine, commandLine)

	if len(h.Params) == 0 {
		return HeaderBorderStyle(width).Render(topSection)
	}

	dividerWidth := max(width-6, 10) // Account for border and padding
	divider := lipgloss.NewStyle().
		Foreground(PrimaryColor).
		Render(strings.Repeat("─", dividerWidth))

	paramLines := make([]string, 0, len(h.Params))
	for _, p := range h.Params {
		paramLines = append(paramLines, HeaderParamKeyStyle.Render(p.Label+":")+" "+HeaderParamValueStyle.Render(p.Value))
	}

	content := lipgloss.JoinVertical(lipgloss.Left, topSection, divider, strings.Join(paramLines, "\n"))
	return HeaderBorderStyle(width).Render(content)
}

// String implements fmt.Stringer
func (h *Header) String() string {
	return h.Render()
}
