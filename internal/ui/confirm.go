package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/muurk/lpac-console/internal/workflow"
)

// RenderPrompt draws the confirmation box for p. Destructive prompts get a
// red border, prompts with a warning an orange one.
func RenderPrompt(p workflow.Prompt, width int) string {
	width = max(width, MinTerminalWidth)

	color := PrimaryColor
	titleStyle := lipgloss.NewStyle().Foreground(PrimaryColor).Bold(true)
	marker := InfoMarker
	switch {
	case p.Destructive:
		color, titleStyle, marker = ErrorColor, ErrorTitleStyle, WarningMarker
	case p.Warning != "":
		color, titleStyle, marker = WarningColor, WarningTitleStyle, WarningMarker
	}

	lines := []string{"", titleStyle.Render(fmt.Sprintf("   %s  %s", marker, strings.ToUpper(p.Title))), ""}

	if p.Question != "" {
		lines = append(lines, lipgloss.NewStyle().
			Foreground(TextColor).
			Width(width-12).
			PaddingLeft(3).
			Render(p.Question), "")
	}

	if len(p.Details) > 0 {
		lines = append(lines, renderDetails(p.Details)...)
		lines = append(lines, "")
	}

	if p.Warning != "" {
		lines = append(lines, lipgloss.NewStyle().
			Foreground(WarningColor).
			Italic(true).
			Width(width-12).
			PaddingLeft(3).
			Render(p.Warning), "")
	}

	return BoxStyle(width, color).Render(strings.Join(lines, "\n"))
}

// promptLine is the question printed before reading an answer
func promptLine(p workflow.Prompt) string {
	style := lipgloss.NewStyle().Foreground(WarningColor).Bold(true)
	switch {
	case p.Token != "":
		return style.Render(fmt.Sprintf("To proceed, type %q and press Enter: ", p.Token))
	case p.Input != nil:
		return style.Render(p.Input.Label + ": ")
	default:
		label := p.ConfirmLabel
		if label == "" {
			label = "Proceed"
		}
		return style.Render(label + "? [y/N]: ")
	}
}

func optionLine(o workflow.Option) string {
	choices := "[y/N]"
	if o.Default {
		choices = "[Y/n]"
	}
	return lipgloss.NewStyle().Foreground(TextColor).Render(o.Label + "? " + choices + ": ")
}
