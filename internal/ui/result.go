package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/muurk/lpac-console/internal/gateway"
	"github.com/muurk/lpac-console/internal/view"
	"github.com/muurk/lpac-console/internal/workflow"
)

// ResultType indicates success or failure
type ResultType int

const (
	ResultSuccess ResultType = iota
	ResultFailure
	ResultWarning
)

// Result is a success, failure or warning box
type Result struct {
	Type            ResultType
	Title           string
	Details         []workflow.Detail
	Error           string
	Troubleshooting []string
	Width           int
}

// NewSuccessResult creates a success result box
func NewSuccessResult(title string, details []workflow.Detail) *Result {
	return &Result{
		Type:    ResultSuccess,
		Title:   title,
		Details: details,
		Width:   GetTerminalWidth(),
	}
}

// NewFailureResult creates a failure result box. The troubleshooting tips
// come from gateway.Hint.
func NewFailureResult(title string, err error) *Result {
	r := &Result{
		Type:  ResultFailure,
		Title: title,
		Width: GetTerminalWidth(),
	}
	if err != nil {
		r.Error = gateway.ShortMessage(err)
		r.Troubleshooting = hintLines(gateway.Hint(err))
	}
	return r
}

// NewWarningResult creates a warning result box
func NewWarningResult(title string, details []workflow.Detail) *Result {
	return &Result{
		Type:    ResultWarning,
		Title:   title,
		Details: details,
		Width:   GetTerminalWidth(),
	}
}

// NewSelectionResult builds the failure box shown for the unavailable and
// error branches of a view
func NewSelectionResult(sel view.Selection) *Result {
	r := NewFailureResult(sel.Title, nil)
	r.Error = sel.Message
	r.Troubleshooting = hintLines(sel.Hint)
	return r
}

// ResultFromOutcome builds the box shown after an operation finishes
func ResultFromOutcome(out workflow.Outcome) *Result {
	switch {
	case out.Cancelled:
		return NewWarningResult(out.Operation.Prompt.Title+" cancelled", nil)
	case out.Succeeded():
		return NewSuccessResult(out.Message, out.Details)
	default:
		r := NewFailureResult(out.Operation.Prompt.Title, out.Err)
		r.Error = out.Message
		if gateway.IsActionError(out.Err) {
			r.Troubleshooting = nil
		}
		return r
	}
}

// SetWidth sets the terminal width for responsive rendering
func (r *Result) SetWidth(width int) *Result {
	r.Width = width
	return r
}

// AddDetail appends a labelled value
func (r *Result) AddDetail(label, value string) *Result {
	r.Details = append(r.Details, workflow.Detail{Label: label, Value: value})
	return r
}

// Render returns the styled result box as a string
func (r *Result) Render() string {
	width := max(r.Width, MinTerminalWidth)

	var (
		title string
		color lipgloss.Color
	)
	switch r.Type {
	case ResultFailure:
		title = ErrorTitleStyle.Render(fmt.Sprintf("   %s  FAILED  ─  %s", FailureMarker, r.Title))
		color = ErrorColor
	case ResultWarning:
		title = WarningTitleStyle.Render(fmt.Sprintf("   %s  WARNING  ─  %s", WarningMarker, r.Title))
		color = WarningColor
	default:
		title = SuccessTitleStyle.Render(fmt.Sprintf("   %s  SUCCESS  ─  %s", SuccessMarker, r.Title))
		color = SuccessColor
	}

	lines := []string{"", title, ""}

	if r.Error != "" {
		lines = append(lines, ErrorMessageStyle.Render("   Error: "+r.Error), "")
	}

	if len(r.Details) > 0 {
		lines = append(lines, renderDetails(r.Details)...)
		lines = append(lines, "")
	}

	if len(r.Troubleshooting) > 0 {
		lines = append(lines, r.renderTroubleshootingBox(width), "")
	}

	return BoxStyle(width, color).Render(strings.Join(lines, "\n"))
}

func (r *Result) renderTroubleshootingBox(width int) string {
	lines := []string{TroubleshootingTitleStyle.Render("Troubleshooting:"), ""}
	for _, tip := range r.Troubleshooting {
		lines = append(lines, TroubleshootingItemStyle.Render("  • "+tip))
	}
	return TroubleshootingBoxStyle(width).Render(strings.Join(lines, "\n"))
}

// String implements fmt.Stringer
func (r *Result) String() string {
	return r.Render()
}

func renderDetails(details []workflow.Detail) []string {
	lines := make([]string, 0, len(details))
	for _, d := range details {
		lines = append(lines, ResultKeyStyle.Render("   "+d.Label+":")+" "+ResultValueStyle.Render(d.Value))
	}
	return lines
}

// hintLines keeps the bullet points of a gateway hint
func hintLines(hint string) []string {
	var tips []string
	for _, line := range strings.Split(hint, "\n") {
		line = strings.TrimSpace(line)
		if tip, ok := strings.CutPrefix(line, "• "); ok {
			tips = append(tips, tip)
		}
	}
	if len(tips) == 0 && hint != "" {
		tips = []string{hint}
	}
	return tips
}
