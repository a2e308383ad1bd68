package tui

import (
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/muurk/lpac-console/internal/workflow"
)

// confirmModal renders a workflow.Prompt and collects the Answer. It never
// talks to the controller; the model does that when the user submits.
type confirmModal struct {
	prompt   workflow.Prompt
	input    textinput.Model
	hasInput bool
	option   bool
	err      string
}

type modalResult int

const (
	modalPending modalResult = iota
	modalSubmitted
	modalCancelled
)

func newConfirmModal(p workflow.Prompt) *confirmModal {
	m := &confirmModal{prompt: p}
	if p.Option != nil {
		m.option = p.Option.Default
	}
	if p.Input != nil {
		in := textinput.New()
		in.Placeholder = p.Input.Placeholder
		in.SetValue(p.Input.Initial)
		if p.Input.MaxLength > 0 {
			in.CharLimit = p.Input.MaxLength
		}
		in.Prompt = "› "
		in.Focus()
		m.input = in
		m.hasInput = true
	}
	return m
}

// answer builds the Answer for the current modal state
func (m *confirmModal) answer() workflow.Answer {
	ans := workflow.Answer{Accepted: true, Option: m.option}
	if m.hasInput {
		ans.Text = m.input.Value()
	}
	return ans
}

func (m *confirmModal) update(msg tea.Msg) (modalResult, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		if m.hasInput {
			var cmd tea.Cmd
			m.input, cmd = m.input.Update(msg)
			return modalPending, cmd
		}
		return modalPending, nil
	}

	switch keyMsg.String() {
	case "esc":
		return modalCancelled, nil
	case "enter":
		return modalSubmitted, nil
	case "tab":
		if m.prompt.Option != nil {
			m.option = !m.option
		}
		return modalPending, nil
	}

	if !m.hasInput {
		switch keyMsg.String() {
		case "y", "Y":
			return modalSubmitted, nil
		case "n", "N":
			return modalCancelled, nil
		case " ":
			if m.prompt.Option != nil {
				m.option = !m.option
			}
		}
		return modalPending, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	m.err = ""
	return modalPending, cmd
}

func (m *confirmModal) view(width int) string {
	p := m.prompt
	border := PrimaryColor
	switch {
	case p.Destructive:
		border = ErrorColor
	case p.Warning != "":
		border = WarningColor
	}

	inner := width - 6
	var lines []string
	lines = append(lines, lipgloss.NewStyle().Foreground(border).Bold(true).Render(p.Title))

	if p.Question != "" {
		lines = append(lines, "", lipgloss.NewStyle().Width(inner).Render(p.Question))
	}
	if len(p.Details) > 0 {
		lines = append(lines, "")
		for _, d := range p.Details {
			lines = append(lines, LabelStyle.Width(18).Render(d.Label)+ValueStyle.Render(d.Value))
		}
	}
	if p.Warning != "" {
		lines = append(lines, "", ModalWarningStyle.Width(inner).Render("⚠ "+p.Warning))
	}
	if p.Option != nil {
		box := "[ ]"
		if m.option {
			box = "[x]"
		}
		lines = append(lines, "", box+" "+p.Option.Label+MutedStyle.Render("  (tab to toggle)"))
	}
	if m.hasInput {
		label := p.Input.Label
		if p.Token != "" {
			label = `Type "` + p.Token + `" to confirm`
		}
		lines = append(lines, "", FocusedInputStyle.Render(label), m.input.View())
	}
	if m.err != "" {
		lines = append(lines, "", ModalErrorStyle.Width(inner).Render("✗ "+m.err))
	}

	confirm := p.ConfirmLabel
	if confirm == "" {
		confirm = "Confirm"
	}
	keys := "enter " + strings.ToLower(confirm) + " • esc cancel"
	if !m.hasInput {
		keys = "y/enter " + strings.ToLower(confirm) + " • n/esc cancel"
	}
	lines = append(lines, "", MutedStyle.Render(keys))

	return ModalBoxStyle(width, border).Render(strings.Join(lines, "\n"))
}
