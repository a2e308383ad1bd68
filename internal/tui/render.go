package tui

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/muurk/lpac-console/internal/loader"
	"github.com/muurk/lpac-console/internal/ui"
	"github.com/muurk/lpac-console/internal/view"
)

// View renders the current screen
func (m Model) View() string {
	if m.screen == screenRouters {
		content := m.picker.view(m.spinner.View())
		return RenderApplicationContainer(content, m.picker.footer(), "", m.width, m.height)
	}

	if m.modal != nil {
		width := SafeModalWidth(ModalWidth, m.width)
		return RenderModal(m.modal.view(width), m.width, m.height)
	}
	if m.showHelp {
		return RenderModal(m.renderHelp(), m.width, m.height)
	}

	content := lipgloss.JoinVertical(lipgloss.Left,
		m.renderTabs(),
		"",
		m.renderBody(),
		m.renderStatus(),
	)
	return RenderApplicationContainer(content, m.footer(), m.router, m.width, m.height)
}

func (m Model) renderTabs() string {
	tabs := make([]string, 0, len(m.views))
	for i, v := range m.views {
		label := strconv.Itoa(i+1) + " " + v.Title
		if i == m.tab {
			tabs = append(tabs, ActiveTabStyle.Render(label))
		} else {
			tabs = append(tabs, TabStyle.Render(label))
		}
	}
	return lipgloss.NewStyle().Width(m.width - 6).Render(strings.Join(tabs, " "))
}

func (m Model) bodyWidth() int {
	return max(m.width-8, MinTerminalWidth-8)
}

func (m Model) renderBody() string {
	if m.snap == nil {
		return m.spinner.View() + " Loading " + m.currentView().Title + "..."
	}

	sel := view.SelectBranch(m.snap)
	switch sel.Branch {
	case view.BranchUnavailable, view.BranchError:
		return ui.NewSelectionResult(sel).SetWidth(m.bodyWidth()).Render()
	case view.BranchEmpty:
		return SectionTitleStyle.Render(sel.Title) + "\n\n" + MutedStyle.Render(sel.Message)
	}

	var body string
	switch m.snap.View.Name {
	case loader.Profiles.Name:
		body = m.renderProfiles()
	case loader.Notifications.Name:
		body = m.renderNotifications()
	case loader.Download.Name:
		body = renderSections(view.Sections(m.snap)) + "\n\n" + m.download.view(m.bodyWidth())
	case loader.Settings.Name:
		body = SectionTitleStyle.Render("Configuration") + "\n\n" + m.settings.view(m.bodyWidth())
		if note := view.SettingsNote(m.snap); note != "" {
			body += "\n\n" + ModalWarningStyle.Render(note)
		}
	default:
		body = renderSections(view.Sections(m.snap))
	}

	if n := m.snap.Failures(); n > 0 {
		body += "\n\n" + ModalWarningStyle.Render(fmt.Sprintf("%d secondary read(s) failed; some information may be missing", n))
	}
	return body
}

func renderSections(sections []view.Section) string {
	var b strings.Builder
	for i, sec := range sections {
		if i > 0 {
			b.WriteString("\n\n")
		}
		b.WriteString(SectionTitleStyle.Render(sec.Title))
		for _, r := range sec.Rows {
			value := ValueStyle.Render(r.Value)
			if r.Badge != nil {
				value = ui.RenderBadge(*r.Badge)
			}
			b.WriteString("\n" + LabelStyle.Render(r.Label) + value)
		}
		if sec.Note != "" {
			b.WriteString("\n\n" + MutedStyle.Render(sec.Note))
		}
	}
	return b.String()
}

func (m Model) renderProfiles() string {
	profiles, _ := m.snap.Profiles()

	var b strings.Builder
	b.WriteString(SectionTitleStyle.Render(fmt.Sprintf("Installed Profiles (%d)", len(profiles))) + "\n")
	for i, p := range profiles {
		name := view.Truncate(p.DisplayName(), 28)
		line := fmt.Sprintf("%-28s  %-20s  ", name, p.ICCID) + ui.RenderBadge(view.ProfileBadge(p))
		if i == m.cursor {
			b.WriteString("\n" + SelectedListItemStyle.Render("→ ") + line)
			b.WriteString("\n    " + MutedStyle.Render(view.OrDefault(p.ServiceProvider, "Unknown provider")+" • "+view.OrDefault(p.Class, "N/A")))
		} else {
			b.WriteString("\n" + ListItemStyle.Render(line))
		}
	}
	return b.String()
}

func (m Model) renderNotifications() string {
	notes, _ := m.snap.Notifications()

	var b strings.Builder
	b.WriteString(SectionTitleStyle.Render(fmt.Sprintf("Pending Notifications (%d)", len(notes))) + "\n")
	for i, n := range notes {
		line := fmt.Sprintf("#%-5d %-12s %s", n.SeqNumber,
			view.OrDefault(n.Operation, "Unknown"), view.Truncate(view.OrDefault(n.Address, "N/A"), 40))
		if i == m.cursor {
			b.WriteString("\n" + SelectedListItemStyle.Render("→ "+line))
		} else {
			b.WriteString("\n" + ListItemStyle.Render(line))
		}
	}
	return b.String()
}

// renderControls lists the action keys available right now
func (m Model) renderControls() string {
	if m.snap == nil || m.executing {
		return ""
	}
	controls := append(view.ItemActions(m.snap, m.cursor), view.Actions(m.snap)...)
	if len(controls) == 0 {
		return ""
	}

	parts := make([]string, 0, len(controls))
	for _, c := range controls {
		style := ControlKeyStyle
		if c.Destructive {
			style = DangerControlKeyStyle
		}
		parts = append(parts, style.Render(c.Key)+" "+MutedStyle.Render(c.Label))
	}
	return strings.Join(parts, "   ")
}

func (m Model) renderStatus() string {
	var lines []string

	if controls := m.renderControls(); controls != "" {
		lines = append(lines, "", controls)
	}
	if m.executing {
		lines = append(lines, "", m.spinner.View()+" "+m.progress)
	} else if m.loading && m.snap != nil {
		lines = append(lines, "", m.spinner.View()+" Refreshing...")
	}
	if out := m.lastOutcome; out != nil && len(out.Details) > 0 {
		lines = append(lines, "", ui.ResultFromOutcome(*out).SetWidth(m.bodyWidth()).Render())
	}
	for _, t := range m.toasts {
		lines = append(lines, renderToast(t))
	}
	return strings.Join(lines, "\n")
}

func renderToast(t toast) string {
	return ui.LevelStyle(t.level).Render(ui.LevelMarker(t.level)) + " " + t.text
}

func (m Model) renderHelp() string {
	width := SafeModalWidth(ModalWidth, m.width)
	lines := []string{
		FocusedInputStyle.Render("Keyboard Shortcuts"),
		"",
		m.help.FullHelpView(m.keys.FullHelp()),
		"",
		MutedStyle.Render("1-" + strconv.Itoa(len(m.views)) + " jump to a view • esc back to routers"),
		MutedStyle.Render("Action keys are listed under each view."),
		"",
		MutedStyle.Render("? or esc to close"),
	}
	return ModalBoxStyle(width, PrimaryColor).Render(strings.Join(lines, "\n"))
}

func (m Model) footer() string {
	switch {
	case m.executing:
		return "working... keys are disabled until the operation finishes"
	case m.download.editing, m.settings.editing:
		return "enter confirm • esc done editing"
	}
	return m.help.ShortHelpView(m.keys.ShortHelp())
}
