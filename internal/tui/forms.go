package tui

import (
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/muurk/lpac-console/internal/gateway"
	"github.com/muurk/lpac-console/internal/loader"
	"github.com/muurk/lpac-console/internal/view"
)

const (
	fieldActivationCode = iota
	fieldSMDP
	fieldMatchingID
	fieldConfirmationCode
	fieldIMEI
	fieldCount
)

var downloadLabels = [fieldCount]string{
	"Activation Code",
	"SM-DP+ Address",
	"Matching ID",
	"Confirmation Code",
	"IMEI",
}

// downloadForm collects a gateway.DownloadRequest. Fields are edited only
// after the user enters the form, so single-key controls keep working.
type downloadForm struct {
	mode    gateway.DownloadMode
	inputs  []textinput.Model
	focus   int
	editing bool
}

func newDownloadForm() downloadForm {
	placeholders := [fieldCount]string{
		"LPA:1$smdp.example.com$MATCHING-ID",
		"smdp.example.com",
		"optional",
		"optional",
		"optional, 15 digits",
	}
	f := downloadForm{inputs: make([]textinput.Model, fieldCount)}
	for i := range f.inputs {
		in := textinput.New()
		in.Prompt = ""
		in.Placeholder = placeholders[i]
		f.inputs[i] = in
	}
	f.inputs[fieldIMEI].CharLimit = 15
	return f
}

// fields lists the inputs shown in the current mode
func (f *downloadForm) fields() []int {
	if f.mode == gateway.DownloadManual {
		return []int{fieldSMDP, fieldMatchingID, fieldConfirmationCode, fieldIMEI}
	}
	return []int{fieldActivationCode}
}

func (f *downloadForm) current() int {
	fields := f.fields()
	if f.focus >= len(fields) {
		f.focus = 0
	}
	return fields[f.focus]
}

func (f *downloadForm) toggleMode() {
	f.stopEditing()
	if f.mode == gateway.DownloadManual {
		f.mode = gateway.DownloadByActivationCode
	} else {
		f.mode = gateway.DownloadManual
	}
	f.focus = 0
}

// prefill puts the configured default SM-DP+ address in an empty field
func (f *downloadForm) prefill(defaultSMDP string) {
	if f.inputs[fieldSMDP].Value() == "" && defaultSMDP != "" {
		f.inputs[fieldSMDP].SetValue(defaultSMDP)
	}
}

func (f *downloadForm) request() gateway.DownloadRequest {
	return gateway.DownloadRequest{
		Mode:             f.mode,
		ActivationCode:   f.inputs[fieldActivationCode].Value(),
		SMDP:             f.inputs[fieldSMDP].Value(),
		MatchingID:       f.inputs[fieldMatchingID].Value(),
		ConfirmationCode: f.inputs[fieldConfirmationCode].Value(),
		IMEI:             f.inputs[fieldIMEI].Value(),
	}
}

func (f *downloadForm) reset() {
	for i := range f.inputs {
		f.inputs[i].SetValue("")
	}
	f.stopEditing()
	f.focus = 0
}

func (f *downloadForm) startEditing() tea.Cmd {
	f.editing = true
	return f.inputs[f.current()].Focus()
}

func (f *downloadForm) stopEditing() {
	f.editing = false
	for i := range f.inputs {
		f.inputs[i].Blur()
	}
}

func (f *downloadForm) move(delta int) tea.Cmd {
	n := len(f.fields())
	f.inputs[f.current()].Blur()
	f.focus = (f.focus + delta + n) % n
	return f.inputs[f.current()].Focus()
}

// update handles a message while editing. It reports true when the user
// asked to submit the form.
func (f *downloadForm) update(msg tea.Msg) (bool, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		switch keyMsg.String() {
		case "esc":
			f.stopEditing()
			return false, nil
		case "enter":
			f.stopEditing()
			return true, nil
		case "tab", "down":
			return false, f.move(1)
		case "shift+tab", "up":
			return false, f.move(-1)
		}
	}

	var cmd tea.Cmd
	idx := f.current()
	f.inputs[idx], cmd = f.inputs[idx].Update(msg)
	return false, cmd
}

func (f downloadForm) view(width int) string {
	var b strings.Builder

	mode := "Activation code"
	if f.mode == gateway.DownloadManual {
		mode = "Manual entry"
	}
	b.WriteString(LabelStyle.Render("Mode") + ValueStyle.Render(mode) + MutedStyle.Render("  (m to switch)") + "\n\n")

	inputWidth := width - 30
	if inputWidth < 20 {
		inputWidth = 20
	}
	for i, idx := range f.fields() {
		in := f.inputs[idx]
		in.Width = inputWidth
		label := LabelStyle.Render(downloadLabels[idx])
		if f.editing && i == f.focus {
			label = FocusedInputStyle.Width(24).Render("› " + downloadLabels[idx])
		}
		b.WriteString(label + in.View() + "\n")
	}

	b.WriteString("\n")
	if f.editing {
		b.WriteString(MutedStyle.Render("tab next field • enter download • esc done"))
	} else {
		b.WriteString(MutedStyle.Render("enter edit fields"))
	}
	return b.String()
}

const (
	rowAPDUDriver = iota
	rowHTTPDriver
	rowDefaultSMDP
)

// settingsForm edits a draft of the backend configuration. Save submits
// the whole draft.
type settingsForm struct {
	draft       gateway.Settings
	apduOptions []string
	httpOptions []string
	cursor      int
	smdp        textinput.Model
	editing     bool
	dirty       bool
}

func newSettingsForm(s *loader.Snapshot) settingsForm {
	settings, _ := s.Settings()
	draft := settings.Clone()

	f := settingsForm{draft: draft}
	f.apduOptions = view.DriverOptions(s.APDUDrivers(), draft[gateway.SettingAPDUDriver])
	draft[gateway.SettingAPDUDriver] = view.SelectedDriver(f.apduOptions, draft[gateway.SettingAPDUDriver])
	if http := s.HTTPDrivers(); len(http) > 0 {
		f.httpOptions = view.DriverOptions(http, draft[gateway.SettingHTTPDriver])
		draft[gateway.SettingHTTPDriver] = view.SelectedDriver(f.httpOptions, draft[gateway.SettingHTTPDriver])
	}

	in := textinput.New()
	in.Prompt = ""
	in.Placeholder = "smdp.example.com"
	f.smdp = in
	return f
}

func (f *settingsForm) rows() []int {
	if len(f.httpOptions) > 0 {
		return []int{rowAPDUDriver, rowHTTPDriver, rowDefaultSMDP}
	}
	return []int{rowAPDUDriver, rowDefaultSMDP}
}

func (f *settingsForm) row() int {
	rows := f.rows()
	if f.cursor >= len(rows) {
		f.cursor = len(rows) - 1
	}
	return rows[f.cursor]
}

func (f *settingsForm) move(delta int) {
	n := len(f.rows())
	f.cursor = (f.cursor + delta + n) % n
}

// cycle steps the driver on the selected row through its options
func (f *settingsForm) cycle(delta int) {
	var key string
	var options []string
	switch f.row() {
	case rowAPDUDriver:
		key, options = gateway.SettingAPDUDriver, f.apduOptions
	case rowHTTPDriver:
		key, options = gateway.SettingHTTPDriver, f.httpOptions
	default:
		return
	}
	if len(options) == 0 {
		return
	}

	i := 0
	for j, o := range options {
		if o == f.draft[key] {
			i = j
			break
		}
	}
	i = (i + delta + len(options)) % len(options)
	if f.draft[key] != options[i] {
		f.draft[key] = options[i]
		f.dirty = true
	}
}

func (f *settingsForm) startEditing() tea.Cmd {
	if f.row() != rowDefaultSMDP {
		return nil
	}
	f.editing = true
	f.smdp.SetValue(f.draft[gateway.SettingDefaultSMDP])
	f.smdp.CursorEnd()
	return f.smdp.Focus()
}

func (f *settingsForm) update(msg tea.Msg) tea.Cmd {
	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		switch keyMsg.String() {
		case "esc":
			f.editing = false
			f.smdp.Blur()
			return nil
		case "enter":
			value := strings.TrimSpace(f.smdp.Value())
			if value != f.draft[gateway.SettingDefaultSMDP] {
				f.draft[gateway.SettingDefaultSMDP] = value
				f.dirty = true
			}
			f.editing = false
			f.smdp.Blur()
			return nil
		}
	}
	var cmd tea.Cmd
	f.smdp, cmd = f.smdp.Update(msg)
	return cmd
}

func (f settingsForm) view(width int) string {
	var b strings.Builder

	for i, row := range f.rows() {
		selected := i == f.cursor
		var label, value string
		switch row {
		case rowAPDUDriver:
			label, value = "APDU Driver", "‹ "+f.draft[gateway.SettingAPDUDriver]+" ›"
		case rowHTTPDriver:
			label, value = "HTTP Driver", "‹ "+f.draft[gateway.SettingHTTPDriver]+" ›"
		case rowDefaultSMDP:
			label, value = "Default SM-DP+", view.OrDefault(f.draft[gateway.SettingDefaultSMDP], "(none)")
			if f.editing {
				in := f.smdp
				in.Width = width - 30
				value = in.View()
			}
		}

		if selected {
			b.WriteString(SelectedListItemStyle.Render("→ ") + FocusedInputStyle.Width(22).Render(label) + ValueStyle.Render(value))
		} else {
			b.WriteString("  " + LabelStyle.Width(22).Render(label) + ValueStyle.Render(value))
		}
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(MutedStyle.Render("Available APDU drivers: " + strings.Join(f.apduOptions, ", ")))
	if f.dirty {
		b.WriteString("\n" + ModalWarningStyle.Render("Unsaved changes (s to save)"))
	}
	return b.String()
}
