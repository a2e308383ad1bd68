package tui

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/muurk/lpac-console/internal/discovery"
)

// ScanFunc discovers routers on the local network
type ScanFunc func(ctx context.Context) ([]*discovery.Router, error)

// SavedRouter is a remembered router offered before any scan result
type SavedRouter struct {
	Name    string
	Address string
}

type scanCompleteMsg struct {
	routers []*discovery.Router
	err     error
}

// routerSelectedMsg asks the console to connect to address
type routerSelectedMsg struct {
	label   string
	address string
}

// routerItem wraps a saved or discovered router for bubbles/list
type routerItem struct {
	name    string
	address string
	detail  string
	luci    bool
}

func (r routerItem) FilterValue() string { return r.name + " " + r.address }

// routerDelegate renders one router per two lines
type routerDelegate struct{}

func (d routerDelegate) Height() int { return 2 }

func (d routerDelegate) Spacing() int { return 1 }

func (d routerDelegate) Update(msg tea.Msg, m *list.Model) tea.Cmd { return nil }

func (d routerDelegate) Render(w io.Writer, m list.Model, index int, item list.Item) {
	r, ok := item.(routerItem)
	if !ok {
		return
	}

	title := r.name
	if r.luci {
		title += " " + SelectedListItemStyle.Render("LuCI")
	}
	detail := r.address
	if r.detail != "" {
		detail += " • " + r.detail
	}

	if index == m.Index() {
		fmt.Fprintf(w, "%s\n  %s", SelectedListItemStyle.Render("→ "+title), MutedStyle.Render(detail))
		return
	}
	fmt.Fprintf(w, "  %s\n  %s", title, MutedStyle.Render(detail))
}

// pickerModel chooses the router to manage: saved entries, mDNS results or
// an address typed by hand.
type pickerModel struct {
	scan     ScanFunc
	saved    []SavedRouter
	list     list.Model
	scanning bool
	err      error

	manual bool
	input  textinput.Model
}

func newPickerModel(scan ScanFunc, saved []SavedRouter) pickerModel {
	l := list.New(nil, routerDelegate{}, MinTerminalWidth, 12)
	l.Title = "Routers"
	l.SetShowStatusBar(false)
	l.SetShowHelp(false)
	l.SetFilteringEnabled(false)
	l.Styles.Title = SectionTitleStyle

	in := textinput.New()
	in.Placeholder = "192.168.1.1"
	in.CharLimit = 253
	in.Width = 40

	p := pickerModel{scan: scan, saved: saved, list: l, input: in}
	p.setItems(nil)
	return p
}

func (p *pickerModel) setItems(found []*discovery.Router) {
	items := make([]list.Item, 0, len(p.saved)+len(found))
	for _, s := range p.saved {
		items = append(items, routerItem{name: s.Name, address: s.Address, detail: "saved"})
	}
	for _, r := range found {
		name := r.Instance
		if name == "" {
			name = strings.TrimSuffix(r.Hostname, ".")
		}
		items = append(items, routerItem{name: name, address: r.BaseURL(), detail: r.Hostname, luci: r.LikelyLuCI})
	}
	p.list.SetItems(items)
}

func (p *pickerModel) startScan(ctx context.Context) tea.Cmd {
	if p.scan == nil {
		return nil
	}
	p.scanning = true
	p.err = nil
	return p.scanCmd(ctx)
}

func (p pickerModel) scanCmd(ctx context.Context) tea.Cmd {
	scan := p.scan
	return func() tea.Msg {
		routers, err := scan(ctx)
		return scanCompleteMsg{routers: routers, err: err}
	}
}

func (p *pickerModel) setSize(width, height int) {
	p.list.SetWidth(width - 6)
	if h := height - 12; h > 4 {
		p.list.SetHeight(h)
	}
}

func (p *pickerModel) update(ctx context.Context, msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case scanCompleteMsg:
		p.scanning = false
		p.err = msg.err
		p.setItems(msg.routers)
		return nil

	case tea.KeyMsg:
		if p.manual {
			return p.updateManual(msg)
		}
		switch msg.String() {
		case "enter", " ":
			if r, ok := p.list.SelectedItem().(routerItem); ok {
				return selectRouter(r.name, r.address)
			}
			return nil
		case "s":
			if !p.scanning {
				return p.startScan(ctx)
			}
			return nil
		case "m":
			p.manual = true
			p.input.SetValue("")
			return p.input.Focus()
		}
	}

	var cmd tea.Cmd
	p.list, cmd = p.list.Update(msg)
	return cmd
}

func (p *pickerModel) updateManual(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "esc":
		p.manual = false
		p.input.Blur()
		return nil
	case "enter":
		value := strings.TrimSpace(p.input.Value())
		if value == "" {
			return nil
		}
		p.manual = false
		p.input.Blur()
		return selectRouter(value, value)
	}
	var cmd tea.Cmd
	p.input, cmd = p.input.Update(msg)
	return cmd
}

func selectRouter(label, address string) tea.Cmd {
	return func() tea.Msg { return routerSelectedMsg{label: label, address: address} }
}

func (p pickerModel) view(spinner string) string {
	var b strings.Builder

	if p.manual {
		b.WriteString(SectionTitleStyle.Render("Router address") + "\n\n")
		b.WriteString(p.input.View() + "\n\n")
		b.WriteString(MutedStyle.Render("host, host:port or URL of the OpenWrt web interface"))
		return b.String()
	}

	b.WriteString(p.list.View() + "\n\n")
	switch {
	case p.scanning:
		b.WriteString(spinner + " Scanning the local network for OpenWrt routers...")
	case p.err != nil:
		b.WriteString(ModalErrorStyle.Render("✗ Scan failed: " + p.err.Error()))
	case len(p.list.Items()) == 0:
		b.WriteString(MutedStyle.Render("No routers found. Press m to enter an address."))
	}
	return b.String()
}

func (p pickerModel) footer() string {
	if p.manual {
		return "enter connect • esc back"
	}
	return "↑/↓ select • enter connect • s scan • m manual address • q quit"
}
