package tui

import (
	"context"
	"strconv"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/muurk/lpac-console/internal/gateway"
	"github.com/muurk/lpac-console/internal/loader"
	"github.com/muurk/lpac-console/internal/logging"
	"github.com/muurk/lpac-console/internal/view"
	"github.com/muurk/lpac-console/internal/workflow"
)

// Backend is what the console needs from a router: reads for the loader
// and posts for the controller. *gateway.Client satisfies it.
type Backend interface {
	loader.Getter
	workflow.Poster
}

// ConnectFunc builds the backend for an address chosen in the router picker
type ConnectFunc func(address string) Backend

// Options configures a Model
type Options struct {
	// Backend, when set, skips the router picker
	Backend Backend

	// Router labels the connected router in the header
	Router string

	// StartView is the Name of the first view shown, dashboard by default
	StartView string

	Connect ConnectFunc
	Scan    ScanFunc
	Saved   []SavedRouter

	// Context bounds every load and action. Background when nil.
	Context context.Context
}

type screen int

const (
	screenRouters screen = iota
	screenConsole
)

const toastDuration = 4 * time.Second

type loadedMsg struct {
	seq  int
	snap *loader.Snapshot
}

type executedMsg struct {
	op  workflow.Operation
	env gateway.Envelope
	err error
}

type toastExpiredMsg struct {
	id int
}

type toast struct {
	id    int
	level workflow.Level
	text  string
}

// Model is the console application
type Model struct {
	ctx     context.Context
	connect ConnectFunc
	screen  screen
	router  string

	loader     *loader.Loader
	controller *workflow.Controller

	views   []loader.View
	tab     int
	snap    *loader.Snapshot
	loading bool
	loadSeq int
	cursor  int

	modal       *confirmModal
	executing   bool
	progress    string
	lastOutcome *workflow.Outcome

	download downloadForm
	settings settingsForm

	toasts    []toast
	nextToast int

	picker  pickerModel
	spinner spinner.Model
	help    help.Model
	keys    keyMap

	showHelp bool
	width    int
	height   int
}

// New creates the console model. Without a Backend it opens on the router
// picker.
func New(opts Options) Model {
	ctx := opts.Context
	if ctx == nil {
		ctx = context.Background()
	}

	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = SpinnerStyle

	m := Model{
		ctx:      ctx,
		connect:  opts.Connect,
		views:    loader.Views(),
		download: newDownloadForm(),
		picker:   newPickerModel(opts.Scan, opts.Saved),
		spinner:  s,
		help:     help.New(),
		keys:     newKeyMap(),
		width:    MinTerminalWidth + 8,
		height:   30,
	}

	for i, v := range m.views {
		if v.Name == opts.StartView {
			m.tab = i
		}
	}

	if opts.Backend != nil {
		m.attach(opts.Backend, opts.Router)
	} else {
		m.picker.scanning = opts.Scan != nil
	}
	return m
}

// Init starts the first load, or the first scan on the router picker
func (m Model) Init() tea.Cmd {
	if m.screen == screenConsole {
		return m.loadCmd(m.loadSeq)
	}
	if m.picker.scanning {
		return tea.Batch(m.picker.scanCmd(m.ctx), m.spinner.Tick)
	}
	return nil
}

func (m *Model) attach(b Backend, router string) {
	m.loader = loader.New(b)
	m.controller = workflow.NewController(b)
	m.router = router
	m.screen = screenConsole
	m.snap = nil
	m.cursor = 0
	m.lastOutcome = nil
	m.download = newDownloadForm()
	m.loadSeq++
	m.loading = true
}

func (m Model) currentView() loader.View {
	return m.views[m.tab]
}

// load starts a fresh load of the current tab. Results of older loads are
// dropped when they arrive.
func (m *Model) load() tea.Cmd {
	m.loadSeq++
	m.loading = true
	return m.loadCmd(m.loadSeq)
}

func (m Model) loadCmd(seq int) tea.Cmd {
	l, ctx, v := m.loader, m.ctx, m.currentView()
	return tea.Batch(
		func() tea.Msg { return loadedMsg{seq: seq, snap: l.Load(ctx, v)} },
		m.spinner.Tick,
	)
}

func (m *Model) switchTab(i int) tea.Cmd {
	n := len(m.views)
	m.tab = (i + n) % n
	m.snap = nil
	m.cursor = 0
	m.lastOutcome = nil
	m.download.stopEditing()
	m.settings.editing = false
	return m.load()
}

func (m *Model) addToast(level workflow.Level, text string) tea.Cmd {
	m.nextToast++
	id := m.nextToast
	m.toasts = append(m.toasts, toast{id: id, level: level, text: text})
	if len(m.toasts) > toastLimit {
		m.toasts = m.toasts[len(m.toasts)-toastLimit:]
	}
	return tea.Tick(toastDuration, func(time.Time) tea.Msg { return toastExpiredMsg{id: id} })
}

// Update handles all messages
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		m.picker.setSize(msg.Width, msg.Height)
		return m, nil

	case spinner.TickMsg:
		if !m.loading && !m.executing && !m.picker.scanning {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case toastExpiredMsg:
		for i, t := range m.toasts {
			if t.id == msg.id {
				m.toasts = append(m.toasts[:i:i], m.toasts[i+1:]...)
				break
			}
		}
		return m, nil

	case routerSelectedMsg:
		return m.connectTo(msg)

	case loadedMsg:
		return m.handleLoaded(msg)

	case executedMsg:
		return m.handleExecuted(msg)

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
	}

	if m.screen == screenRouters {
		return m.updateRouters(msg)
	}
	return m.updateConsole(msg)
}

func (m Model) updateRouters(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok && !m.picker.manual {
		switch keyMsg.String() {
		case "q", "esc":
			return m, tea.Quit
		}
	}
	cmd := m.picker.update(m.ctx, msg)
	if m.picker.scanning {
		cmd = tea.Batch(cmd, m.spinner.Tick)
	}
	return m, cmd
}

func (m Model) connectTo(msg routerSelectedMsg) (tea.Model, tea.Cmd) {
	if m.connect == nil {
		return m, nil
	}
	logging.Info("Connecting to router",
		zap.String("router", msg.label),
		zap.String("address", msg.address),
	)
	m.attach(m.connect(msg.address), msg.label)
	return m, m.loadCmd(m.loadSeq)
}

func (m Model) handleLoaded(msg loadedMsg) (tea.Model, tea.Cmd) {
	if msg.seq != m.loadSeq {
		return m, nil
	}
	m.loading = false
	m.snap = msg.snap

	if n := view.Items(m.snap); m.cursor >= n {
		m.cursor = max(n-1, 0)
	}

	if view.SelectBranch(m.snap).Branch == view.BranchReady {
		switch m.snap.View.Name {
		case loader.Settings.Name:
			m.settings = newSettingsForm(m.snap)
		case loader.Download.Name:
			settings, _ := m.snap.Settings()
			m.download.prefill(settings[gateway.SettingDefaultSMDP])
		}
	}
	return m, nil
}

func (m Model) handleExecuted(msg executedMsg) (tea.Model, tea.Cmd) {
	m.executing = false
	m.progress = ""

	out := m.controller.Resolve(msg.op, msg.env, msg.err)
	m.lastOutcome = &out
	cmds := []tea.Cmd{m.addToast(out.Level, out.Message)}

	if out.Succeeded() && msg.op.Endpoint == gateway.EndpointDownloadProfile {
		m.download.reset()
	}
	if out.Reload {
		cmds = append(cmds, m.load())
	}
	return m, tea.Batch(cmds...)
}

func (m Model) updateConsole(msg tea.Msg) (tea.Model, tea.Cmd) {
	keyMsg, isKey := msg.(tea.KeyMsg)

	// an executing operation owns the console until it resolves
	if m.executing {
		return m, nil
	}

	if m.modal != nil {
		return m.updateModal(msg)
	}

	if m.download.editing {
		submit, cmd := m.download.update(msg)
		if submit {
			return m.trigger(view.Control{Key: "d", Label: "Download Profile", Action: view.ActionDownload})
		}
		return m, cmd
	}

	if m.settings.editing {
		return m, m.settings.update(msg)
	}

	if !isKey {
		return m, nil
	}

	if m.showHelp {
		switch keyMsg.String() {
		case "?", "esc", "q":
			m.showHelp = false
		}
		return m, nil
	}

	switch {
	case key.Matches(keyMsg, m.keys.Quit):
		return m, tea.Quit
	case key.Matches(keyMsg, m.keys.Help):
		m.showHelp = true
		return m, nil
	case key.Matches(keyMsg, m.keys.NextTab):
		return m, m.switchTab(m.tab + 1)
	case key.Matches(keyMsg, m.keys.PrevTab):
		return m, m.switchTab(m.tab - 1)
	case key.Matches(keyMsg, m.keys.Reload):
		m.lastOutcome = nil
		return m, m.load()
	}

	if i, err := strconv.Atoi(keyMsg.String()); err == nil && i >= 1 && i <= len(m.views) {
		return m, m.switchTab(i - 1)
	}

	if keyMsg.String() == "esc" && m.connect != nil {
		m.screen = screenRouters
		return m, nil
	}

	if m.snap == nil {
		return m, nil
	}
	ready := view.SelectBranch(m.snap).Branch == view.BranchReady
	name := m.snap.View.Name

	switch {
	case key.Matches(keyMsg, m.keys.Up):
		if name == loader.Settings.Name && ready {
			m.settings.move(-1)
		} else if m.cursor > 0 {
			m.cursor--
		}
		return m, nil
	case key.Matches(keyMsg, m.keys.Down):
		if name == loader.Settings.Name && ready {
			m.settings.move(1)
		} else if m.cursor < view.Items(m.snap)-1 {
			m.cursor++
		}
		return m, nil
	case key.Matches(keyMsg, m.keys.Left) && name == loader.Settings.Name && ready:
		m.settings.cycle(-1)
		return m, nil
	case key.Matches(keyMsg, m.keys.Right) && name == loader.Settings.Name && ready:
		m.settings.cycle(1)
		return m, nil
	case key.Matches(keyMsg, m.keys.Edit) && ready:
		switch name {
		case loader.Download.Name:
			return m, m.download.startEditing()
		case loader.Settings.Name:
			return m, m.settings.startEditing()
		}
		return m, nil
	case keyMsg.String() == "m" && name == loader.Download.Name && ready:
		m.download.toggleMode()
		return m, nil
	}

	controls := append(view.ItemActions(m.snap, m.cursor), view.Actions(m.snap)...)
	if c, ok := view.Lookup(controls, keyMsg.String()); ok {
		return m.trigger(c)
	}
	return m, nil
}

// trigger opens the confirmation for a control. Nothing is sent until the
// user accepts the modal.
func (m Model) trigger(c view.Control) (tea.Model, tea.Cmd) {
	if m.controller.Busy() {
		return m, m.addToast(workflow.LevelWarning, "Another operation is still running")
	}

	op, err := m.operationFor(c)
	if err != nil {
		return m, m.addToast(workflow.LevelWarning, gateway.ShortMessage(err))
	}
	if err := m.controller.Begin(op); err != nil {
		return m, m.addToast(workflow.LevelWarning, gateway.ShortMessage(err))
	}

	pending, _ := m.controller.Pending()
	m.lastOutcome = nil
	m.modal = newConfirmModal(pending.Prompt)
	return m, textinput.Blink
}

func (m Model) operationFor(c view.Control) (workflow.Operation, error) {
	switch c.Action {
	case view.ActionEnable, view.ActionDisable, view.ActionRename, view.ActionDelete:
		profiles, _ := m.snap.Profiles()
		p := profiles[m.cursor]
		switch c.Action {
		case view.ActionEnable:
			return workflow.EnableProfile(p), nil
		case view.ActionDisable:
			return workflow.DisableProfile(p), nil
		case view.ActionRename:
			return workflow.RenameProfile(p), nil
		default:
			return workflow.DeleteProfile(p), nil
		}

	case view.ActionProcess, view.ActionRemove:
		notes, _ := m.snap.Notifications()
		n := notes[m.cursor]
		if c.Action == view.ActionProcess {
			return workflow.ProcessNotification(n, true), nil
		}
		return workflow.RemoveNotification(n), nil

	case view.ActionProcessAll:
		notes, _ := m.snap.Notifications()
		return workflow.ProcessAllNotifications(len(notes))
	case view.ActionRemoveAll:
		notes, _ := m.snap.Notifications()
		return workflow.RemoveAllNotifications(len(notes))
	case view.ActionDownload:
		return workflow.DownloadProfile(m.download.request())
	case view.ActionSaveSettings:
		return workflow.SaveSettings(m.settings.draft), nil
	case view.ActionDiscover:
		return workflow.DiscoverProfiles(), nil
	case view.ActionFactoryReset:
		return workflow.FactoryReset(), nil
	}
	return workflow.Operation{}, gateway.NewValidationError("unsupported action " + string(c.Action))
}

func (m Model) updateModal(msg tea.Msg) (tea.Model, tea.Cmd) {
	result, cmd := m.modal.update(msg)
	switch result {
	case modalCancelled:
		m.controller.Cancel()
		m.modal = nil
		return m, m.addToast(workflow.LevelInfo, "Cancelled")

	case modalSubmitted:
		ready, err := m.controller.Accept(m.modal.answer())
		if err != nil {
			m.modal.err = gateway.ShortMessage(err)
			return m, nil
		}
		m.modal = nil
		m.executing = true
		m.progress = ready.ProgressMessage
		return m, tea.Batch(m.execute(ready), m.spinner.Tick)
	}
	return m, cmd
}

// execute dispatches the accepted operation's single request
func (m Model) execute(op workflow.Operation) tea.Cmd {
	ctrl, ctx := m.controller, m.ctx
	return func() tea.Msg {
		env, err := ctrl.Execute(ctx, op)
		return executedMsg{op: op, env: env, err: err}
	}
}

// Run starts the console on the alternate screen and blocks until the user
// quits.
func Run(opts Options) error {
	progOpts := []tea.ProgramOption{tea.WithAltScreen()}
	if opts.Context != nil {
		progOpts = append(progOpts, tea.WithContext(opts.Context))
	}
	_, err := tea.NewProgram(New(opts), progOpts...).Run()
	return err
}
