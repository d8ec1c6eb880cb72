package ui

import (
	"reflect"

	"github.com/atomicstack/qmf-explorer/internal/backend"
	"github.com/atomicstack/qmf-explorer/internal/data/dispatcher"
	"github.com/atomicstack/qmf-explorer/internal/qmf"
	"github.com/atomicstack/qmf-explorer/internal/state"
	"github.com/atomicstack/qmf-explorer/internal/theme"
	"github.com/atomicstack/qmf-explorer/internal/ui/command"
	uistate "github.com/atomicstack/qmf-explorer/internal/ui/state"
	"github.com/charmbracelet/bubbles/cursor"
	tea "github.com/charmbracelet/bubbletea"
)

type level = uistate.Level

type Mode int

const (
	ModeBrowse Mode = iota
	ModeConnectForm
	ModeAgentFilterForm
)

var styles = theme.Default()

type msgHandler func(tea.Msg) tea.Cmd

// Config carries the presentation settings for NewModel.
type Config struct {
	Width      int
	Height     int
	ShowFooter bool

	// URL, ConnectionOptions and SessionOptions prefill the open dialog.
	URL               string
	ConnectionOptions string
	SessionOptions    string
}

// Model implements the Bubble Tea model for the QMF explorer shell.
type Model struct {
	tabs         [tabCount]*level
	details      [tabCount]*state.DetailTable
	detailScroll [tabCount]int
	active       tab
	unseen       [tabCount]int
	dirty        [tabCount]bool

	errMsg      string
	info        notice
	width       int
	height      int
	fixedWidth  bool
	fixedHeight bool
	showFooter  bool

	filterCursor      cursor.Model
	filterCursorDirty bool
	staticCursor      bool

	mode        Mode
	connectForm *connectForm
	filterForm  *agentFilterForm
	lastConnect connectValues
	agentFilter string

	handlers map[reflect.Type]msgHandler

	bus        *command.Bus
	notes      <-chan backend.Notification
	agents     state.AgentStore
	objects    state.ObjectStore
	events     state.EventStore
	dispatcher *dispatcher.Dispatcher
}

// NewModel builds the shell. Commands go to target; worker notifications are
// read from notes, which may be nil when the caller feeds them in directly.
func NewModel(cfg Config, target command.Enqueuer, notes <-chan backend.Notification) *Model {
	agents := state.NewAgentStore()
	objects := state.NewObjectStore()
	evts := state.NewEventStore()
	m := &Model{
		bus:         command.New(target),
		notes:       notes,
		agents:      agents,
		objects:     objects,
		events:      evts,
		dispatcher:  dispatcher.New(agents, objects, evts),
		showFooter:  cfg.ShowFooter,
		mode:        ModeBrowse,
		agentFilter: qmf.DefaultAgentFilter,
		lastConnect: connectValues{
			URL:               cfg.URL,
			ConnectionOptions: cfg.ConnectionOptions,
			SessionOptions:    cfg.SessionOptions,
		},
	}
	if m.lastConnect.SessionOptions == "" {
		m.lastConnect.SessionOptions = qmf.DefaultSessionOptions
	}
	for t := tab(0); t < tabCount; t++ {
		m.tabs[t] = uistate.NewLevel(t.id(), t.title(), nil)
		m.details[t] = state.NewDetailTable()
		m.details[t].Observe(func(state.Change) { m.detailScroll[t] = 0 })
	}
	m.tabs[tabEvents].Follow = true
	m.observeStores()
	if cfg.Width > 0 {
		m.width = cfg.Width
		m.fixedWidth = true
	}
	if cfg.Height > 0 {
		m.height = cfg.Height
		m.fixedHeight = true
	}
	c := cursor.New()
	if styles.Cursor != nil {
		c.Style = styles.Cursor.Copy()
	}
	if styles.Filter != nil {
		c.TextStyle = styles.Filter.Copy()
	}
	c.SetChar(" ")
	m.filterCursor = c
	m.registerHandlers()
	return m
}

// Init is part of the tea.Model interface.
func (m *Model) Init() tea.Cmd {
	cmds := []tea.Cmd{}
	if m.notes != nil {
		cmds = append(cmds, waitForNotification(m.notes))
	}
	if cmd := m.filterCursor.Focus(); cmd != nil {
		cmds = append(cmds, cmd)
	}
	if len(cmds) == 0 {
		return nil
	}
	return tea.Batch(cmds...)
}

// Update responds to Bubble Tea messages.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	cmds := make([]tea.Cmd, 0, 4)
	if cmd := m.updateFilterCursorModel(msg); cmd != nil {
		cmds = append(cmds, cmd)
	}
	if handled, cmd := m.handleActiveForm(msg); handled {
		if cmd != nil {
			cmds = append(cmds, cmd)
		}
		return m, m.finishUpdate(cmds)
	}

	if handler := m.handlerFor(msg); handler != nil {
		if cmd := handler(msg); cmd != nil {
			cmds = append(cmds, cmd)
		}
	}
	return m, m.finishUpdate(cmds)
}

func (m *Model) handleActiveForm(msg tea.Msg) (bool, tea.Cmd) {
	// notifications keep flowing while a dialog is open
	if _, ok := msg.(tea.KeyMsg); !ok {
		return false, nil
	}
	switch m.mode {
	case ModeConnectForm:
		return m.handleConnectForm(msg)
	case ModeAgentFilterForm:
		return m.handleAgentFilterForm(msg)
	default:
		return false, nil
	}
}

func (m *Model) registerHandlers() {
	m.handlers = map[reflect.Type]msgHandler{
		reflect.TypeOf(tea.KeyMsg{}):           m.handleKeyMsg,
		reflect.TypeOf(tea.WindowSizeMsg{}):    m.handleWindowSizeMsg,
		reflect.TypeOf(tea.MouseMsg{}):         m.handleMouseMsg,
		reflect.TypeOf(notificationMsg{}):      m.handleNotificationMsg,
		reflect.TypeOf(notificationsDoneMsg{}): m.handleNotificationsDoneMsg,
	}
}

func (m *Model) handlerFor(msg tea.Msg) msgHandler {
	if msg == nil || m.handlers == nil {
		return nil
	}
	t := reflect.TypeOf(msg)
	if handler, ok := m.handlers[t]; ok {
		return handler
	}
	if t.Kind() == reflect.Ptr {
		if handler, ok := m.handlers[t.Elem()]; ok {
			return handler
		}
	}
	return nil
}

func (m *Model) finishUpdate(cmds []tea.Cmd) tea.Cmd {
	if m.filterCursorDirty {
		m.filterCursorDirty = false
		m.filterCursor.Blink = false
		if cmd := m.filterCursor.BlinkCmd(); cmd != nil {
			cmds = append(cmds, cmd)
		}
	}
	if len(cmds) == 0 {
		return nil
	}
	return tea.Batch(cmds...)
}

// Connected reports whether the worker last announced an open session.
func (m *Model) Connected() bool {
	return m.dispatcher.Connected()
}

// Status returns the connection status line shown at the bottom.
func (m *Model) Status() string {
	return m.dispatcher.Status()
}
