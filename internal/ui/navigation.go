package ui

import (
	"fmt"
	"strconv"

	"github.com/atomicstack/qmf-explorer/internal/format/table"
	"github.com/atomicstack/qmf-explorer/internal/logging/events"
	"github.com/atomicstack/qmf-explorer/internal/qmf"
	"github.com/atomicstack/qmf-explorer/internal/state"
	uistate "github.com/atomicstack/qmf-explorer/internal/ui/state"
	tea "github.com/charmbracelet/bubbletea"
)

type tab int

const (
	tabAgents tab = iota
	tabObjects
	tabEvents
	tabCount
)

// column limits keep one very long object name from pushing the rest of the
// table off screen
var (
	agentColumnLimits  = []int{48, 0}
	objectColumnLimits = []int{40, 32, 0}
	eventColumnLimits  = []int{0, 8, 40, 0}
)

func (t tab) id() string {
	switch t {
	case tabAgents:
		return "agents"
	case tabObjects:
		return "objects"
	case tabEvents:
		return "events"
	}
	return "unknown"
}

func (t tab) title() string {
	switch t {
	case tabAgents:
		return "Agents"
	case tabObjects:
		return "Objects"
	case tabEvents:
		return "Events"
	}
	return "Unknown"
}

func (m *Model) currentLevel() *level {
	return m.tabs[m.active]
}

func (m *Model) currentDetail() *state.DetailTable {
	return m.details[m.active]
}

// observeStores marks tabs for refresh whenever their store changes and counts
// rows that arrived while the tab was in the background.
func (m *Model) observeStores() {
	watch := func(t tab) func(state.Change) {
		return func(c state.Change) {
			m.dirty[t] = true
			switch c.Kind {
			case state.RowsInserted:
				if t != m.active {
					m.unseen[t] += c.Rows.Len()
				}
			case state.RowsRemoved:
				if m.unseen[t] > 0 {
					m.unseen[t] -= c.Rows.Len()
					if m.unseen[t] < 0 {
						m.unseen[t] = 0
					}
				}
			}
		}
	}
	m.agents.Observe(watch(tabAgents))
	m.objects.Observe(watch(tabObjects))
	m.events.Observe(watch(tabEvents))
}

// refreshDirtyTabs rebuilds the row labels of every tab whose store changed.
func (m *Model) refreshDirtyTabs() {
	for t := tab(0); t < tabCount; t++ {
		if !m.dirty[t] {
			continue
		}
		m.dirty[t] = false
		lvl := m.tabs[t]
		switch t {
		case tabAgents:
			lvl.UpdateItems(agentItems(m.agents.Entries()))
		case tabObjects:
			lvl.UpdateItems(objectItems(m.objects.Entries()))
		case tabEvents:
			lvl.UpdateItems(eventItems(m.events.Entries()))
		}
		m.syncViewport(lvl)
	}
}

func agentItems(entries []qmf.Agent) []uistate.Item {
	rows := make([][]string, len(entries))
	for i, a := range entries {
		rows[i] = []string{a.Label(), fmt.Sprintf("epoch %d", a.Epoch)}
	}
	labels := table.FormatLimited(rows, nil, agentColumnLimits)
	items := make([]uistate.Item, len(entries))
	for i, a := range entries {
		items[i] = uistate.Item{ID: a.Name, Label: labels[i]}
	}
	return items
}

func objectItems(entries []qmf.Data) []uistate.Item {
	rows := make([][]string, len(entries))
	for i, d := range entries {
		rows[i] = []string{d.SchemaID.String(), d.ObjectName, d.Agent}
	}
	labels := table.FormatLimited(rows, nil, objectColumnLimits)
	items := make([]uistate.Item, len(entries))
	for i := range entries {
		items[i] = uistate.Item{ID: strconv.Itoa(i), Label: labels[i]}
	}
	return items
}

func eventItems(entries []state.EventRow) []uistate.Item {
	rows := make([][]string, len(entries))
	for i, e := range entries {
		rows[i] = []string{e.Time, e.Severity, e.Name, e.Properties}
	}
	labels := table.FormatLimited(rows, nil, eventColumnLimits)
	items := make([]uistate.Item, len(entries))
	for i := range entries {
		items[i] = uistate.Item{ID: strconv.Itoa(i), Label: labels[i]}
	}
	return items
}

func (m *Model) switchTab(delta int) {
	next := (int(m.active) + delta) % int(tabCount)
	if next < 0 {
		next += int(tabCount)
	}
	m.active = tab(next)
	m.unseen[m.active] = 0
	m.errMsg = ""
	m.forceClearInfo()
	m.syncViewport(m.currentLevel())
	events.UI.Tab(m.active.id())
}

func (m *Model) handleEscapeKey() tea.Cmd {
	if m.applyFilterEdit(m.currentLevel(), clearFilterEdit) {
		return nil
	}
	if detail := m.currentDetail(); detail.Len() > 0 || detail.Title() != "" {
		detail.Clear()
		return nil
	}
	return tea.Quit
}

// handleEnterKey fills the detail table of the active tab from the row under
// the cursor.
func (m *Model) handleEnterKey() tea.Cmd {
	current := m.currentLevel()
	item, ok := current.Current()
	if !ok {
		return nil
	}
	detail := m.currentDetail()
	switch m.active {
	case tabAgents:
		for _, a := range m.agents.Entries() {
			if a.Name == item.ID {
				detail.SetProperties(a.Label(), a.Attributes)
				break
			}
		}
	case tabObjects:
		idx, err := strconv.Atoi(item.ID)
		entries := m.objects.Entries()
		if err != nil || idx < 0 || idx >= len(entries) {
			return nil
		}
		d := entries[idx]
		detail.SetProperties(d.Label(), d.Properties)
	case tabEvents:
		idx, err := strconv.Atoi(item.ID)
		entries := m.events.Entries()
		if err != nil || idx < 0 || idx >= len(entries) {
			return nil
		}
		row := entries[idx]
		pairs := []state.KeyValue{
			{Key: "time", Value: row.Time},
			{Key: "severity", Value: row.Severity},
			{Key: "agent", Value: row.Agent},
		}
		for _, p := range row.Data.Properties {
			pairs = append(pairs, state.KeyValue{Key: p.Key, Value: qmf.FormatValue(p.Value)})
		}
		detail.SetPairs(row.Name, pairs)
	}
	events.UI.Detail(current.ID, detail.Title())
	return nil
}

// moveCursor applies a cursor motion to the active tab and traces it.
func (m *Model) moveCursor(move func(*level) bool) {
	current := m.currentLevel()
	if current == nil {
		return
	}
	if move(current) {
		events.UI.Cursor(current.ID, current.Cursor)
	}
	m.syncViewport(current)
}

func (m *Model) moveCursorBy(delta int) {
	m.moveCursor(func(l *level) bool { return l.MoveCursor(delta, true) })
}

func (m *Model) moveCursorPage(pages int) {
	visible := m.maxVisibleItems()
	m.moveCursor(func(l *level) bool { return l.MoveCursorPage(pages, visible) })
}

func (m *Model) syncViewport(l *level) {
	if l == nil {
		return
	}
	l.EnsureCursorVisible(m.maxVisibleItems())
}

func (m *Model) handleKeyMsg(msg tea.Msg) tea.Cmd {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return nil
	}
	if m.mode != ModeBrowse {
		return nil
	}
	switch keyMsg.String() {
	case "ctrl+c":
		return tea.Quit
	case "tab":
		m.switchTab(1)
		return nil
	case "shift+tab":
		m.switchTab(-1)
		return nil
	case "ctrl+o":
		return m.startConnectForm()
	case "ctrl+l":
		m.connectLocalhost()
		return nil
	case "ctrl+x":
		m.disconnect()
		return nil
	case "ctrl+f":
		return m.startAgentFilterForm()
	}
	if handled, cmd := m.handleTextInput(keyMsg); handled {
		return cmd
	}
	switch keyMsg.String() {
	case "esc":
		return m.handleEscapeKey()
	case "enter":
		return m.handleEnterKey()
	case "up":
		m.moveCursorBy(-1)
	case "down":
		m.moveCursorBy(1)
	case "pgup":
		m.moveCursorPage(-1)
	case "pgdown":
		m.moveCursorPage(1)
	case "home":
		m.moveCursor((*level).MoveCursorHome)
	case "end":
		m.moveCursor((*level).MoveCursorEnd)
	}
	return nil
}
