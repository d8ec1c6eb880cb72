package ui

import (
	"fmt"
	"strings"

	"github.com/atomicstack/qmf-explorer/internal/logging/events"
	"github.com/atomicstack/qmf-explorer/internal/qmf"
	"github.com/charmbracelet/bubbles/cursor"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

const (
	dialogConnect     = "connect"
	dialogAgentFilter = "agent-filter"
)

type connectValues struct {
	URL               string
	ConnectionOptions string
	SessionOptions    string
}

const (
	fieldURL = iota
	fieldConnectionOptions
	fieldSessionOptions
	connectFieldCount
)

var connectFieldLabels = [connectFieldCount]string{
	"URL",
	"Connection options",
	"Session options",
}

type connectForm struct {
	inputs [connectFieldCount]textinput.Model
	focus  int
	err    string
}

func newInput(placeholder, value string, static bool) textinput.Model {
	ti := textinput.New()
	ti.Prompt = ""
	ti.Placeholder = placeholder
	ti.CharLimit = 512
	if static {
		ti.Cursor.SetMode(cursor.CursorStatic)
	}
	if value != "" {
		ti.SetValue(value)
	}
	return ti
}

func newConnectForm(initial connectValues, static bool) *connectForm {
	url := initial.URL
	if strings.TrimSpace(url) == "" {
		url = "localhost"
	}
	f := &connectForm{}
	f.inputs[fieldURL] = newInput("host:port", url, static)
	f.inputs[fieldConnectionOptions] = newInput("{username:guest, password:guest}", initial.ConnectionOptions, static)
	f.inputs[fieldSessionOptions] = newInput(qmf.DefaultSessionOptions, initial.SessionOptions, static)
	f.focusField(fieldURL)
	f.err = f.validate()
	return f
}

func (f *connectForm) Values() connectValues {
	return connectValues{
		URL:               strings.TrimSpace(f.inputs[fieldURL].Value()),
		ConnectionOptions: strings.TrimSpace(f.inputs[fieldConnectionOptions].Value()),
		SessionOptions:    strings.TrimSpace(f.inputs[fieldSessionOptions].Value()),
	}
}

func (f *connectForm) Error() string { return f.err }

func (f *connectForm) Title() string { return "Open Connection" }

func (f *connectForm) Help() string {
	return "Tab moves between fields. Enter connects. Esc cancels."
}

func (f *connectForm) focusField(i int) tea.Cmd {
	f.focus = i
	var cmd tea.Cmd
	for idx := range f.inputs {
		if idx == i {
			cmd = f.inputs[idx].Focus()
			continue
		}
		f.inputs[idx].Blur()
	}
	return cmd
}

func (f *connectForm) validate() string {
	values := f.Values()
	if values.URL == "" {
		return "Broker URL is required"
	}
	if _, err := qmf.ParseURL(values.URL); err != nil {
		return err.Error()
	}
	if _, err := qmf.ParseOptions(values.ConnectionOptions); err != nil {
		return fmt.Sprintf("connection options: %v", err)
	}
	if _, err := qmf.ParseOptions(values.SessionOptions); err != nil {
		return fmt.Sprintf("session options: %v", err)
	}
	return ""
}

func (f *connectForm) fields() map[string]string {
	values := f.Values()
	return map[string]string{
		"url":                values.URL,
		"connection_options": values.ConnectionOptions,
		"session_options":    values.SessionOptions,
	}
}

// Update returns the follow-up command and whether the form was submitted or
// cancelled.
func (f *connectForm) Update(msg tea.Msg) (tea.Cmd, bool, bool) {
	if key, ok := msg.(tea.KeyMsg); ok {
		switch key.String() {
		case "esc":
			events.UI.DialogCancel(dialogConnect, events.DialogReasonEscape)
			return nil, false, true
		case "tab", "down":
			return f.focusField((f.focus + 1) % connectFieldCount), false, false
		case "shift+tab", "up":
			return f.focusField((f.focus + connectFieldCount - 1) % connectFieldCount), false, false
		case "ctrl+u":
			f.inputs[f.focus].SetValue("")
			f.inputs[f.focus].CursorStart()
			f.err = f.validate()
			return nil, false, false
		case "enter":
			if err := f.validate(); err != "" {
				f.err = err
				return nil, false, false
			}
			f.err = ""
			events.UI.DialogSubmit(dialogConnect, f.fields())
			return nil, true, false
		}
	}
	updated, cmd := f.inputs[f.focus].Update(msg)
	f.inputs[f.focus] = updated
	f.err = f.validate()
	return cmd, false, false
}

type agentFilterForm struct {
	input textinput.Model
	err   string
}

func newAgentFilterForm(current string, static bool) *agentFilterForm {
	f := &agentFilterForm{input: newInput(qmf.DefaultAgentFilter, current, static)}
	f.input.Focus()
	return f
}

func (f *agentFilterForm) Value() string { return strings.TrimSpace(f.input.Value()) }

func (f *agentFilterForm) Error() string { return f.err }

func (f *agentFilterForm) Title() string { return "Agent Filter" }

func (f *agentFilterForm) Help() string {
	return "Press Enter to apply. Esc to cancel."
}

func (f *agentFilterForm) Update(msg tea.Msg) (tea.Cmd, bool, bool) {
	if key, ok := msg.(tea.KeyMsg); ok {
		switch key.String() {
		case "esc":
			events.UI.DialogCancel(dialogAgentFilter, events.DialogReasonEscape)
			return nil, false, true
		case "ctrl+u":
			f.input.SetValue("")
			f.input.CursorStart()
			f.err = ""
			return nil, false, false
		case "enter":
			value := f.Value()
			if value == "" {
				events.UI.DialogCancel(dialogAgentFilter, events.DialogReasonEmpty)
				return nil, false, true
			}
			if _, err := qmf.ParsePredicate(value); err != nil {
				f.err = err.Error()
				return nil, false, false
			}
			f.err = ""
			events.UI.DialogSubmit(dialogAgentFilter, map[string]string{"filter": value})
			return nil, true, false
		}
	}
	updated, cmd := f.input.Update(msg)
	f.input = updated
	f.err = ""
	return cmd, false, false
}

func (m *Model) startConnectForm() tea.Cmd {
	if m.Connected() {
		m.setInfo(infoAlreadyConnected)
		return nil
	}
	m.connectForm = newConnectForm(m.lastConnect, m.staticCursor)
	m.mode = ModeConnectForm
	m.errMsg = ""
	events.UI.DialogOpen(dialogConnect)
	return nil
}

func (m *Model) startAgentFilterForm() tea.Cmd {
	if !m.Connected() {
		m.setInfo(infoNotConnected)
		return nil
	}
	m.filterForm = newAgentFilterForm(m.agentFilter, m.staticCursor)
	m.mode = ModeAgentFilterForm
	m.errMsg = ""
	events.UI.DialogOpen(dialogAgentFilter)
	return nil
}

func (m *Model) handleConnectForm(msg tea.Msg) (bool, tea.Cmd) {
	if m.connectForm == nil {
		m.mode = ModeBrowse
		return false, nil
	}
	cmd, done, cancel := m.connectForm.Update(msg)
	if cancel {
		m.connectForm = nil
		m.mode = ModeBrowse
		return true, cmd
	}
	if done {
		values := m.connectForm.Values()
		m.connectForm = nil
		m.mode = ModeBrowse
		m.connect(values)
		return true, cmd
	}
	return true, cmd
}

func (m *Model) handleAgentFilterForm(msg tea.Msg) (bool, tea.Cmd) {
	if m.filterForm == nil {
		m.mode = ModeBrowse
		return false, nil
	}
	cmd, done, cancel := m.filterForm.Update(msg)
	if cancel {
		m.filterForm = nil
		m.mode = ModeBrowse
		return true, cmd
	}
	if done {
		expr := m.filterForm.Value()
		m.filterForm = nil
		m.mode = ModeBrowse
		m.applyAgentFilter(expr)
		return true, cmd
	}
	return true, cmd
}

func (m *Model) viewConnectForm() string {
	f := m.connectForm
	labelWidth := 0
	for _, label := range connectFieldLabels {
		if len(label) > labelWidth {
			labelWidth = len(label)
		}
	}
	lines := []string{styles.DialogTitle.Render(f.Title()), ""}
	for i, input := range f.inputs {
		label := fmt.Sprintf("%-*s", labelWidth+1, connectFieldLabels[i]+":")
		marker := "  "
		if i == f.focus {
			marker = "> "
		}
		lines = append(lines, marker+styles.DialogLabel.Render(label)+" "+input.View())
	}
	return m.viewDialog(lines, f.Error(), f.Help())
}

func (m *Model) viewAgentFilterForm() string {
	f := m.filterForm
	lines := []string{
		styles.DialogTitle.Render(f.Title()),
		"",
		styles.DialogLabel.Render("Current: ") + m.agentFilter,
		"",
		f.input.View(),
	}
	return m.viewDialog(lines, f.Error(), f.Help())
}

func (m *Model) viewDialog(lines []string, errText, help string) string {
	if errText != "" {
		lines = append(lines, "", styles.Error.Render(errText))
	}
	lines = append(lines, "", help)
	box := styles.DialogBorder.Render(strings.Join(lines, "\n"))
	header := m.tabHeader()
	status := renderBlock([]line{m.statusLine()}, m.width)
	return strings.Join([]string{header, box, status}, "\n")
}
