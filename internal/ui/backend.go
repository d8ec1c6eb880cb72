package ui

import (
	"github.com/atomicstack/qmf-explorer/internal/backend"
	tea "github.com/charmbracelet/bubbletea"
)

func waitForNotification(notes <-chan backend.Notification) tea.Cmd {
	return func() tea.Msg {
		n, ok := <-notes
		if !ok {
			return notificationsDoneMsg{}
		}
		return notificationMsg{note: n}
	}
}

type notificationMsg struct {
	note backend.Notification
}

type notificationsDoneMsg struct{}

func (m *Model) handleNotificationMsg(msg tea.Msg) tea.Cmd {
	noteMsg, ok := msg.(notificationMsg)
	if !ok {
		return nil
	}
	m.applyNotification(noteMsg.note)
	if m.notes != nil {
		return waitForNotification(m.notes)
	}
	return nil
}

func (m *Model) handleNotificationsDoneMsg(msg tea.Msg) tea.Cmd {
	m.notes = nil
	return nil
}

func (m *Model) applyNotification(n backend.Notification) {
	res := m.dispatcher.Handle(n)
	if res.ConnectivityChanged {
		for _, d := range m.details {
			d.Clear()
		}
		for t := range m.unseen {
			m.unseen[t] = 0
		}
		if m.dispatcher.Connected() {
			m.errMsg = ""
		}
	}
	if res.StatusUpdated {
		m.clearInfo()
	}
	m.refreshDirtyTabs()
}
