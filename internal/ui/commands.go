package ui

import (
	"github.com/atomicstack/qmf-explorer/internal/backend"
	"github.com/atomicstack/qmf-explorer/internal/ui/command"
)

const (
	infoAlreadyConnected = "Already connected; close the connection first (ctrl+x)"
	infoNotConnected     = "Not connected"
	infoCloseQueued      = "Close queued; it applies after any pending connect"
)

// execute hands a request to the worker and reports queueing failures.
func (m *Model) execute(req command.Request) bool {
	if err := m.bus.Execute(req); err != nil {
		m.errMsg = err.Error()
		m.forceClearInfo()
		return false
	}
	m.errMsg = ""
	m.setInfo(req.Label)
	return true
}

func (m *Model) connect(values connectValues) bool {
	if m.Connected() {
		m.setInfo(infoAlreadyConnected)
		return false
	}
	m.lastConnect = values
	return m.execute(command.Request{
		Label:   "Connecting to " + values.URL,
		Command: backend.ConnectCommand(values.URL, values.ConnectionOptions, values.SessionOptions),
	})
}

func (m *Model) connectLocalhost() bool {
	if m.Connected() {
		m.setInfo(infoAlreadyConnected)
		return false
	}
	return m.execute(command.Request{
		Label:   "Connecting to localhost",
		Command: backend.LocalhostCommand(),
	})
}

// disconnect always queues. A connect still in flight completes first and is
// then closed; with nothing open the worker ignores the command.
func (m *Model) disconnect() bool {
	label := "Closing connection"
	if !m.Connected() {
		label = infoCloseQueued
	}
	return m.execute(command.Request{
		Label:   label,
		Command: backend.DisconnectCommand(),
	})
}

func (m *Model) applyAgentFilter(expr string) bool {
	if !m.Connected() {
		m.setInfo(infoNotConnected)
		return false
	}
	if !m.execute(command.Request{
		Label:   "Applying agent filter",
		Command: backend.FilterCommand(expr),
	}) {
		return false
	}
	m.agentFilter = expr
	return true
}
