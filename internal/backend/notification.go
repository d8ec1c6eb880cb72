package backend

import "github.com/atomicstack/qmf-explorer/internal/qmf"

// Notification is a message from the worker to the shell. The types in this
// file are the only implementations.
type Notification interface {
	isNotification()
}

// StatusChanged carries a new human-readable connection status line.
type StatusChanged struct {
	Status string
}

// ConnectivityChanged reports entering or leaving the connected state.
type ConnectivityChanged struct {
	Connected bool
}

// AgentAdded reports a new agent.
type AgentAdded struct {
	Agent qmf.Agent
}

// AgentRemoved reports an agent that went away.
type AgentRemoved struct {
	Agent qmf.Agent
}

// ObjectAdded reports one data object returned by a query.
type ObjectAdded struct {
	Data qmf.Data
}

// EventAdded reports one console event.
type EventAdded struct {
	Event qmf.ConsoleEvent
}

func (StatusChanged) isNotification()       {}
func (ConnectivityChanged) isNotification() {}
func (AgentAdded) isNotification()          {}
func (AgentRemoved) isNotification()        {}
func (ObjectAdded) isNotification()         {}
func (EventAdded) isNotification()          {}
