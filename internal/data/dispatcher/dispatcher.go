package dispatcher

import (
	"github.com/atomicstack/qmf-explorer/internal/backend"
	"github.com/atomicstack/qmf-explorer/internal/state"
)

// Result tells the UI which parts of the screen need redrawing.
type Result struct {
	StatusUpdated       bool
	ConnectivityChanged bool
	AgentsUpdated       bool
	ObjectsUpdated      bool
	EventsUpdated       bool
}

// Dispatcher applies worker notifications to the presentation stores. It runs
// on the UI goroutine only.
type Dispatcher struct {
	agents  state.AgentStore
	objects state.ObjectStore
	events  state.EventStore

	status    string
	connected bool
}

func New(a state.AgentStore, o state.ObjectStore, e state.EventStore) *Dispatcher {
	return &Dispatcher{agents: a, objects: o, events: e, status: backend.StatusClosed}
}

// Status returns the last reported connection status line.
func (d *Dispatcher) Status() string {
	return d.status
}

// Connected reports whether the worker holds an open session.
func (d *Dispatcher) Connected() bool {
	return d.connected
}

func (d *Dispatcher) Handle(n backend.Notification) Result {
	var res Result
	switch n := n.(type) {
	case backend.StatusChanged:
		d.status = n.Status
		res.StatusUpdated = true
	case backend.ConnectivityChanged:
		if n.Connected == d.connected {
			return res
		}
		d.connected = n.Connected
		res.ConnectivityChanged = true
		// rows from the previous session no longer describe the broker
		res.AgentsUpdated = !d.agents.Clear().Empty()
		res.ObjectsUpdated = !d.objects.Clear().Empty()
		res.EventsUpdated = !d.events.Clear().Empty()
	case backend.AgentAdded:
		res.AgentsUpdated = !d.agents.Add(n.Agent).Empty()
	case backend.AgentRemoved:
		res.AgentsUpdated = !d.agents.Remove(n.Agent.Name).Empty()
	case backend.ObjectAdded:
		res.ObjectsUpdated = !d.objects.Add(n.Data).Empty()
	case backend.EventAdded:
		res.EventsUpdated = !d.events.Add(n.Event).Empty()
	}
	return res
}
