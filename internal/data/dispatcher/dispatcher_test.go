package dispatcher

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/atomicstack/qmf-explorer/internal/backend"
	"github.com/atomicstack/qmf-explorer/internal/qmf"
	"github.com/atomicstack/qmf-explorer/internal/state"
)

func newDispatcher() (*Dispatcher, state.AgentStore, state.ObjectStore, state.EventStore) {
	a, o, e := state.NewAgentStore(), state.NewObjectStore(), state.NewEventStore()
	return New(a, o, e), a, o, e
}

func TestHandleStatus(t *testing.T) {
	d, _, _, _ := newDispatcher()
	require.Equal(t, "Closed", d.Status())

	res := d.Handle(backend.StatusChanged{Status: "Operational (URL: localhost)"})
	require.True(t, res.StatusUpdated)
	require.Equal(t, "Operational (URL: localhost)", d.Status())
}

func TestHandleAgents(t *testing.T) {
	d, agents, _, _ := newDispatcher()
	agent := qmf.Agent{Name: "apache.org:qpidd:1"}

	require.True(t, d.Handle(backend.AgentAdded{Agent: agent}).AgentsUpdated)
	require.False(t, d.Handle(backend.AgentAdded{Agent: agent}).AgentsUpdated)
	require.Equal(t, 1, agents.Len())

	require.True(t, d.Handle(backend.AgentRemoved{Agent: agent}).AgentsUpdated)
	require.False(t, d.Handle(backend.AgentRemoved{Agent: agent}).AgentsUpdated)
	require.Zero(t, agents.Len())
}

func TestHandleObjectsAndEvents(t *testing.T) {
	d, _, objects, events := newDispatcher()

	require.True(t, d.Handle(backend.ObjectAdded{Data: qmf.Data{ObjectName: "q1"}}).ObjectsUpdated)
	require.Equal(t, "q1", objects.Entries()[0].ObjectName)

	ev := qmf.NewConsoleEvent(qmf.Agent{Name: "a"}, qmf.SeverityInform, time.Now(), []qmf.Data{{ObjectName: "e"}})
	require.True(t, d.Handle(backend.EventAdded{Event: ev}).EventsUpdated)
	require.Equal(t, 1, events.Len())
}

func TestConnectivityChangeClearsRows(t *testing.T) {
	d, agents, objects, events := newDispatcher()

	res := d.Handle(backend.ConnectivityChanged{Connected: true})
	require.True(t, res.ConnectivityChanged)
	require.True(t, d.Connected())
	require.False(t, res.AgentsUpdated)

	d.Handle(backend.AgentAdded{Agent: qmf.Agent{Name: "a"}})
	d.Handle(backend.ObjectAdded{Data: qmf.Data{ObjectName: "q1"}})
	d.Handle(backend.EventAdded{Event: qmf.NewConsoleEvent(qmf.Agent{}, qmf.SeverityInform, time.Now(), []qmf.Data{{}})})

	res = d.Handle(backend.ConnectivityChanged{Connected: false})
	require.Equal(t, Result{ConnectivityChanged: true, AgentsUpdated: true, ObjectsUpdated: true, EventsUpdated: true}, res)
	require.False(t, d.Connected())
	require.Zero(t, agents.Len())
	require.Zero(t, objects.Len())
	require.Zero(t, events.Len())

	require.Equal(t, Result{}, d.Handle(backend.ConnectivityChanged{Connected: false}))
}
