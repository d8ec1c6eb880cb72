package backend

import (
	"fmt"

	"github.com/atomicstack/qmf-explorer/internal/logging"
	"github.com/atomicstack/qmf-explorer/internal/logging/events"
	"github.com/atomicstack/qmf-explorer/internal/qmf"
)

// querier is the part of a session that event dispatch drives.
type querier interface {
	QuerySchemaAsync(agent qmf.Agent) error
	QueryObjectsAsync(agent qmf.Agent, id qmf.SchemaID) error
}

// dispatch performs the follow-up queries an inbound event calls for and
// returns the notifications to publish, in order. Query failures are logged
// and do not stop dispatch.
func dispatch(q querier, ev qmf.Event) []Notification {
	events.Worker.Dispatch(fmt.Sprintf("%T", ev), ev.Source().Name)
	switch e := ev.(type) {
	case qmf.AgentAdded:
		querySchema(q, e.Agent)
		return []Notification{AgentAdded{Agent: e.Agent}}
	case qmf.AgentRemoved:
		return []Notification{AgentRemoved{Agent: e.Agent}}
	case qmf.SchemaUpdated:
		querySchema(q, e.Agent)
		return nil
	case qmf.QueryResponse:
		return queryResults(q, e.Agent, e.SchemaIDs, e.Data)
	case qmf.SchemaResponse:
		// schema responses are handled exactly like query responses
		return queryResults(q, e.Agent, e.SchemaIDs, e.Data)
	case qmf.ConsoleEvent:
		return []Notification{EventAdded{Event: e}}
	default:
		return nil
	}
}

func queryResults(q querier, agent qmf.Agent, ids []qmf.SchemaID, data []qmf.Data) []Notification {
	for _, id := range ids {
		if err := q.QueryObjectsAsync(agent, id); err != nil {
			logging.Error(fmt.Errorf("query objects of %s on %s: %w", id, agent.Name, err))
		}
	}
	if len(data) == 0 {
		return nil
	}
	out := make([]Notification, 0, len(data))
	for _, d := range data {
		out = append(out, ObjectAdded{Data: d})
	}
	return out
}

func querySchema(q querier, agent qmf.Agent) {
	if err := q.QuerySchemaAsync(agent); err != nil {
		logging.Error(fmt.Errorf("query schema on %s: %w", agent.Name, err))
	}
}
