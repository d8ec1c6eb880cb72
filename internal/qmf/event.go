package qmf

import "time"

// Event is one inbound management event. The concrete types below are the
// only implementations.
type Event interface {
	isEvent()
	// Source returns the agent the event came from.
	Source() Agent
}

type eventBase struct {
	Agent Agent
}

func (eventBase) isEvent() {}

func (e eventBase) Source() Agent { return e.Agent }

// AgentAdded reports a newly discovered agent that passes the agent filter.
type AgentAdded struct{ eventBase }

// AgentRemoved reports an agent that stopped sending heartbeats.
type AgentRemoved struct{ eventBase }

// SchemaUpdated reports that an agent's schema set changed.
type SchemaUpdated struct{ eventBase }

// QueryResponse carries the results of an asynchronous query.
type QueryResponse struct {
	eventBase
	SchemaIDs []SchemaID
	Data      []Data
}

// SchemaResponse carries the results of a schema query.
type SchemaResponse struct {
	eventBase
	SchemaIDs []SchemaID
	Data      []Data
}

// MethodResponse carries the result of a method call.
type MethodResponse struct {
	eventBase
	Arguments Properties
}

// ConsoleEvent is an asynchronous, severity-tagged notification raised by an
// agent.
type ConsoleEvent struct {
	eventBase
	Severity  Severity
	Timestamp time.Time
	Data      []Data
}

// NewAgentAdded builds an AgentAdded event.
func NewAgentAdded(agent Agent) AgentAdded { return AgentAdded{eventBase{agent}} }

// NewAgentRemoved builds an AgentRemoved event.
func NewAgentRemoved(agent Agent) AgentRemoved { return AgentRemoved{eventBase{agent}} }

// NewSchemaUpdated builds a SchemaUpdated event.
func NewSchemaUpdated(agent Agent) SchemaUpdated { return SchemaUpdated{eventBase{agent}} }

// NewQueryResponse builds a QueryResponse event.
func NewQueryResponse(agent Agent, ids []SchemaID, data []Data) QueryResponse {
	return QueryResponse{eventBase: eventBase{agent}, SchemaIDs: ids, Data: data}
}

// NewSchemaResponse builds a SchemaResponse event.
func NewSchemaResponse(agent Agent, ids []SchemaID, data []Data) SchemaResponse {
	return SchemaResponse{eventBase: eventBase{agent}, SchemaIDs: ids, Data: data}
}

// NewMethodResponse builds a MethodResponse event.
func NewMethodResponse(agent Agent, args Properties) MethodResponse {
	return MethodResponse{eventBase: eventBase{agent}, Arguments: args}
}

// NewConsoleEvent builds a ConsoleEvent.
func NewConsoleEvent(agent Agent, sev Severity, ts time.Time, data []Data) ConsoleEvent {
	return ConsoleEvent{eventBase: eventBase{agent}, Severity: sev, Timestamp: ts, Data: data}
}
