package qmf

import (
	"sync"
	"time"
)

type trackedAgent struct {
	agent       Agent
	lastSeen    time.Time
	schemaStamp int64
	reported    bool
}

// agentTracker turns inbound QMF messages into events. It remembers which
// agents have been seen, which of them passed the agent filter, and which
// outstanding query each correlation id belongs to.
type agentTracker struct {
	mu      sync.Mutex
	filter  *Predicate
	maxAge  time.Duration
	strict  bool
	agents  map[string]*trackedAgent
	pending map[string]string
	now     func() time.Time
}

func newAgentTracker(filter *Predicate, maxAge time.Duration, strict bool) *agentTracker {
	return &agentTracker{
		filter:  filter,
		maxAge:  maxAge,
		strict:  strict,
		agents:  make(map[string]*trackedAgent),
		pending: make(map[string]string),
		now:     time.Now,
	}
}

// expect records the kind of query issued under correlation id.
func (t *agentTracker) expect(correlationID, what string) {
	t.mu.Lock()
	t.pending[correlationID] = what
	t.mu.Unlock()
}

// lookup returns a known agent by name.
func (t *agentTracker) lookup(name string) (Agent, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	tracked, ok := t.agents[name]
	if !ok {
		return Agent{}, false
	}
	return tracked.agent, true
}

// handle converts one message into zero or more events. direct reports
// whether the message arrived on the console's private reply address.
func (t *agentTracker) handle(msg message, direct bool) []Event {
	switch msg.Opcode {
	case opAgentHeartbeat, opAgentLocateResponse:
		agent, stamp, err := decodeAgent(msg.Agent, msg.Body)
		if err != nil {
			return nil
		}
		return t.observeAgent(agent, stamp)
	case opQueryResponse:
		if t.strict && !direct {
			return nil
		}
		t.mu.Lock()
		what := t.pending[msg.CorrelationID]
		if !msg.Partial {
			delete(t.pending, msg.CorrelationID)
		}
		t.mu.Unlock()
		agent := t.agentFor(msg.Agent)
		ids, data := decodeQueryBody(agent.Name, msg.Body)
		if what == whatSchemaID {
			return []Event{NewSchemaResponse(agent, ids, data)}
		}
		return []Event{NewQueryResponse(agent, ids, data)}
	case opMethodResponse:
		if t.strict && !direct {
			return nil
		}
		agent := t.agentFor(msg.Agent)
		var args Properties
		if props, ok := asProperties(msg.Body); ok {
			if v, ok := props.Get("_arguments"); ok {
				args, _ = v.(Properties)
			}
		}
		return []Event{NewMethodResponse(agent, args)}
	case opDataIndication:
		if msg.Content != contentEvent {
			return nil
		}
		agent := t.agentFor(msg.Agent)
		records := decodeEventBody(agent.Name, msg.Body)
		out := make([]Event, 0, len(records))
		for _, rec := range records {
			out = append(out, NewConsoleEvent(agent, rec.severity, rec.timestamp, []Data{rec.data}))
		}
		return out
	}
	return nil
}

func (t *agentTracker) agentFor(name string) Agent {
	if agent, ok := t.lookup(name); ok {
		return agent
	}
	return Agent{Name: name}
}

func (t *agentTracker) observeAgent(agent Agent, stamp int64) []Event {
	t.mu.Lock()
	defer t.mu.Unlock()
	now := t.now()
	tracked, ok := t.agents[agent.Name]
	if !ok {
		tracked = &trackedAgent{agent: agent, lastSeen: now, schemaStamp: stamp}
		t.agents[agent.Name] = tracked
		if t.filter.Match(agent.Attributes) {
			tracked.reported = true
			return []Event{NewAgentAdded(agent)}
		}
		return nil
	}
	tracked.lastSeen = now
	tracked.agent = agent
	if tracked.reported && stamp != tracked.schemaStamp {
		tracked.schemaStamp = stamp
		return []Event{NewSchemaUpdated(agent)}
	}
	tracked.schemaStamp = stamp
	return nil
}

// setFilter installs a new agent filter and reports agents entering or
// leaving its scope.
func (t *agentTracker) setFilter(pred *Predicate) []Event {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.filter = pred
	var out []Event
	for _, tracked := range t.agents {
		matches := pred.Match(tracked.agent.Attributes)
		switch {
		case matches && !tracked.reported:
			tracked.reported = true
			out = append(out, NewAgentAdded(tracked.agent))
		case !matches && tracked.reported:
			tracked.reported = false
			out = append(out, NewAgentRemoved(tracked.agent))
		}
	}
	return out
}

// expire drops agents that have been silent longer than maxAge.
func (t *agentTracker) expire() []Event {
	if t.maxAge <= 0 {
		return nil
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	now := t.now()
	var out []Event
	for name, tracked := range t.agents {
		if now.Sub(tracked.lastSeen) <= t.maxAge {
			continue
		}
		delete(t.agents, name)
		if tracked.reported {
			out = append(out, NewAgentRemoved(tracked.agent))
		}
	}
	return out
}
