package state

import "github.com/atomicstack/qmf-explorer/internal/qmf"

type AgentStore interface {
	Entries() []qmf.Agent
	Add(qmf.Agent) RowRange
	Remove(name string) RowRange
	Clear() RowRange
	Len() int
	Observe(func(Change))
}

type agentStore struct {
	rows Rows[qmf.Agent]
}

func NewAgentStore() AgentStore {
	return &agentStore{}
}

func (a *agentStore) Entries() []qmf.Agent {
	return a.rows.Items()
}

// Add appends agent unless an agent with the same name is already listed.
func (a *agentStore) Add(agent qmf.Agent) RowRange {
	if a.index(agent.Name) >= 0 {
		return noRows
	}
	agent.Attributes = agent.Attributes.Clone()
	return a.rows.Append(agent)
}

func (a *agentStore) Remove(name string) RowRange {
	return a.rows.RemoveAt(a.index(name))
}

func (a *agentStore) Clear() RowRange {
	return a.rows.Clear()
}

func (a *agentStore) Len() int {
	return a.rows.Len()
}

func (a *agentStore) Observe(fn func(Change)) {
	a.rows.Observe(fn)
}

func (a *agentStore) index(name string) int {
	for i := 0; i < a.rows.Len(); i++ {
		if a.rows.At(i).Name == name {
			return i
		}
	}
	return -1
}
