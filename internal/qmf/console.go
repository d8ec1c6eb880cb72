package qmf

import (
	"context"
	"errors"
	"time"
)

// DefaultAgentFilter selects the broker's own management agent.
const DefaultAgentFilter = "[eq, _product, [quote, 'qpidd']]"

// DefaultSessionOptions is offered by the open dialog.
const DefaultSessionOptions = "{strict-security:False}"

var (
	// ErrNotOpen is returned by operations on a closed session or connection.
	ErrNotOpen = errors.New("qmf: not open")
	// ErrUnknownAgent is returned when a query targets an agent the session
	// has not seen.
	ErrUnknownAgent = errors.New("qmf: unknown agent")
)

// Dialer opens transport connections to a broker.
type Dialer interface {
	Dial(ctx context.Context, url, options string) (Connection, error)
}

// Connection is one open transport connection.
type Connection interface {
	OpenSession(ctx context.Context, options string) (Session, error)
	Close() error
}

// Session is a management console session layered on a connection.
type Session interface {
	// NextEvent waits up to timeout for the next inbound event. It returns
	// false when nothing arrived in time.
	NextEvent(ctx context.Context, timeout time.Duration) (Event, bool, error)
	SetAgentFilter(expr string) error
	QuerySchemaAsync(agent Agent) error
	QueryObjectsAsync(agent Agent, id SchemaID) error
	Close() error
}
