package testutil

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/atomicstack/qmf-explorer/internal/qmf"
)

// FakeDialer is a scripted qmf.Dialer. Every call made through it, its
// connections and its sessions is recorded in order.
type FakeDialer struct {
	mu sync.Mutex

	dialErr   error
	openErr   error
	filterErr error
	queryErr  error

	calls    []string
	sessions []*FakeSession
	open     int
	maxOpen  int
}

// NewFakeDialer returns a dialer whose connections always succeed.
func NewFakeDialer() *FakeDialer {
	return &FakeDialer{}
}

// FailDial makes subsequent dials fail with err.
func (d *FakeDialer) FailDial(err error) {
	d.mu.Lock()
	d.dialErr = err
	d.mu.Unlock()
}

// FailOpen makes subsequent session opens fail with err.
func (d *FakeDialer) FailOpen(err error) {
	d.mu.Lock()
	d.openErr = err
	d.mu.Unlock()
}

// FailFilter makes SetAgentFilter on every session fail with err.
func (d *FakeDialer) FailFilter(err error) {
	d.mu.Lock()
	d.filterErr = err
	d.mu.Unlock()
}

// FailQueries makes the async queries on every session fail with err.
func (d *FakeDialer) FailQueries(err error) {
	d.mu.Lock()
	d.queryErr = err
	d.mu.Unlock()
}

// Calls returns the recorded calls, oldest first.
func (d *FakeDialer) Calls() []string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]string(nil), d.calls...)
}

// Sessions returns every session opened so far.
func (d *FakeDialer) Sessions() []*FakeSession {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]*FakeSession(nil), d.sessions...)
}

// Session returns the most recently opened session, or nil.
func (d *FakeDialer) Session() *FakeSession {
	d.mu.Lock()
	defer d.mu.Unlock()
	if len(d.sessions) == 0 {
		return nil
	}
	return d.sessions[len(d.sessions)-1]
}

// OpenSessions reports how many sessions are currently open.
func (d *FakeDialer) OpenSessions() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.open
}

// MaxOpenSessions reports the most sessions that were ever open at once.
func (d *FakeDialer) MaxOpenSessions() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.maxOpen
}

func (d *FakeDialer) record(format string, args ...interface{}) {
	d.mu.Lock()
	d.calls = append(d.calls, fmt.Sprintf(format, args...))
	d.mu.Unlock()
}

// Dial implements qmf.Dialer.
func (d *FakeDialer) Dial(ctx context.Context, url, options string) (qmf.Connection, error) {
	d.record("dial %s", url)
	d.mu.Lock()
	err := d.dialErr
	d.mu.Unlock()
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return &FakeConnection{dialer: d, url: url}, nil
}

// FakeConnection is returned by FakeDialer.Dial.
type FakeConnection struct {
	dialer *FakeDialer
	url    string
}

// OpenSession implements qmf.Connection.
func (c *FakeConnection) OpenSession(ctx context.Context, options string) (qmf.Session, error) {
	d := c.dialer
	d.record("open %s", options)
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.openErr != nil {
		return nil, d.openErr
	}
	s := &FakeSession{dialer: d, events: make(chan qmf.Event, 256)}
	d.sessions = append(d.sessions, s)
	d.open++
	if d.open > d.maxOpen {
		d.maxOpen = d.open
	}
	return s, nil
}

// Close implements qmf.Connection.
func (c *FakeConnection) Close() error {
	c.dialer.record("close connection %s", c.url)
	return nil
}

// FakeSession is a qmf.Session fed by Push.
type FakeSession struct {
	dialer *FakeDialer
	events chan qmf.Event

	mu        sync.Mutex
	streamErr error
	filters   []string
	schemas   []string
	objects   []qmf.SchemaID
	closed    bool
}

// Push queues events for NextEvent.
func (s *FakeSession) Push(evs ...qmf.Event) {
	for _, ev := range evs {
		s.events <- ev
	}
}

// Break makes NextEvent fail with err from now on.
func (s *FakeSession) Break(err error) {
	s.mu.Lock()
	s.streamErr = err
	s.mu.Unlock()
}

// NextEvent implements qmf.Session.
func (s *FakeSession) NextEvent(ctx context.Context, timeout time.Duration) (qmf.Event, bool, error) {
	s.mu.Lock()
	err := s.streamErr
	closed := s.closed
	s.mu.Unlock()
	if err != nil {
		return nil, false, err
	}
	if closed {
		return nil, false, qmf.ErrNotOpen
	}
	timer := time.NewTimer(timeout)
	defer timer.Stop()
	select {
	case ev := <-s.events:
		return ev, true, nil
	case <-timer.C:
		return nil, false, nil
	case <-ctx.Done():
		return nil, false, ctx.Err()
	}
}

// SetAgentFilter implements qmf.Session.
func (s *FakeSession) SetAgentFilter(expr string) error {
	s.dialer.record("filter %s", expr)
	s.mu.Lock()
	s.filters = append(s.filters, expr)
	s.mu.Unlock()
	s.dialer.mu.Lock()
	defer s.dialer.mu.Unlock()
	return s.dialer.filterErr
}

// QuerySchemaAsync implements qmf.Session.
func (s *FakeSession) QuerySchemaAsync(agent qmf.Agent) error {
	s.mu.Lock()
	s.schemas = append(s.schemas, agent.Name)
	s.mu.Unlock()
	s.dialer.mu.Lock()
	defer s.dialer.mu.Unlock()
	return s.dialer.queryErr
}

// QueryObjectsAsync implements qmf.Session.
func (s *FakeSession) QueryObjectsAsync(agent qmf.Agent, id qmf.SchemaID) error {
	s.mu.Lock()
	s.objects = append(s.objects, id)
	s.mu.Unlock()
	s.dialer.mu.Lock()
	defer s.dialer.mu.Unlock()
	return s.dialer.queryErr
}

// Close implements qmf.Session.
func (s *FakeSession) Close() error {
	s.dialer.record("close session")
	s.mu.Lock()
	wasOpen := !s.closed
	s.closed = true
	s.mu.Unlock()
	if wasOpen {
		s.dialer.mu.Lock()
		s.dialer.open--
		s.dialer.mu.Unlock()
	}
	return nil
}

// Filters returns the agent filters applied to the session.
func (s *FakeSession) Filters() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.filters...)
}

// SchemaQueries returns the agents whose schema was queried.
func (s *FakeSession) SchemaQueries() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.schemas...)
}

// ObjectQueries returns the schema ids whose objects were queried.
func (s *FakeSession) ObjectQueries() []qmf.SchemaID {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]qmf.SchemaID(nil), s.objects...)
}

// Closed reports whether Close was called.
func (s *FakeSession) Closed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

// Agent builds a broker agent with the attributes the default filter expects.
func Agent(name string) qmf.Agent {
	return qmf.Agent{
		Name:    name,
		Vendor:  "apache.org",
		Product: "qpidd",
		Attributes: qmf.Properties{
			{Key: "_product", Value: "qpidd"},
			{Key: "_vendor", Value: "apache.org"},
		},
	}
}
