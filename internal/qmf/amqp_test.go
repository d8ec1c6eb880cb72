package qmf

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func newBufferedSession(t *testing.T, filter string) *consoleSession {
	t.Helper()
	tr, _ := newTestTracker(t, filter)
	return &consoleSession{
		tracker: tr,
		inbound: make(chan []Event, eventBacklog),
		failed:  make(chan struct{}),
	}
}

func nextEvents(t *testing.T, s *consoleSession, n int) []Event {
	t.Helper()
	out := make([]Event, 0, n)
	for range n {
		ev, ok, err := s.NextEvent(context.Background(), 10*time.Millisecond)
		require.NoError(t, err)
		require.True(t, ok, "expected event %d", len(out))
		out = append(out, ev)
	}
	return out
}

func TestConsoleSession_FilterChangeKeepsQueuedArrivalsFirst(t *testing.T) {
	s := newBufferedSession(t, "")
	s.inbound <- s.tracker.handle(heartbeat("apache.org:qpid-dispatch:i-1", "qpid-dispatch", 1), false)

	s.applyFilter(MustParsePredicate(DefaultAgentFilter))

	events := nextEvents(t, s, 2)
	require.IsType(t, AgentAdded{}, events[0])
	require.IsType(t, AgentRemoved{}, events[1])
	require.Equal(t, "apache.org:qpid-dispatch:i-1", events[1].(AgentRemoved).Agent.Name)

	ev, ok, err := s.NextEvent(context.Background(), 10*time.Millisecond)
	require.NoError(t, err)
	require.False(t, ok, "unexpected trailing event %v", ev)
}

func TestConsoleSession_LinkFailureReportedAfterQueuedEvents(t *testing.T) {
	s := newBufferedSession(t, "")
	s.inbound <- s.tracker.handle(heartbeat("apache.org:qpidd:i-1", "qpidd", 1), false)
	s.fail(errors.New("link detached"))
	s.fail(errors.New("second failure"))

	events := nextEvents(t, s, 1)
	require.IsType(t, AgentAdded{}, events[0])

	for range 2 {
		_, ok, err := s.NextEvent(context.Background(), time.Second)
		require.False(t, ok)
		require.EqualError(t, err, "link detached")
	}
}

func TestConsoleSession_ClosedSessionRefusesEvents(t *testing.T) {
	s := newBufferedSession(t, "")
	s.closed = true
	_, _, err := s.NextEvent(context.Background(), time.Millisecond)
	require.ErrorIs(t, err, ErrNotOpen)
	require.ErrorIs(t, s.SetAgentFilter(""), ErrNotOpen)
}
