package backend

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/atomicstack/qmf-explorer/internal/logging"
	"github.com/atomicstack/qmf-explorer/internal/qmf"
	"github.com/atomicstack/qmf-explorer/internal/testutil"
)

const waitLimit = 2 * time.Second

func TestMain(m *testing.M) {
	dir, err := os.MkdirTemp("", "qmf-explorer-backend-*")
	if err != nil {
		panic(err)
	}
	logging.Configure(filepath.Join(dir, "test.log"))
	code := m.Run()
	_ = os.RemoveAll(dir)
	os.Exit(code)
}

func newTestWorker(t *testing.T) (*Worker, *testutil.FakeDialer) {
	t.Helper()
	dialer := testutil.NewFakeDialer()
	w := NewWorker(dialer, Options{PollTimeout: 5 * time.Millisecond, IdleTimeout: 5 * time.Millisecond})
	t.Cleanup(w.Stop)
	requireNext(t, w, StatusChanged{Status: StatusClosed})
	return w, dialer
}

func next(t *testing.T, w *Worker) Notification {
	t.Helper()
	select {
	case n, ok := <-w.Notifications():
		require.True(t, ok, "notification channel closed")
		return n
	case <-time.After(waitLimit):
		t.Fatal("timed out waiting for notification")
		return nil
	}
}

func requireNext(t *testing.T, w *Worker, want ...Notification) {
	t.Helper()
	for _, n := range want {
		require.Equal(t, n, next(t, w))
	}
}

func connect(t *testing.T, w *Worker, url string) {
	t.Helper()
	require.NoError(t, w.Connect(url, "", qmf.DefaultSessionOptions))
	requireNext(t, w,
		StatusChanged{Status: StatusOpening},
		StatusChanged{Status: StatusSessionOpening},
		ConnectivityChanged{Connected: true},
		StatusChanged{Status: StatusOperational(url)},
	)
	require.Equal(t, StateConnected, w.State())
}

func TestWorker_ConnectReportsOperational(t *testing.T) {
	w, dialer := newTestWorker(t)
	connect(t, w, "localhost")

	sess := dialer.Session()
	require.NotNil(t, sess)
	require.Equal(t, []string{qmf.DefaultAgentFilter}, sess.Filters())
	require.Equal(t, []string{
		"dial localhost",
		"open {strict-security:False}",
		"filter " + qmf.DefaultAgentFilter,
	}, dialer.Calls())
}

func TestWorker_ConnectLocalhost(t *testing.T) {
	w, dialer := newTestWorker(t)
	require.NoError(t, w.ConnectLocalhost())
	requireNext(t, w,
		StatusChanged{Status: StatusOpening},
		StatusChanged{Status: StatusSessionOpening},
		ConnectivityChanged{Connected: true},
		StatusChanged{Status: "Operational (URL: localhost)"},
	)
	require.Equal(t, 1, dialer.OpenSessions())
}

func TestWorker_DialFailureStaysConnectable(t *testing.T) {
	w, dialer := newTestWorker(t)
	dialer.FailDial(errors.New("connection refused"))

	require.NoError(t, w.Connect("broker:5672", "", ""))
	requireNext(t, w,
		StatusChanged{Status: StatusOpening},
		StatusChanged{Status: "QMF Session Failed: connection refused"},
	)
	require.Equal(t, StateDisconnected, w.State())

	dialer.FailDial(nil)
	connect(t, w, "broker:5672")
}

func TestWorker_OpenFailureClosesConnection(t *testing.T) {
	w, dialer := newTestWorker(t)
	dialer.FailOpen(errors.New("not authorized"))

	require.NoError(t, w.Connect("localhost", "", ""))
	requireNext(t, w,
		StatusChanged{Status: StatusOpening},
		StatusChanged{Status: StatusSessionOpening},
		StatusChanged{Status: "QMF Session Failed: not authorized"},
	)
	require.Equal(t, StateDisconnected, w.State())
	require.Contains(t, dialer.Calls(), "close connection localhost")
	require.Zero(t, dialer.OpenSessions())
}

func TestWorker_DefaultFilterFailureIgnored(t *testing.T) {
	w, dialer := newTestWorker(t)
	dialer.FailFilter(errors.New("rejected"))
	connect(t, w, "localhost")
}

func TestWorker_SecondConnectIgnoredWhileConnected(t *testing.T) {
	w, dialer := newTestWorker(t)
	connect(t, w, "localhost")

	require.NoError(t, w.Connect("other:5672", "", ""))
	require.Eventually(t, func() bool { return w.queue.Len() == 0 }, waitLimit, time.Millisecond)

	require.Equal(t, 1, dialer.MaxOpenSessions())
	require.Len(t, dialer.Sessions(), 1)

	require.NoError(t, w.Disconnect())
	requireNext(t, w,
		StatusChanged{Status: StatusClosing},
		StatusChanged{Status: StatusConnClosing},
		StatusChanged{Status: StatusClosed},
		ConnectivityChanged{Connected: false},
	)
}

func TestWorker_BackToBackConnectsOpenOneSession(t *testing.T) {
	w, dialer := newTestWorker(t)

	require.NoError(t, w.Connect("a", "", ""))
	require.NoError(t, w.Connect("b", "", ""))
	requireNext(t, w,
		StatusChanged{Status: StatusOpening},
		StatusChanged{Status: StatusSessionOpening},
		ConnectivityChanged{Connected: true},
		StatusChanged{Status: StatusOperational("a")},
	)
	require.Eventually(t, func() bool { return w.queue.Len() == 0 }, waitLimit, time.Millisecond)

	require.Equal(t, 1, dialer.MaxOpenSessions())
	require.Len(t, dialer.Sessions(), 1)
	require.NotContains(t, dialer.Calls(), "dial b")

	// the ignored connect leaves nothing between Operational and the close
	require.NoError(t, w.Disconnect())
	requireNext(t, w,
		StatusChanged{Status: StatusClosing},
		StatusChanged{Status: StatusConnClosing},
		StatusChanged{Status: StatusClosed},
		ConnectivityChanged{Connected: false},
	)
}

func TestWorker_DisconnectQueuedBehindConnect(t *testing.T) {
	w, dialer := newTestWorker(t)

	require.NoError(t, w.Connect("a", "", ""))
	require.NoError(t, w.Disconnect())
	requireNext(t, w,
		StatusChanged{Status: StatusOpening},
		StatusChanged{Status: StatusSessionOpening},
		ConnectivityChanged{Connected: true},
		StatusChanged{Status: "Operational (URL: a)"},
		StatusChanged{Status: "QMF Session Closing..."},
		StatusChanged{Status: "Closing..."},
		StatusChanged{Status: "Closed"},
		ConnectivityChanged{Connected: false},
	)
	require.Equal(t, StateDisconnected, w.State())
	require.Equal(t, 1, dialer.MaxOpenSessions())
	require.Zero(t, dialer.OpenSessions())
}

func TestWorker_DisconnectClosesSessionThenConnection(t *testing.T) {
	w, dialer := newTestWorker(t)
	connect(t, w, "localhost")

	require.NoError(t, w.Disconnect())
	requireNext(t, w,
		StatusChanged{Status: "QMF Session Closing..."},
		StatusChanged{Status: "Closing..."},
		StatusChanged{Status: "Closed"},
		ConnectivityChanged{Connected: false},
	)
	require.Equal(t, StateDisconnected, w.State())
	require.True(t, dialer.Session().Closed())

	calls := dialer.Calls()
	require.Equal(t, []string{"close session", "close connection localhost"}, calls[len(calls)-2:])
}

func TestWorker_DisconnectWhileDisconnectedIsNoOp(t *testing.T) {
	w, dialer := newTestWorker(t)

	require.NoError(t, w.Disconnect())
	require.NoError(t, w.ApplyAgentFilter("[true]"))
	connect(t, w, "localhost")

	require.Equal(t, "dial localhost", dialer.Calls()[0])
	require.Equal(t, []string{qmf.DefaultAgentFilter}, dialer.Session().Filters())
}

func TestWorker_ReconnectAfterDisconnect(t *testing.T) {
	w, dialer := newTestWorker(t)
	connect(t, w, "localhost")
	require.NoError(t, w.Disconnect())
	requireNext(t, w,
		StatusChanged{Status: StatusClosing},
		StatusChanged{Status: StatusConnClosing},
		StatusChanged{Status: StatusClosed},
		ConnectivityChanged{Connected: false},
	)
	connect(t, w, "amqp:tcp:broker:5672")

	require.Len(t, dialer.Sessions(), 2)
	require.Equal(t, 1, dialer.MaxOpenSessions())
}

func TestWorker_DispatchesEventsInOrder(t *testing.T) {
	w, dialer := newTestWorker(t)
	connect(t, w, "localhost")
	sess := dialer.Session()

	agent := testutil.Agent("apache.org:qpidd:1")
	ids := []qmf.SchemaID{{Package: "org.apache.qpid.broker", Class: "queue"}, {Package: "org.apache.qpid.broker", Class: "exchange"}}
	data := []qmf.Data{
		{Agent: agent.Name, SchemaID: ids[0], ObjectName: "q1"},
		{Agent: agent.Name, SchemaID: ids[0], ObjectName: "q2"},
		{Agent: agent.Name, SchemaID: ids[1], ObjectName: "amq.direct"},
	}
	ts := time.Unix(1700000000, 0).UTC()
	record := qmf.Data{Properties: qmf.Properties{{Key: "qName", Value: "q1"}}}

	sess.Push(
		qmf.NewAgentAdded(agent),
		qmf.NewQueryResponse(agent, ids, data),
		qmf.NewConsoleEvent(agent, qmf.SeverityInform, ts, []qmf.Data{record}),
		qmf.NewAgentRemoved(agent),
	)

	requireNext(t, w,
		AgentAdded{Agent: agent},
		ObjectAdded{Data: data[0]},
		ObjectAdded{Data: data[1]},
		ObjectAdded{Data: data[2]},
	)
	ev, ok := next(t, w).(EventAdded)
	require.True(t, ok)
	require.Equal(t, qmf.SeverityInform, ev.Event.Severity)
	require.Equal(t, "qName=q1", ev.Event.Data[0].Properties.Join())
	requireNext(t, w, AgentRemoved{Agent: agent})

	require.Equal(t, []string{agent.Name}, sess.SchemaQueries())
	require.Equal(t, ids, sess.ObjectQueries())
}

func TestWorker_ApplyAgentFilter(t *testing.T) {
	w, dialer := newTestWorker(t)
	connect(t, w, "localhost")

	require.NoError(t, w.ApplyAgentFilter("[eq, _vendor, [quote, 'apache.org']]"))
	require.Eventually(t, func() bool {
		return len(dialer.Session().Filters()) == 2
	}, waitLimit, time.Millisecond)
	require.Equal(t, "[eq, _vendor, [quote, 'apache.org']]", dialer.Session().Filters()[1])
}

func TestWorker_FilterFailureIsNotFatal(t *testing.T) {
	w, dialer := newTestWorker(t)
	connect(t, w, "localhost")
	dialer.FailFilter(qmf.ErrFilterSyntax)

	require.NoError(t, w.ApplyAgentFilter("[bogus"))
	require.Eventually(t, func() bool {
		return len(dialer.Session().Filters()) == 2
	}, waitLimit, time.Millisecond)
	require.Equal(t, StateConnected, w.State())
}

func TestWorker_BrokenStreamDisconnects(t *testing.T) {
	w, dialer := newTestWorker(t)
	connect(t, w, "localhost")

	dialer.Session().Break(errors.New("link detached"))
	requireNext(t, w,
		StatusChanged{Status: "QMF Session Failed: link detached"},
		ConnectivityChanged{Connected: false},
	)
	require.Equal(t, StateDisconnected, w.State())
	require.Zero(t, dialer.OpenSessions())
}

func TestWorker_StopReleasesSession(t *testing.T) {
	dialer := testutil.NewFakeDialer()
	w := NewWorker(dialer, Options{PollTimeout: 5 * time.Millisecond, IdleTimeout: 5 * time.Millisecond})
	requireNext(t, w, StatusChanged{Status: StatusClosed})
	connect(t, w, "localhost")

	w.Stop()

	require.True(t, dialer.Session().Closed())
	calls := dialer.Calls()
	require.Equal(t, []string{"close session", "close connection localhost"}, calls[len(calls)-2:])

	for range w.Notifications() {
		t.Fatal("no notification expected after stop")
	}
	require.Equal(t, StateCancelling, w.State())
	require.ErrorIs(t, w.Connect("localhost", "", ""), ErrStopped)
}

func TestWorker_StopWhileDisconnected(t *testing.T) {
	w, dialer := newTestWorker(t)
	w.Stop()

	_, ok := <-w.Notifications()
	require.False(t, ok)
	require.Empty(t, dialer.Calls())
}
