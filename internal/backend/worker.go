package backend

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/atomicstack/qmf-explorer/internal/logging"
	"github.com/atomicstack/qmf-explorer/internal/logging/events"
	"github.com/atomicstack/qmf-explorer/internal/qmf"
)

// ErrStopped is returned by command methods once Stop has been called.
var ErrStopped = errors.New("backend: worker stopped")

const (
	StatusClosed         = "Closed"
	StatusOpening        = "QMF connection opening..."
	StatusSessionOpening = "QMF session opening..."
	StatusClosing        = "QMF Session Closing..."
	StatusConnClosing    = "Closing..."
)

// StatusOperational is the status line of an open session.
func StatusOperational(url string) string {
	return fmt.Sprintf("Operational (URL: %s)", url)
}

// StatusFailed is the status line of a failed open.
func StatusFailed(err error) string {
	return fmt.Sprintf("QMF Session Failed: %v", err)
}

// State is the worker's connection state.
type State int32

const (
	StateDisconnected State = iota
	StateConnected
	StateCancelling
)

func (s State) String() string {
	switch s {
	case StateDisconnected:
		return "disconnected"
	case StateConnected:
		return "connected"
	case StateCancelling:
		return "cancelling"
	default:
		return "unknown"
	}
}

// Options tunes the worker loop. Zero values select the defaults.
type Options struct {
	// PollTimeout bounds each wait for an inbound event while connected.
	PollTimeout time.Duration
	// IdleTimeout bounds each wait on the command queue while disconnected.
	IdleTimeout time.Duration
	// OpenTimeout bounds dialing and opening the session.
	OpenTimeout time.Duration
	// Buffer is the capacity of the notification channel.
	Buffer int
}

const (
	DefaultPollTimeout = time.Second
	DefaultIdleTimeout = time.Second
	DefaultOpenTimeout = 30 * time.Second
	defaultBuffer      = 256
)

func (o Options) withDefaults() Options {
	if o.PollTimeout <= 0 {
		o.PollTimeout = DefaultPollTimeout
	}
	if o.IdleTimeout <= 0 {
		o.IdleTimeout = DefaultIdleTimeout
	}
	if o.OpenTimeout <= 0 {
		o.OpenTimeout = DefaultOpenTimeout
	}
	if o.Buffer <= 0 {
		o.Buffer = defaultBuffer
	}
	return o
}

// Worker owns the single QMF session. It runs on its own goroutine,
// alternating between polling the session for one event and draining the
// command queue, and reports everything it does as Notifications.
type Worker struct {
	dialer qmf.Dialer
	queue  *CommandQueue
	opts   Options

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	notes chan Notification
	state atomic.Int32

	// owned by the worker goroutine
	conn qmf.Connection
	sess qmf.Session
}

// NewWorker starts a worker that opens sessions through dialer.
func NewWorker(dialer qmf.Dialer, opts Options) *Worker {
	opts = opts.withDefaults()
	ctx, cancel := context.WithCancel(context.Background())
	w := &Worker{
		dialer: dialer,
		queue:  NewCommandQueue(),
		opts:   opts,
		ctx:    ctx,
		cancel: cancel,
		notes:  make(chan Notification, opts.Buffer),
	}
	w.wg.Add(1)
	go w.run()
	return w
}

// Notifications returns the channel the worker reports on. It is closed after
// the worker exits.
func (w *Worker) Notifications() <-chan Notification {
	return w.notes
}

// State reports the worker's current state.
func (w *Worker) State() State {
	return State(w.state.Load())
}

// Enqueue hands cmd to the worker.
func (w *Worker) Enqueue(cmd Command) error {
	if w.ctx.Err() != nil {
		return ErrStopped
	}
	w.queue.Enqueue(cmd)
	return nil
}

// Connect queues a request to open a session.
func (w *Worker) Connect(url, connectionOptions, sessionOptions string) error {
	return w.Enqueue(ConnectCommand(url, connectionOptions, sessionOptions))
}

// ConnectLocalhost queues a request to open a session on the local broker.
func (w *Worker) ConnectLocalhost() error {
	return w.Enqueue(LocalhostCommand())
}

// Disconnect queues a request to close the current session.
func (w *Worker) Disconnect() error {
	return w.Enqueue(DisconnectCommand())
}

// ApplyAgentFilter queues a live agent filter change.
func (w *Worker) ApplyAgentFilter(expr string) error {
	return w.Enqueue(FilterCommand(expr))
}

// Stop cancels the worker and waits for it to release the session. The
// notification channel is closed when Stop returns.
func (w *Worker) Stop() {
	w.cancel()
	w.wg.Wait()
}

func (w *Worker) run() {
	defer w.wg.Done()
	defer close(w.notes)

	w.status(StatusClosed)
	for {
		if w.ctx.Err() != nil {
			w.setState(StateCancelling)
			w.release()
			events.Worker.Stop()
			return
		}
		switch w.State() {
		case StateDisconnected:
			w.stepDisconnected()
		case StateConnected:
			w.stepConnected()
		}
	}
}

func (w *Worker) stepDisconnected() {
	if !w.queue.Wait(w.ctx, w.opts.IdleTimeout) {
		return
	}
	cmd, ok := w.queue.TryDequeue()
	if !ok {
		return
	}
	switch cmd.Kind {
	case CommandConnect:
		events.Worker.Command(cmd.Kind.String(), w.State().String())
		w.open(cmd)
	default:
		events.Worker.Ignored(cmd.Kind.String(), w.State().String())
	}
}

func (w *Worker) stepConnected() {
	ev, ok, err := w.sess.NextEvent(w.ctx, w.opts.PollTimeout)
	switch {
	case err != nil && w.ctx.Err() == nil:
		w.lost(err)
		return
	case ok:
		for _, n := range dispatch(w.sess, ev) {
			w.emit(n)
		}
	}

	cmd, ok := w.queue.TryDequeue()
	if !ok {
		return
	}
	switch cmd.Kind {
	case CommandDisconnect:
		events.Worker.Command(cmd.Kind.String(), w.State().String())
		w.close()
	case CommandFilter:
		events.Worker.Filter(cmd.Filter)
		if err := w.sess.SetAgentFilter(cmd.Filter); err != nil {
			logging.Error(fmt.Errorf("apply agent filter %q: %w", cmd.Filter, err))
		}
	default:
		events.Worker.Ignored(cmd.Kind.String(), w.State().String())
	}
}

func (w *Worker) open(cmd Command) {
	ctx, cancel := context.WithTimeout(w.ctx, w.opts.OpenTimeout)
	defer cancel()

	w.status(StatusOpening)
	conn, err := w.dialer.Dial(ctx, cmd.URL, cmd.ConnectionOptions)
	if err != nil {
		w.failed(err)
		return
	}

	w.status(StatusSessionOpening)
	sess, err := conn.OpenSession(ctx, cmd.SessionOptions)
	if err != nil {
		if cerr := conn.Close(); cerr != nil {
			logging.Error(fmt.Errorf("close connection after failed open: %w", cerr))
		}
		w.failed(err)
		return
	}

	if err := sess.SetAgentFilter(qmf.DefaultAgentFilter); err != nil {
		logging.Error(fmt.Errorf("install default agent filter: %w", err))
	}

	w.conn, w.sess = conn, sess
	w.setState(StateConnected)
	w.emit(ConnectivityChanged{Connected: true})
	w.status(StatusOperational(cmd.URL))
}

func (w *Worker) failed(err error) {
	logging.Error(fmt.Errorf("open session: %w", err))
	w.status(StatusFailed(err))
}

func (w *Worker) close() {
	w.status(StatusClosing)
	if err := w.sess.Close(); err != nil {
		logging.Error(fmt.Errorf("close session: %w", err))
	}
	w.status(StatusConnClosing)
	if err := w.conn.Close(); err != nil {
		logging.Error(fmt.Errorf("close connection: %w", err))
	}
	w.conn, w.sess = nil, nil
	w.status(StatusClosed)
	w.setState(StateDisconnected)
	w.emit(ConnectivityChanged{Connected: false})
}

// lost tears down a session whose event stream failed.
func (w *Worker) lost(err error) {
	logging.Error(fmt.Errorf("session event stream: %w", err))
	w.release()
	w.status(StatusFailed(err))
	w.setState(StateDisconnected)
	w.emit(ConnectivityChanged{Connected: false})
}

// release closes any open session and connection without reporting.
func (w *Worker) release() {
	if w.sess != nil {
		if err := w.sess.Close(); err != nil {
			logging.Error(fmt.Errorf("close session: %w", err))
		}
	}
	if w.conn != nil {
		if err := w.conn.Close(); err != nil {
			logging.Error(fmt.Errorf("close connection: %w", err))
		}
	}
	w.conn, w.sess = nil, nil
}

func (w *Worker) setState(s State) {
	prev := State(w.state.Swap(int32(s)))
	if prev != s {
		events.Worker.State(prev.String(), s.String())
	}
}

func (w *Worker) status(text string) {
	events.Worker.Status(text)
	w.emit(StatusChanged{Status: text})
}

// emit delivers n unless the worker has been cancelled.
func (w *Worker) emit(n Notification) {
	if w.ctx.Err() != nil {
		return
	}
	select {
	case <-w.ctx.Done():
	case w.notes <- n:
	}
}
