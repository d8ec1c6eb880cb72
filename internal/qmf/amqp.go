package qmf

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/Azure/go-amqp"
	"github.com/atomicstack/qmf-explorer/internal/logging"
	"github.com/google/uuid"
)

const (
	defaultDomain      = "default"
	defaultMaxAgentAge = 5 * time.Minute
	linkTimeout        = 10 * time.Second
	eventBacklog       = 1024
)

// AMQPDialer opens QMF console connections over AMQP 1.0.
type AMQPDialer struct{}

// NewAMQPDialer returns a Dialer backed by go-amqp.
func NewAMQPDialer() *AMQPDialer {
	return &AMQPDialer{}
}

// Dial connects to the broker named by url. options is a qpid connection
// option map; username, password, sasl_mechanisms, heartbeat and container_id
// are honored.
func (d *AMQPDialer) Dial(ctx context.Context, url, options string) (Connection, error) {
	broker, err := ParseURL(url)
	if err != nil {
		return nil, err
	}
	opts, err := ParseOptions(options)
	if err != nil {
		return nil, fmt.Errorf("connection options: %w", err)
	}
	connOpts, err := connOptions(broker, opts)
	if err != nil {
		return nil, err
	}
	conn, err := amqp.Dial(ctx, broker.Address(), connOpts)
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", broker.Address(), err)
	}
	return &amqpConnection{conn: conn, containerID: connOpts.ContainerID}, nil
}

func connOptions(broker BrokerURL, opts Options) (*amqp.ConnOptions, error) {
	co := &amqp.ConnOptions{
		ContainerID: opts.String("container_id", "qmf-explorer-"+uuid.NewString()),
		HostName:    broker.Host,
	}
	if hb := opts.Int("heartbeat", 0); hb > 0 {
		co.IdleTimeout = time.Duration(hb) * time.Second * 2
	}
	user := opts.String("username", broker.Username)
	pass := opts.String("password", broker.Password)
	mech := strings.ToUpper(opts.String("sasl_mechanisms", ""))
	if mech == "" {
		if user != "" {
			mech = "PLAIN"
		} else {
			mech = "ANONYMOUS"
		}
	}
	// the first listed mechanism wins
	if fields := strings.Fields(mech); len(fields) > 0 {
		mech = fields[0]
	}
	switch mech {
	case "PLAIN":
		co.SASLType = amqp.SASLTypePlain(user, pass)
	case "ANONYMOUS":
		co.SASLType = amqp.SASLTypeAnonymous()
	default:
		return nil, fmt.Errorf("unsupported sasl mechanism %q", mech)
	}
	return co, nil
}

type amqpConnection struct {
	conn        *amqp.Conn
	containerID string

	mu     sync.Mutex
	closed bool
}

// OpenSession starts a console session. options is a qpid session option map;
// domain, max-agent-age, strict-security and listen-on-direct are honored.
func (c *amqpConnection) OpenSession(ctx context.Context, options string) (Session, error) {
	c.mu.Lock()
	closed := c.closed
	c.mu.Unlock()
	if closed {
		return nil, ErrNotOpen
	}
	opts, err := ParseOptions(options)
	if err != nil {
		return nil, fmt.Errorf("session options: %w", err)
	}
	cfg := sessionConfig{
		domain:         opts.String("domain", defaultDomain),
		maxAgentAge:    defaultMaxAgentAge,
		strict:         opts.Bool("strict-security", false),
		listenOnDirect: opts.Bool("listen-on-direct", true),
		name:           c.containerID,
	}
	if minutes := opts.Int("max-agent-age", 0); minutes > 0 {
		cfg.maxAgentAge = time.Duration(minutes) * time.Minute
	}
	return openConsoleSession(ctx, c.conn, cfg)
}

func (c *amqpConnection) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return nil
	}
	c.closed = true
	return c.conn.Close()
}

type sessionConfig struct {
	domain         string
	maxAgentAge    time.Duration
	strict         bool
	listenOnDirect bool
	name           string
}

func (c sessionConfig) topic() string  { return "qmf." + c.domain + ".topic" }
func (c sessionConfig) direct() string { return "qmf." + c.domain + ".direct" }

type consoleSession struct {
	cfg     sessionConfig
	session *amqp.Session
	topic   *amqp.Receiver
	reply   *amqp.Receiver
	direct  *amqp.Sender
	bcast   *amqp.Sender
	replyTo string
	tracker *agentTracker

	ctx     context.Context
	cancel  context.CancelFunc
	wg      sync.WaitGroup
	inbound chan []Event
	backlog []Event
	closed  bool

	failOnce sync.Once
	failed   chan struct{}
	failErr  error
}

func openConsoleSession(ctx context.Context, conn *amqp.Conn, cfg sessionConfig) (*consoleSession, error) {
	session, err := conn.NewSession(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("open session: %w", err)
	}
	s := &consoleSession{
		cfg:     cfg,
		session: session,
		tracker: newAgentTracker(MustParsePredicate(""), cfg.maxAgentAge, cfg.strict),
		inbound: make(chan []Event, eventBacklog),
		failed:  make(chan struct{}),
	}
	if err := s.attach(ctx); err != nil {
		_ = session.Close(context.Background())
		return nil, err
	}
	s.ctx, s.cancel = context.WithCancel(context.Background())
	s.wg.Add(2)
	go s.receive(s.topic, false)
	go s.receive(s.reply, true)
	if err := s.locateAgents(ctx); err != nil {
		_ = s.Close()
		return nil, err
	}
	return s, nil
}

func (s *consoleSession) attach(ctx context.Context) error {
	var err error
	s.topic, err = s.session.NewReceiver(ctx, s.cfg.topic()+"/agent.#", nil)
	if err != nil {
		return fmt.Errorf("subscribe %s: %w", s.cfg.topic(), err)
	}
	if s.cfg.listenOnDirect {
		addr := s.cfg.direct() + "/" + s.cfg.name
		s.reply, err = s.session.NewReceiver(ctx, addr, nil)
		if err == nil {
			s.replyTo = addr
		}
	} else {
		s.reply, err = s.session.NewReceiver(ctx, "", &amqp.ReceiverOptions{DynamicAddress: true})
		if err == nil {
			s.replyTo = s.reply.Address()
		}
	}
	if err != nil {
		return fmt.Errorf("open reply address: %w", err)
	}
	s.direct, err = s.session.NewSender(ctx, s.cfg.direct(), nil)
	if err != nil {
		return fmt.Errorf("open %s: %w", s.cfg.direct(), err)
	}
	s.bcast, err = s.session.NewSender(ctx, s.cfg.topic(), nil)
	if err != nil {
		return fmt.Errorf("open %s: %w", s.cfg.topic(), err)
	}
	return nil
}

func (s *consoleSession) receive(r *amqp.Receiver, direct bool) {
	defer s.wg.Done()
	for {
		msg, err := r.Receive(s.ctx, nil)
		if err != nil {
			if s.ctx.Err() == nil {
				s.fail(fmt.Errorf("receive on %s: %w", r.Address(), err))
			}
			return
		}
		if err := r.AcceptMessage(s.ctx, msg); err != nil && s.ctx.Err() == nil {
			logging.Error(fmt.Errorf("accept message on %s: %w", r.Address(), err))
		}
		events := s.tracker.handle(fromAMQP(msg), direct)
		if len(events) == 0 {
			continue
		}
		select {
		case s.inbound <- events:
		case <-s.ctx.Done():
			return
		}
	}
}

// fail records the first link error. NextEvent reports it once the events
// received before it have been handed out.
func (s *consoleSession) fail(err error) {
	s.failOnce.Do(func() {
		s.failErr = err
		close(s.failed)
	})
}

func fromAMQP(msg *amqp.Message) message {
	out := message{Body: msg.Value}
	if out.Body == nil && len(msg.Data) > 0 {
		out.Body = msg.GetData()
	}
	if props := msg.ApplicationProperties; props != nil {
		out.Opcode = fmt.Sprint(props[propOpcode])
		if v, ok := props[propAgent]; ok {
			out.Agent = fmt.Sprint(v)
		}
		if v, ok := props[propContent]; ok {
			out.Content = fmt.Sprint(v)
		}
		if v, ok := props[propPartial]; ok {
			out.Partial = v != nil && v != false
		}
	}
	if msg.Properties != nil && msg.Properties.CorrelationID != nil {
		out.CorrelationID = fmt.Sprint(msg.Properties.CorrelationID)
	}
	if out.Agent == "" && msg.Properties != nil && msg.Properties.Subject != nil {
		out.Agent = *msg.Properties.Subject
	}
	return out
}

func (s *consoleSession) send(ctx context.Context, sender *amqp.Sender, subject, opcode string, body interface{}, correlationID string) error {
	msg := &amqp.Message{
		Properties: &amqp.MessageProperties{
			Subject: &subject,
			ReplyTo: &s.replyTo,
		},
		ApplicationProperties: requestProperties(opcode),
		Value:                 body,
	}
	if correlationID != "" {
		msg.Properties.CorrelationID = correlationID
	}
	return sender.Send(ctx, msg, nil)
}

func (s *consoleSession) locateAgents(ctx context.Context) error {
	s.tracker.mu.Lock()
	filter := s.tracker.filter
	s.tracker.mu.Unlock()
	if err := s.send(ctx, s.bcast, "console.request.agent_locate", opAgentLocateRequest, agentLocateBody(filter), ""); err != nil {
		return fmt.Errorf("agent locate: %w", err)
	}
	return nil
}

// NextEvent returns the next pending event, waiting at most timeout.
func (s *consoleSession) NextEvent(ctx context.Context, timeout time.Duration) (Event, bool, error) {
	if s.closed {
		return nil, false, ErrNotOpen
	}
	s.backlog = append(s.backlog, s.tracker.expire()...)
	if ev, ok := s.popBacklog(); ok {
		return ev, true, nil
	}
	timer := time.NewTimer(timeout)
	defer timer.Stop()
	select {
	case events := <-s.inbound:
		s.backlog = append(s.backlog, events...)
		ev, ok := s.popBacklog()
		return ev, ok, nil
	case <-s.failed:
		if s.drainInbound() {
			ev, ok := s.popBacklog()
			return ev, ok, nil
		}
		return nil, false, s.failErr
	case <-timer.C:
		return nil, false, nil
	case <-ctx.Done():
		return nil, false, ctx.Err()
	}
}

// drainInbound moves every batch the receivers have already queued into the
// backlog without waiting. It reports whether anything was moved.
func (s *consoleSession) drainInbound() bool {
	moved := false
	for {
		select {
		case events := <-s.inbound:
			s.backlog = append(s.backlog, events...)
			moved = moved || len(events) > 0
		default:
			return moved
		}
	}
}

func (s *consoleSession) popBacklog() (Event, bool) {
	if len(s.backlog) == 0 {
		return nil, false
	}
	ev := s.backlog[0]
	s.backlog = s.backlog[1:]
	return ev, true
}

// SetAgentFilter replaces the agent filter and re-broadcasts the agent locate
// request so matching agents announce themselves.
func (s *consoleSession) SetAgentFilter(expr string) error {
	if s.closed {
		return ErrNotOpen
	}
	pred, err := ParsePredicate(expr)
	if err != nil {
		return err
	}
	s.applyFilter(pred)
	ctx, cancel := context.WithTimeout(context.Background(), linkTimeout)
	defer cancel()
	return s.locateAgents(ctx)
}

// applyFilter installs pred. Events received under the old filter are queued
// ahead of the ones the change produces so an agent's removal is never
// overtaken by its earlier arrival.
func (s *consoleSession) applyFilter(pred *Predicate) {
	s.drainInbound()
	s.backlog = append(s.backlog, s.tracker.setFilter(pred)...)
}

// QuerySchemaAsync asks agent for its schema ids; the answer arrives as a
// SchemaResponse event.
func (s *consoleSession) QuerySchemaAsync(agent Agent) error {
	return s.query(agent, whatSchemaID, schemaQueryBody())
}

// QueryObjectsAsync asks agent for every object of schema id; the answer
// arrives as a QueryResponse event.
func (s *consoleSession) QueryObjectsAsync(agent Agent, id SchemaID) error {
	return s.query(agent, whatObject, objectQueryBody(id))
}

func (s *consoleSession) query(agent Agent, what string, body map[string]interface{}) error {
	if s.closed {
		return ErrNotOpen
	}
	if _, ok := s.tracker.lookup(agent.Name); !ok {
		return fmt.Errorf("%w: %s", ErrUnknownAgent, agent.Name)
	}
	correlationID := uuid.NewString()
	s.tracker.expect(correlationID, what)
	ctx, cancel := context.WithTimeout(context.Background(), linkTimeout)
	defer cancel()
	if err := s.send(ctx, s.direct, agent.Name, opQueryRequest, body, correlationID); err != nil {
		return fmt.Errorf("query %s on %s: %w", strings.ToLower(what), agent.Name, err)
	}
	return nil
}

// Close detaches every link and ends the AMQP session. The receive
// goroutines have exited when Close returns.
func (s *consoleSession) Close() error {
	if s.closed {
		return nil
	}
	s.closed = true
	s.cancel()
	s.wg.Wait()
	ctx, cancel := context.WithTimeout(context.Background(), linkTimeout)
	defer cancel()
	var errs []error
	for _, closer := range []interface{ Close(context.Context) error }{s.bcast, s.direct, s.reply, s.topic} {
		if err := closer.Close(ctx); err != nil {
			errs = append(errs, err)
		}
	}
	if err := s.session.Close(ctx); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}
