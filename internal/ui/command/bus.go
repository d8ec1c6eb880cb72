package command

import (
	"errors"
	"fmt"

	"github.com/atomicstack/qmf-explorer/internal/backend"
	"github.com/atomicstack/qmf-explorer/internal/logging/events"
)

// ErrNoTarget is returned when the bus has nowhere to deliver commands.
var ErrNoTarget = errors.New("no session worker")

// Enqueuer accepts commands for the session worker.
type Enqueuer interface {
	Enqueue(backend.Command) error
}

// Request pairs a worker command with the label shown to the user.
type Request struct {
	Label   string
	Command backend.Command
}

// Bus hands user intents to the session worker queue.
type Bus struct {
	target Enqueuer
}

// New initialises a command bus delivering to target.
func New(target Enqueuer) *Bus {
	return &Bus{target: target}
}

// Execute queues the request while emitting trace logs. Queueing never
// blocks; the worker picks the command up on its next iteration.
func (b *Bus) Execute(req Request) error {
	kind := req.Command.Kind.String()
	events.Command.Queue(kind, req.Label)
	if b == nil || b.target == nil {
		events.Command.Rejected(kind, ErrNoTarget)
		return fmt.Errorf("%s: %w", req.Label, ErrNoTarget)
	}
	if err := b.target.Enqueue(req.Command); err != nil {
		events.Command.Rejected(kind, err)
		return fmt.Errorf("%s: %w", req.Label, err)
	}
	return nil
}
