package backend

import (
	"context"
	"sync"
	"time"
)

// CommandQueue is a FIFO of pending commands. Any goroutine may enqueue;
// only the worker dequeues.
type CommandQueue struct {
	mu    sync.Mutex
	items []Command
	wake  chan struct{}
}

// NewCommandQueue returns an empty queue.
func NewCommandQueue() *CommandQueue {
	return &CommandQueue{wake: make(chan struct{}, 1)}
}

// Enqueue appends cmd and wakes a waiting consumer.
func (q *CommandQueue) Enqueue(cmd Command) {
	q.mu.Lock()
	q.items = append(q.items, cmd)
	q.mu.Unlock()
	select {
	case q.wake <- struct{}{}:
	default:
	}
}

// TryDequeue removes and returns the head of the queue. The boolean is false
// when the queue is empty.
func (q *CommandQueue) TryDequeue() (Command, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.items) == 0 {
		return Command{}, false
	}
	cmd := q.items[0]
	q.items[0] = Command{}
	q.items = q.items[1:]
	return cmd, true
}

// Len reports the number of queued commands.
func (q *CommandQueue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}

// Wait blocks until the queue is non-empty, timeout elapses or ctx is done.
// It reports whether a command is available.
func (q *CommandQueue) Wait(ctx context.Context, timeout time.Duration) bool {
	if q.Len() > 0 {
		return true
	}
	timer := time.NewTimer(timeout)
	defer timer.Stop()
	for {
		select {
		case <-q.wake:
			if q.Len() > 0 {
				return true
			}
		case <-timer.C:
			return q.Len() > 0
		case <-ctx.Done():
			return false
		}
	}
}
