package eventqueue

import (
	"context"
	"errors"
)

// ErrClosed is returned by Enqueue after Close, and by Dequeue once a closed
// queue has been drained.
var ErrClosed = errors.New("eventqueue: closed")

// Queue carries events from one producer side to one consumer side in FIFO
// order.
type Queue[E any] interface {
	// Enqueue adds an event. It blocks while the queue is full and respects
	// ctx for cancellation.
	Enqueue(ctx context.Context, e E) error

	// Dequeue removes and returns the next event, blocking until one is
	// available, the queue is closed and drained, or ctx is done.
	Dequeue(ctx context.Context) (E, error)

	// Close rejects further Enqueue calls. Events already queued can still
	// be dequeued.
	Close()

	// Len returns the approximate number of queued events.
	Len() int
}
