package eventqueue

import (
	"context"
	"sync"
)

// InMemoryQueue is a Queue backed by a buffered channel.
// It is safe for concurrent use.
type InMemoryQueue[E any] struct {
	ch     chan E
	closed chan struct{}
	once   sync.Once
}

// NewInMemoryQueue creates a new queue with the given capacity.
// Stream activations rarely need more than a small buffer; 64 is used when
// capacity is not positive.
func NewInMemoryQueue[E any](capacity int) *InMemoryQueue[E] {
	if capacity <= 0 {
		capacity = 64
	}
	return &InMemoryQueue[E]{
		ch:     make(chan E, capacity),
		closed: make(chan struct{}),
	}
}

// Ensure InMemoryQueue implements Queue.
var _ Queue[int] = (*InMemoryQueue[int])(nil)

func (q *InMemoryQueue[E]) Enqueue(ctx context.Context, e E) error {
	select {
	case <-q.closed:
		return ErrClosed
	default:
	}

	select {
	case q.ch <- e:
		return nil
	case <-q.closed:
		return ErrClosed
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (q *InMemoryQueue[E]) Dequeue(ctx context.Context) (E, error) {
	var zero E
	select {
	case e := <-q.ch:
		return e, nil
	case <-ctx.Done():
		return zero, ctx.Err()
	case <-q.closed:
		select {
		case e := <-q.ch:
			return e, nil
		default:
			return zero, ErrClosed
		}
	}
}

func (q *InMemoryQueue[E]) Close() {
	q.once.Do(func() { close(q.closed) })
}

func (q *InMemoryQueue[E]) Len() int {
	return len(q.ch)
}
