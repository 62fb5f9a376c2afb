package engine

import (
	"context"
	"sync"

	"github.com/petrijr/fetchstore/internal/eventqueue"
	"github.com/petrijr/fetchstore/pkg/api"
)

// emitter is the sending end of one activation's event queue.
type emitter[T any] struct {
	q eventqueue.Queue[api.StreamEvent[T]]

	mu    sync.Mutex
	ended bool
}

var _ api.Emitter[int] = (*emitter[int])(nil)

func newEmitter[T any](q eventqueue.Queue[api.StreamEvent[T]]) *emitter[T] {
	return &emitter[T]{q: q}
}

func (e *emitter[T]) Data(v T) error {
	return e.send(api.StreamEvent[T]{Kind: api.EventData, Data: v})
}

func (e *emitter[T]) Error(err error) error {
	return e.send(api.StreamEvent[T]{Kind: api.EventError, Err: err})
}

func (e *emitter[T]) End() error {
	return e.send(api.StreamEvent[T]{Kind: api.EventEnd})
}

func (e *emitter[T]) send(ev api.StreamEvent[T]) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.ended {
		return api.ErrStreamClosed
	}
	if err := e.q.Enqueue(context.Background(), ev); err != nil {
		return api.ErrStreamClosed
	}
	if ev.Kind == api.EventEnd {
		e.ended = true
	}
	return nil
}
