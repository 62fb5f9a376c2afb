package engine

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/petrijr/fetchstore/internal/eventqueue"
	"github.com/petrijr/fetchstore/internal/scheduler"
	"github.com/petrijr/fetchstore/pkg/api"
	"github.com/petrijr/fetchstore/pkg/store"
)

// FetchStreamStore is the push engine. Every activation gets its own event
// queue; the store drains it on a dedicated goroutine and folds the events
// into its data and metadata containers.
type FetchStreamStore[T any] struct {
	id      string
	cfg     api.Config
	logger  *slog.Logger
	worker  api.StreamWorker[T]
	factory api.DataFactory[T]
	initial T

	data  *store.Writable[T]
	meta  *store.Writable[api.StreamMeta]
	value *store.Derived[api.StreamValue[T]]

	sched *scheduler.Scheduler
}

var _ api.FetchStreamStore[int] = (*FetchStreamStore[int])(nil)

// NewFetchStreamStore builds a push engine from a resolved configuration.
func NewFetchStreamStore[T any](worker api.StreamWorker[T], initial T, cfg api.Config) *FetchStreamStore[T] {
	s := &FetchStreamStore[T]{
		id:      newStoreID(),
		cfg:     cfg,
		worker:  worker,
		factory: resolveFactory[T](cfg),
		initial: initial,
		sched:   scheduler.New(),
	}
	s.logger = storeLogger(cfg, s.id)

	var zero T
	s.data = store.New(s.factory(initial, zero))
	s.meta = store.New(api.StreamMeta{})
	s.value = store.Derive2[T, api.StreamMeta](s.data, s.meta, func(d T, m api.StreamMeta) api.StreamValue[T] {
		return api.StreamValue[T]{Data: d, StreamMeta: m}
	})
	return s
}

func (s *FetchStreamStore[T]) ID() string { return s.id }

func (s *FetchStreamStore[T]) Get() api.StreamValue[T] { return s.value.Get() }

func (s *FetchStreamStore[T]) Subscribe(fn func(api.StreamValue[T])) func() {
	return s.value.Subscribe(fn)
}

func (s *FetchStreamStore[T]) InternalDataStore() *store.Writable[T] { return s.data }

func (s *FetchStreamStore[T]) Worker() api.StreamWorker[T] { return s.worker }

// streamHandle ties together the activations started by one FetchStream call.
type streamHandle struct {
	tok *scheduler.Token

	mu          sync.Mutex
	cancelled   bool
	activations int
	stop        api.CancelFunc
}

// cancel suppresses restarts and returns the stop func of the current
// activation, which may be nil.
func (h *streamHandle) cancel() api.CancelFunc {
	h.mu.Lock()
	h.cancelled = true
	stop := h.stop
	h.mu.Unlock()

	h.tok.Cancel()
	return stop
}

// FetchStream starts an activation and returns the function that stops it.
// Cancelling ctx has the same effect as calling the returned function.
func (s *FetchStreamStore[T]) FetchStream(ctx context.Context, delay api.DelayFunc, args ...any) api.CancelFunc {
	h := &streamHandle{tok: scheduler.NewToken()}

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			stop := h.cancel()
			if stop == nil {
				s.logger.Warn("stream cancel is a no-op: the stream worker did not return a cancel func")
				return
			}
			stop()
		})
	}
	release := context.AfterFunc(ctx, cancel)

	s.activate(ctx, h, delay, args)

	return func() {
		release()
		cancel()
	}
}

func (s *FetchStreamStore[T]) activate(ctx context.Context, h *streamHandle, delay api.DelayFunc, args []any) {
	h.mu.Lock()
	if h.cancelled {
		h.mu.Unlock()
		return
	}
	h.activations++
	h.stop = nil
	info := api.StreamInfo{
		StoreName:    s.cfg.Name,
		StoreID:      s.id,
		ActivationID: uuid.NewString(),
		Activation:   h.activations,
	}
	h.mu.Unlock()

	started := time.Now()
	s.meta.Update(func(m api.StreamMeta) api.StreamMeta {
		m.IsFetching = true
		m.LastFetchStart = started
		m.LastFetchEnd = time.Time{}
		m.LastFetchError = nil
		return m
	})
	s.cfg.Observer.OnStreamStart(ctx, info)

	q := eventqueue.NewInMemoryQueue[api.StreamEvent[T]](0)
	em := newEmitter[T](q)
	go s.consume(ctx, h, q, info, started, delay, args)

	stop, err := callWorker(func() (api.CancelFunc, error) { return s.worker(em, args...) })

	h.mu.Lock()
	h.stop = stop
	cancelled := h.cancelled
	h.mu.Unlock()

	// The handle was cancelled while the worker was starting.
	if cancelled && stop != nil {
		stop()
	}

	if err != nil {
		s.logger.Error("stream worker failed to start",
			slog.String("activation_id", info.ActivationID),
			slog.Any("error", err),
		)
		// Recorded like an error event. The activation stays open and no
		// restart follows, since no end event will arrive.
		if em.Error(err) != nil {
			s.setError(err)
		}
	}
}

func (s *FetchStreamStore[T]) consume(
	ctx context.Context,
	h *streamHandle,
	q eventqueue.Queue[api.StreamEvent[T]],
	info api.StreamInfo,
	started time.Time,
	delay api.DelayFunc,
	args []any,
) {
	for {
		ev, err := q.Dequeue(context.Background())
		if err != nil {
			return
		}

		switch ev.Kind {
		case api.EventData:
			if s.meta.Get().LastFetchError != nil {
				s.setError(nil)
			}
			s.data.Update(func(prev T) T { return s.factory(ev.Data, prev) })
			s.cfg.Observer.OnStreamEvent(ctx, info, api.EventData, nil)

		case api.EventError:
			s.setError(ev.Err)
			s.cfg.Observer.OnStreamEvent(ctx, info, api.EventError, ev.Err)

		case api.EventEnd:
			q.Close()
			ended := time.Now()
			s.meta.Update(func(m api.StreamMeta) api.StreamMeta {
				m.IsFetching = false
				m.LastFetchEnd = ended
				return m
			})
			s.cfg.Observer.OnStreamEnd(ctx, info, ended.Sub(started))
			s.scheduleRestart(ctx, h, delay, args)
			return
		}
	}
}

func (s *FetchStreamStore[T]) scheduleRestart(ctx context.Context, h *streamHandle, delay api.DelayFunc, args []any) {
	if delay == nil {
		return
	}
	d := delay()
	if d <= 0 {
		return
	}
	if s.sched.After(h.tok, d, func() { s.activate(ctx, h, delay, args) }) {
		s.logger.Debug("stream restart scheduled", slog.Duration("delay", d))
	}
}

func (s *FetchStreamStore[T]) setError(err error) {
	s.meta.Update(func(m api.StreamMeta) api.StreamMeta {
		m.LastFetchError = err
		return m
	})
}

func (s *FetchStreamStore[T]) Reset() {
	var zero T
	s.data.Set(s.factory(s.initial, zero))
	s.meta.Set(api.StreamMeta{})

	s.logger.Debug("store reset")
	if s.cfg.OnReset != nil {
		s.cfg.OnReset()
	}
}

func (s *FetchStreamStore[T]) ResetError() {
	s.setError(nil)
}
