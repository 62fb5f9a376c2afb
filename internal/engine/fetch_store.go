package engine

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/petrijr/fetchstore/internal/scheduler"
	"github.com/petrijr/fetchstore/pkg/api"
	"github.com/petrijr/fetchstore/pkg/store"
)

// FetchStore is the pull engine. It wraps a Worker and tracks every call in
// a metadata container that is merged with the data container into one
// observable api.Value.
type FetchStore[T any] struct {
	id      string
	cfg     api.Config
	logger  *slog.Logger
	worker  api.Worker[T]
	factory api.DataFactory[T]
	initial T

	data  *store.Writable[T]
	meta  *store.Writable[api.Meta]
	value *store.Derived[api.Value[T]]

	group singleflight.Group
	sched *scheduler.Scheduler

	mu     sync.Mutex
	fetch  *lane
	silent *lane
}

var _ api.FetchStore[int] = (*FetchStore[int])(nil)

// NewFetchStore builds a pull engine from a resolved configuration.
func NewFetchStore[T any](worker api.Worker[T], initial T, cfg api.Config) *FetchStore[T] {
	s := &FetchStore[T]{
		id:      newStoreID(),
		cfg:     cfg,
		worker:  worker,
		factory: resolveFactory[T](cfg),
		initial: initial,
		sched:   scheduler.New(),
		fetch:   newLane(api.LaneFetch),
		silent:  newLane(api.LaneSilent),
	}
	s.logger = storeLogger(cfg, s.id)

	var zero T
	s.data = store.New(s.factory(initial, zero))
	s.meta = store.New(api.Meta{})
	s.value = store.Derive2[T, api.Meta](s.data, s.meta, func(d T, m api.Meta) api.Value[T] {
		return api.Value[T]{Data: d, Meta: m}
	})
	return s
}

// ID returns the unique id of the store, used in logs and observer callbacks.
func (s *FetchStore[T]) ID() string { return s.id }

func (s *FetchStore[T]) Get() api.Value[T] { return s.value.Get() }

func (s *FetchStore[T]) Subscribe(fn func(api.Value[T])) func() { return s.value.Subscribe(fn) }

func (s *FetchStore[T]) InternalDataStore() *store.Writable[T] { return s.data }

func (s *FetchStore[T]) Worker() api.Worker[T] { return s.worker }

func (s *FetchStore[T]) Fetch(ctx context.Context, args ...any) (T, error) {
	return s.call(ctx, s.fetch, args)
}

func (s *FetchStore[T]) FetchSilent(ctx context.Context, args ...any) (T, error) {
	return s.call(ctx, s.silent, args)
}

func (s *FetchStore[T]) FetchOnce(ctx context.Context, threshold time.Duration, args ...any) (T, error) {
	return s.fetchOnce(ctx, s.fetch, threshold, args)
}

func (s *FetchStore[T]) FetchOnceSilent(ctx context.Context, threshold time.Duration, args ...any) (T, error) {
	return s.fetchOnce(ctx, s.silent, threshold, args)
}

func (s *FetchStore[T]) fetchOnce(ctx context.Context, l *lane, threshold time.Duration, args []any) (T, error) {
	if threshold < 0 {
		threshold = s.cfg.FetchOnceDefaultThreshold
	}

	m := s.meta.Get()
	if m.SuccessCounter == 0 && !m.IsFetching {
		return s.call(ctx, l, args)
	}
	if threshold > 0 && !m.IsFetching && !m.LastFetchStart.IsZero() && time.Since(m.LastFetchStart) > threshold {
		return s.call(ctx, l, args)
	}
	return s.data.Get(), nil
}

// FetchRecursive polls with FetchSilent until the returned function is
// called or ctx is done. A nil delay polls every api.DefaultRecursiveDelay.
func (s *FetchStore[T]) FetchRecursive(ctx context.Context, delay api.DelayFunc, args ...any) api.CancelFunc {
	if delay == nil {
		delay = func() time.Duration { return api.DefaultRecursiveDelay }
	}

	tok := scheduler.NewToken()
	stop := context.AfterFunc(ctx, tok.Cancel)

	s.sched.Loop(tok, func() {
		_, _ = s.FetchSilent(ctx, args...)
	}, delay)

	return func() {
		stop()
		tok.Cancel()
	}
}

func (s *FetchStore[T]) Touch() {
	s.touch()
}

func (s *FetchStore[T]) TouchData(data T) {
	s.data.Set(data)
	s.touch()
}

func (s *FetchStore[T]) touch() {
	now := time.Now()
	s.meta.Update(func(m api.Meta) api.Meta {
		m.LastFetchStart = now
		m.LastFetchEnd = now
		m.SuccessCounter++
		return m
	})
}

func (s *FetchStore[T]) Reset() {
	s.mu.Lock()
	s.fetch.discard()
	s.silent.discard()
	s.mu.Unlock()

	s.group.Forget(string(api.LaneFetch))
	s.group.Forget(string(api.LaneSilent))

	var zero T
	s.data.Set(s.factory(s.initial, zero))
	s.meta.Set(api.Meta{})

	s.logger.Debug("store reset")
	if s.cfg.OnReset != nil {
		s.cfg.OnReset()
	}
}

func (s *FetchStore[T]) ResetError() {
	s.meta.Update(func(m api.Meta) api.Meta {
		m.LastFetchError = nil
		return m
	})
}

func (s *FetchStore[T]) Abort() {
	if !s.cfg.Abortable {
		return
	}
	s.mu.Lock()
	fetching := s.fetch.abort()
	silent := s.silent.abort()
	s.mu.Unlock()

	if fetching || silent {
		s.logger.Debug("aborted in-flight calls",
			slog.Bool("fetch", fetching),
			slog.Bool("silent", silent),
		)
	}
}

// LaneState reports the state of a lane: "idle", "in_flight" or "cancelling".
func (s *FetchStore[T]) LaneState(name api.Lane) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if name == api.LaneSilent {
		return s.silent.state.String()
	}
	return s.fetch.state.String()
}

func (s *FetchStore[T]) call(ctx context.Context, l *lane, args []any) (T, error) {
	if !s.cfg.DedupeInflight {
		return s.attempt(ctx, l, args)
	}

	// The shared attempt outlives the caller that started it; only Abort and
	// Reset cancel it.
	shared := context.WithoutCancel(ctx)
	ch := s.group.DoChan(string(l.name), func() (any, error) {
		v, err := s.attempt(shared, l, args)
		return v, err
	})
	select {
	case res := <-ch:
		if res.Err != nil {
			var zero T
			return zero, res.Err
		}
		v, _ := res.Val.(T)
		return v, nil
	case <-ctx.Done():
		return s.data.Get(), nil
	}
}

// attempt runs one worker invocation through the lane's start and end marks.
func (s *FetchStore[T]) attempt(ctx context.Context, l *lane, args []any) (T, error) {
	callCtx := ctx
	var cancel context.CancelCauseFunc
	if s.cfg.Abortable {
		callCtx, cancel = context.WithCancelCause(ctx)
		defer cancel(nil)
	}

	s.mu.Lock()
	gen := l.begin(cancel)
	info := api.FetchInfo{
		StoreName: s.cfg.Name,
		StoreID:   s.id,
		Lane:      l.name,
		Attempt:   l.attempts,
	}
	s.mu.Unlock()

	s.markStart(l.name)
	s.cfg.Observer.OnFetchStart(ctx, info)

	started := time.Now()
	raw, err := callWorker(func() (T, error) { return s.worker(callCtx, args...) })

	// Abort is advisory: a worker that ignores its context and returns a
	// result still has that result stored.
	if api.IsCancellation(err) {
		return s.cancelled(ctx, l, gen, info)
	}

	s.mu.Lock()
	l.settle(gen)
	s.mu.Unlock()

	elapsed := time.Since(started)
	if err != nil {
		s.markFailed(l.name, err)
		s.cfg.Observer.OnFetchCompleted(ctx, info, err, elapsed)
		var zero T
		return zero, err
	}

	var stored T
	s.data.Update(func(prev T) T {
		stored = s.factory(raw, prev)
		return stored
	})
	s.markSucceeded(l.name)
	s.cfg.Observer.OnFetchCompleted(ctx, info, nil, elapsed)
	return stored, nil
}

// cancelled settles an attempt whose worker observed a cancellation. Only
// the lane's current attempt clears its in-flight marking; superseded or
// discarded attempts leave no trace.
func (s *FetchStore[T]) cancelled(ctx context.Context, l *lane, gen uint64, info api.FetchInfo) (T, error) {
	s.mu.Lock()
	current := l.settle(gen)
	s.mu.Unlock()

	if current && l.name == api.LaneFetch {
		s.meta.Update(func(m api.Meta) api.Meta {
			m.IsFetching = false
			return m
		})
	}

	s.logger.Debug("fetch cancelled",
		slog.String("lane", string(l.name)),
		slog.Uint64("attempt", info.Attempt),
		slog.Bool("superseded", !current),
	)
	s.cfg.Observer.OnFetchCancelled(ctx, info)
	return s.data.Get(), nil
}

func (s *FetchStore[T]) markStart(name api.Lane) {
	if name == api.LaneSilent {
		if s.meta.Get().LastFetchSilentError != nil {
			s.meta.Update(func(m api.Meta) api.Meta {
				m.LastFetchSilentError = nil
				return m
			})
		}
		return
	}

	now := time.Now()
	s.meta.Update(func(m api.Meta) api.Meta {
		m.IsFetching = true
		m.LastFetchStart = now
		m.LastFetchEnd = time.Time{}
		m.LastFetchError = nil
		return m
	})
}

func (s *FetchStore[T]) markFailed(name api.Lane, err error) {
	if name == api.LaneSilent {
		s.meta.Update(func(m api.Meta) api.Meta {
			m.LastFetchSilentError = err
			return m
		})
		return
	}

	now := time.Now()
	s.meta.Update(func(m api.Meta) api.Meta {
		m.IsFetching = false
		m.LastFetchEnd = now
		m.LastFetchError = err
		return m
	})
}

// markSucceeded closes a successful attempt. Silent calls leave the counter
// alone, so FetchOnce keeps treating the store as never fetched until a
// loud call or Touch succeeds.
func (s *FetchStore[T]) markSucceeded(name api.Lane) {
	if name == api.LaneSilent {
		return
	}

	now := time.Now()
	s.meta.Update(func(m api.Meta) api.Meta {
		m.IsFetching = false
		m.LastFetchEnd = now
		m.LastFetchError = nil
		m.SuccessCounter++
		return m
	})
}
