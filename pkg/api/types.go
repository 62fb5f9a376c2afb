package api

import (
	"context"
	"time"
)

// Worker performs the actual data-producing call for a FetchStore.
//
// ctx is always supplied. When the store is abortable it is a per-call
// child context that is cancelled when the call is superseded, aborted, or
// the store is reset; workers are expected to honour it.
type Worker[T any] func(ctx context.Context, args ...any) (T, error)

// StreamWorker runs one activation of a push source. It emits events through
// emit, usually from its own goroutine, and must eventually call emit.End.
//
// The returned CancelFunc, if non-nil, stops the live source. A returned
// error is recorded like an error event.
type StreamWorker[T any] func(emit Emitter[T], args ...any) (CancelFunc, error)

// DataFactory turns an incoming raw value into the stored value. prev is the
// currently stored value, which allows merge/append strategies.
type DataFactory[T any] func(raw T, prev T) T

// DelayFunc returns the delay before the next cycle of a recursive fetch or
// stream restart. It is evaluated once per cycle; a non-positive result stops
// the recursion.
type DelayFunc func() time.Duration

// CancelFunc stops an operation. It is safe to call more than once.
type CancelFunc func()

// Meta is the bookkeeping tracked by a FetchStore. Zero times mean "never".
type Meta struct {
	IsFetching           bool
	LastFetchStart       time.Time
	LastFetchEnd         time.Time
	LastFetchError       error
	SuccessCounter       int
	LastFetchSilentError error
}

// StreamMeta is the bookkeeping tracked by a FetchStreamStore.
type StreamMeta struct {
	IsFetching     bool
	LastFetchStart time.Time
	LastFetchEnd   time.Time
	LastFetchError error
}

// Value is what FetchStore subscribers observe.
type Value[T any] struct {
	Data T
	Meta
}

// StreamValue is what FetchStreamStore subscribers observe.
type StreamValue[T any] struct {
	Data T
	StreamMeta
}

// UseDefaultThreshold makes FetchOnce fall back to the configured
// FetchOnceDefaultThreshold.
const UseDefaultThreshold time.Duration = -1
