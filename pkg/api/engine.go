package api

import (
	"context"
	"time"

	"github.com/petrijr/fetchstore/pkg/store"
)

// FetchStore tracks a request/response Worker: loading flag, timestamps,
// errors, and success count, merged with the data into one observable Value.
type FetchStore[T any] interface {
	store.Readable[Value[T]]

	// Fetch runs the worker and records the attempt in IsFetching,
	// LastFetchStart/End and LastFetchError.
	//
	// It returns the stored data on success and the worker error on failure.
	// A cancelled attempt returns the current data and a nil error.
	Fetch(ctx context.Context, args ...any) (T, error)

	// FetchSilent is like Fetch but never sets IsFetching. Failures go to
	// LastFetchSilentError.
	FetchSilent(ctx context.Context, args ...any) (T, error)

	// FetchOnce calls Fetch if nothing was fetched yet, or if threshold is
	// positive and more than threshold has passed since LastFetchStart.
	// Otherwise it returns the current data without calling the worker.
	FetchOnce(ctx context.Context, threshold time.Duration, args ...any) (T, error)

	// FetchOnceSilent is FetchOnce delegating to FetchSilent.
	FetchOnceSilent(ctx context.Context, threshold time.Duration, args ...any) (T, error)

	// FetchRecursive polls with FetchSilent, waiting delay() after each
	// settled call, until the returned function is called or ctx is done.
	FetchRecursive(ctx context.Context, delay DelayFunc, args ...any) CancelFunc

	// Touch marks the data as fresh without calling the worker.
	Touch()

	// TouchData replaces the data and marks it as fresh.
	TouchData(data T)

	// Reset restores the initial data and zero Meta.
	Reset()

	// ResetError clears LastFetchError only.
	ResetError()

	// Abort cancels in-flight calls when the store is abortable. Workers
	// that ignore their ctx still have their result stored.
	Abort()

	// InternalDataStore exposes the raw data container. Writes made through
	// it bypass all bookkeeping.
	InternalDataStore() *store.Writable[T]

	// Worker returns the worker the store was created with.
	Worker() Worker[T]
}

// FetchStreamStore tracks a push source driven by a StreamWorker.
type FetchStreamStore[T any] interface {
	store.Readable[StreamValue[T]]

	// FetchStream starts an activation. If delay is non-nil and returns a
	// positive duration when the activation ends, a new activation starts
	// after that delay. The returned function stops the current activation
	// and suppresses every future restart.
	FetchStream(ctx context.Context, delay DelayFunc, args ...any) CancelFunc

	// Reset restores the initial data and zero StreamMeta.
	Reset()

	// ResetError clears LastFetchError only.
	ResetError()

	// InternalDataStore exposes the raw data container.
	InternalDataStore() *store.Writable[T]

	// Worker returns the stream worker the store was created with.
	Worker() StreamWorker[T]
}
