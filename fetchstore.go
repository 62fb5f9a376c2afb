package fetchstore

import (
	"github.com/petrijr/fetchstore/internal/engine"
	"github.com/petrijr/fetchstore/pkg/api"
)

// Re-export key types so users don't need to dig into pkg/api.

type (
	FetchStore[T any]       = api.FetchStore[T]
	FetchStreamStore[T any] = api.FetchStreamStore[T]
	Worker[T any]           = api.Worker[T]
	StreamWorker[T any]     = api.StreamWorker[T]
	Emitter[T any]          = api.Emitter[T]
	DataFactory[T any]      = api.DataFactory[T]
	Value[T any]            = api.Value[T]
	StreamValue[T any]      = api.StreamValue[T]
	Meta                    = api.Meta
	StreamMeta              = api.StreamMeta
	DelayFunc               = api.DelayFunc
	CancelFunc              = api.CancelFunc
	Config                  = api.Config
	Option                  = api.Option
	Settings                = api.Settings
	Observer                = api.Observer
	FetchInfo               = api.FetchInfo
	StreamInfo              = api.StreamInfo
	LoggingObserver         = api.LoggingObserver
	BasicMetrics            = api.BasicMetrics
	BasicMetricsSnapshot    = api.BasicMetricsSnapshot
	CompositeObserver       = api.CompositeObserver
	NoopObserver            = api.NoopObserver
	PanicError              = api.PanicError
)

// Re-export options and observer helpers.

var (
	WithName                      = api.WithName
	WithFetchOnceDefaultThreshold = api.WithFetchOnceDefaultThreshold
	WithDedupeInflight            = api.WithDedupeInflight
	WithAbortable                 = api.WithAbortable
	WithOnReset                   = api.WithOnReset
	WithLogger                    = api.WithLogger
	WithObserver                  = api.WithObserver
	WithSettings                  = api.WithSettings

	NewLoggingObserver   = api.NewLoggingObserver
	NewCompositeObserver = api.NewCompositeObserver

	IsCancellation = api.IsCancellation
)

var (
	ErrAborted      = api.ErrAborted
	ErrStreamClosed = api.ErrStreamClosed
)

const (
	// UseDefaultThreshold makes FetchOnce use the configured default threshold.
	UseDefaultThreshold = api.UseDefaultThreshold

	DefaultFetchOnceThreshold = api.DefaultFetchOnceThreshold
	DefaultRecursiveDelay     = api.DefaultRecursiveDelay
)

// WithDataFactory sets the transform applied to every incoming value.
func WithDataFactory[T any](f DataFactory[T]) Option {
	return api.WithDataFactory(f)
}

// New returns a FetchStore driving worker. initial is passed through the
// data factory, if any, before it is stored.
func New[T any](worker Worker[T], initial T, opts ...Option) FetchStore[T] {
	return engine.NewFetchStore(worker, initial, api.NewConfig(opts...))
}

// NewStream returns a FetchStreamStore driving worker.
func NewStream[T any](worker StreamWorker[T], initial T, opts ...Option) FetchStreamStore[T] {
	return engine.NewFetchStreamStore(worker, initial, api.NewConfig(opts...))
}
