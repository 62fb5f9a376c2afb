package api

import (
	"context"
	"log/slog"
	"sync/atomic"
	"time"
)

// FetchInfo identifies one pull attempt.
type FetchInfo struct {
	StoreName string
	StoreID   string
	Lane      Lane
	// Attempt is the per-lane sequence number of the call, starting at 1.
	Attempt uint64
}

// StreamInfo identifies one stream activation.
type StreamInfo struct {
	StoreName    string
	StoreID      string
	ActivationID string
	// Activation counts activations started by the same FetchStream call,
	// starting at 1 and increasing with every automatic restart.
	Activation int
}

// Observer receives callbacks from the stores for logging and metrics.
//
// Callbacks run on the goroutine that drives the store transition.
// Implementations should be fast and non-blocking.
type Observer interface {
	// OnFetchStart is called before the worker is invoked.
	OnFetchStart(ctx context.Context, info FetchInfo)

	// OnFetchCompleted is called after the worker returns, for both
	// successes and failures (err != nil). Cancellations go to
	// OnFetchCancelled instead.
	OnFetchCompleted(ctx context.Context, info FetchInfo, err error, duration time.Duration)

	// OnFetchCancelled is called when the attempt ended in a cancellation.
	OnFetchCancelled(ctx context.Context, info FetchInfo)

	// OnStreamStart is called when an activation begins.
	OnStreamStart(ctx context.Context, info StreamInfo)

	// OnStreamEvent is called for every data and error event.
	OnStreamEvent(ctx context.Context, info StreamInfo, kind EventKind, err error)

	// OnStreamEnd is called when the activation receives its end event.
	OnStreamEnd(ctx context.Context, info StreamInfo, duration time.Duration)
}

// NoopObserver is an Observer that does nothing.
// It is used as the default when no observer is configured.
type NoopObserver struct{}

func (NoopObserver) OnFetchStart(ctx context.Context, info FetchInfo) {}
func (NoopObserver) OnFetchCompleted(ctx context.Context, info FetchInfo, err error, d time.Duration) {
}
func (NoopObserver) OnFetchCancelled(ctx context.Context, info FetchInfo)  {}
func (NoopObserver) OnStreamStart(ctx context.Context, info StreamInfo)    {}
func (NoopObserver) OnStreamEvent(ctx context.Context, info StreamInfo, kind EventKind, err error) {
}
func (NoopObserver) OnStreamEnd(ctx context.Context, info StreamInfo, d time.Duration) {}

// CompositeObserver fans out events to multiple observers.
type CompositeObserver struct {
	observers []Observer
}

// NewCompositeObserver creates an Observer that forwards events to each
// non-nil observer in obs.
func NewCompositeObserver(obs ...Observer) Observer {
	filtered := make([]Observer, 0, len(obs))
	for _, o := range obs {
		if o != nil {
			filtered = append(filtered, o)
		}
	}
	if len(filtered) == 0 {
		return NoopObserver{}
	}
	if len(filtered) == 1 {
		return filtered[0]
	}
	return &CompositeObserver{observers: filtered}
}

func (c *CompositeObserver) OnFetchStart(ctx context.Context, info FetchInfo) {
	for _, o := range c.observers {
		o.OnFetchStart(ctx, info)
	}
}

func (c *CompositeObserver) OnFetchCompleted(ctx context.Context, info FetchInfo, err error, d time.Duration) {
	for _, o := range c.observers {
		o.OnFetchCompleted(ctx, info, err, d)
	}
}

func (c *CompositeObserver) OnFetchCancelled(ctx context.Context, info FetchInfo) {
	for _, o := range c.observers {
		o.OnFetchCancelled(ctx, info)
	}
}

func (c *CompositeObserver) OnStreamStart(ctx context.Context, info StreamInfo) {
	for _, o := range c.observers {
		o.OnStreamStart(ctx, info)
	}
}

func (c *CompositeObserver) OnStreamEvent(ctx context.Context, info StreamInfo, kind EventKind, err error) {
	for _, o := range c.observers {
		o.OnStreamEvent(ctx, info, kind, err)
	}
}

func (c *CompositeObserver) OnStreamEnd(ctx context.Context, info StreamInfo, d time.Duration) {
	for _, o := range c.observers {
		o.OnStreamEnd(ctx, info, d)
	}
}

// LoggingObserver writes structured logs using log/slog.
type LoggingObserver struct {
	Logger *slog.Logger
}

// NewLoggingObserver creates an Observer that logs fetch and stream
// lifecycle events using the provided slog.Logger. If logger is nil,
// slog.Default() is used.
func NewLoggingObserver(logger *slog.Logger) Observer {
	if logger == nil {
		logger = slog.Default()
	}
	return &LoggingObserver{Logger: logger}
}

func (o *LoggingObserver) OnFetchStart(ctx context.Context, info FetchInfo) {
	o.Logger.DebugContext(ctx, "fetch_start",
		slog.String("store", info.StoreName),
		slog.String("store_id", info.StoreID),
		slog.String("lane", string(info.Lane)),
		slog.Uint64("attempt", info.Attempt),
	)
}

func (o *LoggingObserver) OnFetchCompleted(ctx context.Context, info FetchInfo, err error, d time.Duration) {
	level := slog.LevelDebug
	if err != nil {
		level = slog.LevelError
	}
	o.Logger.Log(ctx, level, "fetch_completed",
		slog.String("store", info.StoreName),
		slog.String("store_id", info.StoreID),
		slog.String("lane", string(info.Lane)),
		slog.Uint64("attempt", info.Attempt),
		slog.Duration("duration", d),
		slog.Any("error", err),
	)
}

func (o *LoggingObserver) OnFetchCancelled(ctx context.Context, info FetchInfo) {
	o.Logger.DebugContext(ctx, "fetch_cancelled",
		slog.String("store", info.StoreName),
		slog.String("store_id", info.StoreID),
		slog.String("lane", string(info.Lane)),
		slog.Uint64("attempt", info.Attempt),
	)
}

func (o *LoggingObserver) OnStreamStart(ctx context.Context, info StreamInfo) {
	o.Logger.DebugContext(ctx, "stream_start",
		slog.String("store", info.StoreName),
		slog.String("store_id", info.StoreID),
		slog.String("activation_id", info.ActivationID),
		slog.Int("activation", info.Activation),
	)
}

func (o *LoggingObserver) OnStreamEvent(ctx context.Context, info StreamInfo, kind EventKind, err error) {
	if kind != EventError {
		return
	}
	o.Logger.ErrorContext(ctx, "stream_error",
		slog.String("store", info.StoreName),
		slog.String("store_id", info.StoreID),
		slog.String("activation_id", info.ActivationID),
		slog.Any("error", err),
	)
}

func (o *LoggingObserver) OnStreamEnd(ctx context.Context, info StreamInfo, d time.Duration) {
	o.Logger.DebugContext(ctx, "stream_end",
		slog.String("store", info.StoreName),
		slog.String("store_id", info.StoreID),
		slog.String("activation_id", info.ActivationID),
		slog.Int("activation", info.Activation),
		slog.Duration("duration", d),
	)
}

// BasicMetrics collects simple counters and aggregate fetch durations.
// It implements Observer, and can be combined with LoggingObserver via
// NewCompositeObserver.
type BasicMetrics struct {
	NoopObserver

	fetchesStarted    atomic.Int64
	fetchesSucceeded  atomic.Int64
	fetchesFailed     atomic.Int64
	fetchesCancelled  atomic.Int64
	totalFetchLatency atomic.Int64 // nanoseconds

	streamsStarted atomic.Int64
	streamsEnded   atomic.Int64
	streamData     atomic.Int64
	streamErrors   atomic.Int64
}

// BasicMetricsSnapshot is an immutable snapshot of BasicMetrics.
type BasicMetricsSnapshot struct {
	FetchesStarted   int64
	FetchesSucceeded int64
	FetchesFailed    int64
	FetchesCancelled int64
	InFlight         int64
	AvgFetchDuration time.Duration

	StreamsStarted int64
	StreamsEnded   int64
	StreamData     int64
	StreamErrors   int64
}

func (m *BasicMetrics) OnFetchStart(ctx context.Context, info FetchInfo) {
	m.fetchesStarted.Add(1)
}

func (m *BasicMetrics) OnFetchCompleted(ctx context.Context, info FetchInfo, err error, d time.Duration) {
	if err != nil {
		m.fetchesFailed.Add(1)
		return
	}
	// Only successful calls count towards the average.
	m.fetchesSucceeded.Add(1)
	m.totalFetchLatency.Add(d.Nanoseconds())
}

func (m *BasicMetrics) OnFetchCancelled(ctx context.Context, info FetchInfo) {
	m.fetchesCancelled.Add(1)
}

func (m *BasicMetrics) OnStreamStart(ctx context.Context, info StreamInfo) {
	m.streamsStarted.Add(1)
}

func (m *BasicMetrics) OnStreamEvent(ctx context.Context, info StreamInfo, kind EventKind, err error) {
	switch kind {
	case EventData:
		m.streamData.Add(1)
	case EventError:
		m.streamErrors.Add(1)
	}
}

func (m *BasicMetrics) OnStreamEnd(ctx context.Context, info StreamInfo, d time.Duration) {
	m.streamsEnded.Add(1)
}

// Snapshot returns a snapshot of the current metrics.
func (m *BasicMetrics) Snapshot() BasicMetricsSnapshot {
	started := m.fetchesStarted.Load()
	succeeded := m.fetchesSucceeded.Load()
	failed := m.fetchesFailed.Load()
	cancelled := m.fetchesCancelled.Load()
	totalNs := m.totalFetchLatency.Load()

	var avg time.Duration
	if succeeded > 0 {
		avg = time.Duration(totalNs / succeeded)
	}

	return BasicMetricsSnapshot{
		FetchesStarted:   started,
		FetchesSucceeded: succeeded,
		FetchesFailed:    failed,
		FetchesCancelled: cancelled,
		InFlight:         started - succeeded - failed - cancelled,
		AvgFetchDuration: avg,
		StreamsStarted:   m.streamsStarted.Load(),
		StreamsEnded:     m.streamsEnded.Load(),
		StreamData:       m.streamData.Load(),
		StreamErrors:     m.streamErrors.Load(),
	}
}
