// Package api contains the core building blocks of the fetchstore module:
// the data model observed by subscribers, the worker shapes, the store
// interfaces, configuration, and observability hooks.
//
// Most users interact with the higher-level fetchstore package, which
// re-exports selected types and helpers from this package. The api package is
// intended for custom integrations, such as Observer implementations, or for
// code that wants to depend on the store interfaces only.
//
// # Data Model
//
// A FetchStore publishes Value[T], the stored data merged with Meta:
//
//   - IsFetching is true only between the start and end marks of a Fetch.
//   - LastFetchStart and LastFetchEnd are zero until the first call.
//   - LastFetchError holds the last Fetch failure, LastFetchSilentError the
//     last FetchSilent failure.
//   - SuccessCounter counts Fetch calls that resolved without error or
//     cancellation, plus Touch calls.
//
// A FetchStreamStore publishes StreamValue[T], the data merged with
// StreamMeta. IsFetching stays true from the start of an activation until
// its end event.
//
// # Workers
//
// A Worker is a request/response call:
//
//	type Worker[T any] func(ctx context.Context, args ...any) (T, error)
//
// A StreamWorker starts a push source and sends events through an Emitter:
//
//	type StreamWorker[T any] func(emit Emitter[T], args ...any) (CancelFunc, error)
//
// # Configuration
//
// Stores are configured with functional options resolved once into a
// Config. Settings carries the subset of knobs that can be loaded from YAML
// or the environment.
//
// # Observability
//
// The Observer interface receives fetch and stream lifecycle callbacks.
// NoopObserver, LoggingObserver (log/slog), BasicMetrics and
// CompositeObserver are provided here; zap and Prometheus implementations
// live in pkg/zapobserver and pkg/promobserver.
package api
