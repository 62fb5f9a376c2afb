package api

// EventKind identifies a stream event.
type EventKind string

const (
	EventData  EventKind = "data"
	EventError EventKind = "error"
	EventEnd   EventKind = "end"
)

// StreamEvent is one message from a stream worker to its store.
// Data is set for EventData, Err for EventError; EventEnd carries nothing
// and closes the activation.
type StreamEvent[T any] struct {
	Kind EventKind
	Data T
	Err  error
}

// Emitter is the sending end handed to a StreamWorker.
//
// All methods return ErrStreamClosed once End has been sent or the
// activation was discarded by the store.
type Emitter[T any] interface {
	Data(v T) error
	Error(err error) error
	End() error
}

// Lane names the kind of pull call.
type Lane string

const (
	LaneFetch  Lane = "fetch"
	LaneSilent Lane = "silent"
)
