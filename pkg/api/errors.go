package api

import (
	"context"
	"errors"
	"fmt"
)

var (
	// ErrAborted is the cancellation cause the store attaches to the context
	// of a call it supersedes, aborts, or discards on reset.
	ErrAborted = errors.New("fetchstore: aborted")

	// ErrStreamClosed is returned by Emitter methods after End.
	ErrStreamClosed = errors.New("fetchstore: stream closed")
)

// IsCancellation reports whether err is a cancellation rather than a worker
// failure. Cancellations are never recorded as errors.
func IsCancellation(err error) bool {
	return errors.Is(err, ErrAborted) || errors.Is(err, context.Canceled)
}

// PanicError wraps a value recovered from a panicking worker.
type PanicError struct {
	Value any
}

func (e *PanicError) Error() string {
	return fmt.Sprintf("fetchstore: worker panicked: %v", e.Value)
}

func (e *PanicError) Unwrap() error {
	err, _ := e.Value.(error)
	return err
}
