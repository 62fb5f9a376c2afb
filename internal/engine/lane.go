package engine

import (
	"context"

	"github.com/petrijr/fetchstore/pkg/api"
)

type laneState int

const (
	laneIdle laneState = iota
	laneInFlight
	laneCancelling
)

func (s laneState) String() string {
	switch s {
	case laneIdle:
		return "idle"
	case laneInFlight:
		return "in_flight"
	case laneCancelling:
		return "cancelling"
	default:
		return "unknown"
	}
}

// lane is the bookkeeping for one kind of pull call (fetch or fetchSilent).
// All fields are guarded by the owning store's mutex.
type lane struct {
	name       api.Lane
	state      laneState
	generation uint64
	attempts   uint64
	cancel     context.CancelCauseFunc
}

func newLane(name api.Lane) *lane {
	return &lane{name: name}
}

// begin registers a new attempt and returns its generation. A still-running
// previous attempt is cancelled when the new attempt carries its own cancel
// func.
func (l *lane) begin(cancel context.CancelCauseFunc) uint64 {
	if cancel != nil && l.cancel != nil {
		l.cancel(api.ErrAborted)
	}
	l.generation++
	l.attempts++
	l.state = laneInFlight
	l.cancel = cancel
	return l.generation
}

// current reports whether gen is the latest attempt of the lane.
func (l *lane) current(gen uint64) bool {
	return gen == l.generation
}

// settle returns the lane to idle if gen is still its latest attempt.
func (l *lane) settle(gen uint64) bool {
	if !l.current(gen) {
		return false
	}
	l.state = laneIdle
	l.cancel = nil
	return true
}

// abort cancels the running attempt. The attempt stays current so that it
// can clear its own in-flight marking.
func (l *lane) abort() bool {
	if l.state != laneInFlight || l.cancel == nil {
		return false
	}
	l.state = laneCancelling
	l.cancel(api.ErrAborted)
	return true
}

// discard cancels the running attempt, if cancellable, and invalidates it so
// that it writes nothing when it settles.
func (l *lane) discard() {
	if l.cancel != nil {
		l.cancel(api.ErrAborted)
	}
	l.generation++
	l.state = laneIdle
	l.cancel = nil
}
