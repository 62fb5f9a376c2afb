package scheduler

import (
	"sync"
	"sync/atomic"
	"time"
)

// Token is the cancellation flag shared by a chain of re-enqueued tasks.
// It is checked before every run and before every re-enqueue.
type Token struct {
	mu        sync.Mutex
	cancelled bool
	timer     *time.Timer
	onStop    func()
	done      chan struct{}
}

// NewToken returns a live token.
func NewToken() *Token {
	return &Token{done: make(chan struct{})}
}

// Cancel marks the token cancelled and stops its pending timer, if any.
// It is safe to call more than once.
func (t *Token) Cancel() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.cancelled {
		return
	}
	t.cancelled = true
	t.stopTimerLocked()
	close(t.done)
}

// Cancelled reports whether Cancel was called.
func (t *Token) Cancelled() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.cancelled
}

// Done is closed when the token is cancelled.
func (t *Token) Done() <-chan struct{} {
	return t.done
}

func (t *Token) stopTimerLocked() {
	if t.timer == nil {
		return
	}
	if t.timer.Stop() && t.onStop != nil {
		t.onStop()
	}
	t.timer = nil
	t.onStop = nil
}

// Scheduler enqueues cooperative tasks to run after a delay.
type Scheduler struct {
	pending atomic.Int64
}

// New creates a Scheduler.
func New() *Scheduler {
	return &Scheduler{}
}

// Pending returns the number of tasks waiting for their delay to elapse.
func (s *Scheduler) Pending() int64 {
	return s.pending.Load()
}

// After runs fn on its own goroutine once d has elapsed, unless tok is
// cancelled first. A token has at most one pending task; scheduling again
// replaces it. It returns false if tok was already cancelled.
func (s *Scheduler) After(tok *Token, d time.Duration, fn func()) bool {
	tok.mu.Lock()
	defer tok.mu.Unlock()

	if tok.cancelled {
		return false
	}
	tok.stopTimerLocked()

	s.pending.Add(1)
	var timer *time.Timer
	timer = time.AfterFunc(d, func() {
		s.pending.Add(-1)

		tok.mu.Lock()
		if tok.cancelled || tok.timer != timer {
			tok.mu.Unlock()
			return
		}
		tok.timer = nil
		tok.onStop = nil
		tok.mu.Unlock()

		fn()
	})
	tok.timer = timer
	tok.onStop = func() { s.pending.Add(-1) }
	return true
}

// Loop runs cycle on a new goroutine and, after each run, re-enqueues it
// after next() until tok is cancelled or next returns a non-positive delay.
// next is evaluated once per cycle.
func (s *Scheduler) Loop(tok *Token, cycle func(), next func() time.Duration) {
	var run func()
	run = func() {
		if tok.Cancelled() {
			return
		}
		cycle()
		if tok.Cancelled() {
			return
		}
		d := next()
		if d <= 0 {
			return
		}
		s.After(tok, d, run)
	}
	go run()
}
