package fetchstore

import (
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
)

var cronParser = cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor)

// Every returns a DelayFunc with a constant delay.
//
// d <= 0 disables recursion, like Once.
func Every(d time.Duration) DelayFunc {
	return func() time.Duration { return d }
}

// Once returns a DelayFunc that stops recursion after the first cycle.
func Once() DelayFunc {
	return func() time.Duration { return 0 }
}

// BackoffDelay grows the delay after every cycle. Use its Delay method as
// the DelayFunc, and Reset it once the source is healthy again.
type BackoffDelay struct {
	initial    time.Duration
	multiplier float64
	max        time.Duration

	mu   sync.Mutex
	next time.Duration
}

// Backoff configures an exponential backoff:
//
//   - initial is the first delay.
//   - multiplier > 1 grows the delay each cycle (default 2.0 if <= 0).
//   - max caps the delay; if <= 0, there is no cap.
//
// Example:
//
//	b := fetchstore.Backoff(100*time.Millisecond, 2.0, 5*time.Second)
//	stop := store.FetchRecursive(ctx, b.Delay)
func Backoff(initial time.Duration, multiplier float64, max time.Duration) *BackoffDelay {
	if multiplier <= 0 {
		multiplier = 2.0
	}
	return &BackoffDelay{
		initial:    initial,
		multiplier: multiplier,
		max:        max,
		next:       initial,
	}
}

// Delay returns the current delay and advances to the next one.
func (b *BackoffDelay) Delay() time.Duration {
	b.mu.Lock()
	defer b.mu.Unlock()

	d := b.next
	grown := time.Duration(float64(b.next) * b.multiplier)
	if b.max > 0 && grown > b.max {
		grown = b.max
	}
	b.next = grown
	return d
}

// Reset makes the next Delay return the initial delay again.
func (b *BackoffDelay) Reset() {
	b.mu.Lock()
	b.next = b.initial
	b.mu.Unlock()
}

// Cron returns a DelayFunc that waits until the next activation time of a
// standard 5-field cron expression (descriptors such as "@hourly" are
// accepted too).
func Cron(expr string) (DelayFunc, error) {
	schedule, err := cronParser.Parse(expr)
	if err != nil {
		return nil, fmt.Errorf("fetchstore: parse cron expression %q: %w", expr, err)
	}
	return cronDelay(schedule, time.Now), nil
}

func cronDelay(schedule cron.Schedule, now func() time.Time) DelayFunc {
	return func() time.Duration {
		t := now()
		d := schedule.Next(t).Sub(t)
		if d <= 0 {
			// Schedules with no future activation stop the recursion.
			return 0
		}
		return d
	}
}
