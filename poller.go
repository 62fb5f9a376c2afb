package fetchstore

import (
	"context"
	"errors"
	"log/slog"
	"sync"
)

// LoopFunc starts a recursive fetch or stream bound to ctx and returns the
// function that stops it. Store.FetchRecursive and FetchStream fit once
// their delay and args are bound:
//
//	p.Add("users", func(ctx context.Context) fetchstore.CancelFunc {
//	    return users.FetchRecursive(ctx, fetchstore.Every(time.Minute))
//	})
type LoopFunc func(ctx context.Context) CancelFunc

// Poller starts and stops a group of named loops together, typically all the
// background refreshes of one process.
//
// Typical usage:
//
//	p := fetchstore.NewPoller(logger)
//	p.Add("users", usersLoop)
//	p.Add("feed", feedLoop)
//	_ = p.Start(ctx)
//	...
//	p.Stop()
type Poller struct {
	logger *slog.Logger

	mu      sync.Mutex
	loops   []namedLoop
	stops   []CancelFunc
	ctx     context.Context
	cancel  context.CancelFunc
	running bool
}

type namedLoop struct {
	name string
	fn   LoopFunc
}

// NewPoller creates an empty Poller. A nil logger means slog.Default().
func NewPoller(logger *slog.Logger) *Poller {
	if logger == nil {
		logger = slog.Default()
	}
	return &Poller{logger: logger}
}

// Add registers a loop. Loops added while the Poller is running start
// immediately.
func (p *Poller) Add(name string, fn LoopFunc) {
	p.mu.Lock()
	defer p.mu.Unlock()

	l := namedLoop{name: name, fn: fn}
	p.loops = append(p.loops, l)
	if p.running {
		p.startLocked(l)
	}
}

// Start starts every registered loop with a context derived from ctx.
// Cancelling ctx stops the loops as well, but only Stop resets the Poller.
//
// If Start is called more than once without Stop, it returns an error.
func (p *Poller) Start(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.running {
		return errors.New("fetchstore: Poller already started")
	}

	p.ctx, p.cancel = context.WithCancel(ctx)
	p.running = true

	for _, l := range p.loops {
		p.startLocked(l)
	}
	return nil
}

func (p *Poller) startLocked(l namedLoop) {
	p.logger.Debug("poller loop started", slog.String("loop", l.name))
	p.stops = append(p.stops, l.fn(p.ctx))
}

// Running reports whether Start was called without a matching Stop.
func (p *Poller) Running() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.running
}

// Stop stops every loop started since Start. It is a no-op when the Poller
// is not running.
func (p *Poller) Stop() {
	p.mu.Lock()
	if !p.running {
		p.mu.Unlock()
		return
	}
	cancel := p.cancel
	stops := p.stops
	p.running = false
	p.ctx = nil
	p.cancel = nil
	p.stops = nil
	p.mu.Unlock()

	for _, stop := range stops {
		if stop != nil {
			stop()
		}
	}
	cancel()
	p.logger.Debug("poller stopped", slog.Int("loops", len(stops)))
}
