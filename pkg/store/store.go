package store

import (
	"reflect"
	"sync"
	"sync/atomic"
)

// Readable is the read side shared by writable and derived containers.
type Readable[T any] interface {
	// Get returns the current value.
	Get() T

	// Subscribe registers fn and calls it with the current value, then again
	// after every change. The returned function removes the subscription.
	Subscribe(fn func(T)) (unsubscribe func())
}

// Option configures a Writable.
type Option[T any] func(*Writable[T])

// WithEqual overrides the equality policy used by Set and Update. A write
// whose new value is equal to the current one does not notify.
func WithEqual[T any](eq func(a, b T) bool) Option[T] {
	return func(w *Writable[T]) {
		if eq != nil {
			w.equal = eq
		}
	}
}

// NeverEqual treats every write as a change.
func NeverEqual[T any](a, b T) bool { return false }

type subscriber[T any] struct {
	fn     func(T)
	active atomic.Bool
}

type delivery[T any] struct {
	value T
	subs  []*subscriber[T]
}

// Writable holds one value and notifies subscribers when it changes.
//
// Notifications are delivered in write order by whichever goroutine is
// currently draining the delivery queue. A write made from inside a
// subscriber callback is queued and delivered once the running callback
// returns.
type Writable[T any] struct {
	mu       sync.Mutex
	value    T
	equal    func(a, b T) bool
	subs     []*subscriber[T]
	pending  []delivery[T]
	draining bool
}

// Ensure Writable implements Readable.
var _ Readable[int] = (*Writable[int])(nil)

// New creates a Writable holding initial.
func New[T any](initial T, opts ...Option[T]) *Writable[T] {
	w := &Writable[T]{
		value: initial,
		equal: defaultEqual[T],
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

func (w *Writable[T]) Get() T {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.value
}

// Set stores v and notifies subscribers if v differs from the current value.
func (w *Writable[T]) Set(v T) {
	w.mu.Lock()
	if !w.setLocked(v) {
		w.mu.Unlock()
		return
	}
	w.flush()
}

// Update applies fn to the current value atomically and stores the result.
func (w *Writable[T]) Update(fn func(T) T) {
	w.mu.Lock()
	if !w.setLocked(fn(w.value)) {
		w.mu.Unlock()
		return
	}
	w.flush()
}

func (w *Writable[T]) Subscribe(fn func(T)) func() {
	sub := &subscriber[T]{fn: fn}
	sub.active.Store(true)

	w.mu.Lock()
	w.subs = append(w.subs, sub)
	w.pending = append(w.pending, delivery[T]{value: w.value, subs: []*subscriber[T]{sub}})
	w.flush()

	var once sync.Once
	return func() {
		once.Do(func() {
			sub.active.Store(false)
			w.mu.Lock()
			defer w.mu.Unlock()
			for i, s := range w.subs {
				if s == sub {
					w.subs = append(w.subs[:i:i], w.subs[i+1:]...)
					break
				}
			}
		})
	}
}

// Subscribers returns the number of active subscriptions.
func (w *Writable[T]) Subscribers() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return len(w.subs)
}

// setLocked must be called with w.mu held. It reports whether a delivery was queued.
func (w *Writable[T]) setLocked(v T) bool {
	if w.equal(w.value, v) {
		return false
	}
	w.value = v
	if len(w.subs) == 0 {
		return false
	}
	subs := make([]*subscriber[T], len(w.subs))
	copy(subs, w.subs)
	w.pending = append(w.pending, delivery[T]{value: v, subs: subs})
	return true
}

// flush is called with w.mu held and releases it. If no other goroutine is
// draining, the caller becomes the drainer until the queue is empty.
func (w *Writable[T]) flush() {
	if w.draining {
		w.mu.Unlock()
		return
	}
	w.draining = true
	for {
		if len(w.pending) == 0 {
			w.draining = false
			w.mu.Unlock()
			return
		}
		d := w.pending[0]
		w.pending[0] = delivery[T]{}
		w.pending = w.pending[1:]
		w.mu.Unlock()

		for _, sub := range d.subs {
			if sub.active.Load() {
				sub.fn(d.value)
			}
		}

		w.mu.Lock()
	}
}

// defaultEqual compares basic kinds by value and treats everything else
// (structs, pointers, slices, maps, funcs) as changed on every write.
func defaultEqual[T any](a, b T) bool {
	av, bv := any(a), any(b)
	ra := reflect.ValueOf(av)
	if !ra.IsValid() {
		return !reflect.ValueOf(bv).IsValid()
	}
	switch ra.Kind() {
	case reflect.Bool, reflect.String,
		reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr,
		reflect.Float32, reflect.Float64, reflect.Complex64, reflect.Complex128:
		return av == bv
	}
	return false
}
