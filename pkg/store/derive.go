package store

import "sync"

// Derived is a read-only container whose value is recomputed from its
// inputs every time one of them changes.
type Derived[R any] struct {
	out     *Writable[R]
	compute func() R

	mu    sync.Mutex
	unsub []func()
}

// Ensure Derived implements Readable.
var _ Readable[int] = (*Derived[int])(nil)

// Derive2 combines two containers through fn. Every upstream notification
// produces a recomputation and a downstream notification, even when only
// one input changed or the combined value is equal to the previous one.
func Derive2[A, B, R any](a Readable[A], b Readable[B], fn func(A, B) R) *Derived[R] {
	d := &Derived[R]{
		compute: func() R { return fn(a.Get(), b.Get()) },
	}
	d.out = New(d.compute(), WithEqual(NeverEqual[R]))

	d.unsub = append(d.unsub,
		a.Subscribe(skipFirst(func(A) { d.recompute() })),
		b.Subscribe(skipFirst(func(B) { d.recompute() })),
	)
	return d
}

func (d *Derived[R]) Get() R {
	return d.out.Get()
}

func (d *Derived[R]) Subscribe(fn func(R)) func() {
	return d.out.Subscribe(fn)
}

// Stop detaches the derived container from its inputs. The last computed
// value stays readable.
func (d *Derived[R]) Stop() {
	d.mu.Lock()
	unsub := d.unsub
	d.unsub = nil
	d.mu.Unlock()

	for _, u := range unsub {
		u()
	}
}

// recompute reads the inputs while holding the output lock so concurrent
// recomputations are stored in the order they observed their inputs.
func (d *Derived[R]) recompute() {
	d.out.Update(func(R) R { return d.compute() })
}

// skipFirst drops the initial call Subscribe makes with the current value.
func skipFirst[T any](fn func(T)) func(T) {
	first := true
	return func(v T) {
		if first {
			first = false
			return
		}
		fn(v)
	}
}
