// Package debounce delays propagation of a rapidly-changing value until it settles.
package debounce

import (
	"sync"
	"time"
)

// Debouncer holds back updates to a value until it has been stable for the
// configured delay. Rapid successive Set calls collapse into one downstream
// notification carrying the final value. Safe for concurrent use.
type Debouncer[T any] struct {
	delay time.Duration
	fn    func(T)

	mu      sync.Mutex
	timer   *time.Timer
	pending T
	gen     uint64
	stopped bool
}

// New creates a debouncer that invokes fn with the settled value.
// fn runs on a timer goroutine; callers needing serialization must
// provide it themselves.
func New[T any](delay time.Duration, fn func(T)) *Debouncer[T] {
	return &Debouncer[T]{delay: delay, fn: fn}
}

// Set records a new source value and restarts the settle timer.
// Superseded timers are cleared rather than queued.
func (d *Debouncer[T]) Set(value T) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.stopped {
		return
	}

	d.pending = value
	d.gen++
	gen := d.gen

	if d.timer != nil {
		d.timer.Stop()
	}
	d.timer = time.AfterFunc(d.delay, func() {
		d.fire(gen)
	})
}

// fire delivers the pending value if no newer Set or Stop intervened.
// The generation check closes the race where a timer expires while a
// newer one is being armed.
func (d *Debouncer[T]) fire(gen uint64) {
	d.mu.Lock()
	if d.stopped || gen != d.gen {
		d.mu.Unlock()
		return
	}
	value := d.pending
	fn := d.fn
	d.mu.Unlock()

	fn(value)
}

// Flush delivers any pending value immediately, bypassing the delay.
// No-op when nothing is pending or the debouncer is stopped.
func (d *Debouncer[T]) Flush() {
	d.mu.Lock()
	if d.stopped || d.timer == nil || !d.timer.Stop() {
		d.mu.Unlock()
		return
	}
	d.gen++
	value := d.pending
	fn := d.fn
	d.mu.Unlock()

	fn(value)
}

// Stop tears the debouncer down. After Stop returns no callback fires,
// even for an already-armed timer.
func (d *Debouncer[T]) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.stopped = true
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
}
