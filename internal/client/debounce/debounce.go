// Package debounce delays search execution until typing pauses. Each
// keystroke restarts the window, so only the final text of a burst
// triggers a fetch.
package debounce

import (
	"sync"
	"time"
)

// DefaultDelay is the pause length that counts as "stopped typing".
const DefaultDelay = 300 * time.Millisecond

// Timer is a cancellable pending callback.
type Timer interface {
	Stop() bool
}

// Clock schedules callbacks. Tests substitute a fake to fire the window
// deterministically.
type Clock interface {
	AfterFunc(d time.Duration, fn func()) Timer
}

type realClock struct{}

func (realClock) AfterFunc(d time.Duration, fn func()) Timer {
	return time.AfterFunc(d, fn)
}

// Debouncer coalesces a burst of inputs into a single callback with the
// latest value.
type Debouncer struct {
	mu    sync.Mutex
	clock Clock
	delay time.Duration
	timer Timer
	fn    func(text string)
}

// New creates a debouncer using the real clock.
func New(delay time.Duration, fn func(text string)) *Debouncer {
	return NewWithClock(realClock{}, delay, fn)
}

// NewWithClock creates a debouncer with an injected clock.
func NewWithClock(clock Clock, delay time.Duration, fn func(text string)) *Debouncer {
	if delay <= 0 {
		delay = DefaultDelay
	}
	return &Debouncer{clock: clock, delay: delay, fn: fn}
}

// Input records new text and restarts the delay window. Any previously
// pending callback is cancelled; only the latest text ever fires.
func (d *Debouncer) Input(text string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.timer != nil {
		d.timer.Stop()
	}
	d.timer = d.clock.AfterFunc(d.delay, func() {
		d.mu.Lock()
		d.timer = nil
		d.mu.Unlock()
		d.fn(text)
	})
}

// Stop cancels any pending callback without firing it.
func (d *Debouncer) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
}
