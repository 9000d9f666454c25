package view

import (
	"sync"
	"sync/atomic"
	"time"
)

// DefaultDebounce is the quiet period search input waits for.
const DefaultDebounce = 150 * time.Millisecond

// Debouncer delays a callback until calls stop arriving for the configured
// delay. Each Trigger replaces the pending callback: the last write wins and
// earlier ones never run.
//
// The callback is handed to post when the delay expires. Views pass their
// Loop's Post so the callback runs on the loop; a nil post runs it on the
// timer goroutine.
type Debouncer struct {
	clock Clock
	delay time.Duration
	post  func(func()) bool

	mu    sync.Mutex
	timer Timer
	gen   atomic.Uint64
}

// NewDebouncer returns a debouncer. A nil clock means SystemClock.
func NewDebouncer(clock Clock, delay time.Duration, post func(func()) bool) *Debouncer {
	if clock == nil {
		clock = SystemClock
	}
	return &Debouncer{clock: clock, delay: delay, post: post}
}

// Trigger schedules fn, cancelling whatever was pending.
func (d *Debouncer) Trigger(fn func()) {
	gen := d.gen.Add(1)

	// A timer that already fired may have posted its task; the generation
	// check drops it when it finally runs.
	run := func() {
		if d.gen.Load() == gen {
			fn()
		}
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	if d.timer != nil {
		d.timer.Stop()
	}
	d.timer = d.clock.AfterFunc(d.delay, func() {
		if d.post == nil {
			run()
			return
		}
		d.post(run)
	})
}

// Cancel drops the pending callback, if any.
func (d *Debouncer) Cancel() {
	d.gen.Add(1)

	d.mu.Lock()
	defer d.mu.Unlock()
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
}
