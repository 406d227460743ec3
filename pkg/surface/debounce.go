package surface

import (
	"time"

	"github.com/goliatone/go-softlimit/pkg/eventloop"
)

// debouncer coalesces bursts of triggers into one call. A newer trigger
// replaces the pending one.
type debouncer struct {
	sched   eventloop.Scheduler
	window  time.Duration
	fn      func()
	timer   eventloop.Timer
	stopped bool
}

func newDebouncer(sched eventloop.Scheduler, window time.Duration, fn func()) *debouncer {
	return &debouncer{sched: sched, window: window, fn: fn}
}

func (d *debouncer) Trigger() {
	if d.stopped {
		return
	}
	d.cancel()
	d.timer = d.sched.AfterFunc(d.window, func() {
		d.timer = nil
		d.fn()
	})
}

// Flush cancels any pending call and runs fn now.
func (d *debouncer) Flush() {
	if d.stopped {
		return
	}
	d.cancel()
	d.fn()
}

func (d *debouncer) Stop() {
	d.stopped = true
	d.cancel()
}

func (d *debouncer) Pending() bool {
	return d.timer != nil
}

func (d *debouncer) cancel() {
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
}
