package eventloop

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"
)

// ErrClosed is returned when work is posted to a loop that has stopped.
var ErrClosed = errors.New("eventloop: loop closed")

// Loop runs posted callbacks one at a time on the goroutine calling Run.
type Loop struct {
	tasks chan func()
	done  chan struct{}

	closeOnce sync.Once
	running   atomic.Bool
}

// NewLoop creates a loop with the given task buffer size.
func NewLoop(buffer int) *Loop {
	if buffer <= 0 {
		buffer = 64
	}
	return &Loop{
		tasks: make(chan func(), buffer),
		done:  make(chan struct{}),
	}
}

// Run processes callbacks until ctx is cancelled or Close is called. Run may
// only be called once.
func (l *Loop) Run(ctx context.Context) error {
	if !l.running.CompareAndSwap(false, true) {
		return errors.New("eventloop: loop already running")
	}
	defer l.Close()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-l.done:
			return nil
		case fn := <-l.tasks:
			fn()
		}
	}
}

// Close stops the loop. Pending callbacks are dropped.
func (l *Loop) Close() {
	l.closeOnce.Do(func() {
		close(l.done)
	})
}

// Post queues fn to run on the loop.
func (l *Loop) Post(fn func()) error {
	if fn == nil {
		return nil
	}
	select {
	case <-l.done:
		return ErrClosed
	default:
	}
	select {
	case l.tasks <- fn:
		return nil
	case <-l.done:
		return ErrClosed
	}
}

// Do runs fn on the loop and waits for it to finish.
func (l *Loop) Do(ctx context.Context, fn func()) error {
	finished := make(chan struct{})
	if err := l.Post(func() {
		defer close(finished)
		fn()
	}); err != nil {
		return err
	}
	select {
	case <-finished:
		return nil
	case <-l.done:
		return ErrClosed
	case <-ctx.Done():
		return ctx.Err()
	}
}

// AfterFunc schedules fn to run on the loop after d.
func (l *Loop) AfterFunc(d time.Duration, fn func()) Timer {
	if fn == nil {
		return stoppedTimer{}
	}
	t := &loopTimer{}
	t.timer = time.AfterFunc(d, func() {
		_ = l.Post(func() {
			if t.fire() {
				fn()
			}
		})
	})
	return t
}

// Now returns the wall clock time.
func (l *Loop) Now() time.Time {
	return time.Now()
}

// loopTimer guards against a callback that was already posted to the loop
// running after Stop.
type loopTimer struct {
	timer *time.Timer
	state atomic.Int32
}

const (
	timerPending int32 = iota
	timerFired
	timerStopped
)

func (t *loopTimer) fire() bool {
	return t.state.CompareAndSwap(timerPending, timerFired)
}

func (t *loopTimer) Stop() bool {
	if !t.state.CompareAndSwap(timerPending, timerStopped) {
		return false
	}
	t.timer.Stop()
	return true
}
