package eventloop

import "time"

// Timer is a pending callback created by AfterFunc.
type Timer interface {
	// Stop prevents the callback from running. It reports whether the call
	// stopped the timer, false when it already ran or was stopped.
	Stop() bool
}

// Scheduler schedules callbacks on the host event loop.
type Scheduler interface {
	AfterFunc(d time.Duration, fn func()) Timer
	Now() time.Time
}

// stoppedTimer is returned for nil callbacks so callers never hold a nil Timer.
type stoppedTimer struct{}

func (stoppedTimer) Stop() bool { return false }
