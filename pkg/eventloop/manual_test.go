package eventloop

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

func TestManualRunsCallbacksInDueOrder(t *testing.T) {
	clock := NewManual(time.Time{})
	var order []string

	clock.AfterFunc(30*time.Millisecond, func() { order = append(order, "c") })
	clock.AfterFunc(10*time.Millisecond, func() { order = append(order, "a") })
	clock.AfterFunc(10*time.Millisecond, func() { order = append(order, "b") })

	if ran := clock.Advance(20 * time.Millisecond); ran != 2 {
		t.Fatalf("expected 2 callbacks, got %d", ran)
	}
	clock.Advance(20 * time.Millisecond)

	if diff := cmp.Diff([]string{"a", "b", "c"}, order); diff != "" {
		t.Fatalf("order mismatch (-want +got):\n%s", diff)
	}
	if clock.Pending() != 0 {
		t.Fatalf("expected no pending timers, got %d", clock.Pending())
	}
}

func TestManualStopPreventsCallback(t *testing.T) {
	clock := NewManual(time.Time{})
	fired := false
	timer := clock.AfterFunc(time.Second, func() { fired = true })

	if !timer.Stop() {
		t.Fatalf("expected first stop to succeed")
	}
	if timer.Stop() {
		t.Fatalf("expected second stop to report false")
	}
	clock.Advance(2 * time.Second)
	if fired {
		t.Fatalf("stopped timer fired")
	}
}

func TestManualRunsCallbacksScheduledWithinWindow(t *testing.T) {
	clock := NewManual(time.Time{})
	start := clock.Now()
	var at []time.Duration

	clock.AfterFunc(10*time.Millisecond, func() {
		at = append(at, clock.Now().Sub(start))
		clock.AfterFunc(10*time.Millisecond, func() {
			at = append(at, clock.Now().Sub(start))
		})
	})

	clock.Advance(50 * time.Millisecond)
	want := []time.Duration{10 * time.Millisecond, 20 * time.Millisecond}
	if diff := cmp.Diff(want, at); diff != "" {
		t.Fatalf("timing mismatch (-want +got):\n%s", diff)
	}
	if got := clock.Now().Sub(start); got != 50*time.Millisecond {
		t.Fatalf("expected clock at 50ms, got %s", got)
	}
}

func TestManualStopAfterFireReportsFalse(t *testing.T) {
	clock := NewManual(time.Time{})
	timer := clock.AfterFunc(0, func() {})
	clock.Flush()
	if timer.Stop() {
		t.Fatalf("expected stop after fire to report false")
	}
}
