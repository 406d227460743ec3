package eventloop

import (
	"sort"
	"time"
)

// Manual is a Scheduler driven by virtual time. Callbacks run synchronously
// inside Advance, in due-time order with ties broken by scheduling order.
type Manual struct {
	now    time.Time
	seq    int
	timers []*manualTimer
}

// NewManual creates a virtual clock starting at start. A zero start uses a
// fixed epoch so output stays deterministic.
func NewManual(start time.Time) *Manual {
	if start.IsZero() {
		start = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	}
	return &Manual{now: start}
}

// Now returns the current virtual time.
func (m *Manual) Now() time.Time {
	return m.now
}

// AfterFunc schedules fn at Now()+d.
func (m *Manual) AfterFunc(d time.Duration, fn func()) Timer {
	if fn == nil {
		return stoppedTimer{}
	}
	if d < 0 {
		d = 0
	}
	m.seq++
	t := &manualTimer{owner: m, due: m.now.Add(d), seq: m.seq, fn: fn}
	m.timers = append(m.timers, t)
	return t
}

// Advance moves virtual time forward by d, running every callback that falls
// due, including callbacks scheduled by callbacks within the window.
func (m *Manual) Advance(d time.Duration) int {
	target := m.now.Add(d)
	ran := 0
	for {
		next := m.nextDue(target)
		if next == nil {
			break
		}
		m.remove(next)
		if next.due.After(m.now) {
			m.now = next.due
		}
		next.fired = true
		next.fn()
		ran++
	}
	if target.After(m.now) {
		m.now = target
	}
	return ran
}

// Flush runs every callback already due at the current time.
func (m *Manual) Flush() int {
	return m.Advance(0)
}

// Pending returns the number of scheduled callbacks that have not run or been
// stopped.
func (m *Manual) Pending() int {
	return len(m.timers)
}

func (m *Manual) nextDue(target time.Time) *manualTimer {
	if len(m.timers) == 0 {
		return nil
	}
	sort.SliceStable(m.timers, func(i, j int) bool {
		if m.timers[i].due.Equal(m.timers[j].due) {
			return m.timers[i].seq < m.timers[j].seq
		}
		return m.timers[i].due.Before(m.timers[j].due)
	})
	if m.timers[0].due.After(target) {
		return nil
	}
	return m.timers[0]
}

func (m *Manual) remove(t *manualTimer) bool {
	for idx, candidate := range m.timers {
		if candidate == t {
			m.timers = append(m.timers[:idx], m.timers[idx+1:]...)
			return true
		}
	}
	return false
}

type manualTimer struct {
	owner *Manual
	due   time.Time
	seq   int
	fn    func()
	fired bool
}

func (t *manualTimer) Stop() bool {
	if t.fired {
		return false
	}
	return t.owner.remove(t)
}
