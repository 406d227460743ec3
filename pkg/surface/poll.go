package surface

import (
	"time"

	"github.com/goliatone/go-softlimit/pkg/eventloop"
)

// poller re-checks a surface on a fixed interval and reports changes. It is
// only used when a surface offers no change signal and polling was enabled.
type poller struct {
	sched    eventloop.Scheduler
	interval time.Duration
	sample   func() string
	onChange func()
	last     string
	timer    eventloop.Timer
	stopped  bool
}

func newPoller(sched eventloop.Scheduler, interval time.Duration, sample func() string, onChange func()) *poller {
	return &poller{sched: sched, interval: interval, sample: sample, onChange: onChange}
}

func (p *poller) Start() {
	if p.stopped || p.timer != nil {
		return
	}
	p.last = p.sample()
	p.schedule()
}

func (p *poller) schedule() {
	p.timer = p.sched.AfterFunc(p.interval, func() {
		p.timer = nil
		if p.stopped {
			return
		}
		if current := p.sample(); current != p.last {
			p.last = current
			p.onChange()
		}
		if !p.stopped {
			p.schedule()
		}
	})
}

func (p *poller) Stop() {
	p.stopped = true
	if p.timer != nil {
		p.timer.Stop()
		p.timer = nil
	}
}
