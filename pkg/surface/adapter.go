package surface

import (
	"log/slog"
	"time"

	"github.com/goliatone/go-softlimit/pkg/dom"
	"github.com/goliatone/go-softlimit/pkg/eventloop"
	"github.com/goliatone/go-softlimit/pkg/marker"
)

// Default tunables.
const (
	DefaultDebounce     = 50 * time.Millisecond
	DefaultPollInterval = 500 * time.Millisecond
)

// Adapter measures one input surface and reports its edits.
type Adapter interface {
	Kind() Kind
	// Length returns the size of the surface's plain-text content in mode.
	Length(mode marker.Mode) int
	// Bind registers the surface's change signals. onChange runs after
	// edits, debounced except for discrete actions such as blur and paste.
	Bind(onChange func()) error
	// Release undoes everything Bind registered. It is idempotent.
	Release()
}

// Env carries the host services adapters use.
type Env struct {
	Doc       dom.Document
	Scheduler eventloop.Scheduler
	Logger    *slog.Logger

	Debounce time.Duration
	// Poll enables the timed re-check fallback for surfaces that expose no
	// change signal.
	Poll         bool
	PollInterval time.Duration
}

func (e Env) debounce() time.Duration {
	if e.Debounce <= 0 {
		return DefaultDebounce
	}
	return e.Debounce
}

func (e Env) pollInterval() time.Duration {
	if e.PollInterval <= 0 {
		return DefaultPollInterval
	}
	return e.PollInterval
}

func (e Env) logger() *slog.Logger {
	if e.Logger == nil {
		return slog.Default()
	}
	return e.Logger
}

// Factory builds an adapter for a resolved input element.
type Factory func(input dom.Element, env Env) Adapter

// Debounced events are smoothed; immediate events flush at once.
var (
	debouncedEvents = []dom.EventType{dom.EventInput, dom.EventKeyUp, dom.EventChange, dom.EventCut}
	immediateEvents = []dom.EventType{dom.EventPaste, dom.EventBlur}
)

// observation tracks the resources a Bind registered.
type observation struct {
	cancels  []dom.Cancel
	debounce *debouncer
	poll     *poller
	bound    bool
	released bool
}

func (o *observation) add(cancel dom.Cancel) {
	if cancel != nil {
		o.cancels = append(o.cancels, cancel)
	}
}

func (o *observation) listen(el dom.Element) {
	if el == nil || o.debounce == nil {
		return
	}
	for _, event := range debouncedEvents {
		o.add(el.AddEventListener(event, func(dom.Event) { o.debounce.Trigger() }))
	}
	for _, event := range immediateEvents {
		o.add(el.AddEventListener(event, func(dom.Event) { o.debounce.Flush() }))
	}
}

// startPoll re-checks sample until a native change signal attaches.
func (o *observation) startPoll(env Env, sample func() string) {
	if o.poll != nil || o.debounce == nil {
		return
	}
	o.poll = newPoller(env.Scheduler, env.pollInterval(), sample, o.debounce.Flush)
	o.poll.Start()
}

func (o *observation) stopPoll() {
	if o.poll != nil {
		o.poll.Stop()
		o.poll = nil
	}
}

func (o *observation) release() {
	if o.released {
		return
	}
	o.released = true
	for _, cancel := range o.cancels {
		cancel()
	}
	o.cancels = nil
	if o.debounce != nil {
		o.debounce.Stop()
	}
	o.stopPoll()
}
