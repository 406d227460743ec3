package engine

import (
	"time"

	"github.com/goliatone/go-softlimit/pkg/counter"
	"github.com/goliatone/go-softlimit/pkg/dom"
	"github.com/goliatone/go-softlimit/pkg/eventloop"
	"github.com/goliatone/go-softlimit/pkg/marker"
	"github.com/goliatone/go-softlimit/pkg/placeholder"
	"github.com/goliatone/go-softlimit/pkg/surface"
)

// State is the lifecycle state of a Binding.
type State string

const (
	StateUnbound   State = "unbound"
	StateResolving State = "resolving"
	StateBound     State = "bound"
	StateReleased  State = "released"
)

// Binding associates one placeholder with the input it counts. At most one
// binding per target identifier is active at a time.
type Binding struct {
	engine      *Engine
	id          string
	placeholder dom.Element
	spec        marker.LimitSpec
	declared    surface.Kind
	poll        time.Duration

	state     State
	input     dom.Element
	adapter   surface.Adapter
	kind      surface.Kind
	reading   counter.Reading
	policy    *retryPolicy
	timer     eventloop.Timer
	attempts  int
	started   time.Time
	abandoned bool
}

func newBinding(e *Engine, el dom.Element, p placeholder.Placeholder) *Binding {
	return &Binding{
		engine:      e,
		id:          p.Target,
		placeholder: el,
		spec:        p.Spec,
		declared:    surface.ParseKind(p.Kind),
		poll:        p.Poll,
		state:       StateUnbound,
		policy:      newRetryPolicy(e.cfg),
	}
}

// ID returns the target identifier.
func (b *Binding) ID() string { return b.id }

func (b *Binding) State() State { return b.state }

func (b *Binding) Spec() marker.LimitSpec { return b.spec }

// Kind returns the surface kind in use once bound, or the declared kind
// before that.
func (b *Binding) Kind() surface.Kind {
	if b.kind != "" {
		return b.kind
	}
	return b.declared
}

func (b *Binding) Placeholder() dom.Element { return b.placeholder }

// Input returns the resolved input, or nil while resolving.
func (b *Binding) Input() dom.Element { return b.input }

// Reading returns the last displayed measurement.
func (b *Binding) Reading() counter.Reading { return b.reading }

// Attempts returns the number of scheduled resolution retries that ran.
func (b *Binding) Attempts() int { return b.attempts }

// Abandoned reports whether resolution gave up.
func (b *Binding) Abandoned() bool { return b.abandoned }

// Release frees everything the binding registered. It is safe in any state
// and idempotent.
func (b *Binding) Release() {
	if b.state == StateReleased {
		return
	}
	b.cancelRetry()
	if b.adapter != nil {
		b.adapter.Release()
	}
	if !b.abandoned {
		b.placeholder.SetAttr(placeholder.AttrBound, placeholder.BoundReleased)
	}
	b.setState(StateReleased)
	b.engine.forget(b)
}

func (b *Binding) setState(next State) {
	prev := b.state
	if prev == next {
		return
	}
	b.state = next
	b.engine.observer.StateChanged(b, prev, next)
}

// begin moves the binding into resolving and makes the first attempt.
func (b *Binding) begin() {
	b.setState(StateResolving)
	b.placeholder.SetAttr(placeholder.AttrBound, placeholder.BoundResolving)
	b.started = b.engine.sched.Now()
	if !b.tryResolve() && b.state == StateResolving {
		b.scheduleRetry()
	}
}

// tryResolve looks for the input and binds it when found.
func (b *Binding) tryResolve() bool {
	if b.state != StateResolving {
		return false
	}
	input := resolveInput(b.engine.doc, b.id)
	if input == nil {
		return false
	}
	b.cancelRetry()
	return b.bind(input)
}

func (b *Binding) bind(input dom.Element) bool {
	e := b.engine
	env := surface.Env{
		Doc:          e.doc,
		Scheduler:    e.sched,
		Logger:       e.logger,
		Debounce:     e.cfg.Debounce,
		Poll:         e.cfg.PollFallback || b.poll > 0,
		PollInterval: e.cfg.PollInterval,
	}
	if b.poll > 0 {
		env.PollInterval = b.poll
	}

	adapter, kind := e.registry.New(b.declared, input, env)
	if err := adapter.Bind(b.onChange); err != nil {
		adapter.Release()
		e.logger.Warn("soft-limit adapter bind failed", "target", b.id, "kind", kind, "error", err)
		b.abandon()
		return false
	}
	if kind != b.declared {
		e.logger.Debug("soft-limit surface kind not registered, using fallback",
			"target", b.id, "declared", b.declared, "kind", kind)
	}

	b.input = input
	b.adapter = adapter
	b.kind = kind
	b.placeholder.SetAttr(placeholder.AttrBound, placeholder.BoundActive)
	b.setState(StateBound)
	e.logger.Debug("soft-limit binding bound", "target", b.id, "kind", kind, "attempts", b.attempts)
	b.onChange()
	return true
}

func (b *Binding) scheduleRetry() {
	e := b.engine
	elapsed := e.sched.Now().Sub(b.started)
	delay := b.policy.next(b.attempts, elapsed)
	if delay < 0 {
		b.abandon()
		return
	}
	b.timer = e.sched.AfterFunc(delay, func() {
		defer e.recoverCallback("retry", b.id)
		b.timer = nil
		if b.state != StateResolving {
			return
		}
		b.attempts++
		if !b.tryResolve() && b.state == StateResolving {
			b.scheduleRetry()
		}
	})
}

func (b *Binding) cancelRetry() {
	if b.timer != nil {
		b.timer.Stop()
		b.timer = nil
	}
}

// abandon gives up on resolution. The placeholder keeps its initial text.
func (b *Binding) abandon() {
	e := b.engine
	b.abandoned = true
	b.placeholder.SetAttr(placeholder.AttrBound, placeholder.BoundAbandoned)
	e.logger.Debug("soft-limit placeholder abandoned", "target", b.id, "attempts", b.attempts)
	e.observer.Abandoned(b, b.attempts)
	b.Release()
}

func (b *Binding) onChange() {
	defer b.engine.recoverCallback("update", b.id)
	b.update()
}

// update measures the surface and rewrites the counter.
func (b *Binding) update() {
	if b.state != StateBound || b.adapter == nil {
		return
	}
	n := b.adapter.Length(b.spec.Mode())
	reading := b.engine.thresholds.Read(n, b.spec)

	el := b.placeholder
	el.SetText(reading.Display)
	el.SetAttr(placeholder.AttrState, string(reading.Status))
	el.ToggleClass(placeholder.ClassWarning, reading.Status == counter.StatusWarning)
	el.ToggleClass(placeholder.ClassExceeded, reading.Status == counter.StatusExceeded)

	b.reading = reading
	b.engine.observer.Updated(b, reading)
}
