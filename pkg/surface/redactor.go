package surface

import (
	"github.com/goliatone/go-softlimit/pkg/dom"
	"github.com/goliatone/go-softlimit/pkg/marker"
)

// Redactor measures the contenteditable region a Redactor editor renders next
// to its backing textarea. Redactor exposes no reliable change callback, so
// the adapter watches the region's mutations and key events instead.
type Redactor struct {
	input    dom.Element
	env      Env
	obs      observation
	editable dom.Element
}

// NewRedactor is the Factory for KindRedactor.
func NewRedactor(input dom.Element, env Env) Adapter {
	return &Redactor{input: input, env: env}
}

func (a *Redactor) Kind() Kind { return KindRedactor }

func (a *Redactor) Length(mode marker.Mode) int {
	return measureMarkup(a.source(), mode, a.env)
}

func (a *Redactor) source() string {
	if editable := a.region(); editable != nil {
		return editable.InnerHTML()
	}
	return plainValue(a.input)
}

func (a *Redactor) region() dom.Element {
	if a.editable != nil && a.editable.Connected() {
		return a.editable
	}
	if a.env.Doc == nil {
		return nil
	}
	return a.env.Doc.EditableFor(a.input)
}

func (a *Redactor) Bind(onChange func()) error {
	if a.obs.bound || a.obs.released {
		return errAlreadyBound
	}
	a.obs.bound = true
	a.obs.debounce = newDebouncer(a.env.Scheduler, a.env.debounce(), onChange)
	a.obs.add(a.input.AddEventListener(dom.EventChange, func(dom.Event) { a.obs.debounce.Trigger() }))

	if !a.attach() && a.env.Doc != nil {
		var cancel dom.Cancel
		cancel = a.env.Doc.Observe(func() {
			if a.obs.released || a.editable != nil {
				return
			}
			if a.attach() {
				cancel()
				a.obs.debounce.Flush()
			}
		})
		a.obs.add(cancel)
	}

	if a.env.Poll && a.editable == nil {
		a.obs.startPoll(a.env, a.source)
	}
	return nil
}

func (a *Redactor) attach() bool {
	editable := a.region()
	if editable == nil {
		return false
	}
	a.editable = editable
	a.obs.stopPoll()
	a.obs.listen(editable)
	if a.env.Doc != nil {
		a.obs.add(a.env.Doc.ObserveElement(editable, a.obs.debounce.Trigger))
	}
	return true
}

func (a *Redactor) Release() {
	a.obs.release()
}
