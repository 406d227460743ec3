package surface

import (
	"errors"

	"github.com/goliatone/go-softlimit/pkg/counter"
	"github.com/goliatone/go-softlimit/pkg/dom"
	"github.com/goliatone/go-softlimit/pkg/marker"
)

var errAlreadyBound = errors.New("surface: adapter already bound")

// Plain measures the value of an input or textarea, or the text of a
// contenteditable element.
type Plain struct {
	input dom.Element
	env   Env
	obs   observation
}

// NewPlain is the Factory for KindPlain.
func NewPlain(input dom.Element, env Env) Adapter {
	return &Plain{input: input, env: env}
}

func (a *Plain) Kind() Kind { return KindPlain }

func (a *Plain) Length(mode marker.Mode) int {
	return counter.Count(plainValue(a.input), mode)
}

func (a *Plain) Bind(onChange func()) error {
	if a.obs.bound || a.obs.released {
		return errAlreadyBound
	}
	a.obs.bound = true
	a.obs.debounce = newDebouncer(a.env.Scheduler, a.env.debounce(), onChange)
	a.obs.listen(a.input)
	return nil
}

func (a *Plain) Release() {
	a.obs.release()
}

func plainValue(el dom.Element) string {
	if el == nil {
		return ""
	}
	switch el.Tag() {
	case "input", "textarea":
		return el.Value()
	default:
		return el.Text()
	}
}
