package memdom

import (
	"slices"

	"github.com/goliatone/go-softlimit/pkg/dom"
)

// Editor is an in-memory rich-text editor instance.
type Editor struct {
	data      string
	err       error
	listeners []*observer
}

var _ dom.Editor = (*Editor)(nil)

// NewEditor creates an editor holding data.
func NewEditor(data string) *Editor {
	return &Editor{data: data}
}

func (e *Editor) Data() (string, error) {
	if e.err != nil {
		return "", e.err
	}
	return e.data, nil
}

// SetData replaces the content and fires change callbacks.
func (e *Editor) SetData(data string) {
	e.data = data
	e.err = nil
	e.fire()
}

// Fail makes subsequent Data calls return err.
func (e *Editor) Fail(err error) {
	e.err = err
	e.fire()
}

func (e *Editor) OnChange(fn func()) dom.Cancel {
	if fn == nil {
		return func() {}
	}
	entry := &observer{fn: fn, active: true}
	e.listeners = append(e.listeners, entry)
	return func() {
		entry.active = false
	}
}

// ListenerCount returns the number of active change callbacks.
func (e *Editor) ListenerCount() int {
	count := 0
	for _, entry := range e.listeners {
		if entry.active {
			count++
		}
	}
	return count
}

func (e *Editor) fire() {
	entries := slices.Clone(e.listeners)
	for _, entry := range entries {
		if entry.active {
			entry.fn()
		}
	}
	e.listeners = slices.DeleteFunc(e.listeners, func(o *observer) bool { return !o.active })
}
