package memdom

import (
	"html"
	"slices"
	"strings"

	"github.com/goliatone/go-softlimit/pkg/dom"
)

// Element is an in-memory dom.Element. Elements are created by a Document
// and are connected once appended.
type Element struct {
	doc       *Document
	tag       string
	attrs     map[string]string
	value     string
	inner     string
	text      string
	connected bool

	listeners map[dom.EventType][]*listener
	observers []*observer
}

type listener struct {
	fn     dom.Listener
	active bool
}

type observer struct {
	fn     func()
	active bool
}

var _ dom.Element = (*Element)(nil)

func (e *Element) Tag() string { return e.tag }

func (e *Element) ID() string {
	return e.attrs["id"]
}

func (e *Element) Name() string {
	return e.attrs["name"]
}

func (e *Element) Attr(name string) (string, bool) {
	value, ok := e.attrs[strings.ToLower(name)]
	return value, ok
}

func (e *Element) SetAttr(name, value string) {
	e.attrs[strings.ToLower(name)] = value
}

func (e *Element) RemoveAttr(name string) {
	delete(e.attrs, strings.ToLower(name))
}

func (e *Element) HasClass(name string) bool {
	return slices.Contains(strings.Fields(e.attrs["class"]), name)
}

func (e *Element) ToggleClass(name string, on bool) {
	classes := strings.Fields(e.attrs["class"])
	idx := slices.Index(classes, name)
	switch {
	case on && idx < 0:
		classes = append(classes, name)
	case !on && idx >= 0:
		classes = slices.Delete(classes, idx, idx+1)
	default:
		return
	}
	if len(classes) == 0 {
		delete(e.attrs, "class")
		return
	}
	e.attrs["class"] = strings.Join(classes, " ")
}

func (e *Element) Value() string {
	return e.value
}

func (e *Element) Text() string {
	return e.text
}

// SetText replaces the element content with text and notifies element
// observers.
func (e *Element) SetText(text string) {
	e.text = text
	e.inner = html.EscapeString(text)
	e.notify()
}

func (e *Element) InnerHTML() string {
	return e.inner
}

// SetInnerHTML replaces the element markup and notifies element observers.
func (e *Element) SetInnerHTML(markup string) {
	e.inner = markup
	e.text = textContent(markup)
	e.notify()
}

// SetValue changes the form value without dispatching events, like a
// programmatic assignment in a browser.
func (e *Element) SetValue(value string) {
	e.value = value
}

// Type sets the value and dispatches an input event, the way a keystroke
// would.
func (e *Element) Type(value string) {
	e.value = value
	e.Dispatch(dom.EventInput)
}

// Paste sets the value and dispatches a paste event.
func (e *Element) Paste(value string) {
	e.value = value
	e.Dispatch(dom.EventPaste)
}

func (e *Element) Connected() bool {
	return e.connected
}

func (e *Element) AddEventListener(event dom.EventType, fn dom.Listener) dom.Cancel {
	if fn == nil {
		return func() {}
	}
	entry := &listener{fn: fn, active: true}
	if e.listeners == nil {
		e.listeners = make(map[dom.EventType][]*listener)
	}
	e.listeners[event] = append(e.listeners[event], entry)
	return func() {
		entry.active = false
	}
}

// Dispatch delivers an event of the given type to the element's listeners.
func (e *Element) Dispatch(event dom.EventType) {
	entries := slices.Clone(e.listeners[event])
	for _, entry := range entries {
		if entry.active {
			entry.fn(dom.Event{Type: event, Target: e})
		}
	}
	e.compactListeners(event)
}

// ListenerCount returns the number of active listeners across all events.
func (e *Element) ListenerCount() int {
	count := 0
	for _, entries := range e.listeners {
		for _, entry := range entries {
			if entry.active {
				count++
			}
		}
	}
	return count
}

func (e *Element) observe(fn func()) dom.Cancel {
	entry := &observer{fn: fn, active: true}
	e.observers = append(e.observers, entry)
	return func() {
		entry.active = false
	}
}

func (e *Element) notify() {
	entries := slices.Clone(e.observers)
	for _, entry := range entries {
		if entry.active {
			entry.fn()
		}
	}
	e.observers = slices.DeleteFunc(e.observers, func(o *observer) bool { return !o.active })
}

func (e *Element) observerCount() int {
	count := 0
	for _, entry := range e.observers {
		if entry.active {
			count++
		}
	}
	return count
}

func (e *Element) compactListeners(event dom.EventType) {
	e.listeners[event] = slices.DeleteFunc(e.listeners[event], func(l *listener) bool { return !l.active })
}
