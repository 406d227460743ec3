// Package dom describes the slice of a host page the counting engine needs:
// elements with attributes and values, event listeners, mutation observation
// and access to rich-text editor instances. Browser and in-memory hosts
// implement it.
package dom

// EventType names a DOM event.
type EventType string

const (
	EventInput  EventType = "input"
	EventKeyUp  EventType = "keyup"
	EventChange EventType = "change"
	EventCut    EventType = "cut"
	EventPaste  EventType = "paste"
	EventBlur   EventType = "blur"
)

// Event is delivered to listeners.
type Event struct {
	Type   EventType
	Target Element
}

// Listener handles an event.
type Listener func(Event)

// Cancel undoes a registration. Calling it more than once is a no-op.
type Cancel func()

// Element is a node in the host page.
type Element interface {
	Tag() string
	ID() string
	Name() string
	Attr(name string) (string, bool)
	SetAttr(name, value string)
	RemoveAttr(name string)
	HasClass(name string) bool
	ToggleClass(name string, on bool)

	// Value is the form value for input and textarea elements.
	Value() string
	// Text is the textContent of the element.
	Text() string
	SetText(text string)
	// InnerHTML is the serialized markup of the element's children.
	InnerHTML() string

	Connected() bool
	AddEventListener(event EventType, fn Listener) Cancel
}

// Editor is a rich-text editor instance bound to a backing input.
type Editor interface {
	// Data returns the editor's serialized content, usually HTML.
	Data() (string, error)
	// OnChange registers fn for the editor's native change signal.
	OnChange(fn func()) Cancel
}

// Document is the host page.
type Document interface {
	// QueryAttr returns connected elements carrying the attribute, in
	// document order.
	QueryAttr(name string) []Element
	// ElementByID returns the connected element with the id, or nil.
	ElementByID(id string) Element
	// Controls returns connected input, textarea and contenteditable elements
	// in document order.
	Controls() []Element
	// EditableFor returns the contenteditable region an editor renders for
	// the backing input, or nil when it has not materialized.
	EditableFor(input Element) Element
	// Editor returns the editor instance of the given kind attached to the
	// backing input, when one exists.
	Editor(kind string, input Element) (Editor, bool)

	// Observe reports child-list mutations anywhere under the body.
	Observe(fn func()) Cancel
	// ObserveElement reports content mutations within el.
	ObserveElement(el Element, fn func()) Cancel
}

// IsFormControl reports whether el can hold user-entered text.
func IsFormControl(el Element) bool {
	if el == nil {
		return false
	}
	switch el.Tag() {
	case "input", "textarea":
		return true
	}
	value, ok := el.Attr("contenteditable")
	return ok && value != "false"
}
