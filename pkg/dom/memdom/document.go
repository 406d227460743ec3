package memdom

import (
	"slices"
	"strings"

	"github.com/goliatone/go-softlimit/pkg/dom"
)

// EditableForAttr links a contenteditable region to its backing input id.
const EditableForAttr = "data-editable-for"

// Document is an in-memory dom.Document. Mutation observers are notified
// synchronously when elements are appended or removed and when editors are
// attached. It is not safe for concurrent use; drive it from one event loop.
type Document struct {
	elements  []*Element
	observers []*observer
	editors   map[editorKey]*Editor
}

type editorKey struct {
	kind  string
	input *Element
}

var _ dom.Document = (*Document)(nil)

// New returns an empty document.
func New() *Document {
	return &Document{editors: make(map[editorKey]*Editor)}
}

// Create builds a detached element.
func (d *Document) Create(tag string, attrs map[string]string) *Element {
	el := &Element{
		doc:   d,
		tag:   strings.ToLower(strings.TrimSpace(tag)),
		attrs: make(map[string]string, len(attrs)),
	}
	for key, value := range attrs {
		el.attrs[strings.ToLower(key)] = value
	}
	if el.tag == "input" {
		el.value = el.attrs["value"]
	}
	return el
}

// Append connects el at the end of the body and notifies observers.
func (d *Document) Append(el *Element) *Element {
	if el == nil || el.connected {
		return el
	}
	el.doc = d
	el.connected = true
	d.elements = append(d.elements, el)
	d.notify()
	return el
}

// Add creates and appends an element.
func (d *Document) Add(tag string, attrs map[string]string) *Element {
	return d.Append(d.Create(tag, attrs))
}

// Remove disconnects el and notifies observers.
func (d *Document) Remove(el *Element) {
	if el == nil || !el.connected {
		return
	}
	el.connected = false
	d.elements = slices.DeleteFunc(d.elements, func(candidate *Element) bool { return candidate == el })
	for key := range d.editors {
		if key.input == el {
			delete(d.editors, key)
		}
	}
	d.notify()
}

// AttachEditor registers an editor instance for input, simulating an editor
// that finished mounting, and notifies observers.
func (d *Document) AttachEditor(kind string, input *Element, editor *Editor) {
	if input == nil || editor == nil {
		return
	}
	d.editors[editorKey{kind: kind, input: input}] = editor
	d.notify()
}

func (d *Document) QueryAttr(name string) []dom.Element {
	name = strings.ToLower(name)
	var out []dom.Element
	for _, el := range d.elements {
		if _, ok := el.attrs[name]; ok {
			out = append(out, el)
		}
	}
	return out
}

func (d *Document) ElementByID(id string) dom.Element {
	if el := d.byID(id); el != nil {
		return el
	}
	return nil
}

// Lookup returns the concrete element with the id, or nil.
func (d *Document) Lookup(id string) *Element {
	return d.byID(id)
}

func (d *Document) byID(id string) *Element {
	if id == "" {
		return nil
	}
	for _, el := range d.elements {
		if el.attrs["id"] == id {
			return el
		}
	}
	return nil
}

func (d *Document) Controls() []dom.Element {
	var out []dom.Element
	for _, el := range d.elements {
		if dom.IsFormControl(el) {
			out = append(out, el)
		}
	}
	return out
}

func (d *Document) EditableFor(input dom.Element) dom.Element {
	if input == nil {
		return nil
	}
	keys := []string{input.ID(), input.Name()}
	for _, el := range d.elements {
		target := el.attrs[strings.ToLower(EditableForAttr)]
		if target == "" {
			continue
		}
		for _, key := range keys {
			if key != "" && key == target {
				return el
			}
		}
	}
	return nil
}

func (d *Document) Editor(kind string, input dom.Element) (dom.Editor, bool) {
	el, ok := input.(*Element)
	if !ok {
		return nil, false
	}
	editor, ok := d.editors[editorKey{kind: kind, input: el}]
	if !ok {
		return nil, false
	}
	return editor, true
}

func (d *Document) Observe(fn func()) dom.Cancel {
	if fn == nil {
		return func() {}
	}
	entry := &observer{fn: fn, active: true}
	d.observers = append(d.observers, entry)
	return func() {
		entry.active = false
	}
}

func (d *Document) ObserveElement(el dom.Element, fn func()) dom.Cancel {
	concrete, ok := el.(*Element)
	if !ok || fn == nil {
		return func() {}
	}
	return concrete.observe(fn)
}

// ObserverCount returns the number of active document and element observers.
func (d *Document) ObserverCount() int {
	count := 0
	for _, entry := range d.observers {
		if entry.active {
			count++
		}
	}
	for _, el := range d.elements {
		count += el.observerCount()
	}
	return count
}

func (d *Document) notify() {
	entries := slices.Clone(d.observers)
	for _, entry := range entries {
		if entry.active {
			entry.fn()
		}
	}
	d.observers = slices.DeleteFunc(d.observers, func(o *observer) bool { return !o.active })
}
