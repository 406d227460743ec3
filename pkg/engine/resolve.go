package engine

import (
	"strings"

	"github.com/goliatone/go-softlimit/pkg/dom"
)

// resolveInput finds the input a placeholder targets. Candidates are tried by
// exact id, exact name, name suffix ("x" or "[x]") and finally any name that
// contains the identifier. Only form controls and contenteditable elements
// qualify.
func resolveInput(doc dom.Document, id string) dom.Element {
	if doc == nil || id == "" {
		return nil
	}
	if el := doc.ElementByID(id); el != nil && el.Connected() && dom.IsFormControl(el) {
		return el
	}

	controls := doc.Controls()
	matchers := []func(name string) bool{
		func(name string) bool { return name == id },
		func(name string) bool {
			return strings.HasSuffix(name, "["+id+"]") || strings.HasSuffix(name, id)
		},
		func(name string) bool { return strings.Contains(name, id) },
	}
	for _, match := range matchers {
		for _, el := range controls {
			if !el.Connected() {
				continue
			}
			if name := el.Name(); name != "" && match(name) {
				return el
			}
		}
	}
	return nil
}
