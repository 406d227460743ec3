// Package surface measures and observes the input surfaces a counter can be
// attached to.
//
// Each surface kind is a tagged variant with its own Adapter implementation:
// plain inputs, CKEditor instances, Redactor editable regions and markdown
// textareas. The kind is declared on the placeholder and resolved through a
// Registry; adapters never sniff the widget type at runtime.
//
// Rich content is always sanitized before it is interpreted as text: script
// and style blocks are dropped with their contents, event-handler attributes
// and script-scheme URLs are removed, and only then is the markup parsed for
// its text. Markup syntax is never counted.
package surface
