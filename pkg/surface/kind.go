package surface

import "strings"

// Kind is the surface tag declared on a placeholder.
type Kind string

const (
	KindPlain    Kind = "plain"
	KindCKEditor Kind = "ckeditor"
	KindRedactor Kind = "redactor"
	KindMarkdown Kind = "markdown"
)

// ParseKind normalizes a declared tag. Empty and "none" mean plain; unknown
// tags are returned as-is so the registry can decide.
func ParseKind(raw string) Kind {
	switch value := strings.ToLower(strings.TrimSpace(raw)); value {
	case "", "none", "plain", "text", "textarea":
		return KindPlain
	default:
		return Kind(value)
	}
}

// Kinds lists the built-in kinds.
func Kinds() []Kind {
	return []Kind{KindPlain, KindCKEditor, KindRedactor, KindMarkdown}
}
