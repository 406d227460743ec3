package openapi

import (
	"errors"
	"strings"

	"github.com/goliatone/go-softlimit/pkg/marker"
)

// Document wraps a raw OpenAPI payload and its origin.
type Document struct {
	source Source
	raw    []byte
}

// NewDocument constructs a Document wrapper while validating the inputs.
func NewDocument(src Source, raw []byte) (Document, error) {
	if src == nil {
		return Document{}, errors.New("openapi: source is required")
	}
	if len(raw) == 0 {
		return Document{}, errors.New("openapi: raw document is empty")
	}
	return Document{source: src, raw: append([]byte(nil), raw...)}, nil
}

// MustNewDocument panics if the document cannot be created. Useful for tests.
func MustNewDocument(src Source, raw []byte) Document {
	doc, err := NewDocument(src, raw)
	if err != nil {
		panic(err)
	}
	return doc
}

// Source returns the origin metadata for the document.
func (d Document) Source() Source {
	return d.source
}

// Raw returns a copy of the payload.
func (d Document) Raw() []byte {
	return append([]byte(nil), d.raw...)
}

// Location returns the string identifier for the origin.
func (d Document) Location() string {
	if d.source == nil {
		return ""
	}
	return d.source.Location()
}

// Finding is one description that carries a marker.
type Finding struct {
	// Location is a JSON pointer into the document, e.g.
	// "#/components/schemas/Post/properties/title/description".
	Location    string        `json:"location"`
	Description string        `json:"description"`
	Limit       int           `json:"limit,omitempty"`
	Mode        string        `json:"mode,omitempty"`
	Errors      marker.Errors `json:"-"`
	Messages    []string      `json:"errors,omitempty"`
}

// Valid reports whether the description passes save-time validation.
func (f Finding) Valid() bool {
	return len(f.Errors) == 0
}

// Report is the result of linting one document.
type Report struct {
	Location string    `json:"location"`
	Findings []Finding `json:"findings"`
}

// Problems returns the findings that failed validation.
func (r Report) Problems() []Finding {
	var out []Finding
	for _, finding := range r.Findings {
		if !finding.Valid() {
			out = append(out, finding)
		}
	}
	return out
}

// OK reports whether no finding failed validation.
func (r Report) OK() bool {
	return len(r.Problems()) == 0
}

var pointerEscaper = strings.NewReplacer("~", "~0", "/", "~1")

func pointer(base string, tokens ...string) string {
	var b strings.Builder
	b.WriteString(base)
	for _, token := range tokens {
		b.WriteByte('/')
		b.WriteString(pointerEscaper.Replace(token))
	}
	return b.String()
}
