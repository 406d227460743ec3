// Package fields loads the field definitions the soft-limit hooks operate on.
// Definitions live in JSON or YAML documents keyed by field handle.
package fields

import (
	"encoding/json"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"gopkg.in/yaml.v3"
)

// Field is one configurable form field. Instructions is the free text that may
// carry a soft-limit marker.
type Field struct {
	Handle       string `json:"handle" yaml:"handle" validate:"required,max=64"`
	Name         string `json:"name,omitempty" yaml:"name,omitempty" validate:"omitempty,max=255"`
	Label        string `json:"label" yaml:"label" validate:"required,max=255"`
	Instructions string `json:"instructions,omitempty" yaml:"instructions,omitempty" validate:"max=10000"`
	Kind         string `json:"kind,omitempty" yaml:"kind,omitempty" validate:"omitempty,max=32,lowercase"`
	Value        string `json:"value,omitempty" yaml:"value,omitempty"`
	Multiline    bool   `json:"multiline,omitempty" yaml:"multiline,omitempty"`
	// Poll is a duration string ("750ms") enabling the polling fallback.
	Poll string `json:"poll,omitempty" yaml:"poll,omitempty"`
	// Source is the file the field was loaded from.
	Source string `json:"-" yaml:"-"`
}

// InputName returns the form name of the field's input.
func (f Field) InputName() string {
	if strings.TrimSpace(f.Name) != "" {
		return f.Name
	}
	return "fields[" + f.Handle + "]"
}

// UsesTextarea reports whether the field renders a textarea. Rich-text kinds
// always edit through a backing textarea.
func (f Field) UsesTextarea() bool {
	switch f.Kind {
	case "", "none", "plain", "text":
		return f.Multiline
	default:
		return true
	}
}

// Set is an ordered collection of fields keyed by handle.
type Set struct {
	fields map[string]Field
}

// NewSet builds a set from fields, rejecting empty or duplicate handles.
func NewSet(list ...Field) (*Set, error) {
	set := &Set{fields: make(map[string]Field, len(list))}
	for _, field := range list {
		if err := set.add(field.Handle, field, field.Source); err != nil {
			return nil, err
		}
	}
	return set, nil
}

// Field returns the field with handle.
func (s *Set) Field(handle string) (Field, bool) {
	if s == nil {
		return Field{}, false
	}
	field, ok := s.fields[handle]
	return field, ok
}

// Fields returns every field ordered by handle.
func (s *Set) Fields() []Field {
	if s == nil {
		return nil
	}
	out := make([]Field, 0, len(s.fields))
	for _, field := range s.fields {
		out = append(out, field)
	}
	slices.SortFunc(out, func(a, b Field) int { return strings.Compare(a.Handle, b.Handle) })
	return out
}

// Len returns the number of fields.
func (s *Set) Len() int {
	if s == nil {
		return 0
	}
	return len(s.fields)
}

func (s *Set) add(key string, field Field, source string) error {
	handle := strings.TrimSpace(key)
	if handle == "" {
		return fmt.Errorf("fields: file %s defines an empty field handle", source)
	}
	if _, exists := s.fields[handle]; exists {
		return fmt.Errorf("fields: duplicate field %q (file %s)", handle, source)
	}
	field.Handle = handle
	field.Kind = strings.ToLower(strings.TrimSpace(field.Kind))
	field.Source = source
	s.fields[handle] = field
	return nil
}

type documentFile struct {
	Fields map[string]Field `json:"fields" yaml:"fields"`
}

// LoadFS walks fsys and loads every JSON or YAML field document. A nil fsys
// yields an empty set.
func LoadFS(fsys fs.FS) (*Set, error) {
	set := &Set{fields: make(map[string]Field)}
	if fsys == nil {
		return set, nil
	}

	err := fs.WalkDir(fsys, ".", func(path string, entry fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if entry.IsDir() || !isFieldFile(path) {
			return nil
		}
		data, err := fs.ReadFile(fsys, path)
		if err != nil {
			return fmt.Errorf("fields: read %s: %w", path, err)
		}
		return set.merge(data, path)
	})
	if err != nil {
		return nil, err
	}
	return set, nil
}

// LoadFile loads a single field document.
func LoadFile(path string) (*Set, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("fields: read %s: %w", path, err)
	}
	return Parse(data, path)
}

// Parse decodes one field document.
func Parse(data []byte, source string) (*Set, error) {
	set := &Set{fields: make(map[string]Field)}
	if err := set.merge(data, source); err != nil {
		return nil, err
	}
	return set, nil
}

func (s *Set) merge(data []byte, source string) error {
	doc, err := parseDocument(data, source)
	if err != nil {
		return err
	}
	keys := make([]string, 0, len(doc.Fields))
	for key := range doc.Fields {
		keys = append(keys, key)
	}
	slices.Sort(keys)
	for _, key := range keys {
		if err := s.add(key, doc.Fields[key], source); err != nil {
			return err
		}
	}
	return nil
}

func parseDocument(data []byte, source string) (documentFile, error) {
	var doc documentFile
	if len(strings.TrimSpace(string(data))) == 0 {
		return documentFile{}, fmt.Errorf("fields: file %s is empty", source)
	}
	if err := json.Unmarshal(data, &doc); err == nil {
		return doc, nil
	}
	if err := yaml.Unmarshal(data, &doc); err == nil {
		return doc, nil
	}
	return documentFile{}, fmt.Errorf("fields: parse %s: invalid JSON or YAML", source)
}

func isFieldFile(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json", ".yaml", ".yml":
		return true
	default:
		return false
	}
}
