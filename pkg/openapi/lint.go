package openapi

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strconv"
	"strings"

	"github.com/getkin/kin-openapi/openapi3"

	"github.com/goliatone/go-softlimit/pkg/marker"
)

const componentSchemaPrefix = "#/components/schemas/"

// Linter checks the markers found in a document's descriptions.
type Linter struct {
	logger   *slog.Logger
	validate bool
}

// LinterOption configures a Linter.
type LinterOption func(*Linter)

// WithLogger sets the logger. Defaults to slog.Default().
func WithLogger(logger *slog.Logger) LinterOption {
	return func(l *Linter) {
		if logger != nil {
			l.logger = logger
		}
	}
}

// WithDocumentValidation also runs kin-openapi's structural validation and
// fails the lint when the document itself is invalid.
func WithDocumentValidation(enabled bool) LinterOption {
	return func(l *Linter) { l.validate = enabled }
}

// NewLinter builds a Linter.
func NewLinter(opts ...LinterOption) *Linter {
	l := &Linter{logger: slog.Default()}
	for _, opt := range opts {
		if opt != nil {
			opt(l)
		}
	}
	return l
}

// Lint parses doc and reports every description carrying a marker. Component
// schemas are walked first, then reusable request bodies, then operations in
// path order.
func (l *Linter) Lint(ctx context.Context, doc Document) (Report, error) {
	if err := ctx.Err(); err != nil {
		return Report{}, err
	}
	raw := doc.Raw()
	if len(raw) == 0 {
		return Report{}, errors.New("openapi lint: document payload is empty")
	}

	loader := openapi3.NewLoader()
	loader.Context = ctx
	spec, err := loader.LoadFromData(raw)
	if err != nil {
		return Report{}, fmt.Errorf("openapi lint: load document: %w", err)
	}
	if l.validate {
		if err := spec.Validate(ctx, openapi3.DisableExamplesValidation()); err != nil {
			return Report{}, fmt.Errorf("openapi lint: validate: %w", err)
		}
	}

	w := &walker{visited: make(map[*openapi3.Schema]bool)}
	if spec.Components != nil {
		for _, name := range sortedKeys(spec.Components.Schemas) {
			w.schema(pointer("#/components/schemas", name), spec.Components.Schemas[name], true)
		}
		for _, name := range sortedKeys(spec.Components.RequestBodies) {
			w.requestBody(pointer("#/components/requestBodies", name), spec.Components.RequestBodies[name])
		}
	}
	if spec.Paths != nil {
		items := spec.Paths.Map()
		for _, path := range sortedKeys(items) {
			item := items[path]
			if item == nil {
				continue
			}
			ops := item.Operations()
			for _, method := range sortedKeys(ops) {
				w.operation(pointer("#/paths", path, strings.ToLower(method)), ops[method])
			}
		}
	}

	report := Report{Location: doc.Location(), Findings: w.findings}
	l.logger.DebugContext(ctx, "openapi lint finished",
		"location", report.Location,
		"markers", len(report.Findings),
		"problems", len(report.Problems()),
	)
	return report, nil
}

type walker struct {
	visited  map[*openapi3.Schema]bool
	findings []Finding
}

func (w *walker) describe(location, description string) {
	if !marker.Contains(description) {
		return
	}
	finding := Finding{
		Location:    location + "/description",
		Description: description,
		Errors:      marker.ValidateForSave(description),
	}
	if finding.Valid() {
		if spec, ok := marker.ParseFirst(description); ok {
			finding.Limit = spec.Max()
			finding.Mode = string(spec.Mode())
		}
	}
	finding.Messages = finding.Errors.Messages()
	w.findings = append(w.findings, finding)
}

func (w *walker) operation(location string, op *openapi3.Operation) {
	if op == nil {
		return
	}
	for idx, param := range op.Parameters {
		if param == nil || param.Value == nil || param.Ref != "" {
			continue
		}
		paramLoc := pointer(location, "parameters", strconv.Itoa(idx))
		w.describe(paramLoc, param.Value.Description)
		w.schema(pointer(paramLoc, "schema"), param.Value.Schema, false)
	}
	if op.RequestBody != nil && op.RequestBody.Ref == "" {
		w.requestBody(pointer(location, "requestBody"), op.RequestBody)
	}
}

func (w *walker) requestBody(location string, body *openapi3.RequestBodyRef) {
	if body == nil || body.Value == nil {
		return
	}
	w.describe(location, body.Value.Description)
	for _, mediaType := range sortedKeys(body.Value.Content) {
		mt := body.Value.Content[mediaType]
		if mt == nil {
			continue
		}
		w.schema(pointer(location, "content", mediaType, "schema"), mt.Schema, false)
	}
}

// schema walks ref. References to component schemas are skipped outside the
// components section since they are linted where they are declared.
func (w *walker) schema(location string, ref *openapi3.SchemaRef, component bool) {
	if ref == nil || ref.Value == nil {
		return
	}
	if !component && strings.HasPrefix(ref.Ref, componentSchemaPrefix) {
		return
	}
	if w.visited[ref.Value] {
		return
	}
	w.visited[ref.Value] = true

	s := ref.Value
	w.describe(location, s.Description)
	for _, name := range sortedKeys(s.Properties) {
		w.schema(pointer(location, "properties", name), s.Properties[name], false)
	}
	w.schema(pointer(location, "items"), s.Items, false)
	w.schema(pointer(location, "additionalProperties"), s.AdditionalProperties.Schema, false)
	w.schema(pointer(location, "not"), s.Not, false)
	w.composed(location, "allOf", s.AllOf)
	w.composed(location, "anyOf", s.AnyOf)
	w.composed(location, "oneOf", s.OneOf)
}

func (w *walker) composed(location, keyword string, refs openapi3.SchemaRefs) {
	for idx, ref := range refs {
		w.schema(pointer(location, keyword, strconv.Itoa(idx)), ref, false)
	}
}

func sortedKeys[M ~map[string]V, V any](m M) []string {
	keys := make([]string, 0, len(m))
	for key := range m {
		keys = append(keys, key)
	}
	slices.Sort(keys)
	return keys
}
