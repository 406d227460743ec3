// Package softlimit is the entry point for soft character and word limits on
// form fields. Field instructions carry a marker such as "[soft-limit:150]" or
// "[soft-limit:40w]"; the save hook rejects malformed markers, the render hook
// turns a usable marker into a counter placeholder, and the engine keeps every
// placeholder's "current/limit" display in sync with its input.
//
// The subpackages hold the pieces: pkg/marker parses and validates markers,
// pkg/render and pkg/validation implement the hooks, and pkg/engine with
// pkg/surface drive live counting over a pkg/dom document.
package softlimit

import (
	"context"
	"io/fs"

	"github.com/goliatone/go-softlimit/pkg/dom"
	"github.com/goliatone/go-softlimit/pkg/engine"
	"github.com/goliatone/go-softlimit/pkg/eventloop"
	"github.com/goliatone/go-softlimit/pkg/fields"
	"github.com/goliatone/go-softlimit/pkg/marker"
	"github.com/goliatone/go-softlimit/pkg/render"
	"github.com/goliatone/go-softlimit/pkg/validation"
)

// LimitSpec aliases marker.LimitSpec.
type LimitSpec = marker.LimitSpec

// Field aliases fields.Field.
type Field = fields.Field

// ValidateForSave returns every marker problem in text, in order. An empty
// result means the text may be saved.
func ValidateForSave(text string) marker.Errors {
	return marker.ValidateForSave(text)
}

// ValidateForRender returns the limit to display for text, clamping
// out-of-range values.
func ValidateForRender(text string, opts ...marker.RenderOption) (LimitSpec, bool) {
	return marker.ValidateForRender(text, opts...)
}

// Strip removes every marker from text.
func Strip(text string) string {
	return marker.Strip(text)
}

// Hooks bundles the save and render hooks a host calls.
type Hooks struct {
	Validator *validation.Validator
	Renderer  *render.Renderer
}

// NewHooks builds both hooks with the given options.
func NewHooks(validatorOpts []validation.Option, rendererOpts []render.Option) (*Hooks, error) {
	renderer, err := render.New(rendererOpts...)
	if err != nil {
		return nil, err
	}
	return &Hooks{Validator: validation.New(validatorOpts...), Renderer: renderer}, nil
}

// BeforeSave is the save hook. It returns a *validation.SaveError when the
// field must not be saved.
func (h *Hooks) BeforeSave(ctx context.Context, field Field) error {
	return h.Validator.BeforeSave(ctx, field)
}

// Render is the render hook for one field on page.
func (h *Hooks) Render(ctx context.Context, page *render.Page, field Field) (render.Result, error) {
	return h.Renderer.Field(ctx, page, field)
}

// NewEngine starts a counting engine over doc. It must be called on sched's
// loop, like every other engine method.
func NewEngine(doc dom.Document, sched eventloop.Scheduler, opts ...engine.Option) (*engine.Engine, error) {
	eng, err := engine.New(doc, sched, opts...)
	if err != nil {
		return nil, err
	}
	eng.Start()
	return eng, nil
}

// EmbeddedTemplates exposes the built-in render templates so callers can reuse
// or override them.
func EmbeddedTemplates() fs.FS {
	return render.TemplatesFS()
}
