package render

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"strconv"
	"strings"
	"time"

	gonanoid "github.com/matoous/go-nanoid/v2"

	"github.com/goliatone/go-softlimit/pkg/engine"
	"github.com/goliatone/go-softlimit/pkg/fields"
	"github.com/goliatone/go-softlimit/pkg/marker"
	"github.com/goliatone/go-softlimit/pkg/placeholder"
	"github.com/goliatone/go-softlimit/pkg/render/template"
	"github.com/goliatone/go-softlimit/pkg/render/template/gotemplate"
)

// DefaultRuntimePath is where the runtime bundle is expected to be served.
const DefaultRuntimePath = "/softlimit/runtime/softlimit-counter.js"

const idAlphabet = "0123456789abcdefghijklmnopqrstuvwxyz"

// Result is the rendered form of one field.
type Result struct {
	Handle string `json:"handle"`
	// Instructions is the text to show the user, with the marker stripped
	// when a counter is rendered.
	Instructions string `json:"instructions"`
	HTML         string `json:"html"`
	Counter      bool   `json:"counter"`
	Limit        int    `json:"limit,omitempty"`
	Mode         string `json:"mode,omitempty"`
	// PlaceholderID is the element id of the counter placeholder.
	PlaceholderID string `json:"placeholder_id,omitempty"`
	// Bootstrap holds the runtime tags; it is only set for the first counter
	// rendered on a page.
	Bootstrap string `json:"bootstrap,omitempty"`
}

// Renderer is the render hook: it turns field configuration into input
// markup with a counter placeholder when the instructions carry a usable
// marker.
type Renderer struct {
	templates template.TemplateRenderer
	logger    *slog.Logger
	runtime   Assets
	runtimeAt map[string]string
	newID     func() (string, error)
	onClamp   marker.ClampFunc
}

// Option configures a Renderer.
type Option func(*rendererConfig)

type rendererConfig struct {
	templates   template.TemplateRenderer
	templatesFS fs.FS
	logger      *slog.Logger
	runtime     *Assets
	runtimePath string
	engineCfg   *engine.Config
	newID       func() (string, error)
	onClamp     marker.ClampFunc
}

// WithTemplateRenderer uses an existing template renderer. It must provide
// field, counter and bootstrap templates.
func WithTemplateRenderer(r template.TemplateRenderer) Option {
	return func(cfg *rendererConfig) { cfg.templates = r }
}

// WithTemplatesFS overrides the built-in templates.
func WithTemplatesFS(fsys fs.FS) Option {
	return func(cfg *rendererConfig) { cfg.templatesFS = fsys }
}

// WithLogger sets the logger. Defaults to slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(cfg *rendererConfig) { cfg.logger = logger }
}

// WithRuntimePath changes where the runtime script is loaded from.
func WithRuntimePath(path string) Option {
	return func(cfg *rendererConfig) { cfg.runtimePath = strings.TrimSpace(path) }
}

// WithRuntimeAssets replaces the bootstrap assets entirely.
func WithRuntimeAssets(assets Assets) Option {
	return func(cfg *rendererConfig) { cfg.runtime = &assets }
}

// WithEngineConfig passes engine tunables to the browser runtime as data
// attributes on its script tag.
func WithEngineConfig(c engine.Config) Option {
	return func(cfg *rendererConfig) { cfg.engineCfg = &c }
}

// WithIDGenerator replaces the placeholder id generator.
func WithIDGenerator(fn func() (string, error)) Option {
	return func(cfg *rendererConfig) { cfg.newID = fn }
}

// WithClampHook observes limits clamped at render time.
func WithClampHook(fn marker.ClampFunc) Option {
	return func(cfg *rendererConfig) { cfg.onClamp = fn }
}

// New builds a Renderer.
func New(opts ...Option) (*Renderer, error) {
	cfg := rendererConfig{runtimePath: DefaultRuntimePath}
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}

	templates := cfg.templates
	if templates == nil {
		fsys := cfg.templatesFS
		if fsys == nil {
			fsys = TemplatesFS()
		}
		tpl, err := gotemplate.New(fsys)
		if err != nil {
			return nil, fmt.Errorf("render: template engine: %w", err)
		}
		templates = tpl
	}

	r := &Renderer{
		templates: templates,
		logger:    cfg.logger,
		newID:     cfg.newID,
		onClamp:   cfg.onClamp,
	}
	if r.logger == nil {
		r.logger = slog.Default()
	}
	if r.newID == nil {
		r.newID = func() (string, error) { return gonanoid.Generate(idAlphabet, 10) }
	}
	if cfg.runtime != nil {
		r.runtime = *cfg.runtime
	} else {
		r.runtime = Assets{Scripts: []Script{{Src: cfg.runtimePath, Defer: true}}}
	}
	if cfg.engineCfg != nil {
		r.runtimeAt = runtimeAttrs(cfg.engineCfg.WithDefaults())
	}
	return r, nil
}

// Field renders field for page. Instructions without a usable marker render
// unchanged with no counter.
func (r *Renderer) Field(ctx context.Context, page *Page, field fields.Field) (Result, error) {
	if page == nil {
		return Result{}, errors.New("render: page is required")
	}
	if ctx == nil {
		ctx = context.Background()
	}

	result := Result{Handle: field.Handle, Instructions: field.Instructions}
	spec, ok := marker.ValidateForRender(field.Instructions,
		marker.WithContext(ctx),
		marker.WithLogger(r.logger.With("field", field.Handle)),
		marker.WithClampHook(r.onClamp),
	)

	var counterHTML string
	if ok {
		html, id, err := r.counter(field, spec)
		if err != nil {
			return Result{}, err
		}
		bootstrap, err := r.bootstrap(page)
		if err != nil {
			return Result{}, err
		}
		counterHTML = html + bootstrap
		page.addCounter()

		result.Instructions = marker.Strip(field.Instructions)
		result.Counter = true
		result.Limit = spec.Max()
		result.Mode = string(spec.Mode())
		result.PlaceholderID = id
		result.Bootstrap = bootstrap
	}

	html, err := r.templates.RenderTemplate("field", map[string]any{
		"handle":       field.Handle,
		"name":         field.InputName(),
		"label":        field.Label,
		"instructions": result.Instructions,
		"value":        field.Value,
		"kind":         field.Kind,
		"textarea":     field.UsesTextarea(),
		"counter":      counterHTML,
	})
	if err != nil {
		return Result{}, fmt.Errorf("render: field %q: %w", field.Handle, err)
	}
	result.HTML = html
	return result, nil
}

// Fields renders every field in order on page.
func (r *Renderer) Fields(ctx context.Context, page *Page, list []fields.Field) ([]Result, error) {
	out := make([]Result, 0, len(list))
	for _, field := range list {
		res, err := r.Field(ctx, page, field)
		if err != nil {
			return nil, err
		}
		out = append(out, res)
	}
	return out, nil
}

func (r *Renderer) counter(field fields.Field, spec marker.LimitSpec) (string, string, error) {
	suffix, err := r.newID()
	if err != nil {
		return "", "", fmt.Errorf("render: placeholder id: %w", err)
	}
	id := "softlimit-" + suffix

	ph := placeholder.Placeholder{Target: field.Handle, Spec: spec, Kind: field.Kind}
	if raw := strings.TrimSpace(field.Poll); raw != "" {
		interval, err := time.ParseDuration(raw)
		if err != nil || interval <= 0 {
			r.logger.Warn("soft-limit poll interval ignored", "field", field.Handle, "poll", raw, "error", err)
		} else {
			ph.Poll = interval
		}
	}

	attrs := ph.Attributes()
	attrs["id"] = id
	attrs["class"] = placeholder.ClassBase
	attrs["aria-live"] = "polite"

	html, err := r.templates.RenderTemplate("counter", map[string]any{
		"attrs": attrs,
		"text":  ph.InitialText(),
	})
	if err != nil {
		return "", "", fmt.Errorf("render: counter for %q: %w", field.Handle, err)
	}
	return strings.TrimRight(html, "\n"), id, nil
}

func (r *Renderer) bootstrap(page *Page) (string, error) {
	if !page.ClaimBootstrap() {
		return "", nil
	}
	assets := page.Claim(r.runtime)
	if len(assets.Stylesheets) == 0 && len(assets.Scripts) == 0 {
		return "", nil
	}

	scripts := make([]map[string]any, 0, len(assets.Scripts))
	for idx, script := range assets.Scripts {
		attrs := scriptAttrs(script)
		if idx == 0 {
			for key, value := range r.runtimeAt {
				attrs[key] = value
			}
		}
		scripts = append(scripts, map[string]any{"attrs": attrs, "inline": script.Inline})
	}

	html, err := r.templates.RenderTemplate("bootstrap", map[string]any{
		"stylesheets": assets.Stylesheets,
		"scripts":     scripts,
	})
	if err != nil {
		return "", fmt.Errorf("render: runtime bootstrap: %w", err)
	}
	return html, nil
}

func scriptAttrs(script Script) map[string]string {
	attrs := make(map[string]string, len(script.Attrs)+3)
	for key, value := range script.Attrs {
		attrs[key] = value
	}
	if script.Src != "" {
		attrs["src"] = script.Src
	}
	switch {
	case script.Module:
		attrs["type"] = "module"
	case script.Type != "":
		attrs["type"] = script.Type
	}
	if script.Defer {
		attrs["defer"] = ""
	}
	attrs["data-softlimit-runtime"] = ""
	return attrs
}

func runtimeAttrs(cfg engine.Config) map[string]string {
	attrs := map[string]string{
		"data-debounce-ms":          strconv.FormatInt(cfg.Debounce.Milliseconds(), 10),
		"data-retry-delay-ms":       strconv.FormatInt(cfg.RetryDelay.Milliseconds(), 10),
		"data-max-retries":          strconv.Itoa(cfg.MaxRetries),
		"data-max-retry-elapsed-ms": strconv.FormatInt(cfg.MaxRetryElapsed.Milliseconds(), 10),
		"data-warning-ratio":        strconv.FormatFloat(cfg.WarningRatio, 'f', -1, 64),
	}
	if cfg.PollFallback {
		attrs["data-poll-ms"] = strconv.FormatInt(cfg.PollInterval.Milliseconds(), 10)
	}
	return attrs
}
