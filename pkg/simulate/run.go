package simulate

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/goliatone/go-softlimit/pkg/dom"
	"github.com/goliatone/go-softlimit/pkg/dom/memdom"
	"github.com/goliatone/go-softlimit/pkg/engine"
	"github.com/goliatone/go-softlimit/pkg/eventloop"
	"github.com/goliatone/go-softlimit/pkg/placeholder"
	"github.com/goliatone/go-softlimit/pkg/render"
)

// Outcome records the counter for a target after one step.
type Outcome struct {
	Step    int    `json:"step"`
	Action  string `json:"action"`
	Target  string `json:"target,omitempty"`
	At      string `json:"at"`
	Display string `json:"display,omitempty"`
	Status  string `json:"status,omitempty"`
	State   string `json:"state,omitempty"`
	// Abandoned is set once resolution gave up on the target.
	Abandoned bool `json:"abandoned,omitempty"`
	// Failure is set when an expectation did not hold.
	Failure string `json:"failure,omitempty"`
}

// Report is the result of a run.
type Report struct {
	Name     string    `json:"name,omitempty"`
	Outcomes []Outcome `json:"outcomes"`
}

// Failures returns the outcomes whose expectation failed.
func (r Report) Failures() []Outcome {
	var out []Outcome
	for _, o := range r.Outcomes {
		if o.Failure != "" {
			out = append(out, o)
		}
	}
	return out
}

// Option configures Run.
type Option func(*runner)

// WithLogger sets the logger handed to the renderer and the engine.
func WithLogger(logger *slog.Logger) Option {
	return func(r *runner) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// WithEngineConfig sets the engine tunables.
func WithEngineConfig(cfg engine.Config) Option {
	return func(r *runner) { r.cfg = cfg }
}

// WithEngineOptions passes extra options to the engine, such as observers.
func WithEngineOptions(opts ...engine.Option) Option {
	return func(r *runner) { r.engineOpts = append(r.engineOpts, opts...) }
}

type runner struct {
	logger     *slog.Logger
	cfg        engine.Config
	engineOpts []engine.Option

	doc     *memdom.Document
	clock   *eventloop.Manual
	eng     *engine.Engine
	editors map[string]*memdom.Editor
}

// Run renders the script's fields, starts an engine on a virtual clock and
// replays every step. Expectation failures are reported in the outcomes, not
// as an error.
func Run(ctx context.Context, script Script, opts ...Option) (Report, error) {
	r := &runner{
		logger:  slog.Default(),
		cfg:     engine.DefaultConfig(),
		editors: make(map[string]*memdom.Editor),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(r)
		}
	}

	markup, err := r.renderPage(ctx, script)
	if err != nil {
		return Report{}, err
	}
	r.doc, err = memdom.ParseString(markup)
	if err != nil {
		return Report{}, fmt.Errorf("simulate: load page: %w", err)
	}

	start := time.Date(2000, 1, 1, 0, 0, 0, 0, time.UTC)
	r.clock = eventloop.NewManual(start)
	engineOpts := append([]engine.Option{
		engine.WithLogger(r.logger),
		engine.WithConfig(r.cfg),
	}, r.engineOpts...)
	r.eng, err = engine.New(r.doc, r.clock, engineOpts...)
	if err != nil {
		return Report{}, fmt.Errorf("simulate: engine: %w", err)
	}
	r.eng.Start()
	defer r.eng.Stop()

	report := Report{Name: script.Name}
	for idx, step := range script.Steps {
		if err := ctx.Err(); err != nil {
			return report, err
		}
		action, err := r.apply(step)
		if err != nil {
			return report, fmt.Errorf("simulate: step %d (%s): %w", idx+1, action, err)
		}
		outcome := Outcome{
			Step:   idx + 1,
			Action: action,
			Target: step.Target,
			At:     r.clock.Now().Sub(start).String(),
		}
		if step.Target != "" {
			r.observe(&outcome, step.Target)
		}
		if step.Expect != nil {
			outcome.Failure = check(outcome, *step.Expect)
		}
		report.Outcomes = append(report.Outcomes, outcome)
	}
	return report, nil
}

func (r *runner) renderPage(ctx context.Context, script Script) (string, error) {
	var b strings.Builder
	b.WriteString("<html><body>")
	if len(script.Fields) > 0 {
		renderer, err := render.New(render.WithLogger(r.logger), render.WithEngineConfig(r.cfg))
		if err != nil {
			return "", err
		}
		results, err := renderer.Fields(ctx, render.NewPage(), script.Fields)
		if err != nil {
			return "", fmt.Errorf("simulate: render fields: %w", err)
		}
		for _, res := range results {
			b.WriteString(res.HTML)
		}
	}
	b.WriteString(script.Page)
	b.WriteString("</body></html>")
	return b.String(), nil
}

func (r *runner) apply(step Step) (string, error) {
	switch {
	case step.Advance != "":
		d, err := time.ParseDuration(step.Advance)
		if err != nil {
			return "advance", err
		}
		r.clock.Advance(d)
		return "advance " + d.String(), nil
	case step.Type != nil:
		input, err := r.input(step.Target)
		if err != nil {
			return "type", err
		}
		input.Type(*step.Type)
		return "type", nil
	case step.Paste != nil:
		input, err := r.input(step.Target)
		if err != nil {
			return "paste", err
		}
		input.Paste(*step.Paste)
		return "paste", nil
	case step.Blur:
		input, err := r.input(step.Target)
		if err != nil {
			return "blur", err
		}
		input.Dispatch(dom.EventBlur)
		return "blur", nil
	case step.Editor != nil:
		return "editor", r.editor(step.Target, *step.Editor)
	case step.Editable != nil:
		return "editable", r.editable(step.Target, *step.Editable)
	case step.Insert != nil:
		r.doc.Add(step.Insert.Tag, step.Insert.Attrs)
		return "insert " + step.Insert.Tag, nil
	case step.Remove:
		input, err := r.input(step.Target)
		if err != nil {
			return "remove", err
		}
		r.doc.Remove(input)
		return "remove", nil
	case step.Release:
		r.eng.Release(step.Target)
		return "release", nil
	default:
		return "expect", nil
	}
}

func (r *runner) input(target string) (*memdom.Element, error) {
	if el := r.doc.Lookup(target); el != nil {
		return el, nil
	}
	if b, ok := r.eng.Binding(target); ok {
		if el, ok := b.Input().(*memdom.Element); ok && el != nil {
			return el, nil
		}
	}
	return nil, fmt.Errorf("no element for target %q", target)
}

func (r *runner) editor(target string, step EditorStep) error {
	if ed, ok := r.editors[target]; ok {
		ed.SetData(step.Data)
		return nil
	}
	input, err := r.input(target)
	if err != nil {
		return err
	}
	kind := step.Kind
	if kind == "" {
		kind = "ckeditor"
	}
	ed := memdom.NewEditor(step.Data)
	r.editors[target] = ed
	r.doc.AttachEditor(kind, input, ed)
	return nil
}

func (r *runner) editable(target, markup string) error {
	input, err := r.input(target)
	if err != nil {
		return err
	}
	region, _ := r.doc.EditableFor(input).(*memdom.Element)
	if region == nil {
		region = r.doc.Create("div", map[string]string{
			"contenteditable":      "true",
			memdom.EditableForAttr: target,
		})
		region.SetInnerHTML(markup)
		r.doc.Append(region)
		return nil
	}
	region.SetInnerHTML(markup)
	return nil
}

func (r *runner) observe(o *Outcome, target string) {
	if b, ok := r.eng.Binding(target); ok {
		reading := b.Reading()
		o.Display = reading.Display
		o.Status = string(reading.Status)
		if o.Display == "" && b.Placeholder() != nil {
			o.Display = b.Placeholder().Text()
		}
		o.State = string(b.State())
		return
	}
	// No active binding: report what the placeholder was left showing.
	for _, el := range r.doc.QueryAttr(placeholder.AttrTarget) {
		if value, _ := el.Attr(placeholder.AttrTarget); value != target {
			continue
		}
		o.Display = el.Text()
		o.Status, _ = el.Attr(placeholder.AttrState)
		bound, _ := el.Attr(placeholder.AttrBound)
		o.Abandoned = bound == placeholder.BoundAbandoned
		if bound != "" {
			o.State = string(engine.StateReleased)
		} else {
			o.State = string(engine.StateUnbound)
		}
	}
}

func check(o Outcome, want Expect) string {
	var problems []string
	if want.Display != "" && want.Display != o.Display {
		problems = append(problems, fmt.Sprintf("display %q, want %q", o.Display, want.Display))
	}
	if want.Status != "" && want.Status != o.Status {
		problems = append(problems, fmt.Sprintf("status %q, want %q", o.Status, want.Status))
	}
	if want.State != "" && want.State != o.State {
		problems = append(problems, fmt.Sprintf("state %q, want %q", o.State, want.State))
	}
	if want.Abandoned != nil && *want.Abandoned != o.Abandoned {
		problems = append(problems, fmt.Sprintf("abandoned %t, want %t", o.Abandoned, *want.Abandoned))
	}
	return strings.Join(problems, "; ")
}
