package surface

import (
	"github.com/goliatone/go-softlimit/pkg/dom"
	"github.com/goliatone/go-softlimit/pkg/marker"
)

// Markdown measures a textarea holding markdown, optionally driven by a
// markdown editor instance. The source is rendered to HTML and then measured
// like any other rich content, so formatting syntax is not counted.
type Markdown struct {
	input  dom.Element
	env    Env
	obs    observation
	editor dom.Editor
}

// NewMarkdown is the Factory for KindMarkdown.
func NewMarkdown(input dom.Element, env Env) Adapter {
	return &Markdown{input: input, env: env}
}

func (a *Markdown) Kind() Kind { return KindMarkdown }

func (a *Markdown) Length(mode marker.Mode) int {
	source := a.source()
	rendered, err := MarkdownToHTML(source)
	if err != nil {
		a.env.logger().Debug("soft-limit markdown render failed, measuring source as markup", "error", err)
		return measureMarkup(source, mode, a.env)
	}
	return measureMarkup(rendered, mode, a.env)
}

func (a *Markdown) source() string {
	if a.editor != nil {
		if data, err := a.editor.Data(); err == nil {
			return data
		}
	}
	return plainValue(a.input)
}

func (a *Markdown) Bind(onChange func()) error {
	if a.obs.bound || a.obs.released {
		return errAlreadyBound
	}
	a.obs.bound = true
	a.obs.debounce = newDebouncer(a.env.Scheduler, a.env.debounce(), onChange)
	a.obs.listen(a.input)

	if !a.attach() && a.env.Doc != nil {
		var cancel dom.Cancel
		cancel = a.env.Doc.Observe(func() {
			if a.obs.released || a.editor != nil {
				return
			}
			if a.attach() {
				cancel()
				a.obs.debounce.Flush()
			}
		})
		a.obs.add(cancel)
	}

	if a.env.Poll && a.editor == nil {
		a.obs.startPoll(a.env, a.source)
	}
	return nil
}

func (a *Markdown) attach() bool {
	if a.env.Doc == nil {
		return false
	}
	editor, ok := a.env.Doc.Editor(string(KindMarkdown), a.input)
	if !ok {
		return false
	}
	a.editor = editor
	a.obs.stopPoll()
	a.obs.add(editor.OnChange(a.obs.debounce.Trigger))
	return true
}

func (a *Markdown) Release() {
	a.obs.release()
}
