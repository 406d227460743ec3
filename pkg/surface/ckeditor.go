package surface

import (
	"github.com/goliatone/go-softlimit/pkg/dom"
	"github.com/goliatone/go-softlimit/pkg/marker"
)

// CKEditor measures a CKEditor instance bound to a backing textarea. The
// editor usually mounts after the page loads, so until it exists the adapter
// reads the textarea and watches the document for the instance to appear.
type CKEditor struct {
	input  dom.Element
	env    Env
	obs    observation
	editor dom.Editor
}

// NewCKEditor is the Factory for KindCKEditor.
func NewCKEditor(input dom.Element, env Env) Adapter {
	return &CKEditor{input: input, env: env}
}

func (a *CKEditor) Kind() Kind { return KindCKEditor }

func (a *CKEditor) Length(mode marker.Mode) int {
	return measureMarkup(a.source(), mode, a.env)
}

func (a *CKEditor) source() string {
	if editor := a.lookup(); editor != nil {
		data, err := editor.Data()
		if err == nil {
			return data
		}
		a.env.logger().Debug("soft-limit ckeditor data unavailable, using backing input", "error", err)
	}
	return plainValue(a.input)
}

func (a *CKEditor) lookup() dom.Editor {
	if a.editor != nil {
		return a.editor
	}
	if a.env.Doc == nil {
		return nil
	}
	if editor, ok := a.env.Doc.Editor(string(KindCKEditor), a.input); ok {
		return editor
	}
	return nil
}

func (a *CKEditor) Bind(onChange func()) error {
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

// attach subscribes to the editor's change signal once the instance exists.
func (a *CKEditor) attach() bool {
	editor := a.lookup()
	if editor == nil {
		return false
	}
	a.editor = editor
	a.obs.stopPoll()
	a.obs.add(editor.OnChange(a.obs.debounce.Trigger))
	return true
}

func (a *CKEditor) Release() {
	a.obs.release()
}
