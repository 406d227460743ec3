// Package simulate replays scripted edits against rendered fields. The page
// lives in an in-memory document and time is virtual, so a script describes
// typing, pasting, late editor mounts and removals step by step and checks the
// counter after each.
package simulate

import (
	"fmt"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/goliatone/go-softlimit/pkg/fields"
)

// Script is a simulation document.
type Script struct {
	Name string `yaml:"name,omitempty"`
	// Fields are rendered with the render hook to build the page.
	Fields []fields.Field `yaml:"fields,omitempty"`
	// Page is extra markup appended after the rendered fields.
	Page  string `yaml:"page,omitempty"`
	Steps []Step `yaml:"steps"`
}

// Step is one scripted action. Exactly one action key is expected; Expect may
// accompany any of them and is checked after the action.
type Step struct {
	Target string `yaml:"target,omitempty"`

	// Advance moves the virtual clock, e.g. "300ms".
	Advance string `yaml:"advance,omitempty"`
	// Type sets the input value and dispatches an input event.
	Type *string `yaml:"type,omitempty"`
	// Paste sets the value and dispatches a paste event.
	Paste *string `yaml:"paste,omitempty"`
	Blur  bool    `yaml:"blur,omitempty"`
	// Editor mounts a rich-text editor of the given kind on the target, or
	// replaces its data when one is mounted.
	Editor *EditorStep `yaml:"editor,omitempty"`
	// Editable sets the markup of the target's contenteditable region,
	// creating the region on first use.
	Editable *string `yaml:"editable,omitempty"`
	// Insert appends an element to the page.
	Insert *InsertStep `yaml:"insert,omitempty"`
	// Remove disconnects the target input.
	Remove bool `yaml:"remove,omitempty"`
	// Release drops the target's binding.
	Release bool `yaml:"release,omitempty"`

	Expect *Expect `yaml:"expect,omitempty"`
}

type EditorStep struct {
	Kind string `yaml:"kind"`
	Data string `yaml:"data"`
}

type InsertStep struct {
	Tag   string            `yaml:"tag"`
	Attrs map[string]string `yaml:"attrs,omitempty"`
}

// Expect describes the counter state after a step. Empty fields are not
// checked.
type Expect struct {
	Display string `yaml:"display,omitempty"`
	Status  string `yaml:"status,omitempty"`
	State   string `yaml:"state,omitempty"`
	// Abandoned checks whether resolution gave up on the target.
	Abandoned *bool `yaml:"abandoned,omitempty"`
}

// ParseScript decodes a YAML script.
func ParseScript(data []byte) (Script, error) {
	var script Script
	if err := yaml.Unmarshal(data, &script); err != nil {
		return Script{}, fmt.Errorf("simulate: parse script: %w", err)
	}
	for idx, step := range script.Steps {
		if err := step.validate(); err != nil {
			return Script{}, fmt.Errorf("simulate: step %d: %w", idx+1, err)
		}
	}
	return script, nil
}

func (s Step) actions() int {
	n := 0
	for _, set := range []bool{
		s.Advance != "", s.Type != nil, s.Paste != nil, s.Blur, s.Editor != nil,
		s.Editable != nil, s.Insert != nil, s.Remove, s.Release,
	} {
		if set {
			n++
		}
	}
	return n
}

func (s Step) validate() error {
	switch n := s.actions(); {
	case n > 1:
		return fmt.Errorf("only one action per step, got %d", n)
	case n == 0 && s.Expect == nil:
		return fmt.Errorf("step has no action and no expectation")
	}
	if s.Advance != "" {
		d, err := time.ParseDuration(s.Advance)
		if err != nil {
			return fmt.Errorf("advance: %w", err)
		}
		if d < 0 {
			return fmt.Errorf("advance must not be negative")
		}
	}
	needsTarget := s.Type != nil || s.Paste != nil || s.Blur || s.Editor != nil ||
		s.Editable != nil || s.Remove || s.Release || s.Expect != nil
	if needsTarget && s.Target == "" {
		return fmt.Errorf("target is required")
	}
	if s.Insert != nil && s.Insert.Tag == "" {
		return fmt.Errorf("insert: tag is required")
	}
	return nil
}
