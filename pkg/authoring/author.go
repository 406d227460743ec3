// Package authoring walks a field author through writing instructions with a
// soft-limit marker. Every answer is checked with the save rules before the
// field is returned.
package authoring

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/goliatone/go-softlimit/pkg/fields"
	"github.com/goliatone/go-softlimit/pkg/marker"
	"github.com/goliatone/go-softlimit/pkg/surface"
	"github.com/goliatone/go-softlimit/pkg/validation"
)

// Session is one authoring run.
type Session struct {
	driver    PromptDriver
	validator *validation.Validator
}

// NewSession builds a session. A nil validator uses validation.New().
func NewSession(driver PromptDriver, validator *validation.Validator) (*Session, error) {
	if driver == nil {
		return nil, errors.New("authoring: prompt driver is required")
	}
	if validator == nil {
		validator = validation.New()
	}
	return &Session{driver: driver, validator: validator}, nil
}

var modeOptions = []string{"characters", "words", "no limit"}

// Run prompts for a field, starting from seed. Existing instructions are
// offered without their marker and the marker values become the defaults.
func (s *Session) Run(ctx context.Context, seed fields.Field) (fields.Field, error) {
	field := seed
	var err error

	if field.Handle, err = s.driver.Input(ctx, InputConfig{
		Message:   "Field handle",
		Default:   seed.Handle,
		Validator: required("handle"),
	}); err != nil {
		return fields.Field{}, err
	}
	if field.Label, err = s.driver.Input(ctx, InputConfig{
		Message:   "Label",
		Default:   seed.Label,
		Validator: required("label"),
	}); err != nil {
		return fields.Field{}, err
	}

	kinds := surface.Kinds()
	kindOptions := make([]string, len(kinds))
	kindDefault := 0
	for i, kind := range kinds {
		kindOptions[i] = string(kind)
		if kind == surface.ParseKind(seed.Kind) {
			kindDefault = i
		}
	}
	idx, err := s.driver.Select(ctx, SelectConfig{Message: "Editor", Options: kindOptions, DefaultIndex: kindDefault})
	if err != nil {
		return fields.Field{}, err
	}
	field.Kind = ""
	if idx > 0 && idx < len(kinds) {
		field.Kind = string(kinds[idx])
	}

	text, err := s.driver.TextArea(ctx, TextAreaConfig{
		Message: "Instructions",
		Default: marker.Strip(seed.Instructions),
		Help:    "Write the guidance without a marker; the limit is asked next.",
		Validator: func(value string) error {
			if marker.Contains(value) {
				return errors.New("leave the marker out, the limit is set in the next step")
			}
			return nil
		},
	})
	if err != nil {
		return fields.Field{}, err
	}

	current, hasLimit := marker.ParseFirst(seed.Instructions)
	modeDefault := 2
	if hasLimit {
		modeDefault = 0
		if current.Mode() == marker.ModeWords {
			modeDefault = 1
		}
	}
	modeIdx, err := s.driver.Select(ctx, SelectConfig{Message: "Limit unit", Options: modeOptions, DefaultIndex: modeDefault})
	if err != nil {
		return fields.Field{}, err
	}

	field.Instructions = strings.TrimSpace(text)
	if modeIdx == 0 || modeIdx == 1 {
		def := ""
		if hasLimit {
			def = strconv.Itoa(current.Max())
		}
		raw, err := s.driver.Input(ctx, InputConfig{
			Message:   "Limit",
			Default:   def,
			Help:      fmt.Sprintf("A whole number from %d to %d.", marker.MinValue, marker.MaxValue),
			Validator: limitValidator,
		})
		if err != nil {
			return fields.Field{}, err
		}
		mode := marker.ModeCharacters
		if modeIdx == 1 {
			mode = marker.ModeWords
		}
		max, _ := strconv.Atoi(strings.TrimSpace(raw))
		spec, ok := marker.Rehydrate(max, mode)
		if !ok {
			return fields.Field{}, fmt.Errorf("authoring: limit %q is not usable", raw)
		}
		field.Instructions = Compose(field.Instructions, spec)
	}

	if err := s.validator.BeforeSave(ctx, field); err != nil {
		var saveErr *validation.SaveError
		if errors.As(err, &saveErr) {
			for _, issue := range saveErr.Issues {
				if infoErr := s.driver.Info(ctx, fmt.Sprintf("%s: %s", issue.Field, issue.Message)); infoErr != nil {
					return fields.Field{}, infoErr
				}
			}
		}
		return fields.Field{}, err
	}

	if err := s.driver.Info(ctx, "Instructions: "+field.Instructions); err != nil {
		return fields.Field{}, err
	}
	ok, err := s.driver.Confirm(ctx, ConfirmConfig{Message: "Save this field?", Default: true})
	if err != nil {
		return fields.Field{}, err
	}
	if !ok {
		return fields.Field{}, ErrDeclined
	}
	return field, nil
}

// Compose appends the marker for spec to text.
func Compose(text string, spec marker.LimitSpec) string {
	text = strings.TrimSpace(text)
	if text == "" {
		return spec.Marker()
	}
	return text + " " + spec.Marker()
}

func required(name string) func(string) error {
	return func(value string) error {
		if strings.TrimSpace(value) == "" {
			return fmt.Errorf("%s is required", name)
		}
		return nil
	}
}

func limitValidator(value string) error {
	n, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil {
		return errors.New("enter a whole number")
	}
	if n < marker.MinValue || n > marker.MaxValue {
		return errors.New(marker.MessageOutOfRange)
	}
	return nil
}
