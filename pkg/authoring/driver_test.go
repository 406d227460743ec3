package authoring

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/AlecAivazis/survey/v2/terminal"
)

func TestStringValidatorRejectsNonText(t *testing.T) {
	v := stringValidator(limitValidator)
	if err := v("250"); err != nil {
		t.Fatalf("expected 250 to pass, got %v", err)
	}
	if err := v("0"); err == nil {
		t.Fatalf("expected 0 to be rejected")
	}
	if err := v(42); err == nil {
		t.Fatalf("expected a non-string answer to be rejected")
	}
}

func TestTranslateSurveyErr(t *testing.T) {
	if got := translateSurveyErr(fmt.Errorf("prompt: %w", terminal.InterruptErr)); !errors.Is(got, ErrAborted) {
		t.Fatalf("expected interrupt to map to ErrAborted, got %v", got)
	}
	other := errors.New("boom")
	if got := translateSurveyErr(other); got != other {
		t.Fatalf("expected other errors unchanged, got %v", got)
	}
}

func TestSurveyDriverInfoAndCancellation(t *testing.T) {
	var buf bytes.Buffer
	d := NewSurveyDriver(&buf)

	if err := d.Info(context.Background(), "Instructions: Keep it short. [soft-limit:10]"); err != nil {
		t.Fatalf("info: %v", err)
	}
	if got := buf.String(); got != "Instructions: Keep it short. [soft-limit:10]\n" {
		t.Fatalf("unexpected info output %q", got)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := d.Input(ctx, InputConfig{Message: "Field handle"}); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected cancelled input, got %v", err)
	}
	if _, err := d.Select(ctx, SelectConfig{Message: "Editor", Options: []string{"plain"}}); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected cancelled select, got %v", err)
	}
}
