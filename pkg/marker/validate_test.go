package marker

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestValidateForSave(t *testing.T) {
	tests := []struct {
		name string
		text string
		want []Code
	}{
		{name: "no marker", text: "Just instructions.", want: nil},
		{name: "single valid", text: "Write something. [soft-limit:150]", want: nil},
		{name: "single valid words", text: "[soft-limit: 40 w]", want: nil},
		{name: "zero", text: "[soft-limit:0]", want: []Code{CodeOutOfRange}},
		{name: "above max", text: "[soft-limit:100001]", want: []Code{CodeOutOfRange}},
		{name: "overflow", text: "[soft-limit:999999999999999999999999]", want: []Code{CodeOutOfRange}},
		{name: "bad syntax", text: "[soft-limit:ten]", want: []Code{CodeInvalidSyntax}},
		{name: "empty inner", text: "[soft-limit:]", want: []Code{CodeInvalidSyntax}},
		{name: "two valid", text: "[soft-limit:150] [soft-limit:200]", want: []Code{CodeMultipleMarkers}},
		{
			name: "mixed problems",
			text: "[soft-limit:x] [soft-limit:0] [soft-limit:10]",
			want: []Code{CodeInvalidSyntax, CodeOutOfRange, CodeMultipleMarkers},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			errs := ValidateForSave(tt.text)
			var got []Code
			for _, err := range errs {
				got = append(got, err.Code)
			}
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Fatalf("codes mismatch (-want +got):\n%s", diff)
			}
			if (errs.Err() == nil) != (len(tt.want) == 0) {
				t.Fatalf("Err() = %v for %d errors", errs.Err(), len(errs))
			}
		})
	}
}

func TestValidateForSaveMessages(t *testing.T) {
	errs := ValidateForSave("[soft-limit:0] [soft-limit:abc]")
	want := []string{
		"value must be between 1 and 100000: [soft-limit:0]",
		"invalid marker syntax: [soft-limit:abc]",
		"multiple markers not allowed — only one per field",
	}
	if diff := cmp.Diff(want, errs.Messages()); diff != "" {
		t.Fatalf("messages mismatch (-want +got):\n%s", diff)
	}
	if !strings.Contains(errs.Error(), "; ") {
		t.Fatalf("expected joined error text, got %q", errs.Error())
	}
}

func TestValidateForRenderClampsAndWarns(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	var clampedFrom string
	spec, ok := ValidateForRender("[soft-limit:999999]",
		WithLogger(logger),
		WithClampHook(func(original string, _ LimitSpec) { clampedFrom = original }),
	)
	if !ok {
		t.Fatalf("expected render spec")
	}
	if spec.Max() != MaxValue {
		t.Fatalf("expected clamp to %d, got %d", MaxValue, spec.Max())
	}
	if !strings.Contains(buf.String(), "level=WARN") {
		t.Fatalf("expected warning diagnostic, got %q", buf.String())
	}
	if clampedFrom != "[soft-limit:999999]" {
		t.Fatalf("expected clamp hook to receive marker, got %q", clampedFrom)
	}
}

func TestValidateForRenderClampsZeroToMinimum(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))
	spec, ok := ValidateForRender("limit [soft-limit:0w]", WithLogger(logger))
	if !ok {
		t.Fatalf("expected render spec")
	}
	if spec.Max() != MinValue || spec.Mode() != ModeWords {
		t.Fatalf("unexpected spec %s", spec)
	}
}

func TestValidateForRenderUsesFirstMarkerOnly(t *testing.T) {
	spec, ok := ValidateForRender("[soft-limit:20] [soft-limit:40w]")
	if !ok || spec.Max() != 20 || spec.Mode() != ModeCharacters {
		t.Fatalf("expected first marker to win, got %s (ok=%v)", spec, ok)
	}

	if _, ok := ValidateForRender("[soft-limit:nope] [soft-limit:40]"); ok {
		t.Fatalf("expected malformed first marker to disable the counter")
	}
	if _, ok := ValidateForRender("nothing"); ok {
		t.Fatalf("expected no spec without a marker")
	}
}

func TestValidateForRenderInRangeDoesNotLog(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))
	if _, ok := ValidateForRender("[soft-limit:10]", WithLogger(logger)); !ok {
		t.Fatalf("expected spec")
	}
	if buf.Len() != 0 {
		t.Fatalf("expected no diagnostics, got %q", buf.String())
	}
}
