package softlimit

import (
	"context"
	"errors"
	"io/fs"
	"log/slog"
	"testing"
	"time"

	"github.com/goliatone/go-softlimit/pkg/engine"
	"github.com/goliatone/go-softlimit/pkg/eventloop"
	"github.com/goliatone/go-softlimit/pkg/marker"
	"github.com/goliatone/go-softlimit/pkg/render"
	"github.com/goliatone/go-softlimit/pkg/testsupport"
	"github.com/goliatone/go-softlimit/pkg/validation"
)

func TestHooksSaveRenderCount(t *testing.T) {
	quiet := slog.New(slog.DiscardHandler)
	hooks, err := NewHooks(
		[]validation.Option{validation.WithLogger(quiet)},
		[]render.Option{render.WithLogger(quiet)},
	)
	if err != nil {
		t.Fatalf("hooks: %v", err)
	}

	bad := Field{Handle: "bio", Label: "Bio", Instructions: "[soft-limit:3w] [soft-limit:4w]"}
	var saveErr *validation.SaveError
	if err := hooks.BeforeSave(context.Background(), bad); !errors.As(err, &saveErr) {
		t.Fatalf("expected save error, got %v", err)
	}

	field := Field{Handle: "bio", Label: "Bio", Instructions: "About you [soft-limit:3w]", Value: "one two three four", Multiline: true}
	if err := hooks.BeforeSave(context.Background(), field); err != nil {
		t.Fatalf("save: %v", err)
	}
	res, err := hooks.Render(context.Background(), render.NewPage(), field)
	if err != nil {
		t.Fatalf("render: %v", err)
	}

	doc := testsupport.MustLoadPage(t, "<body>"+res.HTML+"</body>")
	eng, err := NewEngine(doc, eventloop.NewManual(time.Time{}), engine.WithLogger(quiet))
	if err != nil {
		t.Fatalf("engine: %v", err)
	}
	defer eng.Stop()

	b, ok := eng.Binding("bio")
	if !ok {
		t.Fatalf("expected binding for bio")
	}
	if got := b.Reading().Display; got != "4/3" {
		t.Fatalf("expected 4/3, got %q", got)
	}
}

func TestFacadeHelpers(t *testing.T) {
	if got := Strip("Be brief [soft-limit:10]"); got != "Be brief" {
		t.Fatalf("unexpected strip result %q", got)
	}
	if errs := ValidateForSave("[soft-limit:0]"); len(errs) != 1 {
		t.Fatalf("expected one error, got %v", errs)
	}
	spec, ok := ValidateForRender("[soft-limit:0]", marker.WithLogger(slog.New(slog.DiscardHandler)))
	if !ok || spec.Max() != 1 {
		t.Fatalf("expected clamp to 1, got %v %v", spec, ok)
	}
	if _, err := fs.Stat(EmbeddedTemplates(), "counter.tpl"); err != nil {
		t.Fatalf("expected counter template: %v", err)
	}
}
