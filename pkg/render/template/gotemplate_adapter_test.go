package template_test

import (
	"embed"
	"fmt"
	"io"
	"io/fs"
	"path/filepath"
	"strings"
	"testing"

	"github.com/goliatone/go-softlimit/pkg/render/template/gotemplate"
	"github.com/goliatone/go-softlimit/pkg/testsupport"
)

//go:embed testdata/templates/*.tpl
var embeddedTemplates embed.FS

func TestGoTemplateEngine_RenderTemplate(t *testing.T) {
	engine := newEngine(t)

	result, written := testsupport.CaptureTemplateOutput(t, func(w io.Writer) (string, error) {
		return engine.RenderTemplate("label", map[string]any{"label": "Excerpt", "max": 40, "unit": "words"}, w)
	})
	assertGolden(t, "label.golden", result, written)
}

func TestGoTemplateEngine_GlobalContext(t *testing.T) {
	engine := newEngine(t)
	if err := engine.GlobalContext(map[string]any{
		"runtime": map[string]any{"path": "/softlimit/runtime/softlimit-counter.js", "debounce": 50},
	}); err != nil {
		t.Fatalf("global context: %v", err)
	}

	result, written := testsupport.CaptureTemplateOutput(t, func(w io.Writer) (string, error) {
		return engine.RenderTemplate("runtime", nil, w)
	})
	assertGolden(t, "runtime.golden", result, written)
}

func TestGoTemplateEngine_RegisterFilter(t *testing.T) {
	engine := newEngine(t)
	err := engine.RegisterFilter("marker", func(input any, param any) (any, error) {
		suffix := ""
		if fmt.Sprint(param) == "w" {
			suffix = "w"
		}
		return fmt.Sprintf("[soft-limit:%v%s]", input, suffix), nil
	})
	if err != nil && !strings.Contains(err.Error(), "already exists") {
		t.Fatalf("register filter: %v", err)
	}

	result, written := testsupport.CaptureTemplateOutput(t, func(w io.Writer) (string, error) {
		return engine.RenderTemplate("compose", map[string]any{
			"instructions": "Summarize the post.",
			"max":          40,
			"mode":         "w",
		}, w)
	})
	assertGolden(t, "compose.golden", result, written)

	if err := engine.RegisterFilter("marker", func(any, any) (any, error) { return nil, nil }); err == nil {
		t.Fatalf("expected duplicate filter registration to fail")
	}
}

func assertGolden(t *testing.T, name, result, written string) {
	t.Helper()
	path := filepath.Join("testdata", name)
	if testsupport.WriteMaybeGolden(t, path, []byte(result)) {
		return
	}
	want := testsupport.MustReadGoldenString(t, path)
	if result != want {
		t.Fatalf("render mismatch result\nwant: %q\n got: %q", want, result)
	}
	if written != want {
		t.Fatalf("render mismatch writer\nwant: %q\n got: %q", want, written)
	}
}

func TestGoTemplateEngine_HTMLAttrsEscapesAndSorts(t *testing.T) {
	engine := newEngine(t)
	got, err := engine.RenderTemplate("attrs", map[string]any{
		"attrs": map[string]string{
			"data-soft-limit-target": `x" onload="y`,
			"data-soft-limit":        "",
			"class":                  "softlimit",
		},
		"text": "  0/10  ",
	})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	want := `<span class="softlimit" data-soft-limit data-soft-limit-target="x&#34; onload=&#34;y">0/10</span>` + "\n"
	if got != want {
		t.Fatalf("attrs mismatch\nwant: %q\n got: %q", want, got)
	}
}

func TestGoTemplateEngine_Errors(t *testing.T) {
	if _, err := gotemplate.New(nil); err == nil {
		t.Fatalf("expected an error without a templates fs")
	}
	engine := newEngine(t)
	if _, err := engine.RenderTemplate("missing", nil); err == nil {
		t.Fatalf("expected an error for a missing template")
	}
	if err := engine.RegisterFilter(" ", nil); err == nil {
		t.Fatalf("expected an error for an empty filter")
	}
}

func TestGoTemplateEngine_StructDataUsesJSONKeys(t *testing.T) {
	engine := newEngine(t)
	data := struct {
		Label string `json:"label"`
		Max   int    `json:"max"`
		Unit  string `json:"unit"`
	}{Label: "Excerpt", Max: 40, Unit: "words"}

	got, err := engine.RenderTemplate("label.tpl", data)
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if want := testsupport.MustReadGoldenString(t, filepath.Join("testdata", "label.golden")); got != want {
		t.Fatalf("render mismatch\nwant: %q\n got: %q", want, got)
	}
}

func newEngine(t *testing.T) *gotemplate.Engine {
	t.Helper()

	templatesFS, err := fs.Sub(embeddedTemplates, "testdata/templates")
	if err != nil {
		t.Fatalf("sub fs: %v", err)
	}

	engine, err := gotemplate.New(templatesFS)
	if err != nil {
		t.Fatalf("new engine: %v", err)
	}
	return engine
}
