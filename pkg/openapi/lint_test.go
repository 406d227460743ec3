package openapi_test

import (
	"context"
	"log/slog"
	"os"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-softlimit/pkg/marker"
	"github.com/goliatone/go-softlimit/pkg/openapi"
)

func lintFixture(t *testing.T) openapi.Report {
	t.Helper()
	raw, err := os.ReadFile("testdata/posts.yaml")
	if err != nil {
		t.Fatalf("read fixture: %v", err)
	}
	doc := openapi.MustNewDocument(openapi.SourceFromFile("testdata/posts.yaml"), raw)
	linter := openapi.NewLinter(openapi.WithLogger(slog.New(slog.DiscardHandler)))
	report, err := linter.Lint(context.Background(), doc)
	if err != nil {
		t.Fatalf("lint: %v", err)
	}
	return report
}

func TestLintReportsEveryMarkerWithLocation(t *testing.T) {
	report := lintFixture(t)

	got := make([]string, 0, len(report.Findings))
	for _, finding := range report.Findings {
		got = append(got, finding.Location)
	}
	want := []string{
		"#/components/schemas/Author/allOf/0/properties/bio/description",
		"#/components/schemas/Post/properties/body/description",
		"#/components/schemas/Post/properties/tags/items/description",
		"#/components/schemas/Post/properties/title/description",
		"#/paths/~1posts/post/parameters/0/description",
		"#/paths/~1posts/post/requestBody/content/application~1json/schema/properties/summary/description",
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("finding locations mismatch (-want +got):\n%s", diff)
	}
	if report.Location != "testdata/posts.yaml" {
		t.Fatalf("unexpected report location %q", report.Location)
	}
}

func TestLintClassifiesFindings(t *testing.T) {
	report := lintFixture(t)

	byLocation := map[string]openapi.Finding{}
	for _, finding := range report.Findings {
		byLocation[finding.Location] = finding
	}

	title := byLocation["#/components/schemas/Post/properties/title/description"]
	if !title.Valid() || title.Limit != 60 || title.Mode != string(marker.ModeCharacters) {
		t.Fatalf("unexpected title finding %#v", title)
	}
	tags := byLocation["#/components/schemas/Post/properties/tags/items/description"]
	if !tags.Valid() || tags.Limit != 15 {
		t.Fatalf("unexpected tags finding %#v", tags)
	}

	body := byLocation["#/components/schemas/Post/properties/body/description"]
	if body.Valid() || body.Errors[0].Code != marker.CodeMultipleMarkers {
		t.Fatalf("expected multiple marker error, got %#v", body)
	}
	bio := byLocation["#/components/schemas/Author/allOf/0/properties/bio/description"]
	if bio.Valid() || bio.Errors[0].Code != marker.CodeInvalidSyntax {
		t.Fatalf("expected syntax error, got %#v", bio)
	}
	summary := byLocation["#/paths/~1posts/post/requestBody/content/application~1json/schema/properties/summary/description"]
	if summary.Valid() || summary.Errors[0].Code != marker.CodeOutOfRange {
		t.Fatalf("expected range error, got %#v", summary)
	}
	if diff := cmp.Diff([]string{marker.MessageOutOfRange + ": [soft-limit:0]"}, summary.Messages); diff != "" {
		t.Fatalf("summary messages mismatch (-want +got):\n%s", diff)
	}

	if report.OK() || len(report.Problems()) != 3 {
		t.Fatalf("expected three problems, got %d", len(report.Problems()))
	}
}

func TestLintHandlesRecursiveSchemas(t *testing.T) {
	const document = `{
  "openapi": "3.0.0",
  "info": { "title": "Cycle", "version": "1.0.0" },
  "paths": {},
  "components": {
    "schemas": {
      "Node": {
        "type": "object",
        "description": "A node [soft-limit:5w]",
        "properties": {
          "children": { "type": "array", "items": { "$ref": "#/components/schemas/Node" } }
        }
      }
    }
  }
}`
	doc := openapi.MustNewDocument(openapi.SourceFromFS("cycle.json"), []byte(document))
	report, err := openapi.NewLinter().Lint(context.Background(), doc)
	if err != nil {
		t.Fatalf("lint: %v", err)
	}
	if len(report.Findings) != 1 || report.Findings[0].Location != "#/components/schemas/Node/description" {
		t.Fatalf("expected one finding for the node description, got %#v", report.Findings)
	}
	if !report.OK() {
		t.Fatalf("expected clean report")
	}
}

func TestLintRejectsUnparseableDocument(t *testing.T) {
	doc := openapi.MustNewDocument(openapi.SourceFromFS("broken.json"), []byte("{not json"))
	if _, err := openapi.NewLinter().Lint(context.Background(), doc); err == nil {
		t.Fatalf("expected parse error")
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	valid := openapi.MustNewDocument(openapi.SourceFromFS("x.json"), []byte(`{"openapi":"3.0.0"}`))
	if _, err := openapi.NewLinter().Lint(ctx, valid); err == nil {
		t.Fatalf("expected cancelled context to fail")
	}
}
