package simulate_test

import (
	"context"
	"log/slog"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-softlimit/pkg/engine"
	"github.com/goliatone/go-softlimit/pkg/fields"
	"github.com/goliatone/go-softlimit/pkg/simulate"
)

var quiet = simulate.WithLogger(slog.New(slog.DiscardHandler))

func loadScript(t *testing.T, name string) simulate.Script {
	t.Helper()
	data, err := os.ReadFile("testdata/" + name)
	if err != nil {
		t.Fatalf("read %s: %v", name, err)
	}
	script, err := simulate.ParseScript(data)
	if err != nil {
		t.Fatalf("parse %s: %v", name, err)
	}
	return script
}

func TestRunReplaysScript(t *testing.T) {
	script := loadScript(t, "late-input.yaml")

	report, err := simulate.Run(context.Background(), script, quiet)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if failures := report.Failures(); len(failures) != 0 {
		t.Fatalf("unexpected failures: %+v", failures)
	}

	var displays []string
	for _, o := range report.Outcomes {
		if o.Target != "" {
			displays = append(displays, o.Display)
		}
	}
	// The placeholder keeps its last text while the input is missing.
	want := []string{"0/10", "0/10", "12/10", "3/10", "3/10", "0/10"}
	if diff := cmp.Diff(want, displays); diff != "" {
		t.Fatalf("displays mismatch (-want +got):\n%s", diff)
	}
	if got := report.Outcomes[2].At; got != "50ms" {
		t.Fatalf("expected clock at 50ms after advance, got %q", got)
	}
}

func TestRunReportsFailedExpectations(t *testing.T) {
	text := "abc"
	script := simulate.Script{
		Fields: []fields.Field{{Handle: "bio", Label: "Bio", Instructions: "[soft-limit:2]"}},
		Steps: []simulate.Step{
			{Target: "bio", Paste: &text, Expect: &simulate.Expect{Display: "3/2", Status: "normal"}},
		},
	}

	report, err := simulate.Run(context.Background(), script, quiet)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	failures := report.Failures()
	if len(failures) != 1 {
		t.Fatalf("expected one failure, got %+v", report.Outcomes)
	}
	if !strings.Contains(failures[0].Failure, `status "exceeded", want "normal"`) {
		t.Fatalf("unexpected failure text %q", failures[0].Failure)
	}
	if strings.Contains(failures[0].Failure, "display") {
		t.Fatalf("display matched and should not be reported: %q", failures[0].Failure)
	}
}

func TestRunAbandonsMissingInput(t *testing.T) {
	abandoned := true
	script := simulate.Script{
		Fields: []fields.Field{{Handle: "ghost", Label: "Ghost", Instructions: "[soft-limit:5w]"}},
		Steps: []simulate.Step{
			{Target: "ghost", Remove: true, Expect: &simulate.Expect{State: "resolving"}},
			{Advance: "100ms"},
			{Target: "ghost", Expect: &simulate.Expect{State: "resolving"}},
			{Advance: "200ms"},
			{Target: "ghost", Expect: &simulate.Expect{State: "released", Abandoned: &abandoned, Display: "0/5"}},
		},
	}
	cfg := engine.Config{RetryDelay: 100 * time.Millisecond, MaxRetries: 2}

	report, err := simulate.Run(context.Background(), script, quiet, simulate.WithEngineConfig(cfg.WithDefaults()))
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if failures := report.Failures(); len(failures) != 0 {
		t.Fatalf("unexpected failures: %+v", failures)
	}
}

func TestRunObserversSeeTransitions(t *testing.T) {
	var transitions []string
	observer := engine.ObserverFuncs{
		OnStateChange: func(b *engine.Binding, from, to engine.State) {
			transitions = append(transitions, string(from)+">"+string(to))
		},
	}
	text := "one two"
	script := simulate.Script{
		Fields: []fields.Field{{Handle: "summary", Label: "Summary", Instructions: "[soft-limit:3w]"}},
		Steps: []simulate.Step{
			{Target: "summary", Type: &text},
			{Advance: "1s"},
			{Target: "summary", Release: true, Expect: &simulate.Expect{State: "released", Display: "2/3"}},
		},
	}

	report, err := simulate.Run(context.Background(), script, quiet, simulate.WithEngineOptions(engine.WithObserver(observer)))
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if failures := report.Failures(); len(failures) != 0 {
		t.Fatalf("unexpected failures: %+v", failures)
	}
	want := []string{"unbound>resolving", "resolving>bound", "bound>released"}
	if diff := cmp.Diff(want, transitions); diff != "" {
		t.Fatalf("transitions mismatch (-want +got):\n%s", diff)
	}
}

func TestRunUsesEditableRegion(t *testing.T) {
	script := simulate.Script{
		Fields: []fields.Field{{Handle: "body", Label: "Body", Kind: "redactor", Instructions: "[soft-limit:20]"}},
		Steps: []simulate.Step{
			{Target: "body", Editable: ptr("<p>Hello <b>there</b></p>"), Expect: &simulate.Expect{Display: "11/20", State: "bound"}},
			{Target: "body", Editable: ptr("<p>Hi</p>"), Expect: &simulate.Expect{Display: "11/20"}},
			{Advance: "1s"},
			{Target: "body", Expect: &simulate.Expect{Display: "2/20"}},
		},
	}

	report, err := simulate.Run(context.Background(), script, quiet)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if failures := report.Failures(); len(failures) != 0 {
		t.Fatalf("unexpected failures: %+v", failures)
	}
}

func TestRunStopsOnCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	script := simulate.Script{Steps: []simulate.Step{{Advance: "1s"}}}

	if _, err := simulate.Run(ctx, script, quiet); err == nil {
		t.Fatalf("expected context error")
	}
}

func TestRunUnknownTarget(t *testing.T) {
	script := simulate.Script{Steps: []simulate.Step{{Target: "nope", Type: ptr("x")}}}

	_, err := simulate.Run(context.Background(), script, quiet)
	if err == nil || !strings.Contains(err.Error(), `no element for target "nope"`) {
		t.Fatalf("expected unknown target error, got %v", err)
	}
}

func TestParseScriptRejectsBadSteps(t *testing.T) {
	cases := map[string]string{
		"two actions":    "steps:\n  - target: a\n    type: x\n    blur: true\n",
		"empty step":     "steps:\n  - target: a\n",
		"bad duration":   "steps:\n  - advance: soon\n",
		"negative":       "steps:\n  - advance: -1s\n",
		"missing target": "steps:\n  - type: x\n",
		"insert no tag":  "steps:\n  - insert: {attrs: {id: a}}\n",
		"malformed yaml": "steps: [\n",
	}
	for name, doc := range cases {
		t.Run(name, func(t *testing.T) {
			if _, err := simulate.ParseScript([]byte(doc)); err == nil {
				t.Fatalf("expected error for %q", doc)
			}
		})
	}
}

func ptr(s string) *string { return &s }
