package counter

import (
	"testing"

	"github.com/goliatone/go-softlimit/pkg/marker"
)

func TestCount(t *testing.T) {
	tests := []struct {
		text string
		mode marker.Mode
		want int
	}{
		{text: "", mode: marker.ModeCharacters, want: 0},
		{text: "hello world", mode: marker.ModeCharacters, want: 11},
		{text: "héllo", mode: marker.ModeCharacters, want: 5},
		{text: "日本語", mode: marker.ModeCharacters, want: 3},
		{text: "", mode: marker.ModeWords, want: 0},
		{text: "   ", mode: marker.ModeWords, want: 0},
		{text: "one two three four", mode: marker.ModeWords, want: 4},
		{text: "  one\t\ttwo\n three  ", mode: marker.ModeWords, want: 3},
	}
	for _, tt := range tests {
		if got := Count(tt.text, tt.mode); got != tt.want {
			t.Fatalf("Count(%q, %s) = %d, want %d", tt.text, tt.mode, got, tt.want)
		}
	}
}

func TestEvaluateThresholds(t *testing.T) {
	tests := []struct {
		count, max int
		want       Status
	}{
		{count: 0, max: 10, want: StatusNormal},
		{count: 7, max: 10, want: StatusNormal},
		{count: 8, max: 10, want: StatusWarning},
		{count: 9, max: 10, want: StatusWarning},
		{count: 10, max: 10, want: StatusExceeded},
		{count: 11, max: 10, want: StatusExceeded},
		{count: 79, max: 100, want: StatusNormal},
		{count: 80, max: 100, want: StatusWarning},
		{count: 5, max: 0, want: StatusNormal},
	}
	for _, tt := range tests {
		if got := Evaluate(tt.count, tt.max); got != tt.want {
			t.Fatalf("Evaluate(%d, %d) = %s, want %s", tt.count, tt.max, got, tt.want)
		}
	}
}

func TestThresholdsFallBackOnInvalidRatio(t *testing.T) {
	th := Thresholds{Warning: 1.5}
	if got := th.Evaluate(8, 10); got != StatusWarning {
		t.Fatalf("expected default ratio to apply, got %s", got)
	}
	custom := Thresholds{Warning: 0.5}
	if got := custom.Evaluate(5, 10); got != StatusWarning {
		t.Fatalf("expected custom ratio to apply, got %s", got)
	}
}

func TestMeasureWordsExceeded(t *testing.T) {
	spec, ok := marker.ParseFirst("[soft-limit:3w]")
	if !ok {
		t.Fatalf("parse marker")
	}
	reading := DefaultThresholds().Measure("one two three four", spec)
	if reading.Count != 4 || reading.Status != StatusExceeded || reading.Display != "4/3" {
		t.Fatalf("unexpected reading %+v", reading)
	}
}

func TestMeasureCharactersExceeded(t *testing.T) {
	spec, _ := marker.ParseInner("10")
	reading := DefaultThresholds().Measure("hello world", spec)
	if reading.Display != "11/10" || reading.Status != StatusExceeded {
		t.Fatalf("unexpected reading %+v", reading)
	}
}
