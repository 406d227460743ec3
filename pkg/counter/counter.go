// Package counter measures plain text in the unit selected by a limit and maps
// the result onto the three display states.
package counter

import (
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/goliatone/go-softlimit/pkg/marker"
)

// Status is the visual state of a counter.
type Status string

const (
	StatusNormal   Status = "normal"
	StatusWarning  Status = "warning"
	StatusExceeded Status = "exceeded"
)

// DefaultWarningRatio is the share of the limit at which the warning state
// starts.
const DefaultWarningRatio = 0.8

// Count measures text in the given mode. Characters are Unicode code points.
// Words are the non-empty tokens left after splitting on whitespace runs.
func Count(text string, mode marker.Mode) int {
	if mode == marker.ModeWords {
		return Words(text)
	}
	return Characters(text)
}

// Characters returns the number of code points in text.
func Characters(text string) int {
	return utf8.RuneCountInString(text)
}

// Words collapses whitespace, splits and counts the non-empty tokens.
func Words(text string) int {
	return len(strings.Fields(text))
}

// Thresholds holds the ratios used by Evaluate.
type Thresholds struct {
	Warning float64
}

// DefaultThresholds returns the 80% warning threshold.
func DefaultThresholds() Thresholds {
	return Thresholds{Warning: DefaultWarningRatio}
}

func (t Thresholds) warning() float64 {
	if t.Warning <= 0 || t.Warning >= 1 {
		return DefaultWarningRatio
	}
	return t.Warning
}

// Evaluate maps count against max using t. The same thresholds apply to
// characters and words.
func (t Thresholds) Evaluate(count, max int) Status {
	if max <= 0 {
		return StatusNormal
	}
	ratio := float64(count) / float64(max)
	switch {
	case ratio >= 1:
		return StatusExceeded
	case ratio >= t.warning():
		return StatusWarning
	default:
		return StatusNormal
	}
}

// Evaluate uses the default thresholds.
func Evaluate(count, max int) Status {
	return DefaultThresholds().Evaluate(count, max)
}

// Display renders the "{count}/{max}" counter text.
func Display(count, max int) string {
	return strconv.Itoa(count) + "/" + strconv.Itoa(max)
}

// Reading is one measurement of a surface against a limit.
type Reading struct {
	Count   int
	Max     int
	Mode    marker.Mode
	Status  Status
	Display string
}

// Measure counts text against spec using t.
func (t Thresholds) Measure(text string, spec marker.LimitSpec) Reading {
	n := Count(text, spec.Mode())
	return t.Read(n, spec)
}

// Read builds a Reading from an already computed count.
func (t Thresholds) Read(n int, spec marker.LimitSpec) Reading {
	return Reading{
		Count:   n,
		Max:     spec.Max(),
		Mode:    spec.Mode(),
		Status:  t.Evaluate(n, spec.Max()),
		Display: Display(n, spec.Max()),
	}
}
