package marker

import (
	"fmt"
	"strings"
)

// Code classifies a save-time validation failure.
type Code string

const (
	CodeInvalidSyntax   Code = "invalid_syntax"
	CodeOutOfRange      Code = "out_of_range"
	CodeMultipleMarkers Code = "multiple_markers"
)

// Messages surfaced to configuration authors.
const (
	MessageInvalidSyntax   = "invalid marker syntax"
	MessageOutOfRange      = "value must be between 1 and 100000"
	MessageMultipleMarkers = "multiple markers not allowed — only one per field"
)

// ValidationError describes one problem found by ValidateForSave. Marker holds
// the offending occurrence; it is empty for whole-text problems.
type ValidationError struct {
	Code    Code
	Message string
	Marker  string
}

func (e ValidationError) Error() string {
	if e.Marker == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Message, e.Marker)
}

// Errors is the ordered result of ValidateForSave.
type Errors []ValidationError

// Error joins the individual messages so Errors can be returned as an error.
func (e Errors) Error() string {
	if len(e) == 0 {
		return ""
	}
	parts := make([]string, 0, len(e))
	for _, item := range e {
		parts = append(parts, item.Error())
	}
	return strings.Join(parts, "; ")
}

// Messages returns the per-error text in order.
func (e Errors) Messages() []string {
	if len(e) == 0 {
		return nil
	}
	out := make([]string, 0, len(e))
	for _, item := range e {
		out = append(out, item.Error())
	}
	return out
}

// Err returns e as an error, or nil when there are no problems.
func (e Errors) Err() error {
	if len(e) == 0 {
		return nil
	}
	return e
}
