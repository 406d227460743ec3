package authoring

import "errors"

var (
	// ErrAborted signals the user aborted input (e.g., Ctrl+C).
	ErrAborted = errors.New("authoring: aborted")
	// ErrDeclined is returned when the author declines to save the field.
	ErrDeclined = errors.New("authoring: field not saved")
)
