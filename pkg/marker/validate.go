package marker

import (
	"context"
	"log/slog"
)

// ValidateForSave checks every marker in text. The result is empty exactly
// when text holds zero markers or a single well-formed, in-range marker.
func ValidateForSave(text string) Errors {
	occurrences := ScanAll(text)
	if len(occurrences) == 0 {
		return nil
	}

	var errs Errors
	for _, occ := range occurrences {
		raw, ok := parseRaw(occ.Inner)
		if !ok {
			errs = append(errs, ValidationError{
				Code:    CodeInvalidSyntax,
				Message: MessageInvalidSyntax,
				Marker:  occ.Full,
			})
			continue
		}
		if !raw.inRange() {
			errs = append(errs, ValidationError{
				Code:    CodeOutOfRange,
				Message: MessageOutOfRange,
				Marker:  occ.Full,
			})
		}
	}
	if len(occurrences) > 1 {
		errs = append(errs, ValidationError{
			Code:    CodeMultipleMarkers,
			Message: MessageMultipleMarkers,
		})
	}
	return errs
}

// ClampFunc observes render-time clamping. original is the marker as written.
type ClampFunc func(original string, clamped LimitSpec)

// RenderOption configures ValidateForRender.
type RenderOption func(*renderConfig)

type renderConfig struct {
	logger  *slog.Logger
	ctx     context.Context
	onClamp ClampFunc
}

// WithLogger sets the logger receiving clamp warnings. Defaults to
// slog.Default().
func WithLogger(logger *slog.Logger) RenderOption {
	return func(cfg *renderConfig) {
		if logger != nil {
			cfg.logger = logger
		}
	}
}

// WithContext attaches a context to the emitted diagnostics.
func WithContext(ctx context.Context) RenderOption {
	return func(cfg *renderConfig) {
		if ctx != nil {
			cfg.ctx = ctx
		}
	}
}

// WithClampHook registers a callback invoked whenever a value is clamped.
func WithClampHook(fn ClampFunc) RenderOption {
	return func(cfg *renderConfig) {
		cfg.onClamp = fn
	}
}

// ValidateForRender returns the limit described by the first marker in text.
// A first marker outside the grammar yields false; an out-of-range value is
// clamped to [MinValue, MaxValue] and reported as a warning.
func ValidateForRender(text string, options ...RenderOption) (LimitSpec, bool) {
	occ, ok := first(text)
	if !ok {
		return LimitSpec{}, false
	}
	raw, ok := parseRaw(occ.Inner)
	if !ok {
		return LimitSpec{}, false
	}

	spec := LimitSpec{max: raw.clamped(), mode: raw.mode}
	if raw.inRange() {
		return spec, true
	}

	cfg := renderConfig{logger: slog.Default(), ctx: context.Background()}
	for _, opt := range options {
		if opt != nil {
			opt(&cfg)
		}
	}
	cfg.logger.WarnContext(cfg.ctx, "soft-limit value out of range, clamping",
		slog.String("marker", occ.Full),
		slog.Int("clamped", spec.max),
		slog.Int("min", MinValue),
		slog.Int("max", MaxValue),
	)
	if cfg.onClamp != nil {
		cfg.onClamp(occ.Full, spec)
	}
	return spec, true
}
