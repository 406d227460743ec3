package validation

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"reflect"
	"slices"
	"strings"

	"github.com/go-playground/validator/v10"
	"golang.org/x/mod/semver"

	"github.com/goliatone/go-softlimit/pkg/fields"
	"github.com/goliatone/go-softlimit/pkg/marker"
)

// FieldInstructions is the key marker errors are attributed to.
const FieldInstructions = "instructions"

// Issue is one validation problem with its field attribution.
type Issue struct {
	Field   string `json:"field"`
	Code    string `json:"code,omitempty"`
	Message string `json:"message"`
}

// Result captures validation outcomes for previews and API responses.
type Result struct {
	Valid  bool    `json:"valid"`
	Issues []Issue `json:"issues,omitempty"`
}

// SaveError blocks a save. FieldErrors maps field keys to their messages.
type SaveError struct {
	Handle      string
	FieldErrors map[string][]string
	Issues      []Issue
}

func (e *SaveError) Error() string {
	keys := make([]string, 0, len(e.FieldErrors))
	for key := range e.FieldErrors {
		keys = append(keys, key)
	}
	slices.Sort(keys)

	parts := make([]string, 0, len(keys))
	for _, key := range keys {
		parts = append(parts, key+": "+strings.Join(e.FieldErrors[key], "; "))
	}
	if e.Handle == "" {
		return "validation: " + strings.Join(parts, ", ")
	}
	return fmt.Sprintf("validation: field %q: %s", e.Handle, strings.Join(parts, ", "))
}

// Reporter observes save checks.
type Reporter interface {
	SaveChecked(handle string, issues []Issue)
}

// Validator runs the save hook for field configuration.
type Validator struct {
	validate    *validator.Validate
	logger      *slog.Logger
	reporter    Reporter
	hostVersion string
	skipMajors  []string
}

// Option configures a Validator.
type Option func(*Validator)

// WithLogger sets the logger. Defaults to slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(v *Validator) {
		if logger != nil {
			v.logger = logger
		}
	}
}

// WithReporter registers a Reporter.
func WithReporter(r Reporter) Option {
	return func(v *Validator) {
		v.reporter = r
	}
}

// WithHostVersion records the host application version used by
// WithSkipMajors.
func WithHostVersion(version string) Option {
	return func(v *Validator) {
		v.hostVersion = canonicalVersion(version)
	}
}

// WithSkipMajors disables marker validation when the host version's major
// matches one of majors ("5", "v5"). Struct validation still runs.
func WithSkipMajors(majors ...string) Option {
	return func(v *Validator) {
		for _, major := range majors {
			if canon := canonicalVersion(major); canon != "" {
				v.skipMajors = append(v.skipMajors, semver.Major(canon))
			}
		}
	}
}

// New returns a Validator.
func New(opts ...Option) *Validator {
	validate := validator.New(validator.WithRequiredStructEnabled())
	validate.RegisterTagNameFunc(jsonFieldName)

	v := &Validator{
		validate: validate,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(v)
		}
	}
	return v
}

// MarkerChecksSkipped reports whether the host version carve-out applies.
func (v *Validator) MarkerChecksSkipped() bool {
	if v.hostVersion == "" || len(v.skipMajors) == 0 {
		return false
	}
	return slices.Contains(v.skipMajors, semver.Major(v.hostVersion))
}

// Check validates instructions text on its own.
func (v *Validator) Check(instructions string) Result {
	issues := markerIssues(marker.ValidateForSave(instructions))
	return Result{Valid: len(issues) == 0, Issues: issues}
}

// BeforeSave validates field and returns a *SaveError when the save must be
// blocked.
func (v *Validator) BeforeSave(ctx context.Context, field fields.Field) error {
	if ctx == nil {
		ctx = context.Background()
	}

	var issues []Issue
	if err := v.validate.StructCtx(ctx, field); err != nil {
		structIssues, convErr := structIssues(err)
		if convErr != nil {
			return fmt.Errorf("validation: field %q: %w", field.Handle, convErr)
		}
		issues = append(issues, structIssues...)
	}

	if v.MarkerChecksSkipped() {
		v.logger.InfoContext(ctx, "soft-limit marker validation skipped for host version",
			"field", field.Handle, "host_version", v.hostVersion)
	} else {
		issues = append(issues, markerIssues(marker.ValidateForSave(field.Instructions))...)
	}

	if v.reporter != nil {
		v.reporter.SaveChecked(field.Handle, issues)
	}
	if len(issues) == 0 {
		return nil
	}

	saveErr := &SaveError{Handle: field.Handle, Issues: issues, FieldErrors: make(map[string][]string)}
	for _, issue := range issues {
		saveErr.FieldErrors[issue.Field] = append(saveErr.FieldErrors[issue.Field], issue.Message)
	}
	for key, messages := range saveErr.FieldErrors {
		saveErr.FieldErrors[key] = normalizeMessages(messages)
	}
	v.logger.DebugContext(ctx, "soft-limit save blocked", "field", field.Handle, "issues", len(issues))
	return saveErr
}

func markerIssues(errs marker.Errors) []Issue {
	if len(errs) == 0 {
		return nil
	}
	out := make([]Issue, 0, len(errs))
	for _, err := range errs {
		out = append(out, Issue{
			Field:   FieldInstructions,
			Code:    string(err.Code),
			Message: err.Error(),
		})
	}
	return out
}

func structIssues(err error) ([]Issue, error) {
	var invalid *validator.InvalidValidationError
	if errors.As(err, &invalid) {
		return nil, err
	}
	var failures validator.ValidationErrors
	if !errors.As(err, &failures) {
		return nil, err
	}
	out := make([]Issue, 0, len(failures))
	for _, fe := range failures {
		out = append(out, Issue{
			Field:   fe.Field(),
			Code:    fe.Tag(),
			Message: describe(fe),
		})
	}
	return out, nil
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "max":
		return "must be at most " + fe.Param() + " characters"
	case "lowercase":
		return "must be lowercase"
	default:
		return fmt.Sprintf("failed %s validation", fe.Tag())
	}
}

func jsonFieldName(field reflect.StructField) string {
	name, _, _ := strings.Cut(field.Tag.Get("json"), ",")
	if name == "-" {
		return ""
	}
	if name == "" {
		return field.Name
	}
	return name
}

func canonicalVersion(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}
	if !strings.HasPrefix(raw, "v") {
		raw = "v" + raw
	}
	if !semver.IsValid(raw) {
		return ""
	}
	return raw
}

func normalizeMessages(messages []string) []string {
	if len(messages) == 0 {
		return nil
	}
	out := make([]string, 0, len(messages))
	for _, message := range messages {
		if trimmed := strings.TrimSpace(message); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}
