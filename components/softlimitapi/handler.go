package softlimitapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"path"
	"sync"

	"github.com/goliatone/go-softlimit/pkg/fields"
	"github.com/goliatone/go-softlimit/pkg/marker"
	"github.com/goliatone/go-softlimit/pkg/render"
	"github.com/goliatone/go-softlimit/pkg/validation"
)

type HTTPError interface {
	error
	StatusCode() int
}

type StatusError struct {
	Code int
	Err  error
}

func (e StatusError) Error() string {
	if e.Err != nil {
		return e.Err.Error()
	}
	return http.StatusText(e.Code)
}

func (e StatusError) Unwrap() error { return e.Err }

func (e StatusError) StatusCode() int {
	if e.Code <= 0 {
		return http.StatusInternalServerError
	}
	return e.Code
}

// Route names handled below the mount path.
const (
	RouteValidate = "validate"
	RouteRender   = "render"
	RouteStrip    = "strip"
)

type validateRequest struct {
	Instructions string        `json:"instructions"`
	Field        *fields.Field `json:"field,omitempty"`
}

type validateResponse struct {
	Valid       bool                `json:"valid"`
	Errors      []validation.Issue  `json:"errors"`
	FieldErrors map[string][]string `json:"field_errors,omitempty"`
}

type renderRequest struct {
	Field fields.Field `json:"field"`
}

type stripRequest struct {
	Instructions string `json:"instructions"`
}

type stripResponse struct {
	Instructions string `json:"instructions"`
	HadMarker    bool   `json:"had_marker"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// Handler builds a net/http handler with default options plus any overrides.
func Handler(fns ...OptionFn) http.Handler {
	return NewHandler(fns...)
}

func NewHandler(fns ...OptionFn) http.Handler {
	return HandlerWithOptions(NewOptions(fns...))
}

// HandlerWithOptions builds a handler from a pre-constructed Options value.
// The route is picked from the last path segment of the request URL.
func HandlerWithOptions(opts Options) http.Handler {
	opts = NewOptions(func(o *Options) { *o = opts })
	h := &handler{opts: opts}
	if h.opts.Validator == nil {
		h.opts.Validator = validation.New(validation.WithLogger(opts.Logger))
	}
	return h
}

type handler struct {
	opts Options

	rendererOnce sync.Once
	renderer     *render.Renderer
	rendererErr  error
}

func (h *handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r == nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}
	route := path.Base(r.URL.Path)
	switch route {
	case RouteValidate, RouteRender, RouteStrip:
	default:
		http.NotFound(w, r)
		return
	}
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
		return
	}
	if h.opts.Guard != nil {
		if err := h.opts.Guard(r); err != nil {
			writeGuardError(w, err)
			return
		}
	}

	r.Body = http.MaxBytesReader(w, r.Body, h.opts.MaxBodyBytes)
	var (
		payload any
		err     error
	)
	switch route {
	case RouteValidate:
		payload, err = h.validate(r)
	case RouteRender:
		payload, err = h.render(r)
	case RouteStrip:
		payload, err = h.strip(r)
	}
	if err != nil {
		h.writeError(w, r, route, err)
		return
	}
	writeJSON(w, http.StatusOK, payload)
}

func (h *handler) validate(r *http.Request) (any, error) {
	var req validateRequest
	if err := decode(r, &req); err != nil {
		return nil, err
	}

	if req.Field == nil {
		result := h.opts.Validator.Check(req.Instructions)
		return validateResponse{Valid: result.Valid, Errors: nonNil(result.Issues)}, nil
	}

	err := h.opts.Validator.BeforeSave(r.Context(), *req.Field)
	var saveErr *validation.SaveError
	switch {
	case err == nil:
		return validateResponse{Valid: true, Errors: []validation.Issue{}}, nil
	case errors.As(err, &saveErr):
		return validateResponse{Errors: nonNil(saveErr.Issues), FieldErrors: saveErr.FieldErrors}, nil
	default:
		return nil, err
	}
}

func (h *handler) render(r *http.Request) (any, error) {
	var req renderRequest
	if err := decode(r, &req); err != nil {
		return nil, err
	}
	if req.Field.Handle == "" {
		return nil, StatusError{Code: http.StatusUnprocessableEntity, Err: errors.New("field handle is required")}
	}
	renderer, err := h.rendererFor()
	if err != nil {
		return nil, err
	}
	return renderer.Field(r.Context(), render.NewPage(), req.Field)
}

func (h *handler) strip(r *http.Request) (any, error) {
	var req stripRequest
	if err := decode(r, &req); err != nil {
		return nil, err
	}
	return stripResponse{
		Instructions: marker.Strip(req.Instructions),
		HadMarker:    marker.Contains(req.Instructions),
	}, nil
}

func (h *handler) rendererFor() (*render.Renderer, error) {
	if h.opts.Renderer != nil {
		return h.opts.Renderer, nil
	}
	h.rendererOnce.Do(func() {
		h.renderer, h.rendererErr = render.New(render.WithLogger(h.opts.Logger))
	})
	return h.renderer, h.rendererErr
}

func (h *handler) writeError(w http.ResponseWriter, r *http.Request, route string, err error) {
	code := http.StatusInternalServerError
	var httpErr HTTPError
	if errors.As(err, &httpErr) {
		code = httpErr.StatusCode()
	}
	if code >= http.StatusInternalServerError {
		h.opts.Logger.ErrorContext(r.Context(), "soft-limit api request failed", "route", route, "error", err)
		writeJSON(w, code, errorResponse{Error: http.StatusText(code)})
		return
	}
	writeJSON(w, code, errorResponse{Error: err.Error()})
}

func decode(r *http.Request, target any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(target); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return StatusError{Code: http.StatusRequestEntityTooLarge, Err: fmt.Errorf("request body exceeds %d bytes", tooLarge.Limit)}
		}
		return StatusError{Code: http.StatusBadRequest, Err: fmt.Errorf("invalid request body: %w", err)}
	}
	return nil
}

func writeJSON(w http.ResponseWriter, code int, payload any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(code)
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(true)
	_ = enc.Encode(payload)
}

func writeGuardError(w http.ResponseWriter, err error) {
	if w == nil {
		return
	}
	code := http.StatusForbidden
	var httpErr HTTPError
	if errors.As(err, &httpErr) && httpErr != nil {
		code = httpErr.StatusCode()
		if code <= 0 {
			code = http.StatusForbidden
		}
	}
	http.Error(w, http.StatusText(code), code)
}

func nonNil(issues []validation.Issue) []validation.Issue {
	if issues == nil {
		return []validation.Issue{}
	}
	return issues
}
