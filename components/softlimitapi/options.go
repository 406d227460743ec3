package softlimitapi

import (
	"io/fs"
	"log/slog"
	"net/http"

	"github.com/goliatone/go-softlimit/pkg/render"
	"github.com/goliatone/go-softlimit/pkg/validation"
)

const (
	defaultRoutePath    = "/api/soft-limit"
	defaultMaxBodyBytes = 64 << 10
)

type GuardFunc func(r *http.Request) error

type Options struct {
	RoutePath    string
	MaxBodyBytes int64
	Guard        GuardFunc
	Logger       *slog.Logger

	Validator *validation.Validator
	Renderer  *render.Renderer

	// RuntimeFS holds the browser runtime served by Component.Mount under the
	// directory of RuntimePath. Nil skips the runtime route.
	RuntimeFS   fs.FS
	RuntimePath string
}

type OptionFn func(*Options)

func DefaultOptions() Options {
	return Options{
		RoutePath:    defaultRoutePath,
		MaxBodyBytes: defaultMaxBodyBytes,
		RuntimePath:  render.DefaultRuntimePath,
	}
}

func NewOptions(fns ...OptionFn) Options {
	opts := DefaultOptions()
	for _, fn := range fns {
		if fn == nil {
			continue
		}
		fn(&opts)
	}
	if opts.RoutePath == "" {
		opts.RoutePath = defaultRoutePath
	}
	if opts.MaxBodyBytes <= 0 {
		opts.MaxBodyBytes = defaultMaxBodyBytes
	}
	if opts.RuntimePath == "" {
		opts.RuntimePath = render.DefaultRuntimePath
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	return opts
}

func WithRoutePath(path string) OptionFn {
	return func(o *Options) {
		if o == nil {
			return
		}
		o.RoutePath = path
	}
}

func WithMaxBodyBytes(limit int64) OptionFn {
	return func(o *Options) {
		if o == nil {
			return
		}
		o.MaxBodyBytes = limit
	}
}

func WithGuard(guard GuardFunc) OptionFn {
	return func(o *Options) {
		if o == nil {
			return
		}
		o.Guard = guard
	}
}

func WithLogger(logger *slog.Logger) OptionFn {
	return func(o *Options) {
		if o == nil {
			return
		}
		o.Logger = logger
	}
}

// WithValidator sets the save validator used by the validate route.
func WithValidator(v *validation.Validator) OptionFn {
	return func(o *Options) {
		if o == nil {
			return
		}
		o.Validator = v
	}
}

// WithRenderer sets the renderer used by the render route. When unset a
// renderer with default options is built on first use.
func WithRenderer(r *render.Renderer) OptionFn {
	return func(o *Options) {
		if o == nil {
			return
		}
		o.Renderer = r
	}
}

// WithRuntime serves fsys from the directory of runtimePath when the
// component is mounted. An empty runtimePath keeps render.DefaultRuntimePath.
func WithRuntime(fsys fs.FS, runtimePath string) OptionFn {
	return func(o *Options) {
		if o == nil {
			return
		}
		o.RuntimeFS = fsys
		if runtimePath != "" {
			o.RuntimePath = runtimePath
		}
	}
}
