package softlimitapi

import (
	"fmt"
	"net/http"
	"path"
	"strings"
)

// Component bundles the API handler with the browser runtime the rendered
// placeholders load, so a host mounts both with one call.
type Component struct {
	opts Options
}

// Mounts reports where Mount registered the component.
type Mounts struct {
	API string
	// Runtime is empty when no runtime filesystem was configured.
	Runtime string
}

// New constructs a component with default options plus any overrides.
func New(fns ...OptionFn) *Component {
	return &Component{opts: NewOptions(fns...)}
}

// Options returns a copy of the component configuration.
func (c *Component) Options() Options {
	if c == nil {
		return DefaultOptions()
	}
	return NewOptions(func(o *Options) { *o = c.opts })
}

// Handler returns the API handler without the runtime route.
func (c *Component) Handler() http.Handler {
	return HandlerWithOptions(c.Options())
}

// RegisterRoutes registers the API routes under basePath on mux.
func (c *Component) RegisterRoutes(mux Mux, basePath string) (string, error) {
	return RegisterRoutesWithOptions(mux, basePath, c.Options())
}

// Mount registers the API under basePath and, when configured, the runtime
// directory. The runtime is served at the directory of RuntimePath, which is
// absolute and does not move with basePath since rendered pages reference it
// directly.
func (c *Component) Mount(mux Mux, basePath string) (Mounts, error) {
	opts := c.Options()
	api, err := RegisterRoutesWithOptions(mux, basePath, opts)
	if err != nil {
		return Mounts{}, err
	}
	mounts := Mounts{API: api}
	if opts.RuntimeFS == nil {
		return mounts, nil
	}

	dir := runtimeDir(opts.RuntimePath)
	if dir == "/" || strings.HasPrefix(api+"/", dir) {
		return Mounts{}, fmt.Errorf("softlimitapi: runtime path %q overlaps the API at %q", opts.RuntimePath, api)
	}
	mux.Handle(dir, http.StripPrefix(dir, http.FileServerFS(opts.RuntimeFS)))
	mounts.Runtime = dir
	return mounts, nil
}

func runtimeDir(runtimePath string) string {
	dir := path.Dir("/" + strings.TrimLeft(runtimePath, "/"))
	return strings.TrimSuffix(dir, "/") + "/"
}
