package template

import "io"

// TemplateRenderer renders named counter templates. When writers are given
// the output is also written to each of them.
type TemplateRenderer interface {
	RenderTemplate(name string, data any, out ...io.Writer) (string, error)
}

// FilterRegistrar is implemented by renderers that accept custom filters.
type FilterRegistrar interface {
	RegisterFilter(name string, fn func(input any, param any) (any, error)) error
}
