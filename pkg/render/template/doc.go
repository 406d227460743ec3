// Package template defines the rendering seam used to produce counter markup.
// The gotemplate subpackage provides the pongo2-backed implementation.
package template
