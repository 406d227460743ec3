// Package openapi lints soft-limit markers embedded in OpenAPI schema
// descriptions. Documents are loaded from files, an fs.FS, or HTTP and parsed
// with kin-openapi; every description carrying a marker is checked with the
// same rules applied when field configuration is saved.
package openapi
