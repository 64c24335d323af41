// Package openapi imports form descriptions from OpenAPI 3 documents. The
// request body schema of an operation becomes a kennel document that the
// form engine can render and submit like any hand-written form.
package openapi
