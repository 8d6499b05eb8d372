package schema

import (
	"errors"
	"fmt"
)

// Common schema and template errors
var (
	// ErrTemplateNotFound is returned when a required template file is missing
	// from the templates directory.
	ErrTemplateNotFound = errors.New("template file not found")

	// ErrMissingLength is returned when a schema field has no declared output
	// width. Every field of a fixed-width schema must carry one.
	ErrMissingLength = errors.New("schema field missing length")

	// ErrDuplicateFieldID is returned when two fields of one schema share an
	// ordering id.
	ErrDuplicateFieldID = errors.New("duplicate field id in schema")

	// ErrNoFields is returned when a schema declares no fields at all.
	ErrNoFields = errors.New("schema has no fields")
)

// SchemaError wraps errors with the schema and field they belong to.
type SchemaError struct {
	// Schema is the schema_name of the offending schema.
	Schema string

	// Field is the internal_name of the offending field, if any.
	Field string

	// Err is the underlying error.
	Err error
}

// Error implements the error interface.
func (e *SchemaError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("schema %s: field %s: %v", e.Schema, e.Field, e.Err)
	}
	return fmt.Sprintf("schema %s: %v", e.Schema, e.Err)
}

// Unwrap returns the underlying error for error unwrapping.
func (e *SchemaError) Unwrap() error {
	return e.Err
}
