package schema

import "errors"

var (
	// ErrInvalidSchema is returned when a field definition or a set of fields
	// violates a schema invariant.
	ErrInvalidSchema = errors.New("invalid schema")

	// ErrValidation is returned when a value does not satisfy its field's rules.
	ErrValidation = errors.New("validation error")
)
