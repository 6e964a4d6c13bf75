package catalog

import (
	"fmt"
	"strings"
)

// ValidationError reports bad or missing input. Fields names the offending
// input keys when known.
type ValidationError struct {
	Message string
	Fields  []string
}

func (e *ValidationError) Error() string { return e.Message }

func invalid(format string, args ...any) *ValidationError {
	return &ValidationError{Message: fmt.Sprintf(format, args...)}
}

func missingFields(fields []string) *ValidationError {
	return &ValidationError{
		Message: "missing fields: " + strings.Join(fields, ", "),
		Fields:  fields,
	}
}

// NotFoundError reports that a property, unit or image does not exist.
type NotFoundError struct {
	Resource string
	ID       string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %s not found", e.Resource, e.ID)
}

func notFound(resource, id string) *NotFoundError {
	return &NotFoundError{Resource: resource, ID: id}
}

// StorageError wraps a failed upload. Nothing it refers to was persisted.
type StorageError struct {
	Err error
}

func (e *StorageError) Error() string { return "storing media: " + e.Err.Error() }

func (e *StorageError) Unwrap() error { return e.Err }

// ConflictError reports a write rejected by a uniqueness constraint, such as
// two properties racing for the same slug.
type ConflictError struct {
	Message string
}

func (e *ConflictError) Error() string { return e.Message }
