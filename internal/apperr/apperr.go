// Package apperr defines the error categories the API layer knows how to
// translate into HTTP responses.
package apperr

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound marks a resource that is missing or not owned by the caller.
	ErrNotFound = errors.New("not found")
	// ErrConflict marks an attempt to create a resource that already exists.
	ErrConflict = errors.New("already exists")
	// ErrUnauthenticated marks any authentication failure. Callers must not
	// learn which step failed.
	ErrUnauthenticated = errors.New("unauthenticated")
	// ErrUpstream marks a failure of the external text-generation service.
	ErrUpstream = errors.New("upstream service error")
)

// ValidationError reports a missing or malformed request field.
type ValidationError struct {
	Field string
	Msg   string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s %s", e.Field, e.Msg)
}

// Validation builds a ValidationError for the given field.
func Validation(field, msg string) error {
	return &ValidationError{Field: field, Msg: msg}
}

// AsValidation unwraps err into a ValidationError, if it is one.
func AsValidation(err error) (*ValidationError, bool) {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve, true
	}
	return nil, false
}
