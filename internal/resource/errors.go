package resource

import (
	"errors"
	"fmt"
)

// APIError is the terminal failure for an operation whose status code fell
// outside the request template's accepted set. There is no retry and no
// partial success.
type APIError struct {
	Op       string
	Resource string
	Status   int
	Body     string
}

func newAPIError(op, resource string, status int, body []byte) *APIError {
	return &APIError{Op: op, Resource: resource, Status: status, Body: string(body)}
}

func (e *APIError) Error() string {
	return fmt.Sprintf("error %d on attempt to %s for %s: %s", e.Status, e.Op, e.Resource, e.Body)
}

// ValidationError reports declared parameters that cannot be acted on, such
// as required fields missing. It is always raised before any mutating request.
type ValidationError struct {
	Message string
}

// NewValidationError creates a ValidationError.
func NewValidationError(format string, args ...any) *ValidationError {
	return &ValidationError{Message: fmt.Sprintf(format, args...)}
}

func (e *ValidationError) Error() string {
	return e.Message
}

// AmbiguityError reports a lookup that matched more than one resource.
// Ambiguous matches are never auto-resolved.
type AmbiguityError struct {
	Resource string
	Count    int
}

// NewAmbiguityError creates an AmbiguityError.
func NewAmbiguityError(resource string, count int) *AmbiguityError {
	return &AmbiguityError{Resource: resource, Count: count}
}

func (e *AmbiguityError) Error() string {
	return fmt.Sprintf("multiple matching %s resources found: %d", e.Resource, e.Count)
}

// IsAPIError reports whether err is an APIError.
func IsAPIError(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr)
}

// IsValidationError reports whether err is a ValidationError.
func IsValidationError(err error) bool {
	var vErr *ValidationError
	return errors.As(err, &vErr)
}
