package domain

import (
	"errors"
	"fmt"
)

// ValidationError signals invalid caller input. It maps to HTTP 400 and its
// message is safe to return to the client.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

// NewValidationError creates a ValidationError with the given message.
func NewValidationError(message string) *ValidationError {
	return &ValidationError{Message: message}
}

// NotFoundError signals that a referenced entity does not exist. It maps to
// HTTP 404 and its message is safe to return to the client.
type NotFoundError struct {
	Entity string
	Key    string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s not found: %s", e.Entity, e.Key)
}

// NewNotFoundError creates a NotFoundError for the given entity and key.
func NewNotFoundError(entity, key string) *NotFoundError {
	return &NotFoundError{Entity: entity, Key: key}
}

// UnavailableError signals that the backing store is unreachable or a probe
// against it failed. It maps to HTTP 500.
type UnavailableError struct {
	Resource string
	Err      error
}

func (e *UnavailableError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s unavailable: %v", e.Resource, e.Err)
	}
	return fmt.Sprintf("%s unavailable", e.Resource)
}

func (e *UnavailableError) Unwrap() error { return e.Err }

// NewUnavailableError creates an UnavailableError wrapping the underlying cause.
func NewUnavailableError(resource string, err error) *UnavailableError {
	return &UnavailableError{Resource: resource, Err: err}
}

// IsValidation reports whether err is a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// IsNotFound reports whether err is a NotFoundError.
func IsNotFound(err error) bool {
	var nfe *NotFoundError
	return errors.As(err, &nfe)
}

// IsUnavailable reports whether err is an UnavailableError.
func IsUnavailable(err error) bool {
	var ue *UnavailableError
	return errors.As(err, &ue)
}
