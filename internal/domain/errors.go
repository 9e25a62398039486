// Package domain contains the core business entities and rules.
// These types have no knowledge of databases, HTTP, or any infrastructure concerns.
package domain

import (
	"errors"

	"github.com/mvaleed/catalog/internal/validation"
)

// Errors for common domain-level failures.
var (
	ErrNotFound      = errors.New("not found")
	ErrAlreadyExists = errors.New("already exists")
	ErrInvalidInput  = validation.ErrInvalid
	ErrUnauthorized  = errors.New("unauthorized")
	ErrForbidden     = errors.New("forbidden")
	ErrConflict      = errors.New("conflict")
)

// ValidationError is an invariant violation carrying one verbatim message.
type ValidationError = validation.Error

// NewValidationError returns a ValidationError for field.
func NewValidationError(field, message string) *ValidationError {
	return validation.New(field, message)
}

// IsValidationError reports whether err is a validation failure.
func IsValidationError(err error) bool {
	return errors.Is(err, ErrInvalidInput)
}
