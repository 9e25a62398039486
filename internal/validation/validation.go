// Package validation holds the field checks shared by domain entities.
package validation

import (
	"errors"
	"strings"
)

// ErrInvalid is matched by every *Error via errors.Is.
var ErrInvalid = errors.New("invalid input")

// Error is an entity invariant violation. Message is the exact text
// reported to callers.
type Error struct {
	Field   string
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

func (e *Error) Is(target error) bool {
	return target == ErrInvalid
}

// New returns a validation error for field with the given message.
func New(field, message string) *Error {
	return &Error{Field: field, Message: message}
}

// NotNull fails when value is nil.
func NotNull[T any](value *T, fieldName string) error {
	if value == nil {
		return New(fieldName, fieldName+" should not be null")
	}
	return nil
}

// NotNullOrEmpty fails when value is nil, empty or only whitespace.
func NotNullOrEmpty(value *string, fieldName string) error {
	if value == nil || strings.TrimSpace(*value) == "" {
		return New(fieldName, fieldName+" should not be null or empty")
	}
	return nil
}
