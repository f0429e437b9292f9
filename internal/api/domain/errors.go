package domain

import (
	"errors"
	"strings"
)

var (
	// ErrJobNotFound is returned when no job matches the given id
	ErrJobNotFound = errors.New("job not found")

	// ErrInvalidJobID is returned when an id is not a well-formed UUID; no lookup is attempted
	ErrInvalidJobID = errors.New("invalid job ID format")

	// ErrEmptyBulk is returned when a bulk update carries no entries
	ErrEmptyBulk = errors.New("jobs array is required")
)

// FieldError describes one violated field rule
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Value   any    `json:"value,omitempty"`
}

// ValidationError carries every field violation found in a payload, in field order
type ValidationError struct {
	Errors []FieldError
}

func (e *ValidationError) Error() string {
	msgs := make([]string, len(e.Errors))
	for i, fe := range e.Errors {
		msgs[i] = fe.Field + ": " + fe.Message
	}
	return "validation failed: " + strings.Join(msgs, "; ")
}

// NewValidationError builds a ValidationError for a single field
func NewValidationError(field, message string, value any) *ValidationError {
	return &ValidationError{Errors: []FieldError{{Field: field, Message: message, Value: value}}}
}

// Add appends a violation
func (e *ValidationError) Add(field, message string, value any) {
	e.Errors = append(e.Errors, FieldError{Field: field, Message: message, Value: value})
}

// OrNil returns nil when no violation was recorded
func (e *ValidationError) OrNil() error {
	if e == nil || len(e.Errors) == 0 {
		return nil
	}
	return e
}
