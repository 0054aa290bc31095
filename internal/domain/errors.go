package domain

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// Sentinel errors for the registration workflow.
var (
	ErrAuthenticationMissing = errors.New("authentication missing")
	ErrUserNotFound          = errors.New("user not found")
	ErrValidation            = errors.New("validation failed")
	ErrEmptySubmission       = errors.New("no group selected")
	ErrDuplicatePending      = errors.New("registration request already pending")
	ErrPersistence           = errors.New("persistence failure")
)

// Form field names used for field-level errors.
const (
	FieldGroups            = "groups"
	FieldUnsubscribeGroups = "unsubscribe_groups"
)

// ValidationError carries field-level errors of a rejected submission.
// errors.Is(err, ErrValidation) reports true for it.
type ValidationError struct {
	Fields map[string][]string
}

// NewValidationError returns an empty ValidationError.
func NewValidationError() *ValidationError {
	return &ValidationError{Fields: make(map[string][]string)}
}

// Add records a message for field.
func (e *ValidationError) Add(field, message string) {
	e.Fields[field] = append(e.Fields[field], message)
}

// Merge copies all field errors of other into e.
func (e *ValidationError) Merge(other map[string][]string) {
	for field, msgs := range other {
		for _, msg := range msgs {
			e.Add(field, msg)
		}
	}
}

// HasErrors reports whether any field error was recorded.
func (e *ValidationError) HasErrors() bool {
	return len(e.Fields) > 0
}

func (e *ValidationError) Error() string {
	fields := make([]string, 0, len(e.Fields))
	for f := range e.Fields {
		fields = append(fields, f)
	}
	sort.Strings(fields)
	parts := make([]string, 0, len(fields))
	for _, f := range fields {
		parts = append(parts, fmt.Sprintf("%s: %s", f, strings.Join(e.Fields[f], ", ")))
	}
	return fmt.Sprintf("%s: %s", ErrValidation, strings.Join(parts, "; "))
}

func (e *ValidationError) Unwrap() error {
	return ErrValidation
}
