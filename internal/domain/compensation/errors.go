package compensation

import (
	"errors"
	"fmt"
)

// Sentinel error kinds for this package. These allow errors.Is/As from callers.
var (
	ErrMissingField  = errors.New("missing required field")
	ErrInvalidValue  = errors.New("invalid value")
	ErrLookupFailure = errors.New("salary band lookup failed")
)

// FieldError names the employee or configuration key that failed validation.
type FieldError struct {
	Kind   error // ErrMissingField or ErrInvalidValue
	Field  string
	Reason string
}

func (e *FieldError) Error() string {
	if e.Reason == "" {
		return fmt.Sprintf("%s: %s", e.Kind, e.Field)
	}
	return fmt.Sprintf("%s: %s: %s", e.Kind, e.Field, e.Reason)
}

func (e *FieldError) Unwrap() error { return e.Kind }

func missing(field string) error {
	return &FieldError{Kind: ErrMissingField, Field: field}
}

func invalid(field, format string, args ...any) error {
	return &FieldError{Kind: ErrInvalidValue, Field: field, Reason: fmt.Sprintf(format, args...)}
}
