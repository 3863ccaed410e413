package ledger

import (
	"errors"
	"maps"
	"slices"
	"strings"
)

var (
	// ErrValidation marks input rejected before any store call.
	ErrValidation = errors.New("validation failed")
	// ErrInvalidCredentials is returned for every failed login.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrUsernameTaken is returned when registering an existing username.
	ErrUsernameTaken = errors.New("username already taken")
	// ErrForbidden is returned when a boarder acts on someone else's records.
	ErrForbidden = errors.New("not allowed for this session")
)

// ValidationError lists rejected fields with the rule each one broke.
type ValidationError struct {
	Fields map[string]string
	cause  error
}

func (e *ValidationError) Error() string {
	if len(e.Fields) == 0 && e.cause != nil {
		return e.cause.Error()
	}
	parts := make([]string, 0, len(e.Fields))
	for _, field := range slices.Sorted(maps.Keys(e.Fields)) {
		parts = append(parts, field+": "+e.Fields[field])
	}
	return "invalid " + strings.Join(parts, ", ")
}

// Unwrap exposes ErrValidation and the underlying rule error.
func (e *ValidationError) Unwrap() []error {
	if e.cause != nil {
		return []error{ErrValidation, e.cause}
	}
	return []error{ErrValidation}
}

// invalid wraps a domain rule violation as a validation failure.
func invalid(cause error) error {
	return &ValidationError{Fields: map[string]string{}, cause: cause}
}

// invalidField reports a single bad field.
func invalidField(field, rule string) error {
	return &ValidationError{Fields: map[string]string{field: rule}}
}
