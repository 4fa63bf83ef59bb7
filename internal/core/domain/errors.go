package domain

import (
	"errors"
	"fmt"
)

// Error kinds surfaced to the transport layer. Every kind has a stable
// machine-readable code, see Code.
var (
	ErrUnauthenticated    = errors.New("authentication required")
	ErrForbidden          = errors.New("access forbidden")
	ErrNotFound           = errors.New("not found")
	ErrDuplicateIdentity  = errors.New("email already registered")
	ErrDuplicateCategory  = errors.New("category already exists")
	ErrValidation         = errors.New("validation failed")
	ErrProductLocked      = errors.New("product is locked")
	ErrInvalidCredentials = errors.New("incorrect email or password")
	ErrUnavailable        = errors.New("service temporarily unavailable")
)

// ValidationError describes a single field-level constraint violation.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return e.Field + ": " + e.Message
}

func (e *ValidationError) Unwrap() error { return ErrValidation }

// Invalid builds a ValidationError for field.
func Invalid(field, format string, args ...any) error {
	return &ValidationError{Field: field, Message: fmt.Sprintf(format, args...)}
}

type unavailableError struct {
	op    string
	cause error
}

func (e *unavailableError) Error() string { return e.op + ": " + e.cause.Error() }

func (e *unavailableError) Is(target error) bool { return target == ErrUnavailable }

func (e *unavailableError) Unwrap() error { return e.cause }

// Unavailable wraps a storage or transport failure. The cause stays reachable
// through errors.Unwrap for logging but is never rendered to callers.
func Unavailable(op string, cause error) error {
	if cause == nil {
		return nil
	}
	return &unavailableError{op: op, cause: cause}
}

// Code maps err to its stable machine-readable code.
func Code(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrUnauthenticated):
		return "unauthenticated"
	case errors.Is(err, ErrForbidden):
		return "forbidden"
	case errors.Is(err, ErrNotFound):
		return "not_found"
	case errors.Is(err, ErrDuplicateIdentity):
		return "duplicate_identity"
	case errors.Is(err, ErrDuplicateCategory):
		return "duplicate_category"
	case errors.Is(err, ErrValidation):
		return "validation_error"
	case errors.Is(err, ErrProductLocked):
		return "product_locked"
	case errors.Is(err, ErrInvalidCredentials):
		return "invalid_credentials"
	case errors.Is(err, ErrUnavailable):
		return "unavailable"
	default:
		return "internal"
	}
}
