package service

import (
	"fmt"

	"github.com/usmansyedcoder/Portfolio-Backend/internal/repository"
)

// ErrNotFound is returned when the requested record does not exist.
var ErrNotFound = repository.ErrNotFound

// ValidationKind classifies a ValidationError.
type ValidationKind string

const (
	KindMissingField  ValidationKind = "missing_field"
	KindInvalidEmail  ValidationKind = "invalid_email"
	KindFieldTooLong  ValidationKind = "field_too_long"
	KindInvalidStatus ValidationKind = "invalid_status"
	KindInvalidSort   ValidationKind = "invalid_sort"
	// KindInvalid is a structural failure reported by the store.
	KindInvalid ValidationKind = "invalid"
)

// ValidationError is caller-facing: Message is safe to return to the client.
type ValidationError struct {
	Kind    ValidationKind
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

func newValidationError(kind ValidationKind, field, msg string) *ValidationError {
	return &ValidationError{Kind: kind, Field: field, Message: msg}
}

// UpstreamFetchError wraps any failure talking to the repository hosting API.
type UpstreamFetchError struct {
	Err error
}

func (e *UpstreamFetchError) Error() string {
	return fmt.Sprintf("failed to fetch projects from GitHub: %v", e.Err)
}

func (e *UpstreamFetchError) Unwrap() error {
	return e.Err
}
