package common

import (
	"errors"
	"fmt"
)

// ProviderError is returned when an embedding or generation backend is
// unreachable or rejects the input.
type ProviderError struct {
	Provider string
	Op       string
	Err      error
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("provider %s: %s: %v", e.Provider, e.Op, e.Err)
}

func (e *ProviderError) Unwrap() error { return e.Err }

// IndexError is returned when the vector index is unreachable or a collection
// does not match the expected dimension.
type IndexError struct {
	Collection string
	Op         string
	Err        error
}

func (e *IndexError) Error() string {
	return fmt.Sprintf("vector index %s: %s: %v", e.Collection, e.Op, e.Err)
}

func (e *IndexError) Unwrap() error { return e.Err }

// ValidationError reports invalid caller input.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Message)
}

// DataError describes a malformed or incomplete stored record. It never
// propagates out of retrieval: the record is excluded and the error logged.
type DataError struct {
	URL    string
	Field  string
	Reason string
}

func (e *DataError) Error() string {
	return fmt.Sprintf("record %s: %s: %s", e.URL, e.Field, e.Reason)
}

// ReasonMissing marks a DataError for an absent field
const ReasonMissing = "missing"

// Missing reports whether the field was absent rather than malformed
func (e *DataError) Missing() bool {
	return e.Reason == ReasonMissing
}

// ErrDimensionMismatch is wrapped in an IndexError when an existing collection
// was created for a different embedding size.
var ErrDimensionMismatch = errors.New("collection dimension mismatch")

// ErrNotFound is wrapped by storage lookups for unknown keys
var ErrNotFound = errors.New("not found")

func NewProviderError(provider, op string, err error) error {
	return &ProviderError{Provider: provider, Op: op, Err: err}
}

func NewIndexError(collection, op string, err error) error {
	return &IndexError{Collection: collection, Op: op, Err: err}
}

func NewValidationError(field, message string) error {
	return &ValidationError{Field: field, Message: message}
}

// IsProviderError reports whether err wraps a ProviderError
func IsProviderError(err error) bool {
	var target *ProviderError
	return errors.As(err, &target)
}

// IsIndexError reports whether err wraps an IndexError
func IsIndexError(err error) bool {
	var target *IndexError
	return errors.As(err, &target)
}

// IsValidationError reports whether err wraps a ValidationError
func IsValidationError(err error) bool {
	var target *ValidationError
	return errors.As(err, &target)
}
