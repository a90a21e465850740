// Package domain contains business logic types and errors.
// Domain errors represent business-level failures, NOT HTTP errors.
// They are infrastructure-agnostic and can be mapped to HTTP/gRPC/etc by adapters.
package domain

import (
	"errors"
	"fmt"
)

// Sentinel errors for use with errors.Is().
var (
	// ErrNotFound indicates the requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrValidation indicates business rule validation failed.
	ErrValidation = errors.New("validation failed")

	// ErrStorage indicates the underlying data store failed.
	ErrStorage = errors.New("storage failure")
)

// ErrorKind tags an error with the category it belongs to.
// The tag survives wrapping across layers so adapters never inspect messages.
type ErrorKind string

const (
	KindNotFound   ErrorKind = "not_found"
	KindValidation ErrorKind = "validation"
	KindStorage    ErrorKind = "storage"
)

// sentinel returns the sentinel error for the kind.
func (k ErrorKind) sentinel() error {
	switch k {
	case KindNotFound:
		return ErrNotFound
	case KindValidation:
		return ErrValidation
	default:
		return ErrStorage
	}
}

// StorageError is returned by the data access layer for any underlying failure.
type StorageError struct {
	// Op is the repository operation that failed (e.g. "create").
	Op string

	// Message is the fixed, operation-specific description.
	Message string

	// Err is the driver or ORM error.
	Err error
}

// Error implements the error interface.
// The driver error is deliberately left out; it is reachable through Unwrap.
func (e *StorageError) Error() string {
	return e.Message
}

// Unwrap exposes both ErrStorage and the original cause.
func (e *StorageError) Unwrap() []error {
	return []error{ErrStorage, e.Err}
}

// NewStorageError creates a storage error for the given operation.
func NewStorageError(op, message string, err error) error {
	return &StorageError{Op: op, Message: message, Err: err}
}

// ServiceError is returned by the application layer.
// Message is the operation-specific text shown to clients; Kind and Err keep
// the structured reason so callers can branch on it.
type ServiceError struct {
	Op      string
	Kind    ErrorKind
	Message string
	Err     error
}

// Error implements the error interface.
func (e *ServiceError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}

	return e.Message
}

// Unwrap exposes the kind sentinel and the original cause.
func (e *ServiceError) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind.sentinel()}
	}

	return []error{e.Kind.sentinel(), e.Err}
}

// Cause returns the message of the wrapped error, or "" when there is none.
func (e *ServiceError) Cause() string {
	if e.Err == nil {
		return ""
	}

	return e.Err.Error()
}

// NewServiceError creates a service error of the given kind.
func NewServiceError(op string, kind ErrorKind, message string, err error) error {
	return &ServiceError{Op: op, Kind: kind, Message: message, Err: err}
}

// NotFoundError provides context for not found errors.
type NotFoundError struct {
	Entity string
	ID     string
}

// Error implements the error interface.
func (e *NotFoundError) Error() string {
	if e.ID != "" {
		return fmt.Sprintf("%s with id %q not found", e.Entity, e.ID)
	}

	return e.Entity + " not found"
}

// Unwrap returns the sentinel error for errors.Is() support.
func (e *NotFoundError) Unwrap() error {
	return ErrNotFound
}

// NewNotFoundError creates a not found error with context.
func NewNotFoundError(entity, id string) error {
	return &NotFoundError{Entity: entity, ID: id}
}

// ValidationError provides context for validation errors.
type ValidationError struct {
	Field   string
	Message string
	Value   any
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("validation failed for %s: %s", e.Field, e.Message)
	}

	return "validation failed: " + e.Message
}

// Unwrap returns the sentinel error for errors.Is() support.
func (e *ValidationError) Unwrap() error {
	return ErrValidation
}

// NewValidationError creates a validation error with context.
func NewValidationError(field, message string) error {
	return &ValidationError{Field: field, Message: message}
}

// NewValidationErrorWithValue creates a validation error including the invalid value.
func NewValidationErrorWithValue(field, message string, value any) error {
	return &ValidationError{Field: field, Message: message, Value: value}
}

// IsNotFound checks if an error is a not found error.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsValidation checks if an error is a validation error.
func IsValidation(err error) bool {
	return errors.Is(err, ErrValidation)
}

// IsStorage checks if an error originated in the data store.
func IsStorage(err error) bool {
	return errors.Is(err, ErrStorage)
}
