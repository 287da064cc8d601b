package core

import (
	"errors"
	"fmt"
)

// Domain errors - centralized error definitions
var (
	// ErrDomain marks a probability or confidence level outside the open interval (0,1).
	ErrDomain = errors.New("argument outside distribution domain")

	// ErrInvalidInput marks group statistics rejected by caller-side validation.
	ErrInvalidInput = errors.New("invalid input")

	// Not found errors
	ErrNotFound         = errors.New("resource not found")
	ErrAnalysisNotFound = fmt.Errorf("%w: analysis", ErrNotFound)
)

// DomainError reports an argument outside the domain of a distribution function.
type DomainError struct {
	Op    string
	Value float64
}

func (e *DomainError) Error() string {
	return fmt.Sprintf("%s: %v is outside the open interval (0, 1)", e.Op, e.Value)
}

// Is lets errors.Is(err, ErrDomain) match any DomainError.
func (e *DomainError) Is(target error) bool {
	return target == ErrDomain
}

// NewDomainError creates a DomainError for the named operation
func NewDomainError(op string, value float64) error {
	return &DomainError{Op: op, Value: value}
}

// InvalidInputError reports a single field that failed validation.
type InvalidInputError struct {
	Field  string
	Reason string
}

func (e *InvalidInputError) Error() string {
	return fmt.Sprintf("validation failed for %s: %s", e.Field, e.Reason)
}

func (e *InvalidInputError) Is(target error) bool {
	return target == ErrInvalidInput
}

// Error constructors with context
func NewNotFoundError(resource string, id string) error {
	return fmt.Errorf("%w: %s with id %s", ErrNotFound, resource, id)
}

func NewValidationError(field string, reason string) error {
	return &InvalidInputError{Field: field, Reason: reason}
}

// Error checking helpers
func IsNotFoundError(err error) bool {
	return errors.Is(err, ErrNotFound)
}

func IsDomainError(err error) bool {
	return errors.Is(err, ErrDomain)
}

func IsValidationError(err error) bool {
	return errors.Is(err, ErrInvalidInput)
}
