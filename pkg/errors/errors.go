package errors

import (
	"errors"
	"fmt"
)

// Kind tags every error the engine can return. The set is closed: callers
// switch on the kind, never on message text.
type Kind string

const (
	// KindNotFound indicates a referenced entity does not exist
	KindNotFound Kind = "NOT_FOUND"

	// KindBusinessRule indicates a domain rule was violated
	KindBusinessRule Kind = "BUSINESS_RULE"

	// KindConstraint indicates a uniqueness or referential rule was broken at the storage boundary
	KindConstraint Kind = "CONSTRAINT"

	// KindStorage indicates the underlying storage failed or a transaction aborted
	KindStorage Kind = "STORAGE"

	// KindValidation indicates malformed or out-of-range input
	KindValidation Kind = "VALIDATION"
)

// AppError is the application error type carried through every layer
type AppError struct {
	Kind    Kind
	Message string
	Err     error
}

// Error implements the error interface
func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// Unwrap implements the unwrap interface
func (e *AppError) Unwrap() error {
	return e.Err
}

// NewNotFoundError creates a new not found error
func NewNotFoundError(message string) *AppError {
	return &AppError{Kind: KindNotFound, Message: message}
}

// NewBusinessRuleError creates a new business rule violation error
func NewBusinessRuleError(message string) *AppError {
	return &AppError{Kind: KindBusinessRule, Message: message}
}

// NewConstraintError creates a new storage constraint violation error
func NewConstraintError(message string, err error) *AppError {
	return &AppError{Kind: KindConstraint, Message: message, Err: err}
}

// NewStorageError creates a new storage failure error
func NewStorageError(message string, err error) *AppError {
	return &AppError{Kind: KindStorage, Message: message, Err: err}
}

// NewValidationError creates a new validation error
func NewValidationError(message string) *AppError {
	return &AppError{Kind: KindValidation, Message: message}
}

// IsKind reports whether err is an AppError of the given kind
func IsKind(err error, kind Kind) bool {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Kind == kind
	}
	return false
}

// KindOf returns the kind of err, or KindStorage for untagged errors
func KindOf(err error) Kind {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return KindStorage
}
