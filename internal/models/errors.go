package models

import (
	"errors"
	"fmt"
)

// Error codes surfaced by the data-access layer.
const (
	CodeNotFound    = "NOT_FOUND"
	CodeValidation  = "VALIDATION_ERROR"
	CodeConcurrency = "CONCURRENCY_CONFLICT"
	CodeInternal    = "INTERNAL_ERROR"
)

// ValidationKind narrows a VALIDATION_ERROR.
type ValidationKind string

// Validation kinds.
const (
	KindUniqueness    ValidationKind = "uniqueness"
	KindReferential   ValidationKind = "referential"
	KindDiscriminator ValidationKind = "discriminator"
	KindHierarchy     ValidationKind = "hierarchy"
	KindField         ValidationKind = "field"
)

// AppError represents a custom application error
type AppError struct {
	Code    string
	Kind    ValidationKind
	Message string
	Err     error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// NewNotFoundError reports an id that does not resolve to a live row.
func NewNotFoundError(resource string, id interface{}) *AppError {
	return &AppError{
		Code:    CodeNotFound,
		Message: fmt.Sprintf("%s with ID %v not found", resource, id),
	}
}

// NewValidationError reports a field-level validation failure.
func NewValidationError(message string) *AppError {
	return NewValidationErrorKind(KindField, message)
}

// NewValidationErrorKind reports a validation failure of the given kind.
func NewValidationErrorKind(kind ValidationKind, message string) *AppError {
	return &AppError{
		Code:    CodeValidation,
		Kind:    kind,
		Message: message,
	}
}

// NewUniquenessError reports a duplicate value for a unique field.
func NewUniquenessError(resource, field string, value interface{}) *AppError {
	return NewValidationErrorKind(KindUniqueness, fmt.Sprintf("%s with %s %v already exists", resource, field, value))
}

// NewReferentialError reports a reference to a missing or inactive row.
func NewReferentialError(resource string, id interface{}) *AppError {
	return NewValidationErrorKind(KindReferential, fmt.Sprintf("referenced %s %v does not exist or is inactive", resource, id))
}

// NewConcurrencyError classifies a storage-level conflict on an atomic path.
func NewConcurrencyError(message string, err error) *AppError {
	return &AppError{
		Code:    CodeConcurrency,
		Message: message,
		Err:     err,
	}
}

// NewInternalError wraps an unexpected storage failure.
func NewInternalError(err error) *AppError {
	return &AppError{
		Code:    CodeInternal,
		Message: "internal error",
		Err:     err,
	}
}

func codeOf(err error) string {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	return ""
}

// IsNotFound reports whether err is a NOT_FOUND AppError.
func IsNotFound(err error) bool { return codeOf(err) == CodeNotFound }

// IsValidation reports whether err is a VALIDATION_ERROR AppError.
func IsValidation(err error) bool { return codeOf(err) == CodeValidation }

// IsConflict reports whether err is a CONCURRENCY_CONFLICT AppError.
func IsConflict(err error) bool { return codeOf(err) == CodeConcurrency }

// ValidationKindOf returns the kind of a validation error, or "" for anything else.
func ValidationKindOf(err error) ValidationKind {
	var appErr *AppError
	if errors.As(err, &appErr) && appErr.Code == CodeValidation {
		return appErr.Kind
	}
	return ""
}
