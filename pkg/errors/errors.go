package errors

import (
	"errors"
	"fmt"
)

// ErrorCode classifies application errors for transport mapping.
type ErrorCode string

const (
	CodeInvalidInput ErrorCode = "INVALID_INPUT"
	CodeNotFound     ErrorCode = "NOT_FOUND"
	CodeConflict     ErrorCode = "CONFLICT"
	CodeUnauthorized ErrorCode = "UNAUTHORIZED"
	CodeForbidden    ErrorCode = "FORBIDDEN"
	CodeMissingKey   ErrorCode = "PROVIDER_MISSING_KEY"
	CodeInternal     ErrorCode = "INTERNAL_ERROR"
)

// AppError carries a code, a human-readable message, and an optional cause.
type AppError struct {
	Code    ErrorCode
	Message string
	Err     error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func NewInvalidInputError(message string) *AppError {
	return &AppError{Code: CodeInvalidInput, Message: message}
}

func NewNotFoundError(message string) *AppError {
	return &AppError{Code: CodeNotFound, Message: message}
}

func NewConflictError(message string) *AppError {
	return &AppError{Code: CodeConflict, Message: message}
}

func NewUnauthorizedError(message string) *AppError {
	return &AppError{Code: CodeUnauthorized, Message: message}
}

func NewForbiddenError(message string) *AppError {
	return &AppError{Code: CodeForbidden, Message: message}
}

// NewMissingKeyError marks the absence of a stored API key for a provider.
// The job worker treats this as terminal: it synthesises a user-visible
// assistant message instead of retrying.
func NewMissingKeyError(provider string) *AppError {
	return &AppError{Code: CodeMissingKey, Message: provider}
}

func NewInternalError(message string) *AppError {
	return &AppError{Code: CodeInternal, Message: message}
}

func NewInternalErrorWithCause(message string, cause error) *AppError {
	return &AppError{Code: CodeInternal, Message: message, Err: cause}
}

func is(err error, code ErrorCode) bool {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code == code
	}
	return false
}

func IsNotFound(err error) bool     { return is(err, CodeNotFound) }
func IsInvalidInput(err error) bool { return is(err, CodeInvalidInput) }
func IsConflict(err error) bool     { return is(err, CodeConflict) }
func IsUnauthorized(err error) bool { return is(err, CodeUnauthorized) }
func IsForbidden(err error) bool    { return is(err, CodeForbidden) }
func IsMissingKey(err error) bool   { return is(err, CodeMissingKey) }

// MissingKeyProvider returns the provider name carried by a missing-key
// error, or "" when err is of a different kind.
func MissingKeyProvider(err error) string {
	var appErr *AppError
	if errors.As(err, &appErr) && appErr.Code == CodeMissingKey {
		return appErr.Message
	}
	return ""
}
