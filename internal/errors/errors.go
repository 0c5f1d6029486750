package errors

import (
	"errors"
	"fmt"
)

// Domain-specific error types
var (
	// ErrNotFound indicates a resource was not found
	ErrNotFound = errors.New("resource not found")

	// ErrDuplicateEntry indicates a unique constraint violation
	ErrDuplicateEntry = errors.New("duplicate entry")

	// ErrInvalidInput indicates invalid input data
	ErrInvalidInput = errors.New("invalid input")

	// ErrMailboxUnavailable indicates the mailbox provider could not be reached
	ErrMailboxUnavailable = errors.New("mailbox unavailable")

	// ErrInvalidEmail indicates a sender address that does not parse
	ErrInvalidEmail = errors.New("invalid email address")

	// ErrInvalidTransition indicates a subscription status transition that is not allowed
	ErrInvalidTransition = errors.New("invalid subscription transition")

	// ErrSummarizationFailed indicates a per-message summarization call failed
	ErrSummarizationFailed = errors.New("summarization failed")

	// ErrCompletionFailed indicates the completion service returned an error
	ErrCompletionFailed = errors.New("completion failed")

	// ErrPersistenceFailed indicates a digest write could not be committed
	ErrPersistenceFailed = errors.New("persistence failed")

	// ErrInvalidConfig indicates a digest config update with invalid fields
	ErrInvalidConfig = errors.New("invalid digest config")

	// ErrUnauthorized indicates unauthorized access
	ErrUnauthorized = errors.New("unauthorized")

	// ErrInternal indicates an internal server error
	ErrInternal = errors.New("internal server error")
)

// Error codes for API responses
const (
	CodeNotFound            = "NOT_FOUND"
	CodeDuplicateEntry      = "DUPLICATE_ENTRY"
	CodeInvalidInput        = "INVALID_INPUT"
	CodeMailboxUnavailable  = "MAILBOX_UNAVAILABLE"
	CodeInvalidEmail        = "INVALID_EMAIL"
	CodeInvalidTransition   = "INVALID_TRANSITION"
	CodeSummarizationFailed = "SUMMARIZATION_FAILED"
	CodeCompletionFailed    = "COMPLETION_FAILED"
	CodePersistenceFailed   = "PERSISTENCE_FAILED"
	CodeInvalidConfig       = "INVALID_CONFIG"
	CodeUnauthorized        = "UNAUTHORIZED"
	CodeInternalError       = "INTERNAL_ERROR"
)

// AppError represents an application error with context
type AppError struct {
	Err     error
	Message string
	Code    string
}

// Error implements the error interface
func (e *AppError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return e.Err.Error()
}

// Unwrap returns the underlying error
func (e *AppError) Unwrap() error {
	return e.Err
}

// NewAppError creates a new AppError
func NewAppError(err error, message string, code string) *AppError {
	return &AppError{
		Err:     err,
		Message: message,
		Code:    code,
	}
}

// Wrap wraps an error with additional context
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}

// IsNotFound checks if the error is a not found error
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsInvalidInput checks if the error is an invalid input error
func IsInvalidInput(err error) bool {
	return errors.Is(err, ErrInvalidInput)
}

// IsMailboxUnavailable checks if the error is a mailbox availability error
func IsMailboxUnavailable(err error) bool {
	return errors.Is(err, ErrMailboxUnavailable)
}

// GetErrorCode returns the appropriate error code for an error
func GetErrorCode(err error) string {
	switch {
	case errors.Is(err, ErrNotFound):
		return CodeNotFound
	case errors.Is(err, ErrDuplicateEntry):
		return CodeDuplicateEntry
	case errors.Is(err, ErrInvalidEmail):
		return CodeInvalidEmail
	case errors.Is(err, ErrInvalidInput):
		return CodeInvalidInput
	case errors.Is(err, ErrMailboxUnavailable):
		return CodeMailboxUnavailable
	case errors.Is(err, ErrInvalidTransition):
		return CodeInvalidTransition
	case errors.Is(err, ErrSummarizationFailed):
		return CodeSummarizationFailed
	case errors.Is(err, ErrCompletionFailed):
		return CodeCompletionFailed
	case errors.Is(err, ErrPersistenceFailed):
		return CodePersistenceFailed
	case errors.Is(err, ErrInvalidConfig):
		return CodeInvalidConfig
	case errors.Is(err, ErrUnauthorized):
		return CodeUnauthorized
	default:
		return CodeInternalError
	}
}
