package errors

import (
	"errors"
	"fmt"
)

// Code classifies an application error for logging and exit handling.
type Code string

// Classification codes for infrastructure failures. Domain-level failures
// (bad parameters, integrity violations) use the domain/core sentinels
// instead.
const (
	CodeConfigInvalid    Code = "CONFIG_INVALID"
	CodeDatabaseError    Code = "DATABASE_ERROR"
	CodeGenerationFailed Code = "GENERATION_FAILED"
	CodeExportFailed     Code = "EXPORT_FAILED"
	CodeInternal         Code = "INTERNAL_ERROR"
)

// AppError carries a classification code alongside the message and cause.
type AppError struct {
	Code    Code
	Message string
	Cause   error
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

// New creates an error with a classification code
func New(code Code, message string) *AppError {
	return &AppError{Code: code, Message: message}
}

// Wrap adds context to an error. An error that already carries a code keeps
// it through the wrap.
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	return &AppError{Code: CodeOf(err), Message: message, Cause: err}
}

// Wrapf adds formatted context to an error
func Wrapf(err error, format string, args ...any) error {
	if err == nil {
		return nil
	}
	return Wrap(err, fmt.Sprintf(format, args...))
}

// CodeOf extracts the classification code from anywhere in the chain,
// defaulting to CodeInternal for unclassified errors.
func CodeOf(err error) Code {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	return CodeInternal
}

// ConfigInvalid reports an unusable configuration value
func ConfigInvalid(message string) *AppError {
	return New(CodeConfigInvalid, message)
}

// DatabaseError reports a failed database operation
func DatabaseError(message string, cause error) *AppError {
	return &AppError{Code: CodeDatabaseError, Message: message, Cause: cause}
}

// GenerationFailed reports a failed dataset run
func GenerationFailed(message string, cause error) *AppError {
	return &AppError{Code: CodeGenerationFailed, Message: message, Cause: cause}
}

// ExportFailed reports a failed artifact write
func ExportFailed(message string, cause error) *AppError {
	return &AppError{Code: CodeExportFailed, Message: message, Cause: cause}
}
