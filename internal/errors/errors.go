package errors

import (
	stderrors "errors"
	"fmt"
)

// Locator pins a parse failure to a place in the input. Zero fields are
// unknown.
type Locator struct {
	Row    int   `json:"row,omitempty"`
	Column int   `json:"column,omitempty"`
	Offset int64 `json:"offset,omitempty"`
}

func (l Locator) String() string {
	switch {
	case l.Row > 0 && l.Column > 0:
		return fmt.Sprintf("row %d, column %d (byte %d)", l.Row, l.Column, l.Offset)
	case l.Row > 0:
		return fmt.Sprintf("row %d (byte %d)", l.Row, l.Offset)
	default:
		return fmt.Sprintf("byte %d", l.Offset)
	}
}

// AppError represents a structured application error
type AppError struct {
	Code    string
	Message string
	Cause   error
	Locator *Locator
}

func (e *AppError) Error() string {
	msg := e.Message
	if e.Locator != nil {
		msg = fmt.Sprintf("%s at %s", msg, e.Locator)
	}
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", msg, e.Cause)
	}
	return msg
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

// New creates a new AppError
func New(code, message string) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
	}
}

// Wrap wraps an error with additional context, keeping the code of the
// innermost AppError
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return &AppError{
			Code:    appErr.Code,
			Message: message,
			Cause:   err,
		}
	}
	return &AppError{
		Code:    CodeInternalError,
		Message: message,
		Cause:   err,
	}
}

// Wrapf wraps an error with formatted additional context
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return Wrap(err, fmt.Sprintf(format, args...))
}

// WithCode adds an error code to an existing error
func WithCode(code string, err error) error {
	if err == nil {
		return nil
	}
	if appErr, ok := err.(*AppError); ok {
		return &AppError{
			Code:    code,
			Message: appErr.Message,
			Cause:   appErr.Cause,
			Locator: appErr.Locator,
		}
	}
	return &AppError{
		Code:    code,
		Message: err.Error(),
		Cause:   err,
	}
}

// IsAppError checks if an error is an AppError
func IsAppError(err error) bool {
	var appErr *AppError
	return stderrors.As(err, &appErr)
}

// GetCode returns the code of the outermost AppError in the chain, or
// "UNKNOWN"
func GetCode(err error) string {
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr.Code
	}
	return "UNKNOWN"
}

// HasCode reports whether err carries the given code
func HasCode(err error, code string) bool {
	return GetCode(err) == code
}

// GetLocator returns the first locator found in the chain
func GetLocator(err error) *Locator {
	for err != nil {
		if appErr, ok := err.(*AppError); ok && appErr.Locator != nil {
			return appErr.Locator
		}
		err = stderrors.Unwrap(err)
	}
	return nil
}

// Predefined error codes
const (
	CodeConfigInvalid     = "CONFIG_INVALID"
	CodeDatabaseError     = "DATABASE_ERROR"
	CodeNotFound          = "NOT_FOUND"
	CodeForbidden         = "FORBIDDEN"
	CodeUnauthorized      = "UNAUTHORIZED"
	CodeInternalError     = "INTERNAL_ERROR"
	CodeExternalService   = "EXTERNAL_SERVICE_ERROR"
	CodeInvalidInput      = "INVALID_INPUT"
	CodeUnsupportedFormat = "UNSUPPORTED_FORMAT"
	CodeSizeExceeded      = "SIZE_EXCEEDED"
	CodeParseError        = "PARSE_ERROR"
	CodeQuotaExceeded     = "QUOTA_EXCEEDED"
)

// Common error constructors
func ConfigInvalid(message string) *AppError {
	return New(CodeConfigInvalid, message)
}

func DatabaseError(message string, cause error) *AppError {
	return &AppError{Code: CodeDatabaseError, Message: message, Cause: cause}
}

func NotFound(resource string) *AppError {
	return New(CodeNotFound, fmt.Sprintf("%s not found", resource))
}

func Forbidden(message string) *AppError {
	return New(CodeForbidden, message)
}

func Unauthorized(message string) *AppError {
	return New(CodeUnauthorized, message)
}

func InternalError(message string) *AppError {
	return New(CodeInternalError, message)
}

func ExternalServiceError(service string, cause error) *AppError {
	return &AppError{
		Code:    CodeExternalService,
		Message: fmt.Sprintf("%s service error", service),
		Cause:   cause,
	}
}

func InvalidInput(message string) *AppError {
	return New(CodeInvalidInput, message)
}

func UnsupportedFormat(filename string) *AppError {
	return New(CodeUnsupportedFormat, fmt.Sprintf("unsupported file format: %q", filename))
}

func SizeExceeded(size, limit int64) *AppError {
	return New(CodeSizeExceeded, fmt.Sprintf("file size %d bytes exceeds limit of %d bytes", size, limit))
}

func QuotaExceeded() *AppError {
	return New(CodeQuotaExceeded, "upload quota exhausted for the current plan")
}

// ParseError reports malformed content for the declared format
func ParseError(format string, loc Locator, cause error) *AppError {
	return &AppError{
		Code:    CodeParseError,
		Message: fmt.Sprintf("failed to parse %s", format),
		Cause:   cause,
		Locator: &loc,
	}
}
