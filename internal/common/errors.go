package common

import "errors"

// Stable error codes surfaced in API responses.
const (
	CodeValidation        = "VALIDATION"
	CodeNotFound          = "NOT_FOUND"
	CodeInsufficientStock = "INSUFFICIENT_STOCK"
	CodeConflict          = "CONFLICT"
	CodeInternal          = "INTERNAL"
)

// AppError represents an error with an attached code and HTTP status.
type AppError struct {
	Code       string
	Message    string
	HTTPStatus int
	Err        error
	Details    any
}

// Error implements the error interface.
func (e *AppError) Error() string {
	if e == nil {
		return ""
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return e.Message
}

// Unwrap allows errors.Is/As to inspect the underlying error.
func (e *AppError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// NewAppError constructs an AppError.
func NewAppError(code, message string, status int, err error) *AppError {
	return &AppError{Code: code, Message: message, HTTPStatus: status, Err: err}
}

// ValidationError builds a 400 AppError carrying optional details.
func ValidationError(message string, details any) *AppError {
	return &AppError{Code: CodeValidation, Message: message, HTTPStatus: 400, Details: details}
}

// NotFoundError builds a 404 AppError.
func NotFoundError(message string) *AppError {
	return &AppError{Code: CodeNotFound, Message: message, HTTPStatus: 404}
}

// ConflictError builds a 409 AppError for lost row races. Callers should
// retry the whole operation rather than patch around it.
func ConflictError(message string, err error) *AppError {
	return &AppError{Code: CodeConflict, Message: message, HTTPStatus: 409, Err: err}
}

// InsufficientStockError builds a 409 AppError listing the offending lines.
func InsufficientStockError(message string, details any) *AppError {
	return &AppError{Code: CodeInsufficientStock, Message: message, HTTPStatus: 409, Details: details}
}

// IsAppError checks whether the error is an AppError.
func IsAppError(err error) bool {
	var target *AppError
	return errors.As(err, &target)
}

// AsAppError extracts an AppError if present.
func AsAppError(err error) (*AppError, bool) {
	var target *AppError
	if errors.As(err, &target) {
		return target, true
	}
	return nil, false
}
