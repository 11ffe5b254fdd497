package apierr

import (
	"errors"
	"fmt"
	"net/http"
)

// Stable error codes surfaced in API responses.
const (
	CodeValidation       = "validation_error"
	CodeNotFound         = "not_found"
	CodeGenerationFailed = "generation_failed"
	CodeSaveFailed       = "save_failed"
	CodeInternal         = "internal_error"
)

// Error carries an HTTP status and a stable code alongside the cause.
type Error struct {
	Status  int
	Code    string
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if e.Err != nil {
		if e.Message != "" {
			return fmt.Sprintf("%s: %v", e.Message, e.Err)
		}
		return e.Err.Error()
	}
	if e.Message != "" {
		return e.Message
	}
	if e.Code != "" {
		return e.Code
	}
	return fmt.Sprintf("api error (%d)", e.Status)
}

func (e *Error) Unwrap() error { return e.Err }

func New(status int, code, message string, err error) *Error {
	return &Error{Status: status, Code: code, Message: message, Err: err}
}

func Validation(message string) *Error {
	return New(http.StatusBadRequest, CodeValidation, message, nil)
}

func NotFound(message string) *Error {
	return New(http.StatusNotFound, CodeNotFound, message, nil)
}

func GenerationFailed(message string, err error) *Error {
	return New(http.StatusInternalServerError, CodeGenerationFailed, message, err)
}

func SaveFailed(message string, err error) *Error {
	return New(http.StatusInternalServerError, CodeSaveFailed, message, err)
}

// From returns err as an *Error, wrapping unknown errors as a 500.
func From(err error) *Error {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr
	}
	return New(http.StatusInternalServerError, CodeInternal, "", err)
}
