// Package errors defines the API's error vocabulary: sentinels for the
// repository layer and AppError for failures that carry an HTTP status.
package errors

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	ErrNotFound      = errors.New("resource not found")
	ErrAlreadyExists = errors.New("resource already exists")
	ErrInvalidInput  = errors.New("invalid input")
	ErrUnauthorized  = errors.New("unauthorized")
	ErrForbidden     = errors.New("forbidden")
)

// AppError is an error with a stable code and a client-safe message. Err
// is the underlying cause and is never sent to clients.
type AppError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Status  int    `json:"-"`
	Err     error  `json:"-"`
}

func (e *AppError) Error() string {
	if e.Err == nil {
		return e.Code + ": " + e.Message
	}
	return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
}

func (e *AppError) Unwrap() error { return e.Err }

type kind struct {
	sentinel error
	status   int
	code     string
}

var kinds = []kind{
	{ErrNotFound, http.StatusNotFound, "NOT_FOUND"},
	{ErrAlreadyExists, http.StatusConflict, "ALREADY_EXISTS"},
	{ErrInvalidInput, http.StatusBadRequest, "INVALID_INPUT"},
	{ErrUnauthorized, http.StatusUnauthorized, "UNAUTHORIZED"},
	{ErrForbidden, http.StatusForbidden, "FORBIDDEN"},
}

func newError(sentinel error, message string) *AppError {
	for _, k := range kinds {
		if k.sentinel == sentinel {
			return &AppError{Code: k.code, Message: message, Status: k.status, Err: sentinel}
		}
	}
	panic("errors: unknown sentinel")
}

// NotFound reports a missing resource, e.g. NotFound("boutique", id).
func NotFound(resource, id string) *AppError {
	return newError(ErrNotFound, fmt.Sprintf("%s with id %s not found", resource, id))
}

func InvalidInput(message string) *AppError {
	return newError(ErrInvalidInput, message)
}

func Unauthorized(message string) *AppError {
	return newError(ErrUnauthorized, message)
}

func Forbidden(message string) *AppError {
	return newError(ErrForbidden, message)
}

// Internal hides err behind a generic message.
func Internal(err error) *AppError {
	return &AppError{
		Code:    "INTERNAL_ERROR",
		Message: "an internal error occurred",
		Status:  http.StatusInternalServerError,
		Err:     err,
	}
}

// From converts any error into an AppError. An AppError in the chain is
// returned as is. A wrapped sentinel gets its status and a default message,
// except invalid input which keeps the full error text. Anything else is
// Internal.
func From(err error) *AppError {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	for _, k := range kinds {
		if !errors.Is(err, k.sentinel) {
			continue
		}
		msg := k.sentinel.Error()
		switch k.sentinel {
		case ErrInvalidInput:
			msg = err.Error()
		case ErrUnauthorized:
			msg = "authentication required"
		case ErrForbidden:
			msg = "insufficient permissions"
		}
		return &AppError{Code: k.code, Message: msg, Status: k.status, Err: err}
	}
	return Internal(err)
}
