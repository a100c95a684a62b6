package errors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAppError_Error(t *testing.T) {
	assert.Equal(t, "NOT_FOUND: avis not found", (&AppError{Code: "NOT_FOUND", Message: "avis not found"}).Error())
	assert.Equal(t, "INTERNAL_ERROR: an internal error occurred: pg: timeout",
		Internal(errors.New("pg: timeout")).Error())
}

func TestConstructors(t *testing.T) {
	tests := []struct {
		name     string
		err      *AppError
		status   int
		code     string
		message  string
		sentinel error
	}{
		{"not found", NotFound("boutique", "b-1"), http.StatusNotFound, "NOT_FOUND", "boutique with id b-1 not found", ErrNotFound},
		{"invalid input", InvalidInput("note must be between 1 and 5"), http.StatusBadRequest, "INVALID_INPUT", "note must be between 1 and 5", ErrInvalidInput},
		{"forbidden", Forbidden("not your shop"), http.StatusForbidden, "FORBIDDEN", "not your shop", ErrForbidden},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.status, tt.err.Status)
			assert.Equal(t, tt.code, tt.err.Code)
			assert.Equal(t, tt.message, tt.err.Message)
			assert.ErrorIs(t, tt.err, tt.sentinel)
		})
	}
}

func TestInternal_HidesCause(t *testing.T) {
	cause := errors.New("password=hunter2")
	err := Internal(cause)

	assert.Equal(t, "an internal error occurred", err.Message)
	assert.ErrorIs(t, err, cause)
}

func TestFrom(t *testing.T) {
	notFound := NotFound("produit", "p-1")

	tests := []struct {
		name    string
		err     error
		status  int
		code    string
		message string
	}{
		{"app error kept", fmt.Errorf("get produit: %w", notFound), http.StatusNotFound, "NOT_FOUND", notFound.Message},
		{"wrapped not found", fmt.Errorf("get boutique: %w", ErrNotFound), http.StatusNotFound, "NOT_FOUND", "resource not found"},
		{"already exists", ErrAlreadyExists, http.StatusConflict, "ALREADY_EXISTS", "resource already exists"},
		{"invalid input keeps text", fmt.Errorf("%w: minPrice > maxPrice", ErrInvalidInput), http.StatusBadRequest, "INVALID_INPUT", "invalid input: minPrice > maxPrice"},
		{"unauthorized", ErrUnauthorized, http.StatusUnauthorized, "UNAUTHORIZED", "authentication required"},
		{"forbidden", fmt.Errorf("x: %w", ErrForbidden), http.StatusForbidden, "FORBIDDEN", "insufficient permissions"},
		{"unknown", errors.New("pg: connection refused"), http.StatusInternalServerError, "INTERNAL_ERROR", "an internal error occurred"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := From(tt.err)
			require.NotNil(t, got)
			assert.Equal(t, tt.status, got.Status)
			assert.Equal(t, tt.code, got.Code)
			assert.Equal(t, tt.message, got.Message)
			assert.ErrorIs(t, tt.err, got.Err)
		})
	}
}

func TestFrom_AppErrorIdentity(t *testing.T) {
	err := Forbidden("not your shop")
	assert.Same(t, err, From(err))
}
