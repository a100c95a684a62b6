package httputil

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	apperrors "github.com/ny-kanto/mall-api/pkg/errors"
	"github.com/ny-kanto/mall-api/pkg/logger"
	"github.com/ny-kanto/mall-api/pkg/validator"
)

// Response is the JSON envelope returned by every endpoint.
type Response struct {
	Success    bool              `json:"success"`
	Data       any               `json:"data,omitempty"`
	Message    string            `json:"message,omitempty"`
	Pagination any               `json:"pagination,omitempty"`
	Count      *int              `json:"count,omitempty"`
	Code       string            `json:"code,omitempty"`
	Fields     map[string]string `json:"fields,omitempty"`
	RequestID  string            `json:"request_id,omitempty"`
}

// WriteJSON writes a JSON response with the given status code.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	// Headers are already sent; nothing meaningful can be done if encoding fails.
	_ = json.NewEncoder(w).Encode(v)
}

// WriteData writes a successful envelope around data.
func WriteData(w http.ResponseWriter, status int, data any) {
	WriteJSON(w, status, Response{Success: true, Data: data})
}

// WriteMessage writes a successful envelope carrying only a message.
func WriteMessage(w http.ResponseWriter, status int, message string) {
	WriteJSON(w, status, Response{Success: true, Message: message})
}

// WritePage writes a successful listing envelope.
func WritePage(w http.ResponseWriter, data, pagination any) {
	WriteJSON(w, http.StatusOK, Response{Success: true, Data: data, Pagination: pagination})
}

// WriteList writes a successful envelope around an unpaginated result set
// together with its size.
func WriteList(w http.ResponseWriter, items any, count int) {
	WriteJSON(w, http.StatusOK, Response{Success: true, Data: items, Count: &count})
}

// WriteError writes a failure envelope derived from err. Internal errors are
// logged with their cause and answered with a generic message. The
// request-scoped logger is preferred over fallback.
func WriteError(w http.ResponseWriter, r *http.Request, err error, fallback *slog.Logger) {
	l := logger.FromContext(r.Context())
	if l == slog.Default() && fallback != nil {
		l = fallback
	}
	requestID := logger.CorrelationIDFromContext(r.Context())

	var valErr *validator.ValidationError
	if errors.As(err, &valErr) {
		WriteJSON(w, http.StatusBadRequest, Response{
			Code:      "VALIDATION_ERROR",
			Message:   "request validation failed",
			Fields:    valErr.Fields(),
			RequestID: requestID,
		})
		return
	}

	appErr := apperrors.From(err)
	if appErr.Status >= http.StatusInternalServerError {
		logInternal(l, r, err)
	}
	WriteJSON(w, appErr.Status, Response{Code: appErr.Code, Message: appErr.Message, RequestID: requestID})
}

func logInternal(l *slog.Logger, r *http.Request, err error) {
	l.ErrorContext(r.Context(), "internal error",
		slog.String("error", err.Error()),
		slog.String("method", r.Method),
		slog.String("path", r.URL.Path),
	)
}

// WriteBadRequest writes a 400 for a body that could not be decoded.
func WriteBadRequest(w http.ResponseWriter, r *http.Request, message string) {
	WriteJSON(w, http.StatusBadRequest, Response{
		Code:      "INVALID_INPUT",
		Message:   message,
		RequestID: logger.CorrelationIDFromContext(r.Context()),
	})
}

// ParseUUID validates that param is a UUID. On failure it writes a 400 and
// returns false, signaling the caller to return early.
func ParseUUID(w http.ResponseWriter, param string) (uuid.UUID, bool) {
	id, err := uuid.Parse(param)
	if err != nil {
		WriteJSON(w, http.StatusBadRequest, Response{
			Code:    "INVALID_PARAMETER",
			Message: "invalid id: " + param,
		})
		return uuid.Nil, false
	}
	return id, true
}
