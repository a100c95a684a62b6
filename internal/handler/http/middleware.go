package http

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/ny-kanto/mall-api/internal/service"
	"github.com/ny-kanto/mall-api/pkg/httputil"
	"github.com/ny-kanto/mall-api/pkg/middleware"
	"github.com/ny-kanto/mall-api/pkg/validator"
)

// maxBodyBytes caps request bodies at 1MB.
const maxBodyBytes = 1 << 20

// ContentTypeJSON enforces that POST and PUT bodies are sent as application/json.
func ContentTypeJSON(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hasBody := r.Method == http.MethodPost || r.Method == http.MethodPut
		if hasBody && r.ContentLength != 0 && !strings.HasPrefix(r.Header.Get("Content-Type"), "application/json") {
			httputil.WriteJSON(w, http.StatusUnsupportedMediaType, httputil.Response{
				Code:    "UNSUPPORTED_MEDIA_TYPE",
				Message: "Content-Type must be application/json",
			})
			return
		}
		next.ServeHTTP(w, r)
	})
}

// decodeBody decodes and validates a JSON body into dst. An empty body decodes
// to the zero value. On failure the response is written and false returned.
func decodeBody(w http.ResponseWriter, r *http.Request, dst any, logger *slog.Logger) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)

	if err := json.NewDecoder(r.Body).Decode(dst); err != nil && !errors.Is(err, io.EOF) {
		httputil.WriteBadRequest(w, r, "invalid request body: "+err.Error())
		return false
	}
	if err := validator.Validate(dst); err != nil {
		httputil.WriteError(w, r, err, logger)
		return false
	}
	return true
}

// callerFrom returns the authenticated identity of r.
func callerFrom(r *http.Request) service.Caller {
	return service.Caller{
		UserID: middleware.UserIDFromContext(r.Context()),
		Role:   middleware.RoleFromContext(r.Context()),
	}
}
