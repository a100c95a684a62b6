package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/ny-kanto/mall-api/internal/auth"
	"github.com/ny-kanto/mall-api/pkg/httputil"
	"github.com/ny-kanto/mall-api/pkg/middleware"
)

// revokeWithoutExpiry bounds how long tokens lacking an exp claim stay
// denylisted.
const revokeWithoutExpiry = 24 * time.Hour

// SessionHandler handles HTTP requests that end a session.
type SessionHandler struct {
	verifier *auth.Verifier
	logger   *slog.Logger
}

// NewSessionHandler creates a new session HTTP handler.
func NewSessionHandler(verifier *auth.Verifier, logger *slog.Logger) *SessionHandler {
	return &SessionHandler{verifier: verifier, logger: logger}
}

// Logout handles POST /auth/logout. The presented token is rejected from then
// on, until it would have expired anyway.
func (h *SessionHandler) Logout(w http.ResponseWriter, r *http.Request) {
	token, _ := middleware.BearerToken(r)
	if err := h.verifier.Revoke(r.Context(), token, revokeWithoutExpiry); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	h.logger.InfoContext(r.Context(), "session revoked",
		slog.String("user_id", middleware.UserIDFromContext(r.Context())),
	)
	httputil.WriteMessage(w, http.StatusOK, "Déconnexion réussie")
}
