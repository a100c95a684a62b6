package middleware

import (
	"context"
	"net/http"
	"slices"
	"strings"

	"github.com/ny-kanto/mall-api/pkg/logger"
)

type claimKey int

const (
	userIDKey claimKey = iota
	roleKey
)

// Claims represents the verified identity extracted by the auth middleware.
type Claims struct {
	UserID string `json:"userId"`
	Role   string `json:"role"`
}

// TokenValidator verifies a bearer token and returns its claims. It receives
// the request context so implementations may consult external stores.
type TokenValidator func(ctx context.Context, token string) (*Claims, error)

// Auth rejects requests without a valid bearer token with 401 and stores
// the verified claims in the context otherwise.
func Auth(validate TokenValidator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Header.Get("Authorization") == "" {
				writeError(w, r, http.StatusUnauthorized, "UNAUTHORIZED", "missing authorization header")
				return
			}
			token, ok := BearerToken(r)
			if !ok {
				writeError(w, r, http.StatusUnauthorized, "UNAUTHORIZED", "invalid authorization header format")
				return
			}
			claims, err := validate(r.Context(), token)
			if err != nil {
				writeError(w, r, http.StatusUnauthorized, "UNAUTHORIZED", "invalid or expired token")
				return
			}
			next.ServeHTTP(w, withCaller(r, claims))
		})
	}
}

// OptionalAuth identifies the caller when a valid bearer token is sent and
// lets every other request through anonymously.
func OptionalAuth(validate TokenValidator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if token, ok := BearerToken(r); ok {
				if claims, err := validate(r.Context(), token); err == nil {
					r = withCaller(r, claims)
				}
			}
			next.ServeHTTP(w, r)
		})
	}
}

func withCaller(r *http.Request, c *Claims) *http.Request {
	ctx := logger.WithUserID(WithClaims(r.Context(), c), c.UserID)
	return r.WithContext(ctx)
}

// BearerToken extracts the token of an "Authorization: Bearer <token>"
// header. The scheme is matched case-insensitively.
func BearerToken(r *http.Request) (string, bool) {
	scheme, token, found := strings.Cut(r.Header.Get("Authorization"), " ")
	if !found || !strings.EqualFold(scheme, "bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}

// RequireRole answers 403 unless the caller has one of roles. Mount it
// after Auth.
func RequireRole(roles ...string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !slices.Contains(roles, RoleFromContext(r.Context())) {
				writeError(w, r, http.StatusForbidden, "FORBIDDEN", "insufficient permissions")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// WithClaims stores the caller identity in ctx.
func WithClaims(ctx context.Context, c *Claims) context.Context {
	ctx = context.WithValue(ctx, userIDKey, c.UserID)
	return context.WithValue(ctx, roleKey, c.Role)
}

// UserIDFromContext returns the verified caller's ID, or "".
func UserIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(userIDKey).(string)
	return id
}

// RoleFromContext returns the verified caller's role, or "".
func RoleFromContext(ctx context.Context) string {
	role, _ := ctx.Value(roleKey).(string)
	return role
}
