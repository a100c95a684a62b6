// Package auth verifies the HS256 access tokens issued to mall accounts.
package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/ny-kanto/mall-api/internal/domain"
	"github.com/ny-kanto/mall-api/pkg/middleware"
)

var (
	ErrInvalidToken = errors.New("invalid token")
	ErrRevokedToken = errors.New("token revoked")
)

// Denylist is consulted for tokens revoked before they expire.
type Denylist interface {
	Revoke(ctx context.Context, token string, expiresAt time.Time) error
	IsRevoked(ctx context.Context, token string) (bool, error)
}

// TokenClaims is the payload carried by access tokens.
type TokenClaims struct {
	UserID string `json:"userId"`
	Role   string `json:"role"`
	jwt.RegisteredClaims
}

// Verifier checks signatures, expiry and revocation of access tokens.
type Verifier struct {
	secret   []byte
	denylist Denylist
	parser   *jwt.Parser
}

// NewVerifier creates a verifier for tokens signed with secret. denylist
// may be nil, in which case revocation is not checked.
func NewVerifier(secret string, denylist Denylist) *Verifier {
	return &Verifier{
		secret:   []byte(secret),
		denylist: denylist,
		parser:   jwt.NewParser(jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()})),
	}
}

func (v *Verifier) parse(token string) (*TokenClaims, error) {
	claims := &TokenClaims{}
	_, err := v.parser.ParseWithClaims(token, claims, func(*jwt.Token) (any, error) {
		return v.secret, nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if claims.UserID == "" || !domain.IsValidRole(claims.Role) {
		return nil, fmt.Errorf("%w: missing identity", ErrInvalidToken)
	}
	if err := uuid.Validate(claims.UserID); err != nil {
		return nil, fmt.Errorf("%w: user id: %v", ErrInvalidToken, err)
	}
	return claims, nil
}

// Validate implements middleware.TokenValidator.
func (v *Verifier) Validate(ctx context.Context, token string) (*middleware.Claims, error) {
	claims, err := v.parse(token)
	if err != nil {
		return nil, err
	}

	if v.denylist != nil {
		revoked, err := v.denylist.IsRevoked(ctx, token)
		if err != nil {
			return nil, fmt.Errorf("check revocation: %w", err)
		}
		if revoked {
			return nil, ErrRevokedToken
		}
	}

	return &middleware.Claims{UserID: claims.UserID, Role: claims.Role}, nil
}

// Revoke denylists a valid token until it expires. Tokens without an expiry
// are kept for maxAge.
func (v *Verifier) Revoke(ctx context.Context, token string, maxAge time.Duration) error {
	claims, err := v.parse(token)
	if err != nil {
		return err
	}
	if v.denylist == nil {
		return nil
	}

	expiresAt := time.Now().Add(maxAge)
	if claims.ExpiresAt != nil {
		expiresAt = claims.ExpiresAt.Time
	}
	return v.denylist.Revoke(ctx, token, expiresAt)
}

// Sign issues a token for the given identity. Used by tooling and tests;
// account login lives in a separate service.
func Sign(secret, userID, role string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := TokenClaims{
		UserID: userID,
		Role:   role,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
}
