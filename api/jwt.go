package api

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

type sessionClaims struct {
	UserID string `json:"user_id"`
	Email  string `json:"email"`
	jwt.RegisteredClaims
}

// SessionFromToken builds a Session from a backend-issued session JWT. The
// token is decoded without verification: the backend is the issuer and the
// secure channel is the trust boundary; claims are used for display only.
func SessionFromToken(tokenStr string, expiresAt time.Time) (*Session, error) {
	claims := &sessionClaims{}
	if _, _, err := new(jwt.Parser).ParseUnverified(tokenStr, claims); err != nil {
		return nil, fmt.Errorf("decoding session token: %w", err)
	}
	if expiresAt.IsZero() && claims.ExpiresAt != nil {
		expiresAt = claims.ExpiresAt.Time
	}
	return &Session{
		Token:     tokenStr,
		ExpiresAt: expiresAt,
		UserID:    claims.UserID,
		Email:     claims.Email,
	}, nil
}
