package api

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testSessionJWT(t *testing.T, userID, email string) string {
	t.Helper()
	claims := jwt.MapClaims{
		"user_id": userID,
		"email":   email,
		"exp":     time.Now().Add(time.Hour).Unix(),
	}
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-secret"))
	require.NoError(t, err)
	return tok
}

func TestSessionFromToken(t *testing.T) {
	tok := testSessionJWT(t, "user-1", "pat@example.com")
	expires := time.Now().Add(12 * time.Hour)

	session, err := SessionFromToken(tok, expires)
	require.NoError(t, err)
	assert.Equal(t, "user-1", session.UserID)
	assert.Equal(t, "pat@example.com", session.Email)
	assert.Equal(t, tok, session.Token)
	assert.Equal(t, expires, session.ExpiresAt)
}

func TestSessionFromTokenFallsBackToClaimExpiry(t *testing.T) {
	tok := testSessionJWT(t, "user-1", "pat@example.com")

	session, err := SessionFromToken(tok, time.Time{})
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(time.Hour), session.ExpiresAt, time.Minute)
}

func TestSessionFromTokenGarbage(t *testing.T) {
	_, err := SessionFromToken("not-a-jwt", time.Now())
	assert.Error(t, err)
}
