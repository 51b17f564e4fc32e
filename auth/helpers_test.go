package auth

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"

	"github.com/taskdeck/taskdeck/api"
)

// testJWT mints a decodable session token. Signature is irrelevant: sessions
// are decoded unverified on the client.
func testJWT(t *testing.T, userID, email string) string {
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

type fakeIdentity struct {
	mu       sync.Mutex
	redeemed []string
	session  *api.Session
	err      error
}

func (f *fakeIdentity) CreateSignInToken(context.Context) (*api.SignInToken, error) {
	return nil, api.ErrUnauthorized
}

func (f *fakeIdentity) RedeemSignInToken(_ context.Context, token string) (*api.Session, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.redeemed = append(f.redeemed, token)
	if f.err != nil {
		return nil, f.err
	}
	return f.session, nil
}

func (f *fakeIdentity) SignOut(context.Context) error { return nil }

type fakeApplier struct {
	mu       sync.Mutex
	sessions []*api.Session
	err      error
}

func (f *fakeApplier) Apply(_ context.Context, session *api.Session) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.sessions = append(f.sessions, session)
	return nil
}

func (f *fakeApplier) applied() []*api.Session {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]*api.Session(nil), f.sessions...)
}
