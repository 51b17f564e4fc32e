package api

import (
	"context"
	"time"
)

// IdentityClient talks to the backend identity service.
type IdentityClient interface {
	// CreateSignInToken mints a short-lived, single-use sign-in token for the
	// current session. Fails with ErrUnauthorized when no session is held.
	CreateSignInToken(ctx context.Context) (*SignInToken, error)
	// RedeemSignInToken trades a sign-in token for a full session. The token
	// is consumed whether or not the call succeeds.
	RedeemSignInToken(ctx context.Context, token string) (*Session, error)
	// SignOut invalidates the current session on the backend.
	SignOut(ctx context.Context) error
}

type identityClient struct {
	wc *webClient
}

type redeemRequest struct {
	Token string `json:"token"`
}

type sessionResponse struct {
	SessionToken string    `json:"sessionToken"`
	ExpiresAt    time.Time `json:"expiresAt"`
}

func (c *identityClient) CreateSignInToken(ctx context.Context) (*SignInToken, error) {
	var resp SignInToken
	req := c.wc.NewRequest(nil, nil, nil)
	if err := c.wc.Post(ctx, "/oauth/create-signin-token", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *identityClient) RedeemSignInToken(ctx context.Context, token string) (*Session, error) {
	var resp sessionResponse
	req := c.wc.NewRequest(nil, nil, redeemRequest{Token: token})
	if err := c.wc.Post(ctx, "/oauth/redeem-signin-token", req, &resp); err != nil {
		return nil, err
	}
	return SessionFromToken(resp.SessionToken, resp.ExpiresAt)
}

func (c *identityClient) SignOut(ctx context.Context) error {
	req := c.wc.NewRequest(nil, nil, nil)
	return c.wc.Post(ctx, "/users/logout", req, nil)
}
