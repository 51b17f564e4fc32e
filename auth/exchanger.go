package auth

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/oauth2"

	"github.com/taskdeck/taskdeck/api"
)

// HandoffMode selects how the deep-link callback's code becomes a session.
type HandoffMode string

const (
	// HandoffCodeExchange performs a standard OAuth authorization-code
	// exchange against the identity service's token endpoint.
	HandoffCodeExchange HandoffMode = "code-exchange"
	// HandoffSignInToken treats the callback's code as a short-lived sign-in
	// token minted by the hosted web app and redeems it via the identity API.
	HandoffSignInToken HandoffMode = "signin-token"
)

// Exchanger trades a callback's one-time code for a session. Exactly one
// hand-off mode is active per bridge. The code is single-use on the server
// side, so the exchange is never retried: a failed call fails the attempt and
// the user starts over.
type Exchanger struct {
	cfg      Config
	identity api.IdentityClient
}

func NewExchanger(cfg Config, identity api.IdentityClient) *Exchanger {
	return &Exchanger{cfg: cfg, identity: identity}
}

func (x *Exchanger) Exchange(ctx context.Context, provider Provider, code string) (*api.Session, error) {
	if x.cfg.Handoff == HandoffSignInToken {
		return x.redeemSignInToken(ctx, code)
	}
	return x.exchangeCode(ctx, provider, code)
}

func (x *Exchanger) exchangeCode(ctx context.Context, provider Provider, code string) (*api.Session, error) {
	if x.cfg.HTTPClient != nil {
		ctx = context.WithValue(ctx, oauth2.HTTPClient, x.cfg.HTTPClient)
	}
	tok, err := x.cfg.oauthConfig(provider).Exchange(ctx, code)
	if err != nil {
		var rerr *oauth2.RetrieveError
		if errors.As(err, &rerr) && rerr.ErrorCode != "" {
			return nil, &ProviderError{Code: rerr.ErrorCode, Description: rerr.ErrorDescription}
		}
		return nil, fmt.Errorf("%w: %v", ErrNetwork, err)
	}
	session, err := api.SessionFromToken(tok.AccessToken, tok.Expiry)
	if err != nil {
		return nil, fmt.Errorf("decoding session token: %w", err)
	}
	return session, nil
}

func (x *Exchanger) redeemSignInToken(ctx context.Context, token string) (*api.Session, error) {
	session, err := x.identity.RedeemSignInToken(ctx, token)
	if err != nil {
		if errors.Is(err, api.ErrUnauthorized) {
			// the sign-in token was already redeemed or has lapsed
			return nil, ErrExpiredRequest
		}
		return nil, fmt.Errorf("%w: %v", ErrNetwork, err)
	}
	return session, nil
}
