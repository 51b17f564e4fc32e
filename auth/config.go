package auth

import (
	"fmt"
	"net/http"
	"time"

	"golang.org/x/oauth2"

	"github.com/taskdeck/taskdeck/app"
)

const (
	// DefaultTTL is the browser-handoff window. It is minutes, not seconds:
	// the user has to interact with the provider's consent pages.
	DefaultTTL = 5 * time.Minute
	// DefaultTimeout is the initiator's client-side timeout, kept independent
	// of (and longer than) the registry TTL so a lost expiry event cannot
	// leave a caller hanging.
	DefaultTimeout = 6 * time.Minute
	// DefaultGrace is how long the channel holds a terminal event for a
	// subscriber that attaches just after the transition.
	DefaultGrace = 30 * time.Second
)

// Config configures the desktop authentication bridge.
type Config struct {
	// StartURL is the hosted start page that begins the provider's redirect
	// flow. It receives the provider and the correlation id (as state) and,
	// on completion, redirects to the deep-link callback.
	StartURL string
	// TokenURL is the identity service's code-exchange endpoint. Only
	// required in HandoffCodeExchange mode.
	TokenURL string
	// ClientID identifies the desktop client to the identity service.
	ClientID string
	// RedirectURL is the deep-link callback the provider flow returns to.
	// Defaults to taskdeck://oauth/callback.
	RedirectURL string
	// Handoff selects the exchange shape. Defaults to HandoffCodeExchange.
	Handoff HandoffMode
	// Overrides repoints endpoints per provider (see LoadProviderOverrides).
	Overrides map[Provider]ProviderOverride

	// TTL, Timeout, and Grace default to DefaultTTL, DefaultTimeout, and
	// DefaultGrace respectively.
	TTL     time.Duration
	Timeout time.Duration
	Grace   time.Duration

	// HTTPClient is used for the code exchange. Defaults to http.DefaultClient.
	HTTPClient *http.Client
}

func (c Config) withDefaults() Config {
	if c.RedirectURL == "" {
		c.RedirectURL = app.Scheme + "://oauth/callback"
	}
	if c.Handoff == "" {
		c.Handoff = HandoffCodeExchange
	}
	if c.TTL <= 0 {
		c.TTL = DefaultTTL
	}
	if c.Timeout <= 0 {
		c.Timeout = DefaultTimeout
	}
	if c.Grace <= 0 {
		c.Grace = DefaultGrace
	}
	return c
}

func (c Config) validate() error {
	if c.StartURL == "" {
		return fmt.Errorf("%w: start URL", ErrConfiguration)
	}
	if c.ClientID == "" {
		return fmt.Errorf("%w: client id", ErrConfiguration)
	}
	if c.Handoff == HandoffCodeExchange && c.TokenURL == "" {
		return fmt.Errorf("%w: token URL", ErrConfiguration)
	}
	return nil
}

// oauthConfig builds the oauth2 configuration for a provider, applying any
// per-provider endpoint overrides.
func (c Config) oauthConfig(provider Provider) *oauth2.Config {
	startURL, tokenURL, clientID := c.StartURL, c.TokenURL, c.ClientID
	if o, ok := c.Overrides[provider]; ok {
		if o.StartURL != "" {
			startURL = o.StartURL
		}
		if o.TokenURL != "" {
			tokenURL = o.TokenURL
		}
		if o.ClientID != "" {
			clientID = o.ClientID
		}
	}
	return &oauth2.Config{
		ClientID:    clientID,
		RedirectURL: c.RedirectURL,
		Endpoint: oauth2.Endpoint{
			AuthURL:   startURL,
			TokenURL:  tokenURL,
			AuthStyle: oauth2.AuthStyleInParams,
		},
	}
}

// authCodeURL builds the URL the system browser is opened at. The correlation
// id rides along as the opaque state parameter so the eventual callback can
// be matched to this attempt.
func (c Config) authCodeURL(provider Provider, correlationID string) string {
	conf := c.oauthConfig(provider)
	return conf.AuthCodeURL(correlationID, oauth2.SetAuthURLParam("provider", provider.String()))
}
