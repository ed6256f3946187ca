package twitter

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/oauth2"

	"github.com/grammarpost/grammarpost/config"
	"github.com/grammarpost/grammarpost/pkg/apierror"
	"github.com/grammarpost/grammarpost/pkg/logger"
	"github.com/grammarpost/grammarpost/pkg/telemetry/tracing"
)

const (
	msgMissingOAuth2 = "Twitter OAuth 2.0 client settings are missing in environment variables"
	msgInvalidState  = "Invalid or expired OAuth state"
)

type pendingAuth struct {
	verifier string
	expires  time.Time
}

// Authorizer runs the OAuth 2.0 authorization-code flow with PKCE.
// Each AuthURL call remembers its verifier under a random state until
// Exchange consumes it or it expires. Obtained tokens are not stored.
type Authorizer struct {
	oauth *oauth2.Config
	ttl   time.Duration
	http  *http.Client
	log   logger.Logger
	now   func() time.Time

	mu      sync.Mutex
	pending map[string]pendingAuth
}

// AuthorizerOption configures an Authorizer.
type AuthorizerOption func(*Authorizer)

// WithAuthHTTPClient sets the HTTP client used for the token exchange.
func WithAuthHTTPClient(c *http.Client) AuthorizerOption {
	return func(a *Authorizer) {
		a.http = c
	}
}

// WithAuthLogger sets the logger.
func WithAuthLogger(l logger.Logger) AuthorizerOption {
	return func(a *Authorizer) {
		a.log = l
	}
}

// WithClock sets the time source used for state expiry.
func WithClock(now func() time.Time) AuthorizerOption {
	return func(a *Authorizer) {
		a.now = now
	}
}

// NewAuthorizer creates an Authorizer from the OAuth 2.0 settings of cfg.
func NewAuthorizer(cfg config.TwitterConfig, opts ...AuthorizerOption) *Authorizer {
	a := &Authorizer{
		ttl:     cfg.OAuth2.StateTTL,
		now:     time.Now,
		pending: make(map[string]pendingAuth),
	}
	if cfg.OAuth2.ClientID != "" && cfg.OAuth2.RedirectURL != "" {
		a.oauth = &oauth2.Config{
			ClientID:     cfg.OAuth2.ClientID,
			ClientSecret: cfg.OAuth2.ClientSecret,
			RedirectURL:  cfg.OAuth2.RedirectURL,
			Scopes:       cfg.OAuth2.Scopes,
			Endpoint: oauth2.Endpoint{
				AuthURL:   cfg.OAuth2.AuthURL,
				TokenURL:  cfg.OAuth2.TokenURL,
				AuthStyle: oauth2.AuthStyleInHeader,
			},
		}
	}
	for _, opt := range opts {
		opt(a)
	}
	if a.ttl <= 0 {
		a.ttl = 10 * time.Minute
	}
	if a.http == nil {
		a.http = &http.Client{Timeout: cfg.Timeout}
	}
	a.http = tracing.WrapClient(a.http, providerName)
	if a.log == nil {
		a.log = logger.Global()
	}
	a.log = a.log.With("provider", providerName, "component", "oauth2")
	return a
}

// Configured reports whether client id and redirect URL are set.
func (a *Authorizer) Configured() bool {
	return a.oauth != nil
}

// AuthURL returns a provider authorization URL for a new attempt.
func (a *Authorizer) AuthURL() (string, error) {
	if !a.Configured() {
		return "", &apierror.ConfigurationError{Setting: "twitter.oauth2.client_id", Message: msgMissingOAuth2}
	}

	state := uuid.NewString()
	verifier := oauth2.GenerateVerifier()

	a.mu.Lock()
	a.pruneLocked()
	a.pending[state] = pendingAuth{verifier: verifier, expires: a.now().Add(a.ttl)}
	a.mu.Unlock()

	return a.oauth.AuthCodeURL(state, oauth2.S256ChallengeOption(verifier)), nil
}

// Exchange completes the attempt identified by state with the provider's code.
func (a *Authorizer) Exchange(ctx context.Context, state, code string) (*oauth2.Token, error) {
	if !a.Configured() {
		return nil, &apierror.ConfigurationError{Setting: "twitter.oauth2.client_id", Message: msgMissingOAuth2}
	}

	a.mu.Lock()
	a.pruneLocked()
	p, ok := a.pending[state]
	delete(a.pending, state)
	a.mu.Unlock()

	if !ok {
		return nil, &apierror.ValidationError{Field: "state", Message: msgInvalidState}
	}

	ctx = context.WithValue(ctx, oauth2.HTTPClient, a.http)
	tok, err := a.oauth.Exchange(ctx, code, oauth2.VerifierOption(p.verifier))
	if err != nil {
		a.log.ErrorContext(ctx, "oauth2 code exchange failed", "error", err)
		return nil, fmt.Errorf("exchange authorization code: %w", err)
	}

	a.log.InfoContext(ctx, "oauth2 authorization completed", "expiry", tok.Expiry)
	return tok, nil
}

// Pending returns the number of unexpired authorization attempts.
func (a *Authorizer) Pending() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.pruneLocked()
	return len(a.pending)
}

func (a *Authorizer) pruneLocked() {
	now := a.now()
	for state, p := range a.pending {
		if now.After(p.expires) {
			delete(a.pending, state)
		}
	}
}
