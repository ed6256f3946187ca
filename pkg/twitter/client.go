// Package twitter is a client for the Twitter/X API v2. Tweets are posted
// with OAuth 1.0a user credentials; lookups use an app bearer token.
package twitter

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/dghubble/oauth1"
	"golang.org/x/oauth2"

	"github.com/grammarpost/grammarpost/config"
	"github.com/grammarpost/grammarpost/pkg/apierror"
	"github.com/grammarpost/grammarpost/pkg/logger"
	"github.com/grammarpost/grammarpost/pkg/metrics"
	"github.com/grammarpost/grammarpost/pkg/telemetry/tracing"
)

const (
	providerName = "twitter"

	operationCreate = "create_tweet"
	operationLookup = "lookup_tweet"

	maxResponseBytes = 1 << 20

	msgMissingCredentials = "Twitter OAuth credentials are missing in environment variables"
	msgMissingBearer      = "Twitter bearer token is missing in environment variables"
)

// Recorder receives provider call metrics. *metrics.Manager implements it.
type Recorder interface {
	RecordProviderCall(ctx context.Context, provider, operation, outcome string, duration time.Duration)
	RecordTweet(outcome string, length int)
}

// Client talks to the Twitter API. The signed sessions are built once in
// NewClient; the Client is immutable afterwards and safe for concurrent use.
type Client struct {
	baseURL string
	log     logger.Logger
	metrics Recorder

	// user is the OAuth 1.0a session, nil when credentials are missing.
	user *http.Client
	// app is the bearer token session, nil without a bearer token.
	app *http.Client

	base *http.Client
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient sets the base HTTP client. Its transport is wrapped for
// tracing and signing.
func WithHTTPClient(c *http.Client) Option {
	return func(cl *Client) {
		cl.base = c
	}
}

// WithLogger sets the logger.
func WithLogger(l logger.Logger) Option {
	return func(cl *Client) {
		cl.log = l
	}
}

// WithMetrics sets the metrics recorder.
func WithMetrics(r Recorder) Option {
	return func(cl *Client) {
		cl.metrics = r
	}
}

// NewClient creates a Twitter client from cfg. Missing credentials are not
// an error here; the first call that needs them fails.
func NewClient(cfg config.TwitterConfig, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.log == nil {
		c.log = logger.Global()
	}
	if c.metrics == nil {
		c.metrics = metrics.NoOpManager()
	}
	if c.base == nil {
		c.base = &http.Client{Timeout: cfg.Timeout}
	}
	c.base = tracing.WrapClient(c.base, providerName)
	c.log = c.log.With("provider", providerName)

	// Both libraries read the base client from the context.
	ctx := context.WithValue(context.Background(), oauth1.HTTPClient, c.base)
	ctx = context.WithValue(ctx, oauth2.HTTPClient, c.base)

	if hasOAuth1(cfg) {
		c.user = oauth1.NewConfig(cfg.ConsumerKey, cfg.ConsumerSecret).
			Client(ctx, oauth1.NewToken(cfg.AccessToken, cfg.AccessSecret))
		c.user.Timeout = c.base.Timeout
	}
	if cfg.BearerToken != "" {
		c.app = oauth2.NewClient(ctx, oauth2.StaticTokenSource(&oauth2.Token{
			AccessToken: cfg.BearerToken,
			TokenType:   "Bearer",
		}))
		c.app.Timeout = c.base.Timeout
	}

	return c
}

func hasOAuth1(cfg config.TwitterConfig) bool {
	return cfg.ConsumerKey != "" && cfg.ConsumerSecret != "" &&
		cfg.AccessToken != "" && cfg.AccessSecret != ""
}

// CanPost reports whether the OAuth 1.0a credentials are present.
func (c *Client) CanPost() bool {
	return c.user != nil
}

// CanLookup reports whether the bearer token is present.
func (c *Client) CanLookup() bool {
	return c.app != nil
}

// CreateTweet publishes text. Callers validate the length beforehand.
func (c *Client) CreateTweet(ctx context.Context, text string) (*Tweet, error) {
	if !c.CanPost() {
		err := &apierror.ConfigurationError{Setting: "twitter.consumer_key", Message: msgMissingCredentials}
		c.log.ErrorContext(ctx, "tweet posting not configured", "error", err)
		c.metrics.RecordTweet(apierror.Kind(err), 0)
		return nil, err
	}

	ctx, span := tracing.Tracer().Start(ctx, "twitter.CreateTweet")
	defer span.End()

	c.log.InfoContext(ctx, "attempting to tweet", "length", utf8.RuneCountInString(text))

	start := time.Now()
	var out createTweetResponse
	err := c.do(ctx, c.user, http.MethodPost, "/2/tweets", createTweetRequest{Text: text}, &out)
	if err == nil && out.Data == nil {
		err = &apierror.ProviderLogicError{
			Provider: providerName,
			Message:  "Twitter API returned no tweet data",
		}
	}
	err = mapError(err)
	outcome := c.finish(ctx, operationCreate, start, err)
	c.metrics.RecordTweet(outcome, utf8.RuneCountInString(text))
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	c.log.InfoContext(ctx, "tweet created", "tweet_id", out.Data.ID)
	return out.Data, nil
}

// LookupTweet fetches one tweet with its author expanded.
func (c *Client) LookupTweet(ctx context.Context, id string) (*LookupResult, error) {
	if !c.CanLookup() {
		err := &apierror.ConfigurationError{Setting: "twitter.bearer_token", Message: msgMissingBearer}
		c.log.ErrorContext(ctx, "tweet lookup not configured", "error", err)
		return nil, err
	}

	ctx, span := tracing.Tracer().Start(ctx, "twitter.LookupTweet")
	defer span.End()

	query := url.Values{
		"expansions":   {"author_id"},
		"tweet.fields": {"created_at,public_metrics,author_id"},
		"user.fields":  {"username,name"},
	}
	path := "/2/tweets/" + url.PathEscape(id) + "?" + query.Encode()

	start := time.Now()
	var out lookupResponse
	err := c.do(ctx, c.app, http.MethodGet, path, nil, &out)
	if err == nil && out.Data == nil {
		// A 200 without data carries the reason in "errors".
		respErr := &ResponseError{Code: http.StatusNotFound, Errors: out.Errors}
		if b, mErr := json.Marshal(out.Errors); mErr == nil {
			respErr.Data = b
		}
		err = respErr
	}
	err = mapError(err)
	c.finish(ctx, operationLookup, start, err)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	return &LookupResult{Tweet: *out.Data, Includes: out.Includes}, nil
}

// finish logs a failed call and records its metrics. It returns the outcome label.
func (c *Client) finish(ctx context.Context, operation string, start time.Time, err error) string {
	outcome := metrics.OutcomeSuccess
	if err != nil {
		outcome = apierror.Kind(err)
		attrs := []any{
			"operation", operation,
			"error", err,
			"kind", outcome,
			"status", apierror.StatusCode(err, 0),
		}
		c.log.ErrorContext(ctx, "twitter call failed", append(attrs, rateLimitAttrs(err)...)...)
	}
	c.metrics.RecordProviderCall(ctx, providerName, operation, outcome, time.Since(start))
	return outcome
}

// rateLimitAttrs reports the x-rate-limit-* headers of a 429 or 403 answer.
func rateLimitAttrs(err error) []any {
	var respErr *ResponseError
	if !errors.As(err, &respErr) || respErr.RateLimit == nil {
		return nil
	}
	if respErr.Code != http.StatusTooManyRequests && respErr.Code != http.StatusForbidden {
		return nil
	}
	rl := respErr.RateLimit
	attrs := []any{"rate_limit_limit", rl.Limit, "rate_limit_remaining", rl.Remaining}
	if !rl.Reset.IsZero() {
		attrs = append(attrs, "rate_limit_reset", rl.Reset.Format(time.RFC3339))
	}
	return attrs
}

// do sends one request with the given session and decodes a 2xx JSON body into out.
func (c *Client) do(ctx context.Context, session *http.Client, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")

	resp, err := session.Do(req)
	if err != nil {
		return fmt.Errorf("call twitter api: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return newResponseError(resp, raw)
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
