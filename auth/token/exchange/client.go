// Package exchange implements the client side of the JWT bearer grant:
// signed assertions are posted to a token endpoint and traded for access tokens.
package exchange

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/jonboulle/clockwork"
	"go.uber.org/zap"

	"github.com/sheetlinks/sheetlinks/auth"
)

// DefaultTimeout bounds a token exchange when no HTTP client is provided.
const DefaultTimeout = 10 * time.Second

// maxResponseSize caps how much of a token endpoint response is read.
const maxResponseSize = 1 << 20

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int64  `json:"expires_in"`
}

// Client exchanges signed assertions for bearer tokens.
type Client struct {
	httpClient *http.Client

	clock  clockwork.Clock
	logger *zap.Logger
}

// Option configures a Client.
type Option func(c *Client)

// WithHTTPClient sets the HTTP client used to reach the token endpoint.
func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

// WithClock sets the clock used to stamp issued tokens.
func WithClock(clock clockwork.Clock) Option {
	return func(c *Client) {
		c.clock = clock
	}
}

// WithLogger sets the logger of the client.
func WithLogger(logger *zap.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

// NewClient returns a new Client.
func NewClient(opts ...Option) Client {
	c := Client{}

	for _, opt := range opts {
		opt(&c)
	}

	if c.httpClient == nil {
		c.httpClient = &http.Client{Timeout: DefaultTimeout}
	}

	if c.clock == nil {
		c.clock = clockwork.NewRealClock()
	}

	if c.logger == nil {
		c.logger = zap.NewNop()
	}

	return c
}

// Exchange implements auth.TokenExchanger.
func (c Client) Exchange(ctx context.Context, assertion auth.SignedAssertion, tokenEndpoint string) (auth.BearerToken, error) {
	form := url.Values{}
	form.Set("grant_type", auth.JWTBearerGrantType)
	form.Set("assertion", assertion.Payload)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, tokenEndpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return auth.BearerToken{}, fmt.Errorf("creating token exchange request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return auth.BearerToken{}, fmt.Errorf("token exchange request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return auth.BearerToken{}, fmt.Errorf("reading token exchange response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		c.logger.Warn("token endpoint rejected assertion",
			zap.Int("status", resp.StatusCode),
			zap.String("endpoint", tokenEndpoint),
		)

		return auth.BearerToken{}, &auth.UpstreamAuthError{
			StatusCode: resp.StatusCode,
			Body:       string(body),
		}
	}

	var response tokenResponse
	if err := json.Unmarshal(body, &response); err != nil {
		return auth.BearerToken{}, fmt.Errorf("decoding token exchange response: %w", err)
	}

	if response.AccessToken == "" {
		return auth.BearerToken{}, &auth.UpstreamAuthError{
			StatusCode: resp.StatusCode,
			Body:       string(body),
		}
	}

	tokenType := response.TokenType
	if tokenType == "" {
		tokenType = "Bearer"
	}

	return auth.BearerToken{
		AccessToken: response.AccessToken,
		TokenType:   tokenType,
		ExpiresIn:   time.Duration(response.ExpiresIn) * time.Second,
		IssuedAt:    c.clock.Now(),
	}, nil
}
