package oauth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/liftly-labs/adsgate/internal/core/domain"
	"github.com/liftly-labs/adsgate/internal/core/ports/driven"
)

// GoogleTokenURL is the token endpoint for Google OAuth, the provider behind
// the Ads API.
const GoogleTokenURL = "https://oauth2.googleapis.com/token"

// exchangeTimeout bounds a single token exchange attempt. A timeout counts
// as a transient failure against the caller's retry budget.
const exchangeTimeout = 10 * time.Second

// Ensure Exchanger implements the interface.
var _ driven.TokenExchanger = (*Exchanger)(nil)

// Exchanger performs the OAuth refresh-token grant over HTTP.
type Exchanger struct {
	tokenURL string
	client   *http.Client
	limiter  *RateLimiter
}

// Option configures an Exchanger.
type Option func(*Exchanger)

// WithTokenURL overrides the token endpoint. Used in tests and for custom
// OAuth servers.
func WithTokenURL(u string) Option {
	return func(e *Exchanger) { e.tokenURL = u }
}

// WithHTTPClient overrides the HTTP client.
func WithHTTPClient(c *http.Client) Option {
	return func(e *Exchanger) { e.client = c }
}

// NewExchanger creates an exchanger against the Google token endpoint.
func NewExchanger(opts ...Option) *Exchanger {
	e := &Exchanger{
		tokenURL: GoogleTokenURL,
		client:   &http.Client{Timeout: exchangeTimeout},
		limiter:  NewRateLimiter(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// tokenResponse is the provider's success body.
type tokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int    `json:"expires_in"`
}

// tokenError is the provider's error body per RFC 6749 §5.2.
type tokenError struct {
	Error       string `json:"error"`
	Description string `json:"error_description"`
}

// Exchange trades a refresh token for an access token.
//
// The expiry is computed the moment the response arrives, so time spent
// queued behind the rate limiter or in a caller cannot skew it.
func (e *Exchanger) Exchange(ctx context.Context, clientID, clientSecret, refreshToken string) (*domain.CachedToken, error) {
	if clientID == "" || clientSecret == "" || refreshToken == "" {
		return nil, domain.ErrInvalidInput
	}

	if err := e.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("waiting for token endpoint slot: %w", err)
	}

	data := url.Values{}
	data.Set("grant_type", "refresh_token")
	data.Set("client_id", clientID)
	data.Set("client_secret", clientSecret)
	data.Set("refresh_token", refreshToken)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, e.tokenURL, strings.NewReader(data.Encode()))
	if err != nil {
		return nil, fmt.Errorf("creating token request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")

	resp, err := e.client.Do(req)
	if err != nil {
		return nil, classifyTransportError(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, e.classifyHTTPError(resp)
	}

	var body tokenResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("decoding token response: %w", domain.ErrTransient)
	}
	if body.AccessToken == "" || body.ExpiresIn <= 0 {
		return nil, fmt.Errorf("token response missing access_token or expires_in: %w", domain.ErrTransient)
	}

	return &domain.CachedToken{
		AccessToken: body.AccessToken,
		ExpiresAt:   time.Now().Add(time.Duration(body.ExpiresIn) * time.Second),
	}, nil
}

// classifyTransportError maps network-level failures. Timeouts and
// connection errors are transient; context cancellation passes through.
func classifyTransportError(err error) error {
	if errors.Is(err, context.Canceled) {
		return err
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return fmt.Errorf("token request timed out: %w", domain.ErrTransient)
	}
	return fmt.Errorf("token request failed: %w (%v)", domain.ErrTransient, err)
}

// classifyHTTPError maps non-200 responses into the domain taxonomy.
func (e *Exchanger) classifyHTTPError(resp *http.Response) error {
	switch {
	case resp.StatusCode == http.StatusTooManyRequests:
		retryAfter := parseRetryAfter(resp.Header.Get("Retry-After"))
		e.limiter.RecordRateLimit(retryAfter)
		return &domain.RateLimitError{RetryAfter: retryAfter}

	case resp.StatusCode >= 500:
		return fmt.Errorf("token endpoint returned %d: %w", resp.StatusCode, domain.ErrTransient)

	default:
		var body tokenError
		if err := json.NewDecoder(resp.Body).Decode(&body); err == nil && body.Error != "" {
			if body.Error == "invalid_grant" {
				return fmt.Errorf("%w: %s", domain.ErrInvalidGrant, body.Description)
			}
			// Other RFC 6749 codes (invalid_client, unauthorized_client,
			// ...) point at the OAuth app, not the user's grant.
			return fmt.Errorf("%w (%s: %s)",
				domain.ErrClientRejected, body.Error, body.Description)
		}
		return fmt.Errorf("token exchange failed with status %d: %w", resp.StatusCode, domain.ErrTransient)
	}
}

// parseRetryAfter reads a Retry-After header given in seconds.
// HTTP-date forms are rare on token endpoints and are ignored.
func parseRetryAfter(v string) time.Duration {
	if v == "" {
		return 0
	}
	secs, err := strconv.Atoi(v)
	if err != nil || secs < 0 {
		return 0
	}
	return time.Duration(secs) * time.Second
}
