package googleads

import (
	"context"
	"net/http"

	"golang.org/x/oauth2"

	"github.com/liftly-labs/adsgate/internal/core/ports/driving"
)

// Header names the Google Ads API requires on every request in addition to
// the OAuth bearer token.
const (
	developerTokenHeader  = "developer-token"
	loginCustomerIDHeader = "login-customer-id"
)

// ClientOption customises the HTTP client returned by NewClient.
type ClientOption func(*clientConfig)

type clientConfig struct {
	loginCustomerID string
	base            http.RoundTripper
}

// WithLoginCustomerID sets the login-customer-id header on every request.
// Required when the authenticated account accesses a client account through
// a manager (MCC) hierarchy.
func WithLoginCustomerID(id string) ClientOption {
	return func(c *clientConfig) {
		c.loginCustomerID = id
	}
}

// WithBaseTransport sets the underlying transport. Used in tests.
func WithBaseTransport(rt http.RoundTripper) ClientOption {
	return func(c *clientConfig) {
		c.base = rt
	}
}

// NewClient returns an *http.Client for the Google Ads API authenticated as
// userID. The client refreshes access tokens through the gateway and
// resolves the developer-token header per request, so a credential change
// takes effect without rebuilding the client. The initial resolution fails
// fast when no credentials are configured.
func NewClient(ctx context.Context, gateway driving.Gateway, userID string, opts ...ClientOption) (*http.Client, error) {
	cfg := clientConfig{base: http.DefaultTransport}
	for _, opt := range opts {
		opt(&cfg)
	}

	if _, err := gateway.CallContext(ctx, userID); err != nil {
		return nil, err
	}

	// The oauth2 transport handles the Authorization header; the ads
	// transport below it adds the Ads-specific ones.
	inner := &adsTransport{
		base:            cfg.base,
		gateway:         gateway,
		userID:          userID,
		loginCustomerID: cfg.loginCustomerID,
	}

	// No oauth2.ReuseTokenSource wrapper: the gateway caches tokens with
	// their real expiry, while ReuseTokenSource would pin a token without
	// one forever.
	return &http.Client{
		Transport: &oauth2.Transport{
			Source: NewTokenSource(ctx, gateway, userID),
			Base:   inner,
		},
	}, nil
}

// adsTransport injects the developer-token and optional login-customer-id
// headers required by the Google Ads API. The developer token comes from the
// gateway on each request; the gateway serves it from its cache.
type adsTransport struct {
	base            http.RoundTripper
	gateway         driving.Gateway
	userID          string
	loginCustomerID string
}

func (t *adsTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	cc, err := t.gateway.CallContext(req.Context(), t.userID)
	if err != nil {
		return nil, err
	}

	// Per RoundTripper contract the request must not be mutated.
	clone := req.Clone(req.Context())
	clone.Header.Set(developerTokenHeader, cc.DeveloperToken)
	if t.loginCustomerID != "" {
		clone.Header.Set(loginCustomerIDHeader, t.loginCustomerID)
	}
	return t.base.RoundTrip(clone)
}

var _ http.RoundTripper = (*adsTransport)(nil)
