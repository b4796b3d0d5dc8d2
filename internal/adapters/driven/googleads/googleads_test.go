package googleads

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/api/googleapi"

	"github.com/liftly-labs/adsgate/internal/core/domain"
)

// fakeGateway serves canned call contexts and records invalidations.
type fakeGateway struct {
	cc          *domain.CallContext
	err         error
	calls       int
	invalidated []string
}

func (g *fakeGateway) CallContext(ctx context.Context, userID string) (*domain.CallContext, error) {
	g.calls++
	if g.err != nil {
		return nil, g.err
	}
	return g.cc, nil
}

func (g *fakeGateway) Invalidate(ctx context.Context, userID string) error {
	g.invalidated = append(g.invalidated, userID)
	return nil
}

// recordingTransport captures the request and returns a fixed response.
type recordingTransport struct {
	req *http.Request
}

func (t *recordingTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	t.req = req
	return &http.Response{
		StatusCode: http.StatusOK,
		Body:       io.NopCloser(strings.NewReader("{}")),
		Header:     make(http.Header),
		Request:    req,
	}, nil
}

func TestTokenSource_ReturnsBearerToken(t *testing.T) {
	gw := &fakeGateway{cc: &domain.CallContext{
		AccessToken:    "ya29.access",
		DeveloperToken: "dev-token",
		CustomerID:     "1234567890",
	}}

	ts := NewTokenSource(context.Background(), gw, "u1")
	tok, err := ts.Token()
	require.NoError(t, err)

	assert.Equal(t, "ya29.access", tok.AccessToken)
	assert.Equal(t, "Bearer", tok.TokenType)
}

func TestTokenSource_PropagatesGatewayError(t *testing.T) {
	gw := &fakeGateway{err: domain.ErrNoCredentials}

	ts := NewTokenSource(context.Background(), gw, "u1")
	_, err := ts.Token()

	assert.ErrorIs(t, err, domain.ErrNoCredentials)
}

func TestNewClient_InjectsAdsHeaders(t *testing.T) {
	gw := &fakeGateway{cc: &domain.CallContext{
		AccessToken:    "ya29.access",
		DeveloperToken: "dev-token",
		CustomerID:     "1234567890",
	}}
	rt := &recordingTransport{}

	client, err := NewClient(context.Background(), gw, "u1",
		WithBaseTransport(rt),
		WithLoginCustomerID("9999999999"))
	require.NoError(t, err)

	resp, err := client.Get("https://googleads.googleapis.com/v17/customers/1234567890/googleAds:search")
	require.NoError(t, err)
	resp.Body.Close()

	require.NotNil(t, rt.req)
	assert.Equal(t, "dev-token", rt.req.Header.Get("developer-token"))
	assert.Equal(t, "9999999999", rt.req.Header.Get("login-customer-id"))
	assert.Equal(t, "Bearer ya29.access", rt.req.Header.Get("Authorization"))
}

func TestNewClient_OmitsLoginCustomerIDWhenUnset(t *testing.T) {
	gw := &fakeGateway{cc: &domain.CallContext{
		AccessToken:    "ya29.access",
		DeveloperToken: "dev-token",
		CustomerID:     "1234567890",
	}}
	rt := &recordingTransport{}

	client, err := NewClient(context.Background(), gw, "u1", WithBaseTransport(rt))
	require.NoError(t, err)

	resp, err := client.Get("https://googleads.googleapis.com/v17/customers/1234567890/campaigns")
	require.NoError(t, err)
	resp.Body.Close()

	require.NotNil(t, rt.req)
	_, present := rt.req.Header["Login-Customer-Id"]
	assert.False(t, present)
}

func TestNewClient_DoesNotMutateCallerRequest(t *testing.T) {
	gw := &fakeGateway{cc: &domain.CallContext{DeveloperToken: "dev-token"}}
	rt := &recordingTransport{}
	tr := &adsTransport{base: rt, gateway: gw, userID: "u1"}

	req, err := http.NewRequest(http.MethodGet, "https://googleads.googleapis.com/", nil)
	require.NoError(t, err)

	resp, err := tr.RoundTrip(req)
	require.NoError(t, err)
	resp.Body.Close()

	assert.Empty(t, req.Header.Get("developer-token"))
	assert.Equal(t, "dev-token", rt.req.Header.Get("developer-token"))
}

func TestNewClient_PicksUpCredentialChange(t *testing.T) {
	gw := &fakeGateway{cc: &domain.CallContext{
		AccessToken:    "ya29.access",
		DeveloperToken: "dev-token-old",
		CustomerID:     "1234567890",
	}}
	rt := &recordingTransport{}

	client, err := NewClient(context.Background(), gw, "u1", WithBaseTransport(rt))
	require.NoError(t, err)

	resp, err := client.Get("https://googleads.googleapis.com/v17/customers/1234567890/campaigns")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, "dev-token-old", rt.req.Header.Get("developer-token"))

	gw.cc = &domain.CallContext{
		AccessToken:    "ya29.access2",
		DeveloperToken: "dev-token-new",
		CustomerID:     "1234567890",
	}

	resp, err = client.Get("https://googleads.googleapis.com/v17/customers/1234567890/campaigns")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, "dev-token-new", rt.req.Header.Get("developer-token"))
}

func TestNewClient_FailsWhenNoCredentials(t *testing.T) {
	gw := &fakeGateway{err: domain.ErrNoCredentials}

	_, err := NewClient(context.Background(), gw, "u1")
	assert.ErrorIs(t, err, domain.ErrNoCredentials)
}

func TestWrapError(t *testing.T) {
	tests := []struct {
		name string
		in   error
		want error
	}{
		{"unauthorised", &googleapi.Error{Code: http.StatusUnauthorized}, domain.ErrInvalidGrant},
		{"rate limited", &googleapi.Error{Code: http.StatusTooManyRequests}, domain.ErrRateLimited},
		{"server error", &googleapi.Error{Code: http.StatusBadGateway}, domain.ErrTransient},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.ErrorIs(t, WrapError(tt.in), tt.want)
		})
	}

	t.Run("nil passes through", func(t *testing.T) {
		assert.NoError(t, WrapError(nil))
	})

	t.Run("other errors pass through", func(t *testing.T) {
		err := fmt.Errorf("connection reset")
		assert.Equal(t, err, WrapError(err))
	})

	t.Run("bad request is not converted", func(t *testing.T) {
		in := &googleapi.Error{Code: http.StatusBadRequest}
		var gerr *googleapi.Error
		assert.True(t, errors.As(WrapError(in), &gerr))
	})
}

func TestClassifiers(t *testing.T) {
	assert.True(t, IsUnauthorized(&googleapi.Error{Code: http.StatusUnauthorized}))
	assert.True(t, IsUnauthorized(domain.ErrInvalidGrant))
	assert.False(t, IsUnauthorized(&googleapi.Error{Code: http.StatusForbidden}))

	assert.True(t, IsRateLimited(&googleapi.Error{Code: http.StatusTooManyRequests}))
	assert.True(t, IsRateLimited(domain.ErrRateLimited))
	assert.False(t, IsRateLimited(domain.ErrTransient))

	assert.True(t, IsRetryable(&googleapi.Error{Code: http.StatusServiceUnavailable}))
	assert.True(t, IsRetryable(domain.ErrTransient))
	assert.False(t, IsRetryable(&googleapi.Error{Code: http.StatusUnauthorized}))
	assert.False(t, IsRetryable(domain.ErrInvalidGrant))
}
