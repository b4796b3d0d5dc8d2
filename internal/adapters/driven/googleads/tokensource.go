package googleads

import (
	"context"

	"golang.org/x/oauth2"

	"github.com/liftly-labs/adsgate/internal/core/ports/driving"
)

// TokenSourceAdapter adapts the gateway to oauth2.TokenSource so Google API
// client libraries can use the cached token management transparently. Every
// Token call goes through the gateway, which serves from cache while the
// token is fresh and coordinates refreshes otherwise.
type TokenSourceAdapter struct {
	gateway driving.Gateway
	userID  string
	ctx     context.Context
}

// NewTokenSource creates an oauth2.TokenSource that resolves credentials for
// userID through the gateway. Pass an empty userID for callers that only use
// the shared account. The returned TokenSource can be used with
// option.WithTokenSource() when creating Google API services.
func NewTokenSource(ctx context.Context, gateway driving.Gateway, userID string) oauth2.TokenSource {
	return &TokenSourceAdapter{
		gateway: gateway,
		userID:  userID,
		ctx:     ctx,
	}
}

// Token implements oauth2.TokenSource.
func (t *TokenSourceAdapter) Token() (*oauth2.Token, error) {
	cc, err := t.gateway.CallContext(t.ctx, t.userID)
	if err != nil {
		return nil, err
	}

	return &oauth2.Token{
		AccessToken: cc.AccessToken,
		TokenType:   "Bearer",
	}, nil
}

var _ oauth2.TokenSource = (*TokenSourceAdapter)(nil)
