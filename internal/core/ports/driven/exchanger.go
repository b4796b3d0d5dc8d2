package driven

import (
	"context"

	"github.com/liftly-labs/adsgate/internal/core/domain"
)

// TokenExchanger performs the OAuth refresh-token grant against the
// provider's token endpoint. It is a pure function of the inputs plus the
// outbound network call; it persists nothing.
//
// Implementations classify failures into the domain taxonomy:
// domain.ErrInvalidGrant (revoked/expired refresh token, never retried),
// *domain.RateLimitError (HTTP 429, retried after the provider delay), and
// domain.ErrTransient (network failures, timeouts, 5xx).
type TokenExchanger interface {
	// Exchange trades a refresh token for a fresh access token. The returned
	// token carries an absolute expiry computed the moment the response
	// arrived, so queuing delay cannot skew it.
	Exchange(ctx context.Context, clientID, clientSecret, refreshToken string) (*domain.CachedToken, error)
}
