package driving

import (
	"context"

	"github.com/liftly-labs/adsgate/internal/core/domain"
)

// Gateway is the single entry point feature handlers use to call the Ads
// API on behalf of a user. It hides credential resolution, token caching and
// refresh, and never exposes the client secret or refresh token.
type Gateway interface {
	// CallContext resolves which credentials apply to the user, ensures a
	// fresh access token for them (refreshing at most once concurrently per
	// identity), and returns the assembled context. An empty userID
	// addresses the shared account directly.
	//
	// Errors distinguish the user actions they require:
	// domain.ErrNoCredentials (set up API access), domain.ErrInvalidGrant
	// (reconnect the account), domain.ErrTransient / domain.ErrRateLimited
	// (retry later) and domain.ErrStorageUnavailable (operator issue).
	CallContext(ctx context.Context, userID string) (*domain.CallContext, error)

	// Invalidate drops any cached token for the user's resolved identity.
	// Handlers call this after the Ads API rejects a token as unauthorised.
	Invalidate(ctx context.Context, userID string) error
}
