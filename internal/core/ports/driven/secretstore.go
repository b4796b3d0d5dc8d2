package driven

import (
	"context"
	"time"

	"github.com/liftly-labs/adsgate/internal/core/domain"
)

// SecretStore persists per-user credential records and serves the
// process-wide shared fallback credentials. It is the system of record for
// long-lived secrets; short-lived access tokens are only cached through it.
//
// Implementations must surface domain.ErrStorageUnavailable for
// infrastructure failures, distinctly from domain.ErrNotFound /
// domain.ErrNotConfigured, so the resolver can tell "nothing configured"
// (expected, fall through) from "storage is broken" (fatal).
type SecretStore interface {
	// UserCredentials retrieves the credential record a user submitted.
	// Returns domain.ErrNotFound when the user has no record.
	UserCredentials(ctx context.Context, userID string) (*domain.CredentialRecord, error)

	// SaveUserCredentials creates or overwrites a user's record.
	// Only the setup path writes the long-lived secrets.
	SaveUserCredentials(ctx context.Context, rec domain.CredentialRecord) error

	// SharedCredentials returns the platform-wide fallback record.
	// Returns domain.ErrNotConfigured when none is configured.
	SharedCredentials(ctx context.Context) (*domain.CredentialRecord, error)

	// PersistAccessToken writes a freshly minted access token and its expiry
	// for the identity. Best-effort cache-through: the token cache logs a
	// failure here but does not fail the refresh.
	PersistAccessToken(ctx context.Context, id domain.Identity, accessToken string, expiresAt time.Time) error

	// PersistedAccessToken reads back the last persisted access token for
	// the identity, if any. Returns domain.ErrNotFound when none was
	// persisted. Used to warm the in-memory cache across process restarts.
	PersistedAccessToken(ctx context.Context, id domain.Identity) (*domain.CachedToken, error)
}
