package driving

import (
	"context"

	"github.com/liftly-labs/adsgate/internal/core/domain"
)

// CredentialsService manages user-submitted API credentials.
// Records are only ever created or overwritten by this service; the refresh
// path never touches the long-lived secrets.
type CredentialsService interface {
	// Save validates, normalizes and stores a user's credential record.
	Save(ctx context.Context, rec domain.CredentialRecord) error

	// Get retrieves a user's credential record.
	// Returns domain.ErrNotFound when the user has no record.
	Get(ctx context.Context, userID string) (*domain.CredentialRecord, error)
}
