package services

import (
	"context"
	"fmt"

	"github.com/liftly-labs/adsgate/internal/core/domain"
	"github.com/liftly-labs/adsgate/internal/core/ports/driven"
	"github.com/liftly-labs/adsgate/internal/core/ports/driving"
)

// Ensure CredentialsSetup implements the interface.
var _ driving.CredentialsService = (*CredentialsSetup)(nil)

// CredentialsSetup handles user-submitted credential records: the only path
// that writes the long-lived secrets.
type CredentialsSetup struct {
	store driven.SecretStore
}

// NewCredentialsSetup creates a new credentials setup service.
func NewCredentialsSetup(store driven.SecretStore) *CredentialsSetup {
	return &CredentialsSetup{store: store}
}

// Save validates, normalizes and stores a user's credential record.
//
// A record claiming its own credentials must be complete. A partial record
// (typically just a customer id, with shared auth) is accepted as long as it
// does not claim to be self-sufficient.
func (s *CredentialsSetup) Save(ctx context.Context, rec domain.CredentialRecord) error {
	if rec.Identity.Kind != domain.IdentityUser || rec.Identity.UserID == "" {
		return fmt.Errorf("%w: record must belong to a user", domain.ErrInvalidInput)
	}

	rec.CustomerID = domain.NormalizeCustomerID(rec.CustomerID)

	if rec.UsesOwnCredentials && !rec.Usable() {
		return fmt.Errorf("%w: own-credential records need developer token, client id, client secret, refresh token and customer id", domain.ErrInvalidInput)
	}
	if !rec.UsesOwnCredentials && rec.CustomerID == "" {
		return fmt.Errorf("%w: shared-auth records need at least a customer id", domain.ErrInvalidInput)
	}

	return s.store.SaveUserCredentials(ctx, rec)
}

// Get retrieves a user's credential record.
func (s *CredentialsSetup) Get(ctx context.Context, userID string) (*domain.CredentialRecord, error) {
	if userID == "" {
		return nil, domain.ErrInvalidInput
	}
	return s.store.UserCredentials(ctx, userID)
}
