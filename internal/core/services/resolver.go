package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/liftly-labs/adsgate/internal/core/domain"
	"github.com/liftly-labs/adsgate/internal/core/ports/driven"
	"github.com/liftly-labs/adsgate/internal/logger"
)

// Resolver decides which credential set applies to a user: the user's own
// record when they supplied complete credentials, otherwise the shared
// platform record. It never returns a partially-filled record and never
// mixes one identity's secret with another's.
type Resolver struct {
	store driven.SecretStore
}

// NewResolver creates a resolver backed by the given secret store.
func NewResolver(store driven.SecretStore) *Resolver {
	return &Resolver{store: store}
}

// Resolve returns the credential record to use for the user. An empty
// userID addresses the shared account directly.
//
// User-owned credentials always win when they are complete. A user who set
// only a customer id (the common partial-setup case) still authenticates
// with the shared credentials, but targets their own account.
//
// A storage failure is fatal: silently falling back to shared credentials
// would attribute calls to the wrong identity.
func (r *Resolver) Resolve(ctx context.Context, userID string) (*domain.CredentialRecord, error) {
	var user *domain.CredentialRecord
	if userID != "" {
		var err error
		user, err = r.store.UserCredentials(ctx, userID)
		if err != nil && !errors.Is(err, domain.ErrNotFound) {
			return nil, fmt.Errorf("fetching user credentials: %w", err)
		}
	}

	if user != nil && user.UsesOwnCredentials && user.Usable() {
		rec := *user
		rec.Identity = domain.UserIdentity(userID)
		rec.CustomerID = domain.NormalizeCustomerID(rec.CustomerID)
		logger.Debug("resolved own credentials for user %s (customer %s)", userID, rec.CustomerID)
		return &rec, nil
	}

	shared, err := r.store.SharedCredentials(ctx)
	if err != nil {
		if errors.Is(err, domain.ErrNotConfigured) {
			return nil, domain.ErrNoCredentials
		}
		return nil, fmt.Errorf("fetching shared credentials: %w", err)
	}
	if !shared.Usable() {
		return nil, domain.ErrNoCredentials
	}

	rec := *shared
	rec.Identity = domain.SharedIdentity()
	rec.UsesOwnCredentials = false

	// Partial setup: the user wants shared auth but targets their own
	// account id.
	if user != nil && user.CustomerID != "" {
		rec.CustomerID = user.CustomerID
	}
	rec.CustomerID = domain.NormalizeCustomerID(rec.CustomerID)

	logger.Debug("resolved shared credentials for %s (customer %s)", rec.Identity, rec.CustomerID)
	return &rec, nil
}
