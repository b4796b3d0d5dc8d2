package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/liftly-labs/adsgate/internal/core/domain"
	"github.com/liftly-labs/adsgate/internal/core/ports/driven"
)

// SharedSource supplies the platform-wide shared credentials. They live in
// configuration, not in the database, so the store delegates.
type SharedSource interface {
	SharedCredentials(ctx context.Context) (*domain.CredentialRecord, error)
}

// Ensure SecretStore implements the interface.
var _ driven.SecretStore = (*SecretStore)(nil)

// SecretStore implements driven.SecretStore on top of the SQLite store for
// user records and persisted tokens, with shared credentials served from the
// given source.
type SecretStore struct {
	store  *Store
	shared SharedSource
}

// NewSecretStore creates a secret store backed by the SQLite store.
func NewSecretStore(store *Store, shared SharedSource) *SecretStore {
	return &SecretStore{store: store, shared: shared}
}

// storageErr tags infrastructure failures so the resolver can tell a broken
// store apart from missing data and refuse to fall back.
func storageErr(op string, err error) error {
	return fmt.Errorf("%w: %s: %v", domain.ErrStorageUnavailable, op, err)
}

// UserCredentials retrieves a user's credential record.
func (s *SecretStore) UserCredentials(ctx context.Context, userID string) (*domain.CredentialRecord, error) {
	row := s.store.db.QueryRowContext(ctx, `
		SELECT user_id, customer_id, developer_token, client_id, client_secret,
		       refresh_token, uses_own_credentials, created_at, updated_at
		FROM user_credentials WHERE user_id = ?
	`, userID)

	var rec domain.CredentialRecord
	var uid string
	var usesOwn int
	var createdAt, updatedAt sql.NullTime
	err := row.Scan(&uid, &rec.CustomerID, &rec.DeveloperToken, &rec.ClientID,
		&rec.ClientSecret, &rec.RefreshToken, &usesOwn, &createdAt, &updatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, storageErr("scanning user credentials", err)
	}

	rec.Identity = domain.UserIdentity(uid)
	rec.UsesOwnCredentials = usesOwn != 0
	if createdAt.Valid {
		rec.CreatedAt = createdAt.Time
	}
	if updatedAt.Valid {
		rec.UpdatedAt = updatedAt.Time
	}

	return &rec, nil
}

// SaveUserCredentials creates or overwrites a user's record.
func (s *SecretStore) SaveUserCredentials(ctx context.Context, rec domain.CredentialRecord) error {
	if rec.Identity.UserID == "" {
		return domain.ErrInvalidInput
	}

	now := time.Now().UTC()
	usesOwn := 0
	if rec.UsesOwnCredentials {
		usesOwn = 1
	}

	_, err := s.store.db.ExecContext(ctx, `
		INSERT INTO user_credentials
			(user_id, customer_id, developer_token, client_id, client_secret,
			 refresh_token, uses_own_credentials, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(user_id) DO UPDATE SET
			customer_id = excluded.customer_id,
			developer_token = excluded.developer_token,
			client_id = excluded.client_id,
			client_secret = excluded.client_secret,
			refresh_token = excluded.refresh_token,
			uses_own_credentials = excluded.uses_own_credentials,
			updated_at = excluded.updated_at
	`, rec.Identity.UserID, rec.CustomerID, rec.DeveloperToken, rec.ClientID,
		rec.ClientSecret, rec.RefreshToken, usesOwn, now, now)

	if err != nil {
		return storageErr("saving user credentials", err)
	}
	return nil
}

// SharedCredentials returns the platform-wide fallback record from the
// configured source.
func (s *SecretStore) SharedCredentials(ctx context.Context) (*domain.CredentialRecord, error) {
	if s.shared == nil {
		return nil, domain.ErrNotConfigured
	}
	return s.shared.SharedCredentials(ctx)
}

// PersistAccessToken writes a refreshed token for the identity.
// Only the token and expiry columns are touched; long-lived secrets are
// never rewritten by the refresh path.
func (s *SecretStore) PersistAccessToken(ctx context.Context, id domain.Identity, accessToken string, expiresAt time.Time) error {
	_, err := s.store.db.ExecContext(ctx, `
		INSERT INTO access_tokens (identity, access_token, expires_at, updated_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(identity) DO UPDATE SET
			access_token = excluded.access_token,
			expires_at = excluded.expires_at,
			updated_at = excluded.updated_at
	`, id.String(), accessToken, expiresAt.UTC(), time.Now().UTC())

	if err != nil {
		return storageErr("persisting access token", err)
	}
	return nil
}

// PersistedAccessToken reads back the last persisted token for the identity.
func (s *SecretStore) PersistedAccessToken(ctx context.Context, id domain.Identity) (*domain.CachedToken, error) {
	row := s.store.db.QueryRowContext(ctx, `
		SELECT access_token, expires_at FROM access_tokens WHERE identity = ?
	`, id.String())

	var tok domain.CachedToken
	if err := row.Scan(&tok.AccessToken, &tok.ExpiresAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, storageErr("scanning access token", err)
	}
	return &tok, nil
}
