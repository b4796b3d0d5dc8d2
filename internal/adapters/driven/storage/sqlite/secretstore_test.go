package sqlite

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/liftly-labs/adsgate/internal/core/domain"
)

// staticShared serves a fixed shared record for tests.
type staticShared struct {
	rec *domain.CredentialRecord
}

func (s *staticShared) SharedCredentials(context.Context) (*domain.CredentialRecord, error) {
	if s.rec == nil {
		return nil, domain.ErrNotConfigured
	}
	return s.rec, nil
}

func newTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := NewStore(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestSecretStore_SaveAndGetUserCredentials(t *testing.T) {
	store := NewSecretStore(newTestStore(t), nil)
	ctx := context.Background()

	_, err := store.UserCredentials(ctx, "u1")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	rec := domain.CredentialRecord{
		Identity:           domain.UserIdentity("u1"),
		CustomerID:         "1234567890",
		DeveloperToken:     "dt",
		ClientID:           "cid",
		ClientSecret:       "secret",
		RefreshToken:       "rt",
		UsesOwnCredentials: true,
	}
	require.NoError(t, store.SaveUserCredentials(ctx, rec))

	got, err := store.UserCredentials(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, domain.UserIdentity("u1"), got.Identity)
	assert.Equal(t, "1234567890", got.CustomerID)
	assert.Equal(t, "rt", got.RefreshToken)
	assert.True(t, got.UsesOwnCredentials)
	assert.True(t, got.Usable())
	assert.False(t, got.UpdatedAt.IsZero())
}

func TestSecretStore_SaveOverwrites(t *testing.T) {
	store := NewSecretStore(newTestStore(t), nil)
	ctx := context.Background()

	rec := domain.CredentialRecord{Identity: domain.UserIdentity("u1"), CustomerID: "111"}
	require.NoError(t, store.SaveUserCredentials(ctx, rec))

	rec.CustomerID = "222"
	rec.UsesOwnCredentials = false
	require.NoError(t, store.SaveUserCredentials(ctx, rec))

	got, err := store.UserCredentials(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, "222", got.CustomerID)
}

func TestSecretStore_SaveRequiresUserID(t *testing.T) {
	store := NewSecretStore(newTestStore(t), nil)
	err := store.SaveUserCredentials(context.Background(), domain.CredentialRecord{})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestSecretStore_SharedCredentialsFromSource(t *testing.T) {
	shared := &staticShared{rec: &domain.CredentialRecord{
		Identity:       domain.SharedIdentity(),
		DeveloperToken: "dt",
	}}
	store := NewSecretStore(newTestStore(t), shared)

	got, err := store.SharedCredentials(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "dt", got.DeveloperToken)
}

func TestSecretStore_SharedCredentialsNotConfigured(t *testing.T) {
	store := NewSecretStore(newTestStore(t), nil)
	_, err := store.SharedCredentials(context.Background())
	assert.ErrorIs(t, err, domain.ErrNotConfigured)

	store = NewSecretStore(newTestStore(t), &staticShared{})
	_, err = store.SharedCredentials(context.Background())
	assert.ErrorIs(t, err, domain.ErrNotConfigured)
}

func TestSecretStore_PersistAccessTokenRoundTrip(t *testing.T) {
	store := NewSecretStore(newTestStore(t), nil)
	ctx := context.Background()

	uid := domain.UserIdentity("u1")
	_, err := store.PersistedAccessToken(ctx, uid)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	expiry := time.Now().Add(time.Hour).UTC()
	require.NoError(t, store.PersistAccessToken(ctx, uid, "tok1", expiry))

	got, err := store.PersistedAccessToken(ctx, uid)
	require.NoError(t, err)
	assert.Equal(t, "tok1", got.AccessToken)
	assert.WithinDuration(t, expiry, got.ExpiresAt, time.Second)

	// Last write wins on the token columns.
	require.NoError(t, store.PersistAccessToken(ctx, uid, "tok2", expiry.Add(time.Hour)))
	got, err = store.PersistedAccessToken(ctx, uid)
	require.NoError(t, err)
	assert.Equal(t, "tok2", got.AccessToken)

	// Identities do not collide.
	require.NoError(t, store.PersistAccessToken(ctx, domain.SharedIdentity(), "stok", expiry))
	got, err = store.PersistedAccessToken(ctx, domain.SharedIdentity())
	require.NoError(t, err)
	assert.Equal(t, "stok", got.AccessToken)
}

func TestSecretStore_PersistDoesNotTouchSecrets(t *testing.T) {
	store := NewSecretStore(newTestStore(t), nil)
	ctx := context.Background()

	rec := domain.CredentialRecord{
		Identity:     domain.UserIdentity("u1"),
		RefreshToken: "rt",
		ClientSecret: "secret",
	}
	require.NoError(t, store.SaveUserCredentials(ctx, rec))
	require.NoError(t, store.PersistAccessToken(ctx, rec.Identity, "tok1", time.Now().Add(time.Hour)))

	got, err := store.UserCredentials(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, "rt", got.RefreshToken)
	assert.Equal(t, "secret", got.ClientSecret)
}

func TestStore_MigrationsAreIdempotent(t *testing.T) {
	dir := t.TempDir()

	store, err := NewStore(dir)
	require.NoError(t, err)
	require.NoError(t, store.Close())

	// Reopening replays nothing and loses nothing.
	store, err = NewStore(dir)
	require.NoError(t, err)
	defer store.Close()

	ss := NewSecretStore(store, nil)
	_, err = ss.UserCredentials(context.Background(), "nobody")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
