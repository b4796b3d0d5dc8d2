// Package memory provides in-memory implementations of the driven storage
// ports, used in tests and single-process deployments where persistence
// across restarts is not required.
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/liftly-labs/adsgate/internal/core/domain"
	"github.com/liftly-labs/adsgate/internal/core/ports/driven"
)

// Ensure SecretStore implements the interface.
var _ driven.SecretStore = (*SecretStore)(nil)

// SecretStore is an in-memory implementation of driven.SecretStore.
type SecretStore struct {
	mu     sync.RWMutex
	users  map[string]domain.CredentialRecord
	shared *domain.CredentialRecord
	tokens map[domain.Identity]domain.CachedToken
}

// NewSecretStore creates a new in-memory secret store.
func NewSecretStore() *SecretStore {
	return &SecretStore{
		users:  make(map[string]domain.CredentialRecord),
		tokens: make(map[domain.Identity]domain.CachedToken),
	}
}

// SetShared installs the shared platform credentials.
func (s *SecretStore) SetShared(rec *domain.CredentialRecord) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.shared = rec
}

// UserCredentials retrieves a user's record.
func (s *SecretStore) UserCredentials(_ context.Context, userID string) (*domain.CredentialRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.users[userID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &rec, nil
}

// SaveUserCredentials creates or overwrites a user's record.
func (s *SecretStore) SaveUserCredentials(_ context.Context, rec domain.CredentialRecord) error {
	if rec.Identity.UserID == "" {
		return domain.ErrInvalidInput
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now().UTC()
	if existing, ok := s.users[rec.Identity.UserID]; ok {
		rec.CreatedAt = existing.CreatedAt
	} else {
		rec.CreatedAt = now
	}
	rec.UpdatedAt = now
	s.users[rec.Identity.UserID] = rec
	return nil
}

// SharedCredentials returns the shared platform record.
func (s *SecretStore) SharedCredentials(_ context.Context) (*domain.CredentialRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.shared == nil {
		return nil, domain.ErrNotConfigured
	}
	rec := *s.shared
	return &rec, nil
}

// PersistAccessToken stores a refreshed token for the identity.
func (s *SecretStore) PersistAccessToken(_ context.Context, id domain.Identity, accessToken string, expiresAt time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tokens[id] = domain.CachedToken{AccessToken: accessToken, ExpiresAt: expiresAt}
	return nil
}

// PersistedAccessToken reads back the last persisted token for the identity.
func (s *SecretStore) PersistedAccessToken(_ context.Context, id domain.Identity) (*domain.CachedToken, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	tok, ok := s.tokens[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &tok, nil
}
