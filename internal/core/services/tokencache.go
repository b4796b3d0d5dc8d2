package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/liftly-labs/adsgate/internal/core/domain"
	"github.com/liftly-labs/adsgate/internal/core/ports/driven"
	"github.com/liftly-labs/adsgate/internal/logger"
)

const (
	// defaultSafetyMargin is how long before expiry a token is treated as
	// stale. Guards against a token expiring mid-flight in the call that
	// uses it.
	defaultSafetyMargin = 60 * time.Second

	// defaultMaxAttempts bounds exchange attempts for transient failures
	// within a single coordinated refresh.
	defaultMaxAttempts = 3

	// defaultBaseBackoff is the first retry delay; it doubles per attempt.
	defaultBaseBackoff = 500 * time.Millisecond
)

// refreshFlight is the in-flight marker for one identity's refresh. Waiters
// block on done and read the shared outcome; the winner writes token/err
// before closing done.
type refreshFlight struct {
	done  chan struct{}
	token string
	err   error
}

// TokenCache keeps a short-lived access token per credential identity,
// refreshing just-in-time and persisting refreshed tokens back through the
// secret store.
//
// The central correctness property: at most one outstanding token-exchange
// call per identity, no matter how many concurrent requests need a token for
// it. Refreshes for distinct identities proceed fully in parallel.
//
// Construct one per process and pass it by reference; tests instantiate
// isolated caches per case.
type TokenCache struct {
	store     driven.SecretStore
	exchanger driven.TokenExchanger

	margin      time.Duration
	maxAttempts int
	baseBackoff time.Duration

	// Injectable for tests.
	now   func() time.Time
	sleep func(ctx context.Context, d time.Duration) error

	mu       sync.Mutex
	tokens   map[domain.Identity]domain.CachedToken
	inflight map[domain.Identity]*refreshFlight
}

// NewTokenCache creates a token cache backed by the given store and
// exchanger.
func NewTokenCache(store driven.SecretStore, exchanger driven.TokenExchanger) *TokenCache {
	return &TokenCache{
		store:       store,
		exchanger:   exchanger,
		margin:      defaultSafetyMargin,
		maxAttempts: defaultMaxAttempts,
		baseBackoff: defaultBaseBackoff,
		now:         time.Now,
		sleep:       sleepCtx,
		tokens:      make(map[domain.Identity]domain.CachedToken),
		inflight:    make(map[domain.Identity]*refreshFlight),
	}
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// GetValidToken returns a fresh access token for the record's identity,
// refreshing if the cached one is absent or within the safety margin of
// expiry.
//
// Concurrent callers for the same identity attach to the single in-flight
// refresh and all receive the same outcome. A caller whose own context is
// cancelled stops waiting, but the refresh itself runs to completion: it is
// a shared resource for the other waiters.
func (c *TokenCache) GetValidToken(ctx context.Context, rec *domain.CredentialRecord) (string, error) {
	if rec == nil || rec.Identity.Kind == "" {
		return "", domain.ErrInvalidInput
	}
	if !rec.Usable() {
		return "", domain.ErrNoCredentials
	}

	id := rec.Identity

	c.mu.Lock()
	if tok, ok := c.tokens[id]; ok && tok.Fresh(c.now(), c.margin) {
		c.mu.Unlock()
		return tok.AccessToken, nil
	}

	if f, ok := c.inflight[id]; ok {
		c.mu.Unlock()
		select {
		case <-f.done:
			return f.token, f.err
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}

	// This caller won the race: it owns the refresh for everyone.
	f := &refreshFlight{done: make(chan struct{})}
	c.inflight[id] = f
	c.mu.Unlock()

	tok, err := c.fill(context.WithoutCancel(ctx), rec)

	c.mu.Lock()
	if err == nil {
		c.tokens[id] = *tok
		f.token = tok.AccessToken
	} else {
		f.err = err
		if errors.Is(err, domain.ErrInvalidGrant) {
			// The grant may be permanently revoked; drop anything stale so
			// the next call starts from scratch.
			delete(c.tokens, id)
		}
	}
	delete(c.inflight, id)
	c.mu.Unlock()
	close(f.done)

	return f.token, f.err
}

// Invalidate drops the cached token for an identity. An in-flight refresh is
// unaffected. Called when the downstream API rejects a token that looked
// fresh locally.
func (c *TokenCache) Invalidate(id domain.Identity) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.tokens, id)
}

// fill obtains a fresh token: first from the store's persisted copy (warm
// start after a process restart), then via the exchange client with bounded
// retries for transient failures.
func (c *TokenCache) fill(ctx context.Context, rec *domain.CredentialRecord) (*domain.CachedToken, error) {
	if persisted, err := c.store.PersistedAccessToken(ctx, rec.Identity); err == nil {
		if persisted.Fresh(c.now(), c.margin) {
			logger.Debug("warm start: reusing persisted token for %s", rec.Identity)
			return persisted, nil
		}
	} else if !errors.Is(err, domain.ErrNotFound) {
		logger.Warn("reading persisted token for %s: %v", rec.Identity, err)
	}

	tok, err := c.refresh(ctx, rec)
	if err != nil {
		return nil, err
	}

	// Cache-through persistence is best-effort: the in-memory result stands
	// even when the store write fails.
	if perr := c.store.PersistAccessToken(ctx, rec.Identity, tok.AccessToken, tok.ExpiresAt); perr != nil {
		logger.Warn("persisting refreshed token for %s: %v", rec.Identity, perr)
	}

	return tok, nil
}

// refresh runs the exchange with bounded retries. Invalid grants surface
// immediately; transient and rate-limit failures retry with non-decreasing
// backoff, honouring the provider's Retry-After when it is longer.
func (c *TokenCache) refresh(ctx context.Context, rec *domain.CredentialRecord) (*domain.CachedToken, error) {
	flightID := uuid.NewString()
	logger.Debug("refresh %s: exchanging token for %s", flightID, rec.Identity)

	delay := c.baseBackoff
	for attempt := 1; ; attempt++ {
		tok, err := c.exchanger.Exchange(ctx, rec.ClientID, rec.ClientSecret, rec.RefreshToken)
		if err == nil {
			logger.Debug("refresh %s: got token %s (expires %s)",
				flightID, logger.Redact(tok.AccessToken), tok.ExpiresAt.Format(time.RFC3339))
			return tok, nil
		}

		if !domain.IsRetryable(err) {
			logger.Warn("refresh %s: permanent failure for %s: %v", flightID, rec.Identity, err)
			return nil, err
		}
		if attempt >= c.maxAttempts {
			return nil, fmt.Errorf("token exchange failed after %d attempts: %w", attempt, err)
		}

		wait := delay
		var rle *domain.RateLimitError
		if errors.As(err, &rle) && rle.RetryAfter > wait {
			wait = rle.RetryAfter
		}
		logger.Warn("refresh %s: attempt %d failed (%v), retrying in %s", flightID, attempt, err, wait)
		if serr := c.sleep(ctx, wait); serr != nil {
			return nil, serr
		}
		delay *= 2
	}
}
