package domain

import (
	"errors"
	"fmt"
	"time"
)

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrNotConfigured indicates the shared platform credentials are absent.
	// Expected during resolution; the caller falls through or fails with
	// ErrNoCredentials.
	ErrNotConfigured = errors.New("shared credentials not configured")

	// ErrNoCredentials indicates a user has neither usable own credentials
	// nor a usable shared fallback. User-actionable: set up API access.
	ErrNoCredentials = errors.New("no API credentials configured")

	// ErrInvalidGrant indicates the refresh token was rejected by the OAuth
	// provider (revoked or expired). User-actionable: reconnect the account.
	// Never retried.
	ErrInvalidGrant = errors.New("refresh token rejected by provider")

	// ErrClientRejected indicates the OAuth provider rejected the client
	// itself (e.g. invalid_client, unauthorized_client). Operator-actionable:
	// the registered OAuth app is misconfigured. Never retried.
	ErrClientRejected = errors.New("oauth client rejected by provider")

	// ErrTransient indicates a temporary network or provider failure.
	// Safe to retry with backoff.
	ErrTransient = errors.New("transient token exchange failure")

	// ErrRateLimited indicates the token endpoint rate limit was exceeded.
	// Retried after the provider-specified delay when one is present.
	ErrRateLimited = errors.New("token endpoint rate limited")

	// ErrStorageUnavailable indicates the credential store itself is broken.
	// Fatal for resolution: falling back to shared credentials on a storage
	// outage would attribute calls to the wrong identity.
	ErrStorageUnavailable = errors.New("credential storage unavailable")
)

// RateLimitError is returned by the token exchange client on HTTP 429.
// RetryAfter is zero when the provider gave no delay hint.
type RateLimitError struct {
	RetryAfter time.Duration
}

// Error implements the error interface.
func (e *RateLimitError) Error() string {
	if e.RetryAfter > 0 {
		return fmt.Sprintf("token endpoint rate limited, retry after %s", e.RetryAfter)
	}
	return ErrRateLimited.Error()
}

// Is makes RateLimitError match ErrRateLimited under errors.Is.
func (e *RateLimitError) Is(target error) bool {
	return target == ErrRateLimited
}

// IsRetryable reports whether an exchange failure may be retried.
// Invalid grants and storage outages are never retryable here.
func IsRetryable(err error) bool {
	return errors.Is(err, ErrTransient) || errors.Is(err, ErrRateLimited)
}
