package googleads

import (
	"errors"
	"net/http"

	"google.golang.org/api/googleapi"

	"github.com/liftly-labs/adsgate/internal/core/domain"
)

// IsUnauthorized returns true if the error indicates invalid or expired
// credentials. Callers should invalidate the cached token and retry once.
func IsUnauthorized(err error) bool {
	if errors.Is(err, domain.ErrInvalidGrant) {
		return true
	}
	var gerr *googleapi.Error
	if errors.As(err, &gerr) {
		return gerr.Code == http.StatusUnauthorized
	}
	return false
}

// IsRateLimited returns true if the error indicates API rate limiting or
// quota exhaustion.
func IsRateLimited(err error) bool {
	if errors.Is(err, domain.ErrRateLimited) {
		return true
	}
	var gerr *googleapi.Error
	if errors.As(err, &gerr) {
		return gerr.Code == http.StatusTooManyRequests
	}
	return false
}

// IsRetryable returns true if the operation may succeed on retry.
func IsRetryable(err error) bool {
	if domain.IsRetryable(err) {
		return true
	}
	var gerr *googleapi.Error
	if errors.As(err, &gerr) {
		return gerr.Code == http.StatusTooManyRequests || gerr.Code >= 500
	}
	return false
}

// WrapError converts a Google API error into the matching domain error so
// callers can classify failures without importing googleapi.
func WrapError(err error) error {
	if err == nil {
		return nil
	}

	var gerr *googleapi.Error
	if !errors.As(err, &gerr) {
		return err
	}

	switch {
	case gerr.Code == http.StatusUnauthorized:
		return domain.ErrInvalidGrant
	case gerr.Code == http.StatusTooManyRequests:
		return domain.ErrRateLimited
	case gerr.Code >= 500:
		return domain.ErrTransient
	default:
		return err
	}
}
