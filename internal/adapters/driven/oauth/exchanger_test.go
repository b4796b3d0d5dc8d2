package oauth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/liftly-labs/adsgate/internal/core/domain"
)

func newTestExchanger(handler http.HandlerFunc) (*Exchanger, *httptest.Server) {
	srv := httptest.NewServer(handler)
	ex := NewExchanger(WithTokenURL(srv.URL), WithHTTPClient(srv.Client()))
	return ex, srv
}

func TestExchanger_Success(t *testing.T) {
	var gotForm map[string]string
	ex, srv := newTestExchanger(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		gotForm = map[string]string{
			"grant_type":    r.PostFormValue("grant_type"),
			"client_id":     r.PostFormValue("client_id"),
			"client_secret": r.PostFormValue("client_secret"),
			"refresh_token": r.PostFormValue("refresh_token"),
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"access_token":"tok1","token_type":"Bearer","expires_in":3600}`))
	})
	defer srv.Close()

	before := time.Now()
	tok, err := ex.Exchange(context.Background(), "cid", "secret", "rt")
	require.NoError(t, err)

	assert.Equal(t, "tok1", tok.AccessToken)
	assert.Equal(t, map[string]string{
		"grant_type":    "refresh_token",
		"client_id":     "cid",
		"client_secret": "secret",
		"refresh_token": "rt",
	}, gotForm)

	// Expiry is absolute and computed at response time.
	assert.WithinDuration(t, before.Add(time.Hour), tok.ExpiresAt, 5*time.Second)
}

func TestExchanger_InvalidGrant(t *testing.T) {
	ex, srv := newTestExchanger(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":"invalid_grant","error_description":"Token has been expired or revoked."}`))
	})
	defer srv.Close()

	_, err := ex.Exchange(context.Background(), "cid", "secret", "rt")
	assert.ErrorIs(t, err, domain.ErrInvalidGrant)
	assert.Contains(t, err.Error(), "revoked")
}

func TestExchanger_InvalidClientIsNotInvalidGrant(t *testing.T) {
	ex, srv := newTestExchanger(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"error":"invalid_client","error_description":"The OAuth client was not found."}`))
	})
	defer srv.Close()

	_, err := ex.Exchange(context.Background(), "cid", "secret", "rt")

	// A broken OAuth app is an operator problem, not a revoked grant, and
	// must not be retried.
	assert.ErrorIs(t, err, domain.ErrClientRejected)
	assert.NotErrorIs(t, err, domain.ErrInvalidGrant)
	assert.False(t, domain.IsRetryable(err))
	assert.Contains(t, err.Error(), "invalid_client")
}

func TestExchanger_RateLimited(t *testing.T) {
	ex, srv := newTestExchanger(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Retry-After", "7")
		w.WriteHeader(http.StatusTooManyRequests)
	})
	defer srv.Close()

	_, err := ex.Exchange(context.Background(), "cid", "secret", "rt")
	assert.ErrorIs(t, err, domain.ErrRateLimited)

	var rle *domain.RateLimitError
	require.ErrorAs(t, err, &rle)
	assert.Equal(t, 7*time.Second, rle.RetryAfter)
}

func TestExchanger_ServerErrorIsTransient(t *testing.T) {
	ex, srv := newTestExchanger(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	})
	defer srv.Close()

	_, err := ex.Exchange(context.Background(), "cid", "secret", "rt")
	assert.ErrorIs(t, err, domain.ErrTransient)
}

func TestExchanger_TimeoutIsTransient(t *testing.T) {
	ex, srv := newTestExchanger(func(w http.ResponseWriter, _ *http.Request) {
		time.Sleep(200 * time.Millisecond)
		_, _ = w.Write([]byte(`{"access_token":"tok","expires_in":3600}`))
	})
	defer srv.Close()

	ex.client.Timeout = 50 * time.Millisecond

	_, err := ex.Exchange(context.Background(), "cid", "secret", "rt")
	assert.ErrorIs(t, err, domain.ErrTransient)
}

func TestExchanger_MalformedSuccessBodyIsTransient(t *testing.T) {
	ex, srv := newTestExchanger(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"access_token":""}`))
	})
	defer srv.Close()

	_, err := ex.Exchange(context.Background(), "cid", "secret", "rt")
	assert.ErrorIs(t, err, domain.ErrTransient)
}

func TestExchanger_EmptyInputs(t *testing.T) {
	ex := NewExchanger()
	_, err := ex.Exchange(context.Background(), "", "secret", "rt")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestParseRetryAfter(t *testing.T) {
	assert.Equal(t, time.Duration(0), parseRetryAfter(""))
	assert.Equal(t, time.Duration(0), parseRetryAfter("soon"))
	assert.Equal(t, time.Duration(0), parseRetryAfter("-3"))
	assert.Equal(t, 30*time.Second, parseRetryAfter("30"))
}

func TestRateLimiter_BackoffWindow(t *testing.T) {
	r := NewRateLimiter()
	r.RecordRateLimit(50 * time.Millisecond)

	start := time.Now()
	require.NoError(t, r.Wait(context.Background()))
	assert.GreaterOrEqual(t, time.Since(start), 50*time.Millisecond)
}

func TestRateLimiter_WaitRespectsContext(t *testing.T) {
	r := NewRateLimiter()
	r.RecordRateLimit(time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	err := r.Wait(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}
