package domain

import (
	"strings"
	"time"
)

// IdentityKind distinguishes user-owned credentials from the platform-wide
// shared account.
type IdentityKind string

const (
	// IdentityUser marks credentials supplied by a specific user.
	IdentityUser IdentityKind = "user"
	// IdentityShared marks the platform's shared fallback credentials.
	IdentityShared IdentityKind = "shared"
)

// Identity is the logical owner of a credential set. It is comparable and is
// used as the cache key for tokens and in-flight refreshes.
type Identity struct {
	Kind   IdentityKind
	UserID string
}

// UserIdentity returns the identity for a specific user's own credentials.
func UserIdentity(userID string) Identity {
	return Identity{Kind: IdentityUser, UserID: userID}
}

// SharedIdentity returns the platform-wide shared identity.
func SharedIdentity() Identity {
	return Identity{Kind: IdentityShared}
}

// IsShared returns true for the shared platform identity.
func (i Identity) IsShared() bool {
	return i.Kind == IdentityShared
}

// String renders the identity as a stable key, e.g. "user:u-42" or "shared".
func (i Identity) String() string {
	if i.Kind == IdentityShared {
		return string(IdentityShared)
	}
	return string(i.Kind) + ":" + i.UserID
}

// CredentialRecord is one set of Google Ads API credentials bound to either a
// specific user or the shared platform identity.
//
// The long-lived secrets (ClientID, ClientSecret, RefreshToken) are written
// only by explicit user setup, never by the refresh path.
type CredentialRecord struct {
	// Identity is the owner of this credential set.
	Identity Identity `json:"-"`

	// CustomerID is the target Ads account, digits only (see NormalizeCustomerID).
	CustomerID string `json:"customer_id"`

	// DeveloperToken is the static API-level key required on every Ads call.
	DeveloperToken string `json:"developer_token"`

	// ClientID and ClientSecret identify the OAuth application.
	ClientID     string `json:"client_id"`
	ClientSecret string `json:"client_secret"`

	// RefreshToken is the long-lived grant used to mint access tokens.
	RefreshToken string `json:"refresh_token"`

	// UsesOwnCredentials is true when the user supplied their own refresh
	// token rather than relying on the shared platform credentials.
	UsesOwnCredentials bool `json:"uses_own_credentials"`

	// CreatedAt is when the record was first stored.
	CreatedAt time.Time `json:"created_at"`
	// UpdatedAt is when the record was last overwritten.
	UpdatedAt time.Time `json:"updated_at"`
}

// Usable returns true only when every field required for an API call is
// present. A record that is not usable must never be handed to the token
// layer; resolution falls through to the shared record instead.
func (r *CredentialRecord) Usable() bool {
	return r.DeveloperToken != "" &&
		r.RefreshToken != "" &&
		r.ClientID != "" &&
		r.ClientSecret != "" &&
		r.CustomerID != ""
}

// NormalizeCustomerID strips the optional "customers/" resource prefix,
// dashes and surrounding whitespace from an Ads customer id, yielding the
// digits-only form the API expects. Applying it twice yields the same result
// as applying it once.
func NormalizeCustomerID(id string) string {
	id = strings.TrimSpace(id)
	id = strings.TrimPrefix(id, "customers/")
	id = strings.ReplaceAll(id, "-", "")
	return id
}

// CachedToken is a short-lived bearer token together with its absolute
// expiry. The token cache owns these; they are never persisted as the source
// of truth, only cached through.
type CachedToken struct {
	AccessToken string
	ExpiresAt   time.Time
}

// Fresh reports whether the token is still safe to hand out at the given
// instant. The safety margin guards against the token expiring mid-flight in
// the call that will use it.
func (t *CachedToken) Fresh(now time.Time, margin time.Duration) bool {
	if t.AccessToken == "" {
		return false
	}
	return t.ExpiresAt.After(now.Add(margin))
}

// CallContext is everything a downstream feature handler needs to call the
// Ads API: bearer token and developer token for the request headers, and the
// customer id for the path. It deliberately excludes the client secret and
// refresh token.
type CallContext struct {
	AccessToken    string
	DeveloperToken string
	CustomerID     string
}
