// Package domain defines the core business entities for adsgate.
//
// This package is part of the hexagonal architecture's innermost layer.
// It has NO external dependencies and defines the fundamental types:
//
//   - Identity: the logical owner of a credential set (a user or the shared platform account)
//   - CredentialRecord: one set of Google Ads API credentials bound to an identity
//   - CachedToken: a short-lived access token with its expiry
//   - CallContext: everything a downstream handler needs to call the Ads API
//
// # Architectural Position
//
// Domain is at the centre of the hexagon. It may only import
// the Go standard library. All other packages depend on domain,
// never the reverse.
//
// # Import Rules
//
//   - Can Import: Standard library only
//   - Cannot Import: Any internal/ package, any external dependency
package domain
