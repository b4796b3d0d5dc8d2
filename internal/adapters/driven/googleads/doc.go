// Package googleads bridges the credential gateway to HTTP clients for the
// Google Ads API. Downstream feature handlers obtain an authenticated client
// here instead of touching tokens directly: the oauth2.TokenSource pulls a
// fresh access token from the gateway per request, and the transport injects
// the developer-token header the Ads API requires alongside OAuth.
//
// The Ads query semantics themselves (which fields, which reports) belong to
// the feature handlers, not this package.
package googleads
