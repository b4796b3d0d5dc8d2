// Package oauth implements the driven.TokenExchanger port against a real
// OAuth token endpoint: the refresh-token grant, error classification into
// the domain taxonomy, and client-side rate limiting of the endpoint.
//
// Only the refresh leg lives here. The authorization-code exchange that
// mints the refresh token in the first place is handled by the dashboard's
// onboarding flow, outside this repository.
package oauth
