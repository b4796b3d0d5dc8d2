// Package services implements the core business logic for adsgate.
//
// Services implement the driving ports and depend only on domain types and
// driven ports. Everything here is infrastructure-free: storage and the OAuth
// token endpoint are reached exclusively through the driven interfaces.
//
//   - Resolver: decides whose credentials apply to a user (own vs shared)
//   - TokenCache: keeps access tokens fresh, one refresh in flight per identity
//   - GatewayService: the facade downstream handlers consume
//   - CredentialsSetup: validates and stores user-submitted credentials
package services
