// Package driving defines the interfaces through which the outside world
// calls INTO the core.
//
// These are the "driving" or "primary" ports in hexagonal architecture.
// Core services implement them; the CLI and downstream feature handlers
// consume them.
//
//   - Gateway: the sole entry point handlers use to obtain a valid call context
//   - CredentialsService: user credential setup
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: Any adapter package
package driving
