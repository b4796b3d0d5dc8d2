// Package sqlite provides the SQLite-backed secret store: the system of
// record for user credential records, plus cache-through persistence of
// refreshed access tokens so a restarted process does not re-mint tokens
// that are still valid.
//
// Shared platform credentials do not live in the database; they come from
// the configuration source the store is constructed with.
package sqlite
