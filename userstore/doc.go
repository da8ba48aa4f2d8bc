// Package userstore provides read access to stored login credentials.
//
// Every backend exposes the same single-key read, Get(ctx, table, email), and reports a
// missing account with [ErrNotFound]. Transport and storage faults are returned wrapped,
// never retried or swallowed.
//
// Backends:
//
//   - [Redis]     — one hash per account at "<table>:<email>".
//   - [SQLite]    — one row per account in table <table>.
//   - [Datastore] — one entity of kind <table> keyed by email.
//   - [Memory]    — in-process map for examples and tests.
//
// Put exists on every backend for seeding and operator tooling; the login path never writes.
package userstore
