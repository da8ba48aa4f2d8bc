// Package password implements the salted hashing primitive used to verify login credentials.
//
// # Output format
//
// A hash is the standard base64 encoding of an Argon2id key derived from the raw password
// bytes and the stored salt string:
//
//	base64(argon2id(password, salt, t, m, p, keyLen))
//
// Hashing is deterministic for a given [Config], which is what lets a login compare a freshly
// computed candidate against the hash stored with the account.
//
// # Architecture boundaries
//
// This package owns hashing and comparison only. Password policy (minimum length) is enforced
// by the validation package before any hash is computed.
//
// # What this package must NOT do
//
//   - Store or retrieve passwords or salts; callers supply both.
//   - Import any other goLogin package.
//   - Log plaintext passwords or hash parameters at runtime.
package password
