// Package goLogin provides a login engine that authenticates a user by email
// and password, issues a signed session token, and records the session in a
// Redis-compatible cache for later validation.
//
// The package is designed for concurrent server workloads: Engine methods are
// safe to call from multiple goroutines after initialization through
// [Builder.Build].
//
// # Architecture boundaries
//
// goLogin is the public surface. It exposes [Engine], [Builder], [Config], the
// [Error] envelope type, and the collaborator interfaces ([UserStore],
// [Hasher], [CacheConnector]). Pipeline orchestration and audit dispatch live
// under internal/ and are never exported.
//
// # What this package must NOT do
//
//   - Hold a long-lived cache connection; each invocation opens and closes its own.
//   - Render collaborator error details into the error envelope.
//   - Log or audit plaintext passwords.
//   - Import any sub-package that re-imports goLogin (no import cycles).
package goLogin
