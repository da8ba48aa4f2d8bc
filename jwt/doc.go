// Package jwt issues and verifies self-contained session tokens.
//
// A token asserts the caller's email, the application tag, a role list, and a random
// UUID v4 session identifier, and expires a fixed TTL (12 days by default) after issuance.
// Any holder of the signing secret (HS256) or public key (Ed25519) can verify it without
// contacting the issuer.
package jwt
