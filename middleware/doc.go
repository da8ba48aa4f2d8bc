// Package middleware exposes HTTP middleware adapters for JWT-only and strict
// session enforcement built on top of goLogin.Engine.ValidateSession.
//
// # Guards
//
//   - [Guard] validates with an explicit mode.
//   - [RequireJWTOnly] verifies the token alone, no cache call.
//   - [RequireStrict] verifies the token and its cached copy.
//
// Each guard reads the Authorization header, calls Engine.ValidateSession, and
// injects the validated claims into the request context.
//
// # What this package must NOT do
//
//   - Parse or create tokens directly (delegates to Engine).
//   - Access the session cache (Engine handles I/O).
package middleware
