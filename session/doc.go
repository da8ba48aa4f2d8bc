// Package session provides the Redis-backed cache gateway that records issued login
// sessions for fast existence checks.
//
// # Lifecycle
//
// A [Connector] is configured once per process. Every login invocation opens its own
// [Conn] with [Connector.Connect], writes the session entry, and releases the
// connection with [Conn.Disconnect] on every exit path.
//
// # Key layout
//
//	<prefix>:<segment>:<id>
//
// Login sessions live in the [SegmentLogins] segment keyed by session ID, with the
// token as the value and a TTL equal to the token lifetime.
//
// # What this package must NOT do
//
//   - Import goLogin, jwt, or userstore (no upward imports).
//   - Interpret token contents.
//   - Retry failed writes; callers decide how a failure surfaces.
package session
