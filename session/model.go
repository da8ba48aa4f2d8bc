package session

// SegmentLogins is the cache partition holding one entry per issued login session.
const SegmentLogins = "logins"

// Entry is a denormalized copy of a session token keyed by session ID within a segment.
// Entries are written once and expire with the token they mirror.
type Entry struct {
	Segment string
	ID      string
	Value   string
}
