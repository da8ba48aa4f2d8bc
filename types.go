package goLogin

import (
	"context"
	"io"
	"log/slog"
	"time"

	internalaudit "github.com/MrEthical07/goLogin/internal/audit"
	"github.com/MrEthical07/goLogin/jwt"
	"github.com/MrEthical07/goLogin/session"
	"github.com/MrEthical07/goLogin/userstore"
)

// LoginRequest is the credential pair of one login invocation. It is never
// persisted.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginResult is the success payload of a login.
type LoginResult struct {
	SessionID string    `json:"sessionID"`
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"-"`
}

// Invocation is the inbound envelope handed over by the entry point.
type Invocation struct {
	Payload LoginRequest `json:"payload"`
}

// Response is the success output of Invoke.
type Response struct {
	Success bool         `json:"success"`
	Data    *LoginResult `json:"data"`
}

// Callback receives exactly one of a failure or a response.
type Callback func(err error, resp *Response)

// UserRecord is the stored credential material of one account.
type UserRecord = userstore.Record

// SessionClaims are the verified claims of a session token.
type SessionClaims = jwt.SessionClaims

// UserStore reads user records addressed by table and email. Implementations
// return an error matching userstore.ErrNotFound for unknown emails.
//
//	Implementations: userstore.Redis, userstore.SQLite, userstore.Datastore, userstore.Memory
type UserStore interface {
	Get(ctx context.Context, table, email string) (UserRecord, error)
}

// Hasher is the deterministic hashing primitive applied to (password, salt).
type Hasher interface {
	Hash(password, salt string) (string, error)
}

// CacheConn is one invocation-scoped connection to the session cache.
type CacheConn interface {
	Set(ctx context.Context, segment, id, value string, ttl time.Duration) error
	Get(ctx context.Context, segment, id string) (string, error)
	Disconnect() error
}

// CacheConnector opens independent cache connections, one per invocation.
type CacheConnector interface {
	Connect(ctx context.Context) (CacheConn, error)
}

// ValidationMode selects how much of a session ValidateSession checks.
type ValidationMode int

const (
	// ModeJWTOnly verifies signature, expiry and application tag only.
	ModeJWTOnly ValidationMode = iota
	// ModeStrict additionally requires the cached copy of the token to match.
	ModeStrict
)

func (m ValidationMode) String() string {
	switch m {
	case ModeJWTOnly:
		return "jwt_only"
	case ModeStrict:
		return "strict"
	default:
		return "unknown"
	}
}

type redisConnector struct {
	connector *session.Connector
}

func (r redisConnector) Connect(ctx context.Context) (CacheConn, error) {
	conn, err := r.connector.Connect(ctx)
	if err != nil {
		return nil, err
	}
	return conn, nil
}

// AuditEvent is one structured audit record.
type AuditEvent = internalaudit.Event

// AuditSink receives audit events from the dispatcher goroutine.
type AuditSink = internalaudit.Sink

// NoOpSink discards every event.
type NoOpSink = internalaudit.NoOpSink

// ChannelSink forwards events to a buffered channel.
type ChannelSink = internalaudit.ChannelSink

// JSONWriterSink writes one JSON object per line.
type JSONWriterSink = internalaudit.JSONWriterSink

// SlogSink logs each event through a *slog.Logger.
type SlogSink = internalaudit.SlogSink

// NewSlogSink returns a sink logging through logger.
func NewSlogSink(logger *slog.Logger) *SlogSink {
	return internalaudit.NewSlogSink(logger)
}

// NewChannelSink returns a ChannelSink with the given buffer.
func NewChannelSink(buffer int) *ChannelSink {
	return internalaudit.NewChannelSink(buffer)
}

// NewJSONWriterSink returns a sink writing JSON lines to w.
func NewJSONWriterSink(w io.Writer) *JSONWriterSink {
	return internalaudit.NewJSONWriterSink(w)
}
