package session

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/redis/go-redis/v9"
)

var (
	// ErrRedisUnavailable wraps transport failures from the cache.
	ErrRedisUnavailable = errors.New("redis unavailable")
	// ErrEntryNotFound is returned by Get when no entry exists for the key.
	ErrEntryNotFound = errors.New("cache entry not found")
	// ErrEntryExists is returned by Set when the key was already written.
	ErrEntryExists = errors.New("cache entry already exists")
	// ErrConnClosed is returned by operations on a disconnected Conn.
	ErrConnClosed = errors.New("cache connection closed")
	// ErrInvalidKey is returned when a segment or id is empty.
	ErrInvalidKey = errors.New("cache segment and id are required")
)

// Connector opens cache connections. Each Connect returns an independent
// connection, so concurrent invocations never share a client.
type Connector struct {
	options *redis.Options
	prefix  string
}

// NewConnector creates a Connector that dials the Redis server described by opts.
// prefix namespaces every key; it may be empty.
func NewConnector(opts *redis.Options, prefix string) *Connector {
	return &Connector{
		options: opts,
		prefix:  prefix,
	}
}

// NewConnectorFromURL parses a redis:// or rediss:// URL into a Connector.
func NewConnectorFromURL(rawURL, prefix string) (*Connector, error) {
	opts, err := redis.ParseURL(rawURL)
	if err != nil {
		return nil, fmt.Errorf("parse cache url: %w", err)
	}
	return NewConnector(opts, prefix), nil
}

// Connect dials the cache and confirms it answers PING.
func (c *Connector) Connect(ctx context.Context) (*Conn, error) {
	if c == nil || c.options == nil {
		return nil, fmt.Errorf("%w: connector not configured", ErrRedisUnavailable)
	}

	opts := *c.options
	client := redis.NewClient(&opts)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}

	return &Conn{client: client, prefix: c.prefix}, nil
}

// Conn is a single open cache connection. It is owned by one caller and must be
// released with Disconnect.
type Conn struct {
	client *redis.Client
	prefix string
	closed atomic.Bool
}

func (c *Conn) key(segment, id string) string {
	if c.prefix == "" {
		return segment + ":" + id
	}
	return c.prefix + ":" + segment + ":" + id
}

// Set writes value under segment/id and returns once the server acknowledges it.
// A ttl of zero stores the entry without expiry.
//
//	Performance: 1 Redis SET NX.
func (c *Conn) Set(ctx context.Context, segment, id, value string, ttl time.Duration) error {
	if c.closed.Load() {
		return ErrConnClosed
	}
	if segment == "" || id == "" {
		return ErrInvalidKey
	}

	_, err := c.client.SetArgs(ctx, c.key(segment, id), value, redis.SetArgs{
		Mode: "NX",
		TTL:  ttl,
	}).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return ErrEntryExists
		}
		return fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}

	return nil
}

// Get reads the value stored under segment/id.
//
//	Performance: 1 Redis GET.
func (c *Conn) Get(ctx context.Context, segment, id string) (string, error) {
	if c.closed.Load() {
		return "", ErrConnClosed
	}
	if segment == "" || id == "" {
		return "", ErrInvalidKey
	}

	value, err := c.client.Get(ctx, c.key(segment, id)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", ErrEntryNotFound
		}
		return "", fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}

	return value, nil
}

// Disconnect closes the connection. Calling it more than once is a no-op.
func (c *Conn) Disconnect() error {
	if c == nil || !c.closed.CompareAndSwap(false, true) {
		return nil
	}
	return c.client.Close()
}
