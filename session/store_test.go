package session

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func newConnectorTest(t *testing.T) (*Connector, *miniredis.Miniredis) {
	t.Helper()
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("miniredis start: %v", err)
	}
	t.Cleanup(mr.Close)
	return NewConnector(&redis.Options{Addr: mr.Addr()}, "gl"), mr
}

func TestSetWritesEntryWithTTL(t *testing.T) {
	connector, mr := newConnectorTest(t)
	ctx := context.Background()

	conn, err := connector.Connect(ctx)
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	defer conn.Disconnect()

	if err := conn.Set(ctx, SegmentLogins, "sid-1", "token-1", time.Hour); err != nil {
		t.Fatalf("set: %v", err)
	}

	got, err := mr.Get("gl:logins:sid-1")
	if err != nil {
		t.Fatalf("miniredis get: %v", err)
	}
	if got != "token-1" {
		t.Fatalf("expected token-1, got %q", got)
	}
	if ttl := mr.TTL("gl:logins:sid-1"); ttl != time.Hour {
		t.Fatalf("expected 1h ttl, got %v", ttl)
	}

	value, err := conn.Get(ctx, SegmentLogins, "sid-1")
	if err != nil || value != "token-1" {
		t.Fatalf("expected get token-1, got %q err=%v", value, err)
	}
}

func TestSetIsWriteOnce(t *testing.T) {
	connector, _ := newConnectorTest(t)
	ctx := context.Background()

	conn, err := connector.Connect(ctx)
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	defer conn.Disconnect()

	if err := conn.Set(ctx, SegmentLogins, "sid-1", "first", time.Minute); err != nil {
		t.Fatalf("first set: %v", err)
	}
	if err := conn.Set(ctx, SegmentLogins, "sid-1", "second", time.Minute); !errors.Is(err, ErrEntryExists) {
		t.Fatalf("expected ErrEntryExists, got %v", err)
	}
	value, _ := conn.Get(ctx, SegmentLogins, "sid-1")
	if value != "first" {
		t.Fatalf("expected original value to survive, got %q", value)
	}
}

func TestGetMissingEntry(t *testing.T) {
	connector, _ := newConnectorTest(t)
	ctx := context.Background()

	conn, err := connector.Connect(ctx)
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	defer conn.Disconnect()

	if _, err := conn.Get(ctx, SegmentLogins, "missing"); !errors.Is(err, ErrEntryNotFound) {
		t.Fatalf("expected ErrEntryNotFound, got %v", err)
	}
}

func TestEmptyKeyPartsRejected(t *testing.T) {
	connector, _ := newConnectorTest(t)
	ctx := context.Background()

	conn, err := connector.Connect(ctx)
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	defer conn.Disconnect()

	if err := conn.Set(ctx, "", "sid", "v", 0); !errors.Is(err, ErrInvalidKey) {
		t.Fatalf("expected ErrInvalidKey for empty segment, got %v", err)
	}
	if _, err := conn.Get(ctx, SegmentLogins, ""); !errors.Is(err, ErrInvalidKey) {
		t.Fatalf("expected ErrInvalidKey for empty id, got %v", err)
	}
}

func TestDisconnectIsIdempotentAndBlocksFurtherUse(t *testing.T) {
	connector, _ := newConnectorTest(t)
	ctx := context.Background()

	conn, err := connector.Connect(ctx)
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	if err := conn.Disconnect(); err != nil {
		t.Fatalf("first disconnect: %v", err)
	}
	if err := conn.Disconnect(); err != nil {
		t.Fatalf("second disconnect: %v", err)
	}
	if err := conn.Set(ctx, SegmentLogins, "sid", "v", 0); !errors.Is(err, ErrConnClosed) {
		t.Fatalf("expected ErrConnClosed, got %v", err)
	}
}

func TestConnectFailsWhenServerDown(t *testing.T) {
	connector, mr := newConnectorTest(t)
	mr.Close()

	if _, err := connector.Connect(context.Background()); !errors.Is(err, ErrRedisUnavailable) {
		t.Fatalf("expected ErrRedisUnavailable, got %v", err)
	}
}

func TestConnectionsAreIndependent(t *testing.T) {
	connector, _ := newConnectorTest(t)
	ctx := context.Background()

	a, err := connector.Connect(ctx)
	if err != nil {
		t.Fatalf("connect a: %v", err)
	}
	b, err := connector.Connect(ctx)
	if err != nil {
		t.Fatalf("connect b: %v", err)
	}
	defer b.Disconnect()

	_ = a.Disconnect()
	if err := b.Set(ctx, SegmentLogins, "sid-b", "v", time.Minute); err != nil {
		t.Fatalf("expected second connection to stay usable, got %v", err)
	}
}

func TestNewConnectorFromURL(t *testing.T) {
	_, mr := newConnectorTest(t)
	connector, err := NewConnectorFromURL("redis://"+mr.Addr()+"/0", "")
	if err != nil {
		t.Fatalf("from url: %v", err)
	}
	ctx := context.Background()
	conn, err := connector.Connect(ctx)
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	defer conn.Disconnect()

	if err := conn.Set(ctx, SegmentLogins, "sid", "tok", 0); err != nil {
		t.Fatalf("set: %v", err)
	}
	if !mr.Exists("logins:sid") {
		t.Fatal("expected unprefixed key logins:sid")
	}

	if _, err := NewConnectorFromURL("http://bad", ""); err == nil {
		t.Fatal("expected url parse error")
	}
}
