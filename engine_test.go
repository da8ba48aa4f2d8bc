package goLogin

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/MrEthical07/goLogin/password"
	"github.com/MrEthical07/goLogin/session"
	"github.com/MrEthical07/goLogin/userstore"
	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

const (
	testEmail    = "a@b.com"
	testPassword = "secret1"
	testSecret   = "0123456789abcdef0123456789abcdef"
)

func testConfig() Config {
	cfg := DefaultConfig()
	cfg.Token.PrivateKey = []byte(testSecret)
	cfg.Password = PasswordConfig{
		Memory:      8 * 1024,
		Time:        1,
		Parallelism: 1,
		SaltLength:  16,
		KeyLength:   32,
	}
	return cfg
}

func newTestHasher(t testing.TB) *password.Argon2 {
	t.Helper()

	h, err := password.NewArgon2(testConfig().Password)
	if err != nil {
		t.Fatalf("NewArgon2 failed: %v", err)
	}
	return h
}

func newTestRedis(t testing.TB) *miniredis.Miniredis {
	t.Helper()

	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("miniredis.Run failed: %v", err)
	}
	t.Cleanup(mr.Close)
	return mr
}

// seedUser writes a record whose hash was computed from its own salt.
func seedUser(t testing.TB, store *userstore.Memory, hasher *password.Argon2, email, pw string, verified bool) {
	t.Helper()

	salt, err := hasher.NewSalt()
	if err != nil {
		t.Fatalf("NewSalt failed: %v", err)
	}
	hash, err := hasher.Hash(pw, salt)
	if err != nil {
		t.Fatalf("Hash failed: %v", err)
	}
	if err := store.Put(context.Background(), userstore.DefaultTable, userstore.Record{
		Email:        email,
		PasswordHash: hash,
		PasswordSalt: salt,
		Verified:     verified,
	}); err != nil {
		t.Fatalf("Put failed: %v", err)
	}
}

// countingStore records every lookup.
type countingStore struct {
	mu    sync.Mutex
	inner UserStore
	gets  int
	err   error
}

func (s *countingStore) Get(ctx context.Context, table, email string) (UserRecord, error) {
	s.mu.Lock()
	s.gets++
	s.mu.Unlock()
	if s.err != nil {
		return UserRecord{}, s.err
	}
	return s.inner.Get(ctx, table, email)
}

func (s *countingStore) Gets() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.gets
}

// countingHasher records every hash computation.
type countingHasher struct {
	mu     sync.Mutex
	inner  Hasher
	hashes int
}

func (h *countingHasher) Hash(pw, salt string) (string, error) {
	h.mu.Lock()
	h.hashes++
	h.mu.Unlock()
	return h.inner.Hash(pw, salt)
}

func (h *countingHasher) Hashes() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.hashes
}

// fakeCache is an in-memory CacheConnector tracking connection lifecycle.
type fakeCache struct {
	mu          sync.Mutex
	entries     map[string]string
	connects    int
	disconnects int
	connectErr  error
	setErr      error
}

func newFakeCache() *fakeCache {
	return &fakeCache{entries: map[string]string{}}
}

func (c *fakeCache) Connect(context.Context) (CacheConn, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.connects++
	if c.connectErr != nil {
		return nil, c.connectErr
	}
	return &fakeCacheConn{cache: c}, nil
}

func (c *fakeCache) counts() (int, int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.connects, c.disconnects
}

func (c *fakeCache) entry(segment, id string) (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	v, ok := c.entries[segment+":"+id]
	return v, ok
}

func (c *fakeCache) size() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

type fakeCacheConn struct {
	cache  *fakeCache
	closed bool
}

func (f *fakeCacheConn) Set(_ context.Context, segment, id, value string, _ time.Duration) error {
	f.cache.mu.Lock()
	defer f.cache.mu.Unlock()
	if f.closed {
		return session.ErrConnClosed
	}
	if f.cache.setErr != nil {
		return f.cache.setErr
	}
	f.cache.entries[segment+":"+id] = value
	return nil
}

func (f *fakeCacheConn) Get(_ context.Context, segment, id string) (string, error) {
	f.cache.mu.Lock()
	defer f.cache.mu.Unlock()
	if f.closed {
		return "", session.ErrConnClosed
	}
	v, ok := f.cache.entries[segment+":"+id]
	if !ok {
		return "", session.ErrEntryNotFound
	}
	return v, nil
}

func (f *fakeCacheConn) Disconnect() error {
	f.cache.mu.Lock()
	defer f.cache.mu.Unlock()
	if !f.closed {
		f.closed = true
		f.cache.disconnects++
	}
	return nil
}

type fakeHarness struct {
	engine *Engine
	store  *countingStore
	hasher *countingHasher
	cache  *fakeCache
}

func newFakeHarness(t *testing.T, cfg Config, sink AuditSink) *fakeHarness {
	t.Helper()

	argon := newTestHasher(t)
	mem := userstore.NewMemory()
	seedUser(t, mem, argon, testEmail, testPassword, true)
	seedUser(t, mem, argon, "pending@b.com", testPassword, false)

	h := &fakeHarness{
		store:  &countingStore{inner: mem},
		hasher: &countingHasher{inner: argon},
		cache:  newFakeCache(),
	}

	engine, err := New().
		WithConfig(cfg).
		WithCache(h.cache).
		WithUserStore(h.store).
		WithHasher(h.hasher).
		WithAuditSink(sink).
		Build()
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	t.Cleanup(engine.Close)
	h.engine = engine
	return h
}

func newRedisEngine(t testing.TB, cfg Config) (*Engine, *miniredis.Miniredis, *userstore.Memory) {
	t.Helper()

	mr := newTestRedis(t)
	mem := userstore.NewMemory()
	seedUser(t, mem, newTestHasher(t), testEmail, testPassword, true)

	engine, err := New().
		WithConfig(cfg).
		WithRedis(&redis.Options{Addr: mr.Addr()}).
		WithUserStore(mem).
		Build()
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	t.Cleanup(engine.Close)
	return engine, mr, mem
}

func TestBuildRequiresCollaborators(t *testing.T) {
	store := userstore.NewMemory()

	if _, err := New().WithConfig(testConfig()).WithUserStore(store).Build(); err == nil {
		t.Fatal("expected error without cache")
	}
	if _, err := New().WithConfig(testConfig()).WithCache(newFakeCache()).Build(); err == nil {
		t.Fatal("expected error without user store")
	}

	cfg := testConfig()
	cfg.Token.PrivateKey = nil
	if _, err := New().WithConfig(cfg).WithCache(newFakeCache()).WithUserStore(store).Build(); err == nil {
		t.Fatal("expected error without signing secret")
	}

	b := New().WithConfig(testConfig()).WithCache(newFakeCache()).WithUserStore(store)
	if _, err := b.Build(); err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	if _, err := b.Build(); err == nil {
		t.Fatal("expected error on builder reuse")
	}
}

func TestZeroEngineIsNotReady(t *testing.T) {
	var e Engine
	_, err := e.Login(context.Background(), LoginRequest{Email: testEmail, Password: testPassword})
	if !errors.Is(err, ErrEngineNotReady) {
		t.Fatalf("expected ErrEngineNotReady, got %v", err)
	}
	if AsError(err).StatusCode() != 500 {
		t.Fatalf("expected 500, got %d", AsError(err).StatusCode())
	}

	if _, err := e.ValidateSession(context.Background(), "x", ModeJWTOnly); !errors.Is(err, ErrEngineNotReady) {
		t.Fatalf("expected ErrEngineNotReady, got %v", err)
	}
}
