package goLogin

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/MrEthical07/goLogin/jwt"
	"github.com/MrEthical07/goLogin/password"
	"github.com/MrEthical07/goLogin/session"
	"github.com/MrEthical07/goLogin/userstore"
	"github.com/MrEthical07/goLogin/validation"
)

// Config defines the immutable settings of a login Engine.
type Config struct {
	Token      TokenConfig
	Cache      CacheConfig
	UserStore  UserStoreConfig
	Password   PasswordConfig
	Validation ValidationConfig
	Audit      AuditConfig
	Metrics    MetricsConfig
}

/*
====================================
TOKEN CONFIG
====================================
*/

// TokenConfig controls how session tokens are signed and verified.
type TokenConfig struct {
	TTL           time.Duration
	SigningMethod string // "hs256" (default), "ed25519" optional
	PrivateKey    []byte // HS256 secret or Ed25519 private key
	PublicKey     []byte
	Application   string
	Issuer        string
	KeyID         string
	Leeway        time.Duration
}

/*
====================================
CACHE CONFIG
====================================
*/

// CacheConfig controls the session cache key layout.
type CacheConfig struct {
	Prefix  string
	Segment string
}

/*
====================================
USER STORE CONFIG
====================================
*/

// UserStoreConfig names the table (or kind) user records are read from.
type UserStoreConfig struct {
	Table string
}

/*
====================================
PASSWORD CONFIG
====================================
*/

// PasswordConfig holds the Argon2id parameters of the default hasher.
type PasswordConfig = password.Config

// ValidationConfig controls credential validation.
type ValidationConfig struct {
	MinPasswordLength int
}

// AuditConfig controls the asynchronous audit dispatcher.
type AuditConfig struct {
	Enabled    bool
	BufferSize int
	DropIfFull bool
}

// MetricsConfig controls in-process counters and latency histograms.
type MetricsConfig struct {
	Enabled                 bool
	EnableLatencyHistograms bool
}

// DefaultConfig returns the baseline configuration. A signing secret must
// still be supplied in Token.PrivateKey before Build.
func DefaultConfig() Config {
	return Config{
		Token: TokenConfig{
			TTL:           jwt.DefaultTTL,
			SigningMethod: string(jwt.MethodHS256),
			Application:   jwt.DefaultApplication,
		},
		Cache: CacheConfig{
			Prefix:  "",
			Segment: session.SegmentLogins,
		},
		UserStore: UserStoreConfig{
			Table: userstore.DefaultTable,
		},
		Password: password.DefaultConfig(),
		Validation: ValidationConfig{
			MinPasswordLength: validation.DefaultMinPasswordLength,
		},
		Audit: AuditConfig{
			Enabled:    false,
			BufferSize: 1024,
			DropIfFull: true,
		},
		Metrics: MetricsConfig{
			Enabled:                 false,
			EnableLatencyHistograms: false,
		},
	}
}

func cloneConfig(cfg Config) Config {
	out := cfg
	out.Token.PrivateKey = cloneBytes(cfg.Token.PrivateKey)
	out.Token.PublicKey = cloneBytes(cfg.Token.PublicKey)
	return out
}

func cloneBytes(b []byte) []byte {
	if len(b) == 0 {
		return nil
	}
	out := make([]byte, len(b))
	copy(out, b)
	return out
}

/*
====================================
VALIDATION
====================================
*/

// Validate reports the first invalid setting. It does not mutate the receiver.
func (c *Config) Validate() error {
	if c.Token.TTL <= 0 {
		return errors.New("Token TTL must be > 0")
	}
	if c.Token.Leeway < 0 || c.Token.Leeway > 2*time.Minute {
		return errors.New("Token Leeway must be between 0 and 2m")
	}
	switch strings.ToLower(c.Token.SigningMethod) {
	case string(jwt.MethodHS256):
		if len(c.Token.PrivateKey) == 0 {
			return errors.New("hs256 requires PrivateKey")
		}
	case string(jwt.MethodEd25519):
		if len(c.Token.PrivateKey) == 0 {
			return errors.New("ed25519 requires PrivateKey")
		}
		if len(c.Token.PublicKey) == 0 {
			return errors.New("ed25519 requires PublicKey")
		}
	default:
		return errors.New("unsupported Token signing method")
	}
	if strings.TrimSpace(c.Token.Application) == "" {
		return errors.New("Token Application is required")
	}

	if strings.TrimSpace(c.Cache.Segment) == "" {
		return errors.New("Cache Segment is required")
	}
	if strings.ContainsAny(c.Cache.Prefix+c.Cache.Segment, " \t\r\n") {
		return errors.New("Cache Prefix and Segment must not contain whitespace")
	}

	if strings.TrimSpace(c.UserStore.Table) == "" {
		return errors.New("UserStore Table is required")
	}

	if err := c.Password.Validate(); err != nil {
		return fmt.Errorf("Password: %w", err)
	}

	if c.Validation.MinPasswordLength < 1 {
		return errors.New("Validation MinPasswordLength must be >= 1")
	}

	if c.Audit.Enabled && c.Audit.BufferSize <= 0 {
		return errors.New("Audit BufferSize must be > 0 when audit is enabled")
	}

	return nil
}
