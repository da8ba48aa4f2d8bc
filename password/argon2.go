package password

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"io"

	"golang.org/x/crypto/argon2"
)

const (
	minMemoryKB    uint32 = 8 * 1024
	minTimeCost    uint32 = 1
	minParallelism uint8  = 1
	minSaltLength  uint32 = 16
	minKeyLength   uint32 = 16
)

// ErrEmptySalt is returned when a hash is requested without a salt.
var ErrEmptySalt = errors.New("password salt is empty")

// Config holds the Argon2id cost parameters.
type Config struct {
	Memory      uint32 // in KB
	Time        uint32
	Parallelism uint8
	SaltLength  uint32
	KeyLength   uint32
}

// DefaultConfig returns the parameters used when none are configured.
func DefaultConfig() Config {
	return Config{
		Memory:      64 * 1024,
		Time:        3,
		Parallelism: 2,
		SaltLength:  16,
		KeyLength:   32,
	}
}

// Argon2 is a deterministic salted hasher. The same password and salt always
// produce the same encoded hash, so stored records can be compared directly.
type Argon2 struct {
	config Config
}

// NewArgon2 validates cfg and returns a hasher.
func NewArgon2(cfg Config) (*Argon2, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &Argon2{config: cfg}, nil
}

// NewSalt returns a fresh random salt, base64 encoded, for a new account record.
func (a *Argon2) NewSalt() (string, error) {
	salt := make([]byte, a.config.SaltLength)
	if _, err := io.ReadFull(rand.Reader, salt); err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(salt), nil
}

// Hash derives the encoded hash of password under salt.
func (a *Argon2) Hash(password, salt string) (string, error) {
	// Password processing uses raw string bytes exactly as provided (no Unicode normalization).
	if salt == "" {
		return "", ErrEmptySalt
	}

	key := argon2.IDKey(
		[]byte(password),
		[]byte(salt),
		a.config.Time,
		a.config.Memory,
		a.config.Parallelism,
		a.config.KeyLength,
	)

	return base64.StdEncoding.EncodeToString(key), nil
}

// Verify recomputes the hash of password under salt and compares it with storedHash.
func (a *Argon2) Verify(password, salt, storedHash string) (bool, error) {
	candidate, err := a.Hash(password, salt)
	if err != nil {
		return false, err
	}
	return Equal(candidate, storedHash), nil
}

// Equal compares two encoded hashes in constant time.
func Equal(candidate, stored string) bool {
	if stored == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(candidate), []byte(stored)) == 1
}

// Validate rejects parameters below the Argon2id floor.
func (c Config) Validate() error {
	switch {
	case c.Memory < minMemoryKB:
		return fmt.Errorf("memory must be >= %d KB", minMemoryKB)
	case c.Time < minTimeCost:
		return fmt.Errorf("time must be >= %d", minTimeCost)
	case c.Parallelism < minParallelism:
		return fmt.Errorf("parallelism must be >= %d", minParallelism)
	case c.SaltLength < minSaltLength:
		return fmt.Errorf("salt length must be >= %d", minSaltLength)
	case c.KeyLength < minKeyLength:
		return fmt.Errorf("key length must be >= %d", minKeyLength)
	}

	return nil
}
