package userstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"regexp"

	_ "github.com/mattn/go-sqlite3"
)

var tableNamePattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// SQLite stores records in one row per email.
type SQLite struct {
	db *sql.DB
}

// OpenSQLite opens (or creates) the database file at path.
func OpenSQLite(path string) (*SQLite, error) {
	db, err := sql.Open("sqlite3", path+"?_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite: %w", err)
	}
	return &SQLite{db: db}, nil
}

// NewSQLite wraps an already opened database handle.
func NewSQLite(db *sql.DB) *SQLite {
	return &SQLite{db: db}
}

// Close releases the database handle.
func (s *SQLite) Close() error {
	return s.db.Close()
}

// EnsureTable creates table if it does not exist.
func (s *SQLite) EnsureTable(ctx context.Context, table string) error {
	if !tableNamePattern.MatchString(table) {
		return ErrInvalidTable
	}
	query := `CREATE TABLE IF NOT EXISTS ` + table + ` (
		email TEXT PRIMARY KEY,
		password_hash TEXT NOT NULL,
		password_salt TEXT NOT NULL,
		verified INTEGER NOT NULL DEFAULT 0
	)`
	if _, err := s.db.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("create table %s: %w", table, err)
	}
	return nil
}

// Get reads the row keyed by email.
func (s *SQLite) Get(ctx context.Context, table, email string) (Record, error) {
	if !tableNamePattern.MatchString(table) {
		return Record{}, ErrInvalidTable
	}
	rec := Record{Email: email}
	query := `SELECT password_hash, password_salt, verified FROM ` + table + ` WHERE email = ?`
	err := s.db.QueryRowContext(ctx, query, email).Scan(&rec.PasswordHash, &rec.PasswordSalt, &rec.Verified)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Record{}, ErrNotFound
		}
		return Record{}, fmt.Errorf("userstore sqlite get: %w", err)
	}
	return rec, nil
}

// Put inserts or replaces the row for rec.Email.
func (s *SQLite) Put(ctx context.Context, table string, rec Record) error {
	if !tableNamePattern.MatchString(table) {
		return ErrInvalidTable
	}
	query := `INSERT INTO ` + table + ` (email, password_hash, password_salt, verified) VALUES (?, ?, ?, ?)
		ON CONFLICT(email) DO UPDATE SET
			password_hash = excluded.password_hash,
			password_salt = excluded.password_salt,
			verified = excluded.verified`
	if _, err := s.db.ExecContext(ctx, query, rec.Email, rec.PasswordHash, rec.PasswordSalt, rec.Verified); err != nil {
		return fmt.Errorf("userstore sqlite put: %w", err)
	}
	return nil
}
