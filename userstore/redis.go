package userstore

import (
	"context"
	"fmt"
	"strconv"

	"github.com/redis/go-redis/v9"
)

const (
	fieldPasswordHash = "passwordHash"
	fieldPasswordSalt = "passwordSalt"
	fieldVerified     = "verified"
)

// Redis stores each record as a hash at key "<table>:<email>".
type Redis struct {
	client redis.UniversalClient
}

// NewRedis returns a store backed by client. The client is owned by the caller.
func NewRedis(client redis.UniversalClient) *Redis {
	return &Redis{client: client}
}

func redisKey(table, email string) string {
	return table + ":" + email
}

// Get performs a single HGETALL for table/email.
//
//	Performance: 1 Redis HGETALL.
func (r *Redis) Get(ctx context.Context, table, email string) (Record, error) {
	if table == "" {
		return Record{}, ErrInvalidTable
	}
	fields, err := r.client.HGetAll(ctx, redisKey(table, email)).Result()
	if err != nil {
		return Record{}, fmt.Errorf("userstore redis get: %w", err)
	}
	if len(fields) == 0 {
		return Record{}, ErrNotFound
	}

	verified, err := parseVerified(fields[fieldVerified])
	if err != nil {
		return Record{}, fmt.Errorf("userstore redis get: %w", err)
	}

	return Record{
		Email:        email,
		PasswordHash: fields[fieldPasswordHash],
		PasswordSalt: fields[fieldPasswordSalt],
		Verified:     verified,
	}, nil
}

// Put writes rec as a hash, replacing existing fields.
func (r *Redis) Put(ctx context.Context, table string, rec Record) error {
	if table == "" {
		return ErrInvalidTable
	}
	err := r.client.HSet(ctx, redisKey(table, rec.Email),
		fieldPasswordHash, rec.PasswordHash,
		fieldPasswordSalt, rec.PasswordSalt,
		fieldVerified, strconv.FormatBool(rec.Verified),
	).Err()
	if err != nil {
		return fmt.Errorf("userstore redis put: %w", err)
	}
	return nil
}

func parseVerified(v string) (bool, error) {
	if v == "" {
		return false, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, fmt.Errorf("invalid verified flag %q", v)
	}
	return b, nil
}
