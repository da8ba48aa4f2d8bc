package userstore

import (
	"context"
	"errors"
	"fmt"

	"cloud.google.com/go/datastore"
)

// datastoreRecord is the entity layout; the email is the key name, not a property.
type datastoreRecord struct {
	PasswordHash string `datastore:"passwordHash,noindex"`
	PasswordSalt string `datastore:"passwordSalt,noindex"`
	Verified     bool   `datastore:"verified"`
}

// Datastore stores records as entities of kind <table> keyed by email.
type Datastore struct {
	client    *datastore.Client
	namespace string
}

// NewDatastore returns a store backed by client within namespace (may be empty).
func NewDatastore(client *datastore.Client, namespace string) *Datastore {
	return &Datastore{client: client, namespace: namespace}
}

func (d *Datastore) key(table, email string) *datastore.Key {
	key := datastore.NameKey(table, email, nil)
	key.Namespace = d.namespace
	return key
}

// Get performs a single keyed lookup.
func (d *Datastore) Get(ctx context.Context, table, email string) (Record, error) {
	if table == "" {
		return Record{}, ErrInvalidTable
	}
	var entity datastoreRecord
	if err := d.client.Get(ctx, d.key(table, email), &entity); err != nil {
		if errors.Is(err, datastore.ErrNoSuchEntity) {
			return Record{}, ErrNotFound
		}
		return Record{}, fmt.Errorf("userstore datastore get: %w", err)
	}
	return Record{
		Email:        email,
		PasswordHash: entity.PasswordHash,
		PasswordSalt: entity.PasswordSalt,
		Verified:     entity.Verified,
	}, nil
}

// Put upserts the entity for rec.Email.
func (d *Datastore) Put(ctx context.Context, table string, rec Record) error {
	if table == "" {
		return ErrInvalidTable
	}
	entity := &datastoreRecord{
		PasswordHash: rec.PasswordHash,
		PasswordSalt: rec.PasswordSalt,
		Verified:     rec.Verified,
	}
	if _, err := d.client.Put(ctx, d.key(table, rec.Email), entity); err != nil {
		return fmt.Errorf("userstore datastore put: %w", err)
	}
	return nil
}
