package userstore

import (
	"context"
	"errors"
	"os"
	"testing"

	"cloud.google.com/go/datastore"
)

// Runs against the Datastore emulator only; set DATASTORE_EMULATOR_HOST to enable.
func TestDatastoreRoundTrip(t *testing.T) {
	if os.Getenv("DATASTORE_EMULATOR_HOST") == "" {
		t.Skip("DATASTORE_EMULATOR_HOST not set")
	}

	ctx := context.Background()
	client, err := datastore.NewClient(ctx, "gologin-test")
	if err != nil {
		t.Fatalf("datastore client: %v", err)
	}
	defer client.Close()

	store := NewDatastore(client, "gologin-test")
	want := Record{Email: "a@b.com", PasswordHash: "H", PasswordSalt: "S", Verified: true}
	if err := store.Put(ctx, DefaultTable, want); err != nil {
		t.Fatalf("put: %v", err)
	}

	got, err := store.Get(ctx, DefaultTable, "a@b.com")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got != want {
		t.Fatalf("expected %+v, got %+v", want, got)
	}

	if _, err := store.Get(ctx, DefaultTable, "ghost@x.com"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
