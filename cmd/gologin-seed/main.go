// Command gologin-seed writes a user record with a freshly salted argon2
// password hash.
//
//	gologin-seed -store redis -url redis://127.0.0.1:6379/0 -email a@b.com -password secret1
//	gologin-seed -store sqlite -sqlite ./gologin.db -email a@b.com -password secret1 -unverified
//	gologin-seed -memory -email a@b.com -password secret1
//
// -memory runs against a throwaway in-process Redis and prints the stored hash.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"cloud.google.com/go/datastore"
	"github.com/MrEthical07/goLogin/password"
	"github.com/MrEthical07/goLogin/userstore"
	"github.com/MrEthical07/goLogin/validation"
	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

type seedOptions struct {
	store      string
	url        string
	sqlitePath string
	project    string
	namespace  string
	table      string
	email      string
	password   string
	unverified bool
	memory     bool
}

func main() {
	if err := run(context.Background(), os.Args[1:], os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "gologin-seed: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, out io.Writer) error {
	opts, err := parseFlags(args)
	if err != nil {
		return err
	}

	if err := validation.Credentials(opts.email, opts.password); err != nil {
		return err
	}

	hasher, err := password.NewArgon2(password.DefaultConfig())
	if err != nil {
		return err
	}
	rec, err := newRecord(hasher, opts)
	if err != nil {
		return err
	}

	if opts.memory {
		mr, err := miniredis.Run()
		if err != nil {
			return fmt.Errorf("start in-process redis: %w", err)
		}
		defer mr.Close()
		opts.store = "redis"
		opts.url = "redis://" + mr.Addr()
	}

	store, closeStore, err := openStore(ctx, opts)
	if err != nil {
		return err
	}
	defer closeStore()

	if err := store.Put(ctx, opts.table, rec); err != nil {
		return fmt.Errorf("write user record: %w", err)
	}

	fmt.Fprintf(out, "seeded %s (verified=%t) into %s table %q\n", rec.Email, rec.Verified, opts.store, opts.table)
	if opts.memory {
		fmt.Fprintf(out, "salt=%s hash=%s\n", rec.PasswordSalt, rec.PasswordHash)
	}
	return nil
}

func parseFlags(args []string) (seedOptions, error) {
	var opts seedOptions
	fs := flag.NewFlagSet("gologin-seed", flag.ContinueOnError)
	fs.StringVar(&opts.store, "store", "redis", "user store backend: redis, sqlite or datastore")
	fs.StringVar(&opts.url, "url", "redis://127.0.0.1:6379/0", "redis URL for the redis store")
	fs.StringVar(&opts.sqlitePath, "sqlite", "gologin.db", "database file for the sqlite store")
	fs.StringVar(&opts.project, "project", "", "project ID for the datastore store")
	fs.StringVar(&opts.namespace, "namespace", "", "namespace for the datastore store")
	fs.StringVar(&opts.table, "table", userstore.DefaultTable, "user table")
	fs.StringVar(&opts.email, "email", "", "account email")
	fs.StringVar(&opts.password, "password", "", "account password")
	fs.BoolVar(&opts.unverified, "unverified", false, "store the account as not yet verified")
	fs.BoolVar(&opts.memory, "memory", false, "seed a throwaway in-process redis")
	if err := fs.Parse(args); err != nil {
		return seedOptions{}, err
	}

	opts.store = strings.ToLower(opts.store)
	opts.email = strings.TrimSpace(opts.email)
	if opts.table == "" {
		return seedOptions{}, errors.New("-table must not be empty")
	}
	return opts, nil
}

func newRecord(hasher *password.Argon2, opts seedOptions) (userstore.Record, error) {
	salt, err := hasher.NewSalt()
	if err != nil {
		return userstore.Record{}, err
	}
	hash, err := hasher.Hash(opts.password, salt)
	if err != nil {
		return userstore.Record{}, err
	}
	return userstore.Record{
		Email:        opts.email,
		PasswordHash: hash,
		PasswordSalt: salt,
		Verified:     !opts.unverified,
	}, nil
}

type recordWriter interface {
	Put(ctx context.Context, table string, rec userstore.Record) error
}

func openStore(ctx context.Context, opts seedOptions) (recordWriter, func(), error) {
	switch opts.store {
	case "redis":
		ropts, err := redis.ParseURL(opts.url)
		if err != nil {
			return nil, nil, fmt.Errorf("-url: %w", err)
		}
		client := redis.NewClient(ropts)
		return userstore.NewRedis(client), func() { _ = client.Close() }, nil

	case "sqlite":
		db, err := userstore.OpenSQLite(opts.sqlitePath)
		if err != nil {
			return nil, nil, err
		}
		if err := db.EnsureTable(ctx, opts.table); err != nil {
			_ = db.Close()
			return nil, nil, err
		}
		return db, func() { _ = db.Close() }, nil

	case "datastore":
		if opts.project == "" {
			return nil, nil, errors.New("-project is required for the datastore store")
		}
		client, err := datastore.NewClient(ctx, opts.project)
		if err != nil {
			return nil, nil, err
		}
		return userstore.NewDatastore(client, opts.namespace), func() { _ = client.Close() }, nil

	default:
		return nil, nil, fmt.Errorf("unsupported store %q", opts.store)
	}
}
