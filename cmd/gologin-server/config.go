package main

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"

	goLogin "github.com/MrEthical07/goLogin"
	"github.com/joho/godotenv"
)

// Supported GOLOGIN_USER_STORE values.
const (
	storeRedis     = "redis"
	storeSQLite    = "sqlite"
	storeDatastore = "datastore"
)

type serverConfig struct {
	Addr        string
	CacheURL    string
	CachePrefix string

	TokenSecret string
	Application string

	UserStore          string
	UserTable          string
	UserStoreURL       string
	SQLitePath         string
	DatastoreProject   string
	DatastoreNamespace string

	MinPasswordLength int
	LogLevel          slog.Level
	Audit             bool
	Metrics           bool
}

// loadConfig reads the process environment, optionally seeded from a .env
// file in the working directory.
func loadConfig() (serverConfig, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return serverConfig{}, fmt.Errorf("load .env: %w", err)
	}
	return configFromEnv(os.Getenv)
}

func configFromEnv(lookup func(string) string) (serverConfig, error) {
	get := func(key, fallback string) string {
		if v := strings.TrimSpace(lookup(key)); v != "" {
			return v
		}
		return fallback
	}

	cfg := serverConfig{
		Addr:               get("GOLOGIN_ADDR", ":8080"),
		CacheURL:           get("GOLOGIN_CACHE_URL", "redis://127.0.0.1:6379/0"),
		CachePrefix:        get("GOLOGIN_CACHE_PREFIX", ""),
		TokenSecret:        lookup("GOLOGIN_TOKEN_SECRET"),
		Application:        get("GOLOGIN_APPLICATION", goLogin.DefaultConfig().Token.Application),
		UserStore:          strings.ToLower(get("GOLOGIN_USER_STORE", storeRedis)),
		UserTable:          get("GOLOGIN_USER_TABLE", goLogin.DefaultConfig().UserStore.Table),
		UserStoreURL:       get("GOLOGIN_USER_STORE_URL", ""),
		SQLitePath:         get("GOLOGIN_SQLITE_PATH", "gologin.db"),
		DatastoreProject:   get("GOLOGIN_DATASTORE_PROJECT", ""),
		DatastoreNamespace: get("GOLOGIN_DATASTORE_NAMESPACE", ""),
	}

	if cfg.TokenSecret == "" {
		return serverConfig{}, errors.New("GOLOGIN_TOKEN_SECRET is required")
	}

	minLen, err := strconv.Atoi(get("GOLOGIN_MIN_PASSWORD_LENGTH", strconv.Itoa(goLogin.DefaultConfig().Validation.MinPasswordLength)))
	if err != nil {
		return serverConfig{}, fmt.Errorf("GOLOGIN_MIN_PASSWORD_LENGTH: %w", err)
	}
	cfg.MinPasswordLength = minLen

	if err := cfg.LogLevel.UnmarshalText([]byte(get("GOLOGIN_LOG_LEVEL", "info"))); err != nil {
		return serverConfig{}, fmt.Errorf("GOLOGIN_LOG_LEVEL: %w", err)
	}

	if cfg.Audit, err = parseBool(get("GOLOGIN_AUDIT", "false")); err != nil {
		return serverConfig{}, fmt.Errorf("GOLOGIN_AUDIT: %w", err)
	}
	if cfg.Metrics, err = parseBool(get("GOLOGIN_METRICS", "true")); err != nil {
		return serverConfig{}, fmt.Errorf("GOLOGIN_METRICS: %w", err)
	}

	switch cfg.UserStore {
	case storeRedis:
	case storeSQLite:
		if cfg.SQLitePath == "" {
			return serverConfig{}, errors.New("GOLOGIN_SQLITE_PATH is required for the sqlite user store")
		}
	case storeDatastore:
		if cfg.DatastoreProject == "" {
			return serverConfig{}, errors.New("GOLOGIN_DATASTORE_PROJECT is required for the datastore user store")
		}
	default:
		return serverConfig{}, fmt.Errorf("GOLOGIN_USER_STORE: unsupported value %q", cfg.UserStore)
	}

	return cfg, nil
}

// engineConfig maps process settings onto the engine configuration.
func (c serverConfig) engineConfig() goLogin.Config {
	cfg := goLogin.DefaultConfig()
	cfg.Token.PrivateKey = []byte(c.TokenSecret)
	cfg.Token.Application = c.Application
	cfg.Cache.Prefix = c.CachePrefix
	cfg.UserStore.Table = c.UserTable
	cfg.Validation.MinPasswordLength = c.MinPasswordLength
	cfg.Audit.Enabled = c.Audit
	cfg.Metrics.Enabled = c.Metrics
	cfg.Metrics.EnableLatencyHistograms = c.Metrics
	return cfg
}

func parseBool(v string) (bool, error) {
	return strconv.ParseBool(strings.ToLower(v))
}
