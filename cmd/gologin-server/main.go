// Command gologin-server serves the login handler over HTTP.
//
//	POST /login    {"payload":{"email":"...","password":"..."}}
//	GET  /session  Authorization: Bearer <token>, strict validation
//	GET  /metrics  Prometheus text format
//
// Configuration comes from GOLOGIN_* environment variables, optionally loaded
// from a .env file.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"cloud.google.com/go/datastore"
	goLogin "github.com/MrEthical07/goLogin"
	"github.com/MrEthical07/goLogin/metrics/export/prometheus"
	"github.com/MrEthical07/goLogin/userstore"
	"github.com/redis/go-redis/v9"
)

func main() {
	cfg, err := loadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(2)
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.LogLevel}))
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger); err != nil {
		logger.Error("server stopped", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg serverConfig, logger *slog.Logger) error {
	cacheOpts, err := redis.ParseURL(cfg.CacheURL)
	if err != nil {
		return fmt.Errorf("GOLOGIN_CACHE_URL: %w", err)
	}

	store, closeStore, err := openUserStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() {
		if err := closeStore(); err != nil {
			logger.Warn("close user store", "error", err)
		}
	}()

	builder := goLogin.New().
		WithConfig(cfg.engineConfig()).
		WithRedis(cacheOpts).
		WithUserStore(store).
		WithLogger(logger)
	if cfg.Audit {
		builder = builder.WithAuditSink(goLogin.NewSlogSink(logger.With("component", "audit")))
	}

	engine, err := builder.Build()
	if err != nil {
		return fmt.Errorf("build engine: %w", err)
	}
	defer engine.Close()

	var metrics http.Handler
	if cfg.Metrics {
		metrics = prometheus.NewPrometheusExporter(engine).Handler()
	}

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           newRouter(engine, metrics, logger),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("listening", "addr", cfg.Addr, "user_store", cfg.UserStore)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	logger.Info("shutting down")
	return srv.Shutdown(shutdownCtx)
}

// openUserStore connects the configured user record backend. The returned
// func releases it.
func openUserStore(ctx context.Context, cfg serverConfig) (goLogin.UserStore, func() error, error) {
	switch cfg.UserStore {
	case storeSQLite:
		db, err := userstore.OpenSQLite(cfg.SQLitePath)
		if err != nil {
			return nil, nil, fmt.Errorf("open sqlite user store: %w", err)
		}
		if err := db.EnsureTable(ctx, cfg.UserTable); err != nil {
			_ = db.Close()
			return nil, nil, fmt.Errorf("prepare sqlite user store: %w", err)
		}
		return db, db.Close, nil

	case storeDatastore:
		client, err := datastore.NewClient(ctx, cfg.DatastoreProject)
		if err != nil {
			return nil, nil, fmt.Errorf("open datastore user store: %w", err)
		}
		return userstore.NewDatastore(client, cfg.DatastoreNamespace), client.Close, nil

	default:
		url := cfg.UserStoreURL
		if url == "" {
			url = cfg.CacheURL
		}
		opts, err := redis.ParseURL(url)
		if err != nil {
			return nil, nil, fmt.Errorf("GOLOGIN_USER_STORE_URL: %w", err)
		}
		client := redis.NewClient(opts)
		return userstore.NewRedis(client), client.Close, nil
	}
}
