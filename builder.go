package goLogin

import (
	"errors"
	"log/slog"
	"strings"

	internalaudit "github.com/MrEthical07/goLogin/internal/audit"
	"github.com/MrEthical07/goLogin/jwt"
	"github.com/MrEthical07/goLogin/password"
	"github.com/MrEthical07/goLogin/session"
	"github.com/MrEthical07/goLogin/validation"
	"github.com/redis/go-redis/v9"
)

// Builder assembles an Engine from configuration and injected collaborators.
type Builder struct {
	config Config

	redisOptions *redis.Options
	cache        CacheConnector
	userStore    UserStore
	hasher       Hasher
	auditSink    AuditSink
	logger       *slog.Logger

	built bool
}

// New returns a Builder seeded with DefaultConfig.
func New() *Builder {
	return &Builder{
		config: DefaultConfig(),
	}
}

// WithConfig replaces the builder's configuration with a copy of cfg.
func (b *Builder) WithConfig(cfg Config) *Builder {
	b.config = cloneConfig(cfg)
	return b
}

// WithRedis configures the session cache from go-redis options. Every
// invocation dials its own client from these options and closes it on exit.
// WithCache takes precedence when both are set.
func (b *Builder) WithRedis(opts *redis.Options) *Builder {
	b.redisOptions = opts
	return b
}

// WithCache injects a custom cache connector.
func (b *Builder) WithCache(c CacheConnector) *Builder {
	b.cache = c
	return b
}

// WithUserStore injects the user record store. Required.
func (b *Builder) WithUserStore(s UserStore) *Builder {
	b.userStore = s
	return b
}

// WithHasher overrides the Argon2id hasher built from Config.Password.
func (b *Builder) WithHasher(h Hasher) *Builder {
	b.hasher = h
	return b
}

// WithAuditSink sets the sink audit events are dispatched to when
// Config.Audit.Enabled is true.
func (b *Builder) WithAuditSink(sink AuditSink) *Builder {
	b.auditSink = sink
	return b
}

// WithLogger sets the structured logger. The default discards output.
func (b *Builder) WithLogger(l *slog.Logger) *Builder {
	b.logger = l
	return b
}

// WithMetricsEnabled toggles Config.Metrics.Enabled on the builder copy.
func (b *Builder) WithMetricsEnabled(enabled bool) *Builder {
	b.config.Metrics.Enabled = enabled
	return b
}

// WithLatencyHistograms enables the login latency histogram. Histograms are
// only recorded when metrics are enabled as well.
func (b *Builder) WithLatencyHistograms(enabled bool) *Builder {
	b.config.Metrics.EnableLatencyHistograms = enabled
	return b
}

// Build validates configuration and returns a ready Engine. A Builder can be
// built once.
func (b *Builder) Build() (*Engine, error) {
	if b.built {
		return nil, errors.New("builder already used")
	}

	cfg := cloneConfig(b.config)

	cache := b.cache
	if cache == nil {
		if b.redisOptions == nil {
			return nil, errors.New("cache connector or redis options required")
		}
		cache = redisConnector{connector: session.NewConnector(b.redisOptions, cfg.Cache.Prefix)}
	}

	if b.userStore == nil {
		return nil, errors.New("user store required")
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	hasher := b.hasher
	if hasher == nil {
		ph, err := password.NewArgon2(cfg.Password)
		if err != nil {
			return nil, err
		}
		hasher = ph
	}

	jm, err := jwt.NewManager(jwt.Config{
		TTL:           cfg.Token.TTL,
		SigningMethod: jwt.SigningMethod(strings.ToLower(cfg.Token.SigningMethod)),
		PrivateKey:    cloneBytes(cfg.Token.PrivateKey),
		PublicKey:     cloneBytes(cfg.Token.PublicKey),
		Application:   cfg.Token.Application,
		Issuer:        cfg.Token.Issuer,
		KeyID:         cfg.Token.KeyID,
		Leeway:        cfg.Token.Leeway,
	})
	if err != nil {
		return nil, err
	}

	logger := b.logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	engine := &Engine{
		config:     cloneConfig(cfg),
		cache:      cache,
		userStore:  b.userStore,
		hasher:     hasher,
		validator:  validation.New(cfg.Validation.MinPasswordLength),
		jwtManager: jm,
		logger:     logger,
	}
	engine.audit = internalaudit.NewDispatcher(internalaudit.Config{
		Enabled:    cfg.Audit.Enabled,
		BufferSize: cfg.Audit.BufferSize,
		DropIfFull: cfg.Audit.DropIfFull,
	}, b.auditSink)
	engine.metrics = NewMetrics(cfg.Metrics)
	engine.initFlows()

	b.built = true

	return engine, nil
}
