package tokenauth

import (
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	internalaudit "github.com/vqnguyen/tokenauth/internal/audit"
	"github.com/vqnguyen/tokenauth/internal/rate"
	"github.com/vqnguyen/tokenauth/password"
	"github.com/vqnguyen/tokenauth/revocation"
	"github.com/vqnguyen/tokenauth/token"
)

// Builder assembles an Engine from a Config and its external dependencies.
// A Builder is single-use: Build consumes it and a second call fails.
type Builder struct {
	config Config
	redis  redis.UniversalClient

	principals PrincipalRepository
	hasher     PasswordHasher
	auditSink  AuditSink

	built bool
}

// New returns a Builder preloaded with defaults. Callers must still
// provide a signing secret, a Redis client, and a principal repository.
func New() *Builder {
	return &Builder{
		config: defaultConfig(),
	}
}

// WithConfig replaces the full config. Fields left at their zero values
// are NOT re-defaulted; start from New's defaults and override instead
// when only a few fields matter.
func (b *Builder) WithConfig(cfg Config) *Builder {
	b.config = cloneConfig(cfg)
	return b
}

func (b *Builder) WithSigningSecret(secret []byte) *Builder {
	b.config.Token.SigningSecret = secret
	return b
}

func (b *Builder) WithRedis(client redis.UniversalClient) *Builder {
	b.redis = client
	return b
}

func (b *Builder) WithPrincipalRepository(repo PrincipalRepository) *Builder {
	b.principals = repo
	return b
}

// WithPasswordHasher overrides the default Argon2id hasher. Use this to
// verify credentials migrated from another scheme.
func (b *Builder) WithPasswordHasher(h PasswordHasher) *Builder {
	b.hasher = h
	return b
}

func (b *Builder) WithAuditSink(sink AuditSink) *Builder {
	b.auditSink = sink
	return b
}

func (b *Builder) WithMetricsEnabled(enabled bool) *Builder {
	b.config.Metrics.Enabled = enabled
	return b
}

func (b *Builder) WithLatencyHistograms(enabled bool) *Builder {
	b.config.Metrics.EnableLatencyHistograms = enabled
	return b
}

// Build validates the configuration, wires every component, and returns
// a ready Engine. The returned Engine owns the audit dispatcher; callers
// stop it with [Engine.Close].
func (b *Builder) Build() (*Engine, error) {
	if b.built {
		return nil, errors.New("builder already used")
	}

	cfg := cloneConfig(b.config)

	if b.redis == nil {
		return nil, errors.New("redis client required")
	}
	if b.principals == nil {
		return nil, errors.New("principal repository required")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	engine := &Engine{
		config:      cfg,
		principals:  b.principals,
		revocations: revocation.NewStore(b.redis, cfg.Revocation.RedisPrefix),
		metrics:     NewMetrics(cfg.Metrics),
		clock:       time.Now,
	}

	engine.audit = internalaudit.NewDispatcher(internalaudit.Config{
		Enabled:    cfg.Audit.Enabled,
		BufferSize: cfg.Audit.BufferSize,
		DropIfFull: cfg.Audit.DropIfFull,
	}, b.auditSink)

	if cfg.RateLimit.Enabled {
		engine.rateLimiter = rate.New(b.redis, cfg.Revocation.RedisPrefix, rate.Config{
			EnableIPThrottle: cfg.RateLimit.EnableIPThrottle,
			MaxAttempts:      cfg.RateLimit.MaxAttempts,
			Window:           cfg.RateLimit.Window,
		})
	}

	// The manager reads the clock through the engine so tests can move
	// time for signing and verification together.
	tm, err := token.NewManager(token.Config{
		Secret:         cfg.Token.SigningSecret,
		Issuer:         cfg.Token.Issuer,
		ValidFor:       cfg.Token.ValidDuration,
		RefreshableFor: cfg.Token.RefreshableDuration,
		Now:            func() time.Time { return engine.clock() },
	})
	if err != nil {
		return nil, err
	}
	engine.tokens = tm

	if b.hasher != nil {
		engine.hasher = b.hasher
	} else {
		ph, err := password.NewArgon2(password.Config{
			Memory:      cfg.Password.Memory,
			Time:        cfg.Password.Time,
			Parallelism: cfg.Password.Parallelism,
			SaltLength:  cfg.Password.SaltLength,
			KeyLength:   cfg.Password.KeyLength,
		})
		if err != nil {
			return nil, err
		}
		engine.hasher = ph
	}

	b.built = true

	return engine, nil
}
