package tokenauth

import (
	"errors"
	"time"
)

// Config is the immutable configuration surface for [Builder.Build].
// It is constructed once at startup and read-only thereafter; Build clones
// it so later caller mutations cannot leak into a running Engine.
type Config struct {
	Token      TokenConfig
	Revocation RevocationConfig
	Password   PasswordConfig
	RateLimit  RateLimitConfig
	Account    AccountConfig
	Audit      AuditConfig
	Metrics    MetricsConfig
}

// TokenConfig controls token framing and lifetime windows.
type TokenConfig struct {
	// SigningSecret is the single shared HMAC-SHA256 key. Required;
	// Build fails when it is shorter than 32 bytes.
	SigningSecret []byte
	Issuer        string
	// ValidDuration is the token's own expiry window from issuance.
	ValidDuration time.Duration
	// RefreshableDuration is the refresh grace window, measured from
	// issuance, not from expiry. Must exceed ValidDuration.
	RefreshableDuration time.Duration
}

// RevocationConfig controls the Redis-backed revocation set.
type RevocationConfig struct {
	RedisPrefix   string
	SweepInterval time.Duration
}

// PasswordConfig carries the Argon2id parameters for the default hasher.
type PasswordConfig struct {
	Memory      uint32 // in KB
	Time        uint32
	Parallelism uint8
	SaltLength  uint32
	KeyLength   uint32
}

// RateLimitConfig controls the fixed-window login throttle.
type RateLimitConfig struct {
	Enabled          bool
	EnableIPThrottle bool
	MaxAttempts      int
	Window           time.Duration
}

// AccountConfig controls registration defaults.
type AccountConfig struct {
	DefaultRole       string
	MinPasswordLength int
}

// AuditConfig controls dispatcher buffering behavior.
type AuditConfig struct {
	Enabled    bool
	BufferSize int
	DropIfFull bool
}

// MetricsConfig toggles the in-process counters and the verify-latency
// histogram.
type MetricsConfig struct {
	Enabled                 bool
	EnableLatencyHistograms bool
}

// DefaultConfig returns the configuration a fresh Builder starts from.
// It carries no signing secret; callers must set one.
func DefaultConfig() Config {
	return defaultConfig()
}

func defaultConfig() Config {
	return Config{
		Token: TokenConfig{
			Issuer:              "tokenauth",
			ValidDuration:       time.Hour,
			RefreshableDuration: 10 * time.Hour,
		},
		Revocation: RevocationConfig{
			RedisPrefix:   "ta",
			SweepInterval: time.Hour,
		},
		Password: PasswordConfig{
			Memory:      64 * 1024,
			Time:        2,
			Parallelism: 2,
			SaltLength:  16,
			KeyLength:   32,
		},
		RateLimit: RateLimitConfig{
			Enabled:          false,
			EnableIPThrottle: false,
			MaxAttempts:      10,
			Window:           10 * time.Minute,
		},
		Account: AccountConfig{
			DefaultRole:       "USER",
			MinPasswordLength: 8,
		},
		Audit: AuditConfig{
			Enabled:    false,
			BufferSize: 256,
			DropIfFull: true,
		},
		Metrics: MetricsConfig{
			Enabled: true,
		},
	}
}

// Validate checks the parts of the Config that Build cannot default its
// way around. Secret strength is enforced again by token.NewManager; the
// check here exists so the failure names the config field.
func (c *Config) Validate() error {
	if len(c.Token.SigningSecret) < 32 {
		return errors.New("Token SigningSecret must be at least 32 bytes")
	}
	if c.Token.ValidDuration <= 0 {
		return errors.New("Token ValidDuration must be > 0")
	}
	if c.Token.RefreshableDuration <= c.Token.ValidDuration {
		return errors.New("Token RefreshableDuration must exceed ValidDuration")
	}
	if c.Revocation.SweepInterval <= 0 {
		return errors.New("Revocation SweepInterval must be > 0")
	}
	if c.RateLimit.Enabled {
		if c.RateLimit.MaxAttempts <= 0 {
			return errors.New("RateLimit MaxAttempts must be > 0")
		}
		if c.RateLimit.Window <= 0 {
			return errors.New("RateLimit Window must be > 0")
		}
	}
	if c.Account.MinPasswordLength < 8 {
		return errors.New("Account MinPasswordLength must be >= 8")
	}
	if c.Audit.Enabled && c.Audit.BufferSize <= 0 {
		return errors.New("Audit BufferSize must be > 0")
	}
	return nil
}

func cloneConfig(cfg Config) Config {
	out := cfg
	if cfg.Token.SigningSecret != nil {
		out.Token.SigningSecret = make([]byte, len(cfg.Token.SigningSecret))
		copy(out.Token.SigningSecret, cfg.Token.SigningSecret)
	}
	return out
}
