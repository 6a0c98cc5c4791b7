package token

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var (
	// ErrMalformed is returned when a token cannot be decoded: wrong segment
	// count, bad base64url, invalid claim structure, or a missing mandatory
	// claim.
	ErrMalformed = errors.New("malformed token")
	// ErrSignature is returned when a structurally valid token carries a
	// signature that does not verify against the shared secret.
	ErrSignature = errors.New("token signature invalid")
)

// minSecretBytes matches the HS256 key-size floor: serving traffic with a
// shorter secret is a configuration fault, not a runtime condition.
const minSecretBytes = 32

// Config holds the signing secret and lifetime windows for a [Manager].
type Config struct {
	Secret []byte
	Issuer string
	// ValidFor is the token's own expiry window.
	ValidFor time.Duration
	// RefreshableFor is the refresh grace window measured from issuance.
	RefreshableFor time.Duration
	// Now overrides the clock, for tests. Defaults to time.Now.
	Now func() time.Time
}

// Claims is the signed payload. UserID and Scope ride alongside the
// registered claim set; the token id is the jti, generated fresh as a v4
// UUID on every mint.
type Claims struct {
	UserID string `json:"uid"`
	Scope  string `json:"scope,omitempty"`
	jwt.RegisteredClaims
}

// TokenID returns the unique id assigned at issuance.
func (c *Claims) TokenID() string {
	return c.ID
}

// Manager mints and verifies tokens with a single shared HMAC secret.
// It is immutable after construction and safe for concurrent use.
type Manager struct {
	config Config
}

// NewManager validates cfg and returns a ready Manager. A missing or short
// secret is fatal here so a process can never start serving with a weak key.
func NewManager(cfg Config) (*Manager, error) {
	if len(cfg.Secret) < minSecretBytes {
		return nil, errors.New("signing secret must be at least 32 bytes")
	}
	if cfg.ValidFor <= 0 {
		return nil, errors.New("invalid valid duration")
	}
	if cfg.RefreshableFor <= cfg.ValidFor {
		return nil, errors.New("refreshable duration must exceed valid duration")
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}

	return &Manager{config: cfg}, nil
}

// Mint builds a fresh claim set for the principal and returns the signed
// compact token alongside the claims it covers.
func (m *Manager) Mint(userID, subject, scope string) (string, *Claims, error) {
	now := m.config.Now()
	claims := &Claims{
		UserID: userID,
		Scope:  scope,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   subject,
			Issuer:    m.config.Issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.config.ValidFor)),
		},
	}

	raw, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.config.Secret)
	if err != nil {
		return "", nil, err
	}

	return raw, claims, nil
}

// Parse decodes raw and verifies its HMAC signature. The jwt HS256 method
// compares signatures with hmac.Equal, so verification is constant-time.
// Time-based claims are deliberately not validated here.
func (m *Manager) Parse(raw string) (*Claims, error) {
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithoutClaimsValidation(),
	)

	claims := &Claims{}
	_, err := parser.ParseWithClaims(raw, claims, func(t *jwt.Token) (interface{}, error) {
		return m.config.Secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenSignatureInvalid) {
			return nil, ErrSignature
		}
		return nil, ErrMalformed
	}

	if claims.ID == "" || claims.IssuedAt == nil || claims.ExpiresAt == nil {
		return nil, ErrMalformed
	}

	return claims, nil
}

// RefreshDeadline is the instant after which c may no longer be exchanged
// for a new token: issuance plus the grace window, independent of exp.
func (m *Manager) RefreshDeadline(c *Claims) time.Time {
	return c.IssuedAt.Time.Add(m.config.RefreshableFor)
}
