package tokenauth

import (
	"context"
	"io"

	internalaudit "github.com/vqnguyen/tokenauth/internal/audit"
)

// PermissionRef is a single named permission.
type PermissionRef struct {
	Name string
}

// RoleRef is a named role owning its permission set as an eagerly loaded
// value collection. The repository boundary must resolve permissions before
// handing principals to the Engine; the core never lazy-loads.
type RoleRef struct {
	Name        string
	Permissions []PermissionRef
}

// Principal is the account record returned by [PrincipalRepository]. Identity
// fields are immutable; the role set may change between lookups.
type Principal struct {
	ID             string
	Username       string
	CredentialHash string
	Roles          []RoleRef
}

// PrincipalRepository is the interface callers implement to integrate
// tokenauth with their user store. Lookups return (nil, nil) when no
// principal matches; errors are reserved for backend failures. Create and
// UpdateCredential are the only writes the core performs.
type PrincipalRepository interface {
	FindByUsername(ctx context.Context, username string) (*Principal, error)
	FindByID(ctx context.Context, id string) (*Principal, error)
	Create(ctx context.Context, p Principal) error
	UpdateCredential(ctx context.Context, id string, credentialHash string) error
}

// PasswordHasher verifies and produces password hashes. Verify must compare
// in constant time.
type PasswordHasher interface {
	Hash(plaintext string) (string, error)
	Verify(plaintext, hash string) (bool, error)
}

// AuthResult is returned by [Engine.Authenticate] and [Engine.Refresh].
type AuthResult struct {
	Token         string
	Authenticated bool
}

// IntrospectResult is the reduced boolean view returned by
// [Engine.Introspect]. The boundary deliberately does not reveal whether a
// token was expired, revoked, or malformed; richer detail is only available
// through Verify's typed failures.
type IntrospectResult struct {
	Valid bool
}

// AuditEvent is a structured audit record emitted by the engine.
type AuditEvent = internalaudit.Event

// AuditSink receives [AuditEvent] values from the engine's audit dispatcher.
type AuditSink = internalaudit.Sink

// NoOpSink is an [AuditSink] that silently discards all events.
type NoOpSink = internalaudit.NoOpSink

// ChannelSink is a buffered channel-based [AuditSink].
type ChannelSink = internalaudit.ChannelSink

// JSONWriterSink is an [AuditSink] that writes JSON-encoded events to an
// [io.Writer].
type JSONWriterSink = internalaudit.JSONWriterSink

// NewChannelSink creates a [ChannelSink] with the given buffer capacity.
func NewChannelSink(buffer int) *ChannelSink {
	return internalaudit.NewChannelSink(buffer)
}

// NewJSONWriterSink creates a [JSONWriterSink] that writes to w.
func NewJSONWriterSink(w io.Writer) *JSONWriterSink {
	return internalaudit.NewJSONWriterSink(w)
}
