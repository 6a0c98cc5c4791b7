// Package tokenauth implements an HMAC-SHA256 session-token service: credential
// authentication, token issuance with role/permission scope claims, verification,
// rotate-and-invalidate refresh, and Redis-backed revocation.
//
// The package is designed for concurrent server workloads: Engine methods are safe
// to call from multiple goroutines after initialization through [Builder.Build].
// The only shared mutable state is the revocation set and the login-attempt
// counters, both externalized to Redis.
//
// # Architecture boundaries
//
// tokenauth is the public surface. It exposes [Engine], [Builder], [Config], the
// sentinel errors, and value types (AuthResult, IntrospectResult, Principal).
// Token framing lives in token/, the revocation set in revocation/, password
// hashing in password/; audit dispatch and rate limiting live under internal/
// and are never exported directly.
//
// # What this package must NOT do
//
//   - Expose Redis clients, Lua scripts, or claim wire encoding in its public API.
//   - Store valid tokens server-side; only revoked token ids are persisted.
//   - Perform I/O during construction (Builder is allocation-only until Build).
//
// # Performance contract
//
// Verify is the hot path. It performs exactly one signature check, one clock
// read, and one Redis EXISTS per call; Introspect adds nothing on top.
package tokenauth
