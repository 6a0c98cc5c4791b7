// Package middleware exposes HTTP middleware adapters built on top of
// tokenauth.Engine verification.
//
// # Guards
//
//   - [Guard] — verifies the bearer token and injects claims.
//   - [RequireScope] — Guard plus a required scope entry.
//
// Each guard reads the Authorization header, calls Engine.Verify, and
// injects the verified claims into the request context.
//
// # Architecture boundaries
//
// This package translates HTTP semantics into Engine calls. It does NOT
// implement verification logic itself — all decisions are delegated to
// Engine.Verify.
//
// # What this package must NOT do
//
//   - Parse or create tokens directly (delegates to Engine).
//   - Access Redis (Engine handles I/O).
//   - Make authorization decisions beyond scope membership.
package middleware
