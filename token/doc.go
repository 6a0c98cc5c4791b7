// Package token owns the wire form of session tokens: claim encoding and
// HMAC-SHA256 signing over the standard three-segment base64url compact
// framing, via github.com/golang-jwt/jwt/v5.
//
// # Components
//
//   - [Claims] — the canonical claim set (jti, sub, iss, iat, exp, uid, scope).
//     Encoding is deterministic: encoding/json marshals struct fields in
//     declaration order, so the signature always covers the same bytes for
//     the same claims.
//   - [Manager] — mints and parses tokens with a single shared secret.
//
// # Architecture boundaries
//
// Parse verifies structure and signature only. Expiry and revocation are
// engine policy: the engine selects the effective deadline (own expiry or
// refresh grace window) per call, so no time validation happens here.
//
// # What this package must NOT do
//
//   - Touch Redis or any store.
//   - Accept any signing algorithm other than HS256 (no alg negotiation).
//   - Export the secret or partial signature state.
package token
