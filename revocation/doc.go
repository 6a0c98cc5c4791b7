// Package revocation persists the set of revoked token ids in Redis.
//
// # Components
//
//   - [Store] — revoke (idempotent upsert with retention TTL), membership
//     check, and expiry-bounded purge.
//
// # Consistency model
//
// Redis executes commands serially, so a membership check issued after a
// revoke returns observes the write: there is no stale-read window inside
// one Redis. Revoke and purge each run as a single Lua script, keeping the
// per-id key and the expiry index in step under concurrent callers. Two
// concurrent revokes of the same id are an idempotent race with identical
// outcome; purge racing a membership check can only delete records whose
// tokens already fail the expiry check.
//
// # What this package must NOT do
//
//   - Decide retention horizons; callers pass the absolute expiry.
//   - Parse or validate tokens.
package revocation
