package revocation

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

// ErrRedisUnavailable wraps backend failures so callers can distinguish
// infrastructure faults from revocation outcomes.
var ErrRedisUnavailable = errors.New("redis unavailable")

// revokeScript writes the per-id marker and the expiry index entry in one
// atomic step. The marker carries a TTL so Redis prunes it on its own even
// if the sweeper never runs; the index exists so the sweeper can count and
// clear in bulk.
const revokeScript = `
redis.call("SET", KEYS[1], "1", "PX", ARGV[1])
redis.call("ZADD", KEYS[2], ARGV[2], ARGV[3])
return 1
`

var revokeLua = redis.NewScript(revokeScript)

// purgeScript removes every index entry whose retention expiry precedes the
// cutoff, together with its marker key, and returns how many were dropped.
const purgeScript = `
local expired = redis.call("ZRANGEBYSCORE", KEYS[1], "-inf", ARGV[1])
for i = 1, #expired do
  redis.call("DEL", ARGV[2] .. expired[i])
end
if #expired > 0 then
  redis.call("ZREMRANGEBYSCORE", KEYS[1], "-inf", ARGV[1])
end
return #expired
`

var purgeLua = redis.NewScript(purgeScript)

// Store is the durable revoked-token set. It is safe for concurrent use;
// all mutual exclusion lives in Redis.
type Store struct {
	redis  redis.UniversalClient
	prefix string
}

// NewStore creates a Store keyed under the given prefix.
func NewStore(redisClient redis.UniversalClient, prefix string) *Store {
	if prefix == "" {
		prefix = "ta"
	}
	return &Store{
		redis:  redisClient,
		prefix: prefix,
	}
}

func (s *Store) tokenKeyPrefix() string {
	return s.prefix + ":revoked:"
}

func (s *Store) tokenKey(tokenID string) string {
	return s.tokenKeyPrefix() + tokenID
}

func (s *Store) indexKey() string {
	return s.prefix + ":revoked-index"
}

// Revoke marks tokenID as unacceptable until expiresAt. The write is an
// idempotent upsert: revoking an already revoked id extends or reaffirms
// the record without error. An expiresAt at or before now is a no-op since
// such a token already fails every expiry check.
func (s *Store) Revoke(ctx context.Context, tokenID string, expiresAt time.Time, now time.Time) error {
	ttl := expiresAt.Sub(now)
	if ttl <= 0 {
		return nil
	}

	err := revokeLua.Run(ctx, s.redis,
		[]string{s.tokenKey(tokenID), s.indexKey()},
		strconv.FormatInt(ttl.Milliseconds(), 10),
		strconv.FormatInt(expiresAt.Unix(), 10),
		tokenID,
	).Err()
	if err != nil {
		return fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}

	return nil
}

// IsRevoked reports whether tokenID is in the revocation set. The read is
// strongly consistent with any Revoke that returned before this call began.
func (s *Store) IsRevoked(ctx context.Context, tokenID string) (bool, error) {
	n, err := s.redis.Exists(ctx, s.tokenKey(tokenID)).Result()
	if err != nil {
		return false, fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}
	return n > 0, nil
}

// PurgeExpiredBefore deletes every record whose retention expiry is strictly
// before now and returns the count. Safe to run concurrently with Revoke and
// IsRevoked: a delete-then-miss on an expired record is harmless because the
// token it covered already fails the expiry check.
func (s *Store) PurgeExpiredBefore(ctx context.Context, now time.Time) (int, error) {
	cutoff := "(" + strconv.FormatInt(now.Unix(), 10)

	n, err := purgeLua.Run(ctx, s.redis,
		[]string{s.indexKey()},
		cutoff,
		s.tokenKeyPrefix(),
	).Int()
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}

	return n, nil
}

// Size returns the number of ids currently tracked in the expiry index.
// Marker keys that Redis already expired still count until the next purge.
func (s *Store) Size(ctx context.Context) (int64, error) {
	n, err := s.redis.ZCard(ctx, s.indexKey()).Result()
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}
	return n, nil
}
