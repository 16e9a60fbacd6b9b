package repository

import (
	"context"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

// TokenCache is a redis-side cache for session tokens so the guard does
// not hit MySQL on every admin request.  The admins table remains the
// authority: a cache miss falls back to the database and repopulates,
// and login/logout keep the cache in step with token overwrites.  All
// methods are no-ops when redis is unavailable (nil client).
type TokenCache struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewTokenCache(rdb *redis.Client, ttl time.Duration) *TokenCache {
	if ttl <= 0 {
		ttl = 2 * time.Hour
	}
	return &TokenCache{rdb: rdb, ttl: ttl}
}

func (c *TokenCache) key(token string) string { return "session:" + token }

// Store associates a token with an admin id for the session lifetime.
func (c *TokenCache) Store(ctx context.Context, token string, adminID uint64) {
	if c.rdb == nil || token == "" {
		return
	}
	_ = c.rdb.Set(ctx, c.key(token), strconv.FormatUint(adminID, 10), c.ttl).Err()
}

// Lookup resolves a token to an admin id.  The second return value is
// false on a miss or when redis is down.
func (c *TokenCache) Lookup(ctx context.Context, token string) (uint64, bool) {
	if c.rdb == nil || token == "" {
		return 0, false
	}
	v, err := c.rdb.Get(ctx, c.key(token)).Result()
	if err != nil {
		return 0, false
	}
	id, err := strconv.ParseUint(v, 10, 64)
	if err != nil {
		return 0, false
	}
	return id, true
}

// Invalidate drops a token, used on logout and when a login overwrites
// the previous session token.
func (c *TokenCache) Invalidate(ctx context.Context, token string) {
	if c.rdb == nil || token == "" {
		return
	}
	_ = c.rdb.Del(ctx, c.key(token)).Err()
}
