package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// minRetention keeps a consumed marker around even for a token that is
// about to expire, so a replay racing the expiry is still rejected.
const minRetention = time.Second

type setNXer interface {
	SetNX(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.BoolCmd
}

// RefreshTracker remembers consumed refresh token ids.
// Key format: refresh:used:<jti>
type RefreshTracker struct {
	client setNXer
}

// NewRefreshTracker creates a RefreshTracker wrapping the given Redis client.
func NewRefreshTracker(client redis.Cmdable) *RefreshTracker {
	return &RefreshTracker{client: client}
}

// Consume atomically marks tokenID as used and reports whether this call was
// the first to do so. The marker lives for ttl, the token's remaining lifetime.
func (t *RefreshTracker) Consume(ctx context.Context, tokenID string, ttl time.Duration) (bool, error) {
	if ttl < minRetention {
		ttl = minRetention
	}
	first, err := t.client.SetNX(ctx, t.key(tokenID), "1", ttl).Result()
	if err != nil {
		return false, fmt.Errorf("refresh tracker: %w", err)
	}
	return first, nil
}

func (t *RefreshTracker) key(tokenID string) string {
	return "refresh:used:" + tokenID
}
