package redis

import (
	"context"
	"encoding/json"
	"time"

	"pocketchat/internal/domain"

	goredis "github.com/redis/go-redis/v9"
)

// Cache key patterns:
// - user:{external_id} - 5m TTL, profile cache

// CacheConfig contains configuration for caching
type CacheConfig struct {
	UserTTL time.Duration
}

// DefaultCacheConfig returns sensible defaults
func DefaultCacheConfig() CacheConfig {
	return CacheConfig{
		UserTTL: 5 * time.Minute,
	}
}

// CacheStore handles caching in Redis. It satisfies services.UserCache.
type CacheStore struct {
	client *goredis.Client
	config CacheConfig
}

func NewCacheStore(client *goredis.Client, config CacheConfig) *CacheStore {
	return &CacheStore{
		client: client,
		config: config,
	}
}

// GetUser retrieves a cached user profile; a miss returns (nil, nil).
func (c *CacheStore) GetUser(ctx context.Context, externalID string) (*domain.User, error) {
	data, err := c.client.Get(ctx, "user:"+externalID).Result()
	if err == goredis.Nil {
		return nil, nil // Cache miss
	}
	if err != nil {
		return nil, err
	}

	var u domain.User
	if err := json.Unmarshal([]byte(data), &u); err != nil {
		return nil, err
	}
	return &u, nil
}

func (c *CacheStore) SetUser(ctx context.Context, u domain.User) error {
	data, err := json.Marshal(u)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, "user:"+u.ExternalID, data, c.config.UserTTL).Err()
}

func (c *CacheStore) InvalidateUser(ctx context.Context, externalID string) error {
	return c.client.Del(ctx, "user:"+externalID).Err()
}
