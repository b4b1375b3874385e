package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/eventhub/eventhub-backend/internal/config"
	"github.com/eventhub/eventhub-backend/internal/model"
	"github.com/redis/go-redis/v9"
)

// RedisTrendingCache stores the trending list as one JSON blob.
type RedisTrendingCache struct {
	rdb *redis.Client
	ttl time.Duration
}

// NewRedisTrendingCache creates a new RedisTrendingCache.
func NewRedisTrendingCache(rdb *redis.Client, ttl time.Duration) *RedisTrendingCache {
	return &RedisTrendingCache{rdb: rdb, ttl: ttl}
}

// Generation returns the current trending generation. A missing counter is
// generation zero.
func (c *RedisTrendingCache) Generation(ctx context.Context) (int64, error) {
	gen, err := c.rdb.Get(ctx, config.CacheKey.TrendingGenerationKey()).Int64()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return 0, nil
		}
		return 0, fmt.Errorf("get trending generation: %w", err)
	}
	return gen, nil
}

// Get returns the list cached under the current generation.
func (c *RedisTrendingCache) Get(ctx context.Context) ([]model.Event, bool, error) {
	gen, err := c.Generation(ctx)
	if err != nil {
		return nil, false, err
	}

	data, err := c.rdb.Get(ctx, config.CacheKey.TrendingEventsKey(gen)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("get trending: %w", err)
	}

	var events []model.Event
	if err := json.Unmarshal(data, &events); err != nil {
		return nil, false, fmt.Errorf("unmarshal trending: %w", err)
	}
	return events, true, nil
}

// Set stores events under gen. Lists from older generations expire with the TTL.
func (c *RedisTrendingCache) Set(ctx context.Context, gen int64, events []model.Event) error {
	data, err := json.Marshal(events)
	if err != nil {
		return fmt.Errorf("marshal trending: %w", err)
	}
	return c.rdb.Set(ctx, config.CacheKey.TrendingEventsKey(gen), data, c.ttl).Err()
}

// Invalidate advances the generation so every list cached so far is ignored.
func (c *RedisTrendingCache) Invalidate(ctx context.Context) error {
	return c.rdb.Incr(ctx, config.CacheKey.TrendingGenerationKey()).Err()
}

// RedisRevocationStore keeps a denylist of signed-out token IDs.
type RedisRevocationStore struct {
	rdb *redis.Client
}

// NewRedisRevocationStore creates a new RedisRevocationStore.
func NewRedisRevocationStore(rdb *redis.Client) *RedisRevocationStore {
	return &RedisRevocationStore{rdb: rdb}
}

func (s *RedisRevocationStore) Revoke(ctx context.Context, jti string, ttl time.Duration) error {
	return s.rdb.Set(ctx, config.CacheKey.RevokedTokenKey(jti), 1, ttl).Err()
}

func (s *RedisRevocationStore) IsRevoked(ctx context.Context, jti string) (bool, error) {
	n, err := s.rdb.Exists(ctx, config.CacheKey.RevokedTokenKey(jti)).Result()
	if err != nil {
		return false, fmt.Errorf("check revocation: %w", err)
	}
	return n > 0, nil
}
