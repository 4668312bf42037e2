package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math/rand"
	"time"

	"github.com/Takamichi23/Nike-microservice/storefront-service/internal/domain"
	"github.com/redis/go-redis/v9"
)

func NewRedisCache(client *redis.Client) *RedisCache {
	return &RedisCache{
		client:  client,
		baseTTL: 15 * time.Minute,
	}
}

// RedisCache keeps read copies of profiles. Writers delete the entry rather
// than update it.
type RedisCache struct {
	client  *redis.Client
	baseTTL time.Duration
}

func (r *RedisCache) Get(ctx context.Context, userID int64) (*domain.Profile, error) {
	key := cacheKey(userID)

	data, err := r.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrCacheMiss
	}
	if err != nil {
		return nil, fmt.Errorf("redis get failed: %w", err)
	}

	var profile domain.Profile
	if err2 := json.Unmarshal(data, &profile); err2 != nil {
		return nil, fmt.Errorf("unmarshal profile failed: %w", err2)
	}

	return &profile, nil
}

func (r *RedisCache) Set(ctx context.Context, userID int64, profile *domain.Profile) error {
	key := cacheKey(userID)
	data, err := json.Marshal(profile)
	if err != nil {
		return fmt.Errorf("marshal profile failed: %w", err)
	}

	// jitter spreads expiries so cached profiles do not all miss at once
	jitter := time.Duration(rand.Intn(5)) * time.Minute
	ttl := r.baseTTL + jitter
	if err := r.client.Set(ctx, key, data, ttl).Err(); err != nil {
		return fmt.Errorf("redis set failed: %w", err)
	}
	return nil
}

func (r *RedisCache) Delete(ctx context.Context, userID int64) error {
	key := cacheKey(userID)
	if err := r.client.Del(ctx, key).Err(); err != nil {
		return fmt.Errorf("redis delete failed: %w", err)
	}

	return nil
}

func cacheKey(userID int64) string {
	return fmt.Sprintf("profile:%d", userID)
}
