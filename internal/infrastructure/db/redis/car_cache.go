package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/rentcar/rental-api/internal/core/domain"
)

const defaultCarCacheTTL = 5 * time.Minute

// CarCache caches car documents as JSON.
// Key format: car:<id>
type CarCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewCarCache creates a CarCache; ttl <= 0 uses defaultCarCacheTTL.
func NewCarCache(client *redis.Client, ttl time.Duration) *CarCache {
	if ttl <= 0 {
		ttl = defaultCarCacheTTL
	}
	return &CarCache{client: client, ttl: ttl}
}

// Get reports a miss as (nil, false, nil).
func (c *CarCache) Get(ctx context.Context, id uint) (*domain.Car, bool, error) {
	raw, err := c.client.Get(ctx, c.key(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("car cache get: %w", err)
	}

	var car domain.Car
	if err := json.Unmarshal(raw, &car); err != nil {
		return nil, false, fmt.Errorf("car cache decode: %w", err)
	}
	return &car, true, nil
}

func (c *CarCache) Set(ctx context.Context, car *domain.Car) error {
	raw, err := json.Marshal(car)
	if err != nil {
		return fmt.Errorf("car cache encode: %w", err)
	}
	return c.client.Set(ctx, c.key(car.ID), raw, c.ttl).Err()
}

func (c *CarCache) Evict(ctx context.Context, id uint) error {
	return c.client.Del(ctx, c.key(id)).Err()
}

func (c *CarCache) key(id uint) string {
	return fmt.Sprintf("car:%d", id)
}
