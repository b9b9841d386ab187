// Package cache is the page-level query cache for the catalog collections
// plus short-lived submit locks, both kept in Redis.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/Domenick1991/tourbooking/config"
	"github.com/Domenick1991/tourbooking/internal/domain"
	"github.com/redis/go-redis/v9"
)

type RedisCache struct {
	client     *redis.Client
	catalogTTL time.Duration
}

func NewClient(cfg config.RedisConfig) *redis.Client {
	return redis.NewClient(&redis.Options{Addr: cfg.Addr, Password: cfg.Password, DB: cfg.DB})
}

func NewRedisCache(client *redis.Client, catalogTTL time.Duration) *RedisCache {
	return &RedisCache{client: client, catalogTTL: catalogTTL}
}

// GetTours returns nil, nil on a miss.
func (c *RedisCache) GetTours(ctx context.Context) ([]domain.Tour, error) {
	var tours []domain.Tour
	ok, err := c.get(ctx, toursKey(), &tours)
	if !ok {
		return nil, err
	}
	return tours, nil
}

func (c *RedisCache) SetTours(ctx context.Context, tours []domain.Tour) error {
	return c.set(ctx, toursKey(), tours)
}

func (c *RedisCache) GetCategories(ctx context.Context) ([]domain.Category, error) {
	var cats []domain.Category
	ok, err := c.get(ctx, categoriesKey(), &cats)
	if !ok {
		return nil, err
	}
	return cats, nil
}

func (c *RedisCache) SetCategories(ctx context.Context, cats []domain.Category) error {
	return c.set(ctx, categoriesKey(), cats)
}

// Invalidate drops both catalog keys after a mutation.
func (c *RedisCache) Invalidate(ctx context.Context) error {
	return c.client.Del(ctx, toursKey(), categoriesKey()).Err()
}

// AcquireSubmitLock guards a booking form against double submission from
// the same session. It reports false when a submit is already in flight.
func (c *RedisCache) AcquireSubmitLock(ctx context.Context, sessionID string, tourID int64, ttl time.Duration) (bool, error) {
	return c.client.SetNX(ctx, submitLockKey(sessionID, tourID), "locked", ttl).Result()
}

func (c *RedisCache) ReleaseSubmitLock(ctx context.Context, sessionID string, tourID int64) error {
	return c.client.Del(ctx, submitLockKey(sessionID, tourID)).Err()
}

func (c *RedisCache) get(ctx context.Context, key string, out any) (bool, error) {
	data, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return false, nil
		}
		return false, err
	}
	if err := json.Unmarshal(data, out); err != nil {
		return false, err
	}
	return true, nil
}

func (c *RedisCache) set(ctx context.Context, key string, v any) error {
	payload, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, key, payload, c.catalogTTL).Err()
}

func toursKey() string {
	return "cache:tours"
}

func categoriesKey() string {
	return "cache:categories"
}

func submitLockKey(sessionID string, tourID int64) string {
	return fmt.Sprintf("lock:session:%s:tour:%d", sessionID, tourID)
}
