package allowance

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

const redisKeyPattern = "calc:*"

// RedisCache stores calculation results in Redis. The absolute expiry is
// carried inside the payload so SweepExpired can report an exact count;
// the key TTL is a safety net for entries the sweep never visits.
type RedisCache struct {
	client *redis.Client
	now    func() time.Time
}

func NewRedisCache(redisURL string) (*RedisCache, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, err
	}
	return &RedisCache{client: redis.NewClient(opt), now: time.Now}, nil
}

func (c *RedisCache) Close() error {
	return c.client.Close()
}

type redisEntry struct {
	Result    Result    `json:"result"`
	ExpiresAt time.Time `json:"expiresAt"`
}

func (c *RedisCache) Get(ctx context.Context, key CacheKey) (Result, bool, error) {
	raw, err := c.client.Get(ctx, key.Canonical()).Result()
	if errors.Is(err, redis.Nil) {
		return Result{}, false, nil
	}
	if err != nil {
		return Result{}, false, err
	}

	var entry redisEntry
	if err := json.Unmarshal([]byte(raw), &entry); err != nil {
		return Result{}, false, err
	}
	if !c.now().Before(entry.ExpiresAt) {
		return Result{}, false, nil
	}
	return entry.Result, true, nil
}

func (c *RedisCache) Put(ctx context.Context, key CacheKey, result Result, ttl time.Duration) error {
	payload, err := json.Marshal(redisEntry{
		Result:    result,
		ExpiresAt: c.now().Add(ttl),
	})
	if err != nil {
		return err
	}
	return c.client.Set(ctx, key.Canonical(), payload, 2*ttl).Err()
}

func (c *RedisCache) Invalidate(ctx context.Context, key CacheKey) error {
	return c.client.Del(ctx, key.Canonical()).Err()
}

func (c *RedisCache) SweepExpired(ctx context.Context) (int, error) {
	removed := 0
	iter := c.client.Scan(ctx, 0, redisKeyPattern, 100).Iterator()
	for iter.Next(ctx) {
		canonical := iter.Val()
		raw, err := c.client.Get(ctx, canonical).Result()
		if errors.Is(err, redis.Nil) {
			continue
		}
		if err != nil {
			return removed, err
		}

		var entry redisEntry
		if err := json.Unmarshal([]byte(raw), &entry); err != nil {
			// Unreadable entries are dead weight, drop them.
			if delErr := c.client.Del(ctx, canonical).Err(); delErr == nil {
				removed++
			}
			continue
		}
		if !c.now().Before(entry.ExpiresAt) {
			if err := c.client.Del(ctx, canonical).Err(); err != nil {
				return removed, err
			}
			removed++
		}
	}
	if err := iter.Err(); err != nil {
		return removed, err
	}
	return removed, nil
}
