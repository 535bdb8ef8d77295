// Cinescope - Movie Catalog and Recommendation Service
// Copyright 2026 Cinescope Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/cinescope/cinescope

package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/goccy/go-json"
	"github.com/redis/go-redis/v9"
	gobreaker "github.com/sony/gobreaker/v2"
	"golang.org/x/time/rate"

	"github.com/cinescope/cinescope/internal/config"
	"github.com/cinescope/cinescope/internal/logging"
	"github.com/cinescope/cinescope/internal/metrics"
)

// ErrUnavailable reports that the cache backend rejected or failed an
// operation. Callers treat it as a miss; it is logged, never surfaced.
var ErrUnavailable = errors.New("cache backend unavailable")

// scanBatchSize is the COUNT hint for SCAN during pattern invalidation.
const scanBatchSize = 256

// RedisCache implements Cache on a Redis backend.
//
// All operations pass through a circuit breaker: when Redis is down the
// breaker trips open and every call fails fast with ErrUnavailable instead
// of stalling request handlers on connection timeouts. Pattern invalidation
// walks the keyspace with SCAN, paced by a rate limiter so a large
// invalidation cannot monopolize the Redis server.
type RedisCache struct {
	client  *redis.Client
	breaker *gobreaker.CircuitBreaker[any]
	scanner *rate.Limiter
}

// NewRedis connects to Redis and returns a RedisCache. Connection failure at
// startup is an error; failures afterwards degrade per-operation.
func NewRedis(ctx context.Context, cfg *config.RedisConfig) (*RedisCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		return nil, fmt.Errorf("redis ping: %w", err)
	}

	breaker := gobreaker.NewCircuitBreaker[any](gobreaker.Settings{
		Name:        "redis-cache",
		MaxRequests: 3,
		Interval:    time.Minute,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.Requests >= 5 &&
				float64(counts.TotalFailures)/float64(counts.Requests) >= 0.6
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logging.Warn().
				Str("breaker", name).
				Str("from", from.String()).
				Str("to", to.String()).
				Msg("cache circuit breaker state change")
		},
	})

	// 20 SCAN pages per second keeps invalidation off the hot path.
	scanner := rate.NewLimiter(rate.Limit(20), scanBatchSize)

	return &RedisCache{client: client, breaker: breaker, scanner: scanner}, nil
}

// GetJSON implements Cache.
func (c *RedisCache) GetJSON(ctx context.Context, key string, dest any) (bool, error) {
	val, err := c.breaker.Execute(func() (any, error) {
		s, err := c.client.Get(ctx, key).Result()
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		if err != nil {
			return nil, err
		}
		return s, nil
	})
	if err != nil {
		metrics.CacheErrors.Inc()
		return false, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	if val == nil {
		return false, nil
	}

	if err := json.Unmarshal([]byte(val.(string)), dest); err != nil {
		// A corrupt entry is unusable; drop it and report a miss.
		c.client.Del(ctx, key)
		return false, nil
	}
	return true, nil
}

// SetJSON implements Cache.
func (c *RedisCache) SetJSON(ctx context.Context, key string, value any, ttl time.Duration) error {
	payload, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("marshal cache value: %w", err)
	}

	if _, err := c.breaker.Execute(func() (any, error) {
		return nil, c.client.Set(ctx, key, payload, ttl).Err()
	}); err != nil {
		metrics.CacheErrors.Inc()
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return nil
}

// Invalidate implements Cache. Deletion is best-effort: keys created while
// the scan is in flight may survive until their TTL expires.
func (c *RedisCache) Invalidate(ctx context.Context, pattern string) error {
	if _, err := c.breaker.Execute(func() (any, error) {
		var cursor uint64
		for {
			if err := c.scanner.Wait(ctx); err != nil {
				return nil, err
			}

			keys, next, err := c.client.Scan(ctx, cursor, pattern, scanBatchSize).Result()
			if err != nil {
				return nil, err
			}
			if len(keys) > 0 {
				if err := c.client.Del(ctx, keys...).Err(); err != nil {
					return nil, err
				}
			}

			cursor = next
			if cursor == 0 {
				return nil, nil
			}
		}
	}); err != nil {
		metrics.CacheErrors.Inc()
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return nil
}

// Close releases the Redis connection.
func (c *RedisCache) Close() error {
	return c.client.Close()
}

var _ Cache = (*RedisCache)(nil)
