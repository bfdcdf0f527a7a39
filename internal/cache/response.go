// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package cache

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

// DefaultResponseTTL is how long a cached upstream response is kept.
const DefaultResponseTTL = 10 * time.Minute

// ResponseCache stores raw upstream response bodies in Valkey under a
// fixed key prefix. Errors are logged and treated as misses; the cache
// never fails a request.
type ResponseCache struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

// NewResponseCache creates a cache whose keys all start with prefix.
func NewResponseCache(client *redis.Client, prefix string, ttl time.Duration) *ResponseCache {
	if ttl == 0 {
		ttl = DefaultResponseTTL
	}
	return &ResponseCache{client: client, prefix: prefix, ttl: ttl}
}

// Get returns the cached body for key.
func (c *ResponseCache) Get(ctx context.Context, key string) ([]byte, bool) {
	val, err := c.client.Get(ctx, c.prefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false
	}
	if err != nil {
		slog.Warn("response cache get error", "key", c.prefix+key, "error", err)
		return nil, false
	}
	slog.Debug("response cache hit", "key", c.prefix+key)
	return val, true
}

// Set stores body for key with the configured TTL.
func (c *ResponseCache) Set(ctx context.Context, key string, body []byte) {
	if err := c.client.Set(ctx, c.prefix+key, body, c.ttl).Err(); err != nil {
		slog.Warn("response cache set error", "key", c.prefix+key, "error", err)
	}
}

// InvalidateAll removes every key under the prefix and returns how many
// were deleted.
func (c *ResponseCache) InvalidateAll(ctx context.Context) int {
	var cursor uint64
	var deleted int
	for {
		keys, next, err := c.client.Scan(ctx, cursor, c.prefix+"*", 100).Result()
		if err != nil {
			slog.Warn("response cache scan error", "prefix", c.prefix, "error", err)
			return deleted
		}
		if len(keys) > 0 {
			if err := c.client.Del(ctx, keys...).Err(); err != nil {
				slog.Warn("response cache bulk delete error", "prefix", c.prefix, "error", err)
			} else {
				deleted += len(keys)
			}
		}
		cursor = next
		if cursor == 0 {
			break
		}
	}
	if deleted > 0 {
		slog.Info("response cache cleared", "prefix", c.prefix, "deleted", deleted)
	}
	return deleted
}
