// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// response.go provides a Valkey-backed cache for rendered page responses.
// When the public handler resolves a request path to a page, the serialized
// result is stored in Valkey so subsequent requests skip the chain walk and
// candidate queries. The path resolver itself never caches; this layer sits
// entirely in the HTTP consumer and is flushed on any page mutation, since
// moving one page changes the derived paths of all its descendants.
package cache

import (
	"context"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	// responseKeyPrefix is the Valkey key prefix for cached responses.
	responseKeyPrefix = "resolve:"

	// DefaultResponseTTL is how long a resolved response stays cached.
	DefaultResponseTTL = 5 * time.Minute
)

// ResponseCache manages resolved-page response caching in Valkey.
type ResponseCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewResponseCache creates a new response cache backed by the given Valkey client.
func NewResponseCache(client *redis.Client, ttl time.Duration) *ResponseCache {
	if ttl == 0 {
		ttl = DefaultResponseTTL
	}
	return &ResponseCache{client: client, ttl: ttl}
}

// Get retrieves a cached response for a request path. Returns false on miss.
func (rc *ResponseCache) Get(ctx context.Context, path string) ([]byte, bool) {
	val, err := rc.client.Get(ctx, responseKeyPrefix+path).Bytes()
	if err == redis.Nil {
		return nil, false
	}
	if err != nil {
		slog.Warn("response cache get error", "path", path, "error", err)
		return nil, false
	}
	slog.Debug("response cache hit", "path", path)
	return val, true
}

// Set stores a serialized response for a request path with the configured TTL.
func (rc *ResponseCache) Set(ctx context.Context, path string, body []byte) {
	if err := rc.client.Set(ctx, responseKeyPrefix+path, body, rc.ttl).Err(); err != nil {
		slog.Warn("response cache set error", "path", path, "error", err)
	}
}

// InvalidateAll removes every cached response by scanning for the prefix.
// Any page mutation can change the derived paths of an entire subtree, so
// per-path invalidation is not safe here.
func (rc *ResponseCache) InvalidateAll(ctx context.Context) {
	var cursor uint64
	var deleted int
	for {
		keys, nextCursor, err := rc.client.Scan(ctx, cursor, responseKeyPrefix+"*", 100).Result()
		if err != nil {
			slog.Warn("response cache scan error", "error", err)
			return
		}
		if len(keys) > 0 {
			if err := rc.client.Del(ctx, keys...).Err(); err != nil {
				slog.Warn("response cache bulk delete error", "error", err)
			}
			deleted += len(keys)
		}
		cursor = nextCursor
		if cursor == 0 {
			break
		}
	}
	if deleted > 0 {
		slog.Info("response cache fully cleared", "deleted", deleted)
	}
}
