// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// response.go provides a two-level cache for serialized API responses.
// L1 is an in-process expirable LRU; L2 is Valkey, shared by every
// instance. A nil Valkey client runs the cache on L1 alone.
package cache

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/redis/go-redis/v9"
)

const (
	// keyPrefix namespaces response entries in Valkey.
	keyPrefix = "resp:"

	// DefaultTTL is how long a response stays cached.
	DefaultTTL = 5 * time.Minute

	// DefaultL1Size is the number of entries kept in process.
	DefaultL1Size = 1024
)

// Key prefixes for the cached resources.
const (
	PostPrefix     = "post:"
	CategoryPrefix = "category:"
	TagPrefix      = "tag:"
)

// PostKey returns the cache key for a post fetched by slug.
func PostKey(slug string) string { return PostPrefix + slug }

// CategoryListKey is the cache key for the unfiltered category list.
const CategoryListKey = CategoryPrefix + "_list"

// CategoryTreeKey is the cache key for the nested category tree.
const CategoryTreeKey = CategoryPrefix + "_tree"

// CategoryKey returns the cache key for a category fetched by slug.
func CategoryKey(slug string) string { return CategoryPrefix + "slug:" + slug }

// TagListKey is the cache key for the unfiltered tag list.
const TagListKey = TagPrefix + "_list"

// ResponseCache stores response bodies by key. L1 belongs to one process:
// invalidation clears the local L1 and Valkey, so another instance may
// serve its own L1 copy until the TTL expires.
type ResponseCache struct {
	l1     *expirable.LRU[string, []byte]
	client *redis.Client
	ttl    time.Duration
}

// NewResponseCache creates a response cache. client may be nil.
func NewResponseCache(client *redis.Client, size int, ttl time.Duration) *ResponseCache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	if size <= 0 {
		size = DefaultL1Size
	}
	return &ResponseCache{
		l1:     expirable.NewLRU[string, []byte](size, nil, ttl),
		client: client,
		ttl:    ttl,
	}
}

// Get returns the cached body for key. An L2 hit is copied into L1.
func (c *ResponseCache) Get(ctx context.Context, key string) ([]byte, bool) {
	if val, ok := c.l1.Get(key); ok {
		return val, true
	}
	if c.client == nil {
		return nil, false
	}

	val, err := c.client.Get(ctx, keyPrefix+key).Bytes()
	if err == redis.Nil {
		return nil, false
	}
	if err != nil {
		slog.Warn("response cache get error", "key", key, "error", err)
		return nil, false
	}
	c.l1.Add(key, val)
	slog.Debug("response cache L2 hit", "key", key)
	return val, true
}

// Set stores body under key in both levels with the configured TTL.
func (c *ResponseCache) Set(ctx context.Context, key string, body []byte) {
	c.l1.Add(key, body)
	if c.client == nil {
		return
	}
	if err := c.client.Set(ctx, keyPrefix+key, body, c.ttl).Err(); err != nil {
		slog.Warn("response cache set error", "key", key, "error", err)
	}
}

// Invalidate removes the given keys from both levels. Cancellation of ctx
// does not stop the Valkey delete.
func (c *ResponseCache) Invalidate(ctx context.Context, keys ...string) {
	if len(keys) == 0 {
		return
	}
	ctx = context.WithoutCancel(ctx)
	full := make([]string, len(keys))
	for i, k := range keys {
		c.l1.Remove(k)
		full[i] = keyPrefix + k
	}
	if c.client == nil {
		return
	}
	if err := c.client.Del(ctx, full...).Err(); err != nil {
		slog.Warn("response cache invalidate error", "keys", keys, "error", err)
	}
}

// InvalidatePrefix removes every entry whose key starts with prefix. An
// empty prefix clears the whole cache. Like Invalidate it ignores
// cancellation of ctx.
func (c *ResponseCache) InvalidatePrefix(ctx context.Context, prefix string) {
	ctx = context.WithoutCancel(ctx)
	for _, k := range c.l1.Keys() {
		if strings.HasPrefix(k, prefix) {
			c.l1.Remove(k)
		}
	}
	if c.client == nil {
		return
	}

	var cursor uint64
	var deleted int
	for {
		keys, nextCursor, err := c.client.Scan(ctx, cursor, keyPrefix+prefix+"*", 100).Result()
		if err != nil {
			slog.Warn("response cache scan error", "prefix", prefix, "error", err)
			return
		}
		if len(keys) > 0 {
			if err := c.client.Del(ctx, keys...).Err(); err != nil {
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
		slog.Debug("response cache cleared", "prefix", prefix, "deleted", deleted)
	}
}

// InvalidateAll clears both levels.
func (c *ResponseCache) InvalidateAll(ctx context.Context) {
	c.InvalidatePrefix(ctx, "")
}
