// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package cache

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
)

// testValkeyClient returns a Redis client for tests.
// Skips if Valkey is unavailable.
func testValkeyClient(t *testing.T) *redis.Client {
	t.Helper()

	host := envOr("VALKEY_HOST", "localhost")
	port := envOr("VALKEY_PORT", "6379")
	password := os.Getenv("VALKEY_PASSWORD")

	client := redis.NewClient(&redis.Options{
		Addr:     host + ":" + port,
		Password: password,
		DB:       15, // Use DB 15 for tests.
	})

	ctx := context.Background()
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		t.Skipf("skipping integration test: Valkey not reachable: %v", err)
	}

	t.Cleanup(func() {
		keys, _ := client.Keys(ctx, keyPrefix+"*").Result()
		if len(keys) > 0 {
			client.Del(ctx, keys...)
		}
		client.Close()
	})

	return client
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func TestConnectValkey(t *testing.T) {
	host := envOr("VALKEY_HOST", "localhost")
	port := envOr("VALKEY_PORT", "6379")

	client, err := ConnectValkey(host, port, os.Getenv("VALKEY_PASSWORD"))
	if err != nil {
		t.Skipf("skipping: Valkey not available: %v", err)
	}
	defer client.Close()

	pong, err := client.Ping(context.Background()).Result()
	if err != nil {
		t.Fatalf("Ping: %v", err)
	}
	if pong != "PONG" {
		t.Errorf("expected PONG, got %q", pong)
	}
}

func TestResponseCacheL1Only(t *testing.T) {
	rc := NewResponseCache(nil, 10, time.Minute)
	ctx := context.Background()

	// Miss.
	data, ok := rc.Get(ctx, PostKey("hello"))
	if ok || data != nil {
		t.Error("expected cache miss with nil data")
	}

	rc.Set(ctx, PostKey("hello"), []byte(`{"slug":"hello"}`))
	data, ok = rc.Get(ctx, PostKey("hello"))
	if !ok {
		t.Fatal("expected cache hit")
	}
	if string(data) != `{"slug":"hello"}` {
		t.Errorf("data mismatch: got %q", data)
	}

	rc.Invalidate(ctx, PostKey("hello"))
	if _, ok := rc.Get(ctx, PostKey("hello")); ok {
		t.Error("expected miss after Invalidate")
	}
}

func TestResponseCacheInvalidatePrefix(t *testing.T) {
	rc := NewResponseCache(nil, 10, time.Minute)
	ctx := context.Background()

	rc.Set(ctx, CategoryListKey, []byte("list"))
	rc.Set(ctx, CategoryTreeKey, []byte("tree"))
	rc.Set(ctx, PostKey("keep"), []byte("post"))

	rc.InvalidatePrefix(ctx, CategoryPrefix)

	for _, k := range []string{CategoryListKey, CategoryTreeKey} {
		if _, ok := rc.Get(ctx, k); ok {
			t.Errorf("expected miss for %q", k)
		}
	}
	if _, ok := rc.Get(ctx, PostKey("keep")); !ok {
		t.Error("post entry should survive category invalidation")
	}

	rc.InvalidateAll(ctx)
	if _, ok := rc.Get(ctx, PostKey("keep")); ok {
		t.Error("expected miss after InvalidateAll")
	}
}

func TestResponseCacheL1Expiry(t *testing.T) {
	rc := NewResponseCache(nil, 10, 20*time.Millisecond)
	ctx := context.Background()

	rc.Set(ctx, "short", []byte("x"))
	time.Sleep(60 * time.Millisecond)
	if _, ok := rc.Get(ctx, "short"); ok {
		t.Error("expected entry to expire")
	}
}

func TestNewResponseCacheDefaults(t *testing.T) {
	rc := NewResponseCache(nil, 0, 0)
	if rc.ttl != DefaultTTL {
		t.Errorf("expected DefaultTTL (%v), got %v", DefaultTTL, rc.ttl)
	}
}

func TestResponseCacheValkeyLevel(t *testing.T) {
	client := testValkeyClient(t)
	ctx := context.Background()

	writer := NewResponseCache(client, 10, time.Minute)
	writer.Set(ctx, PostKey("shared"), []byte("from-writer"))

	// A second instance has a cold L1 and must find the body in Valkey.
	reader := NewResponseCache(client, 10, time.Minute)
	data, ok := reader.Get(ctx, PostKey("shared"))
	if !ok {
		t.Fatal("expected L2 hit")
	}
	if string(data) != "from-writer" {
		t.Errorf("data mismatch: got %q", data)
	}

	writer.InvalidatePrefix(ctx, PostPrefix)
	if _, err := client.Get(ctx, keyPrefix+PostKey("shared")).Result(); err != redis.Nil {
		t.Errorf("expected key removed from Valkey, got err=%v", err)
	}
}

func TestResponseCacheInvalidateWithCancelledContext(t *testing.T) {
	rc := NewResponseCache(nil, 10, time.Minute)
	rc.Set(context.Background(), PostKey("gone"), []byte("x"))
	rc.Set(context.Background(), CategoryTreeKey, []byte("tree"))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	rc.Invalidate(ctx, PostKey("gone"))
	rc.InvalidatePrefix(ctx, CategoryPrefix)

	if _, ok := rc.Get(context.Background(), PostKey("gone")); ok {
		t.Error("expected miss after Invalidate with cancelled context")
	}
	if _, ok := rc.Get(context.Background(), CategoryTreeKey); ok {
		t.Error("expected miss after InvalidatePrefix with cancelled context")
	}
}

func TestResponseCacheValkeyInvalidateWithCancelledContext(t *testing.T) {
	client := testValkeyClient(t)
	bg := context.Background()

	rc := NewResponseCache(client, 10, time.Minute)
	rc.Set(bg, PostKey("cancelled-one"), []byte("a"))
	rc.Set(bg, PostKey("cancelled-two"), []byte("b"))

	ctx, cancel := context.WithCancel(bg)
	cancel()

	rc.Invalidate(ctx, PostKey("cancelled-one"))
	if _, err := client.Get(bg, keyPrefix+PostKey("cancelled-one")).Result(); err != redis.Nil {
		t.Errorf("expected key removed from Valkey, got err=%v", err)
	}

	rc.InvalidatePrefix(ctx, PostPrefix)
	if _, err := client.Get(bg, keyPrefix+PostKey("cancelled-two")).Result(); err != redis.Nil {
		t.Errorf("expected prefix removed from Valkey, got err=%v", err)
	}
}
