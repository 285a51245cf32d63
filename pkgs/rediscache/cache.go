package rediscache

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"

	"chat-proof-oracle/config"
)

// filterKey namespaces cached filter blobs per (user, source) scope
func filterKey(user, source string) string {
	return fmt.Sprintf("proof:filter:%s:%s", user, source)
}

// NewRedisClient creates a Redis client from settings, or nil when no
// Redis host is configured
func NewRedisClient() *redis.Client {
	cfg := config.SettingsObj
	if cfg.RedisHost == "" {
		return nil
	}
	return redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%s", cfg.RedisHost, cfg.RedisPort),
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
}

// FilterCache is a read-through cache of serialized uniqueness filters.
// The submission service stays authoritative; entries are invalidated after
// every successful submit and expire on a TTL.
type FilterCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewFilterCache wraps a Redis client. A nil client yields a disabled cache
// whose lookups always miss.
func NewFilterCache(client *redis.Client, ttl time.Duration) *FilterCache {
	return &FilterCache{client: client, ttl: ttl}
}

// Get returns the cached filter blob for a scope, if present
func (c *FilterCache) Get(ctx context.Context, user, source string) (string, bool) {
	if c.client == nil {
		return "", false
	}
	blob, err := c.client.Get(ctx, filterKey(user, source)).Result()
	if err == redis.Nil {
		return "", false
	}
	if err != nil {
		// Cache failures degrade to a miss; the authoritative store answers
		log.Warnf("Filter cache read failed for user=%s source=%s: %v", user, source, err)
		return "", false
	}
	return blob, true
}

// Set stores a filter blob fetched from the authoritative store
func (c *FilterCache) Set(ctx context.Context, user, source, blob string) {
	if c.client == nil {
		return
	}
	if err := c.client.Set(ctx, filterKey(user, source), blob, c.ttl).Err(); err != nil {
		log.Warnf("Filter cache write failed for user=%s source=%s: %v", user, source, err)
	}
}

// Invalidate drops the cached blob for a scope. The store serializes
// concurrent read-merge-write updates, so a locally built blob must never
// be cached after a submit; the next run re-reads the merged state.
func (c *FilterCache) Invalidate(ctx context.Context, user, source string) {
	if c.client == nil {
		return
	}
	if err := c.client.Del(ctx, filterKey(user, source)).Err(); err != nil {
		log.Warnf("Filter cache invalidation failed for user=%s source=%s: %v", user, source, err)
	}
}
