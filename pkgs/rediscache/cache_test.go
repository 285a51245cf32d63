package rediscache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestDisabledCacheAlwaysMisses(t *testing.T) {
	cache := NewFilterCache(nil, time.Minute)
	ctx := context.Background()

	// Writes, invalidations, and reads are all no-ops when no Redis is configured
	cache.Set(ctx, "alice", "TELEGRAM", "blob")
	cache.Invalidate(ctx, "alice", "TELEGRAM")
	blob, ok := cache.Get(ctx, "alice", "TELEGRAM")

	assert.False(t, ok)
	assert.Empty(t, blob)
}

func TestFilterKeyScoping(t *testing.T) {
	assert.Equal(t, "proof:filter:alice:TELEGRAM", filterKey("alice", "TELEGRAM"))
	assert.NotEqual(t, filterKey("alice", "TELEGRAM"), filterKey("alice", "TELEGRAMMINER"))
}
