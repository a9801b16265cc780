package redis

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEventDedupeCache_FirstDelivery(t *testing.T) {
	s := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: s.Addr()})
	cache := NewEventDedupeCache(client)
	ctx := context.Background()

	first, err := cache.FirstSeen(ctx, "wayl", "tx-abc", time.Hour)
	require.NoError(t, err)
	assert.True(t, first, "first delivery should return true")
}

func TestEventDedupeCache_DuplicateDelivery(t *testing.T) {
	s := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: s.Addr()})
	cache := NewEventDedupeCache(client)
	ctx := context.Background()

	first, err := cache.FirstSeen(ctx, "wayl", "tx-dup", time.Hour)
	require.NoError(t, err)
	assert.True(t, first)

	first, err = cache.FirstSeen(ctx, "wayl", "tx-dup", time.Hour)
	require.NoError(t, err)
	assert.False(t, first, "redelivery should return false")
}

func TestEventDedupeCache_ScopedByProvider(t *testing.T) {
	s := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: s.Addr()})
	cache := NewEventDedupeCache(client)
	ctx := context.Background()

	// Same transaction id from different providers is not a duplicate
	first, err := cache.FirstSeen(ctx, "wayl", "tx-1", time.Hour)
	require.NoError(t, err)
	assert.True(t, first)

	first, err = cache.FirstSeen(ctx, "zain-direct", "tx-1", time.Hour)
	require.NoError(t, err)
	assert.True(t, first, "same id from a different provider should be first")
}

func TestEventDedupeCache_ForgetAllowsRedelivery(t *testing.T) {
	s := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: s.Addr()})
	cache := NewEventDedupeCache(client)
	ctx := context.Background()

	first, err := cache.FirstSeen(ctx, "wayl", "tx-fail", time.Hour)
	require.NoError(t, err)
	assert.True(t, first)

	// Processing failed after recording; the entry is cleared so the
	// gateway's retry is not treated as a duplicate.
	require.NoError(t, cache.Forget(ctx, "wayl", "tx-fail"))

	first, err = cache.FirstSeen(ctx, "wayl", "tx-fail", time.Hour)
	require.NoError(t, err)
	assert.True(t, first, "a forgotten entry should count as first again")
}

func TestEventDedupeCache_ExpiredEntry(t *testing.T) {
	s := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: s.Addr()})
	cache := NewEventDedupeCache(client)
	ctx := context.Background()

	first, err := cache.FirstSeen(ctx, "wayl", "tx-ttl", time.Second)
	require.NoError(t, err)
	assert.True(t, first)

	// Fast-forward past TTL
	s.FastForward(2 * time.Second)

	first, err = cache.FirstSeen(ctx, "wayl", "tx-ttl", time.Second)
	require.NoError(t, err)
	assert.True(t, first, "expired entry should be treated as first again")
}
