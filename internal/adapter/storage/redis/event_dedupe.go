package redis

import (
	"context"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"
)

// EventDedupeCache implements ports.EventDedupeCache using Redis SET NX.
// It is a fast-path guard only: losing a key (eviction, restart) is harmless
// because the conditional order update is the authoritative duplicate check.
type EventDedupeCache struct {
	client *goredis.Client
	prefix string
}

// NewEventDedupeCache creates a new Redis-backed webhook event dedupe cache.
func NewEventDedupeCache(client *goredis.Client) *EventDedupeCache {
	return &EventDedupeCache{
		client: client,
		prefix: "payevent:",
	}
}

// FirstSeen atomically records the event id and reports whether this delivery
// is the first. Returns false when the same provider/event pair was already
// recorded within the TTL.
func (s *EventDedupeCache) FirstSeen(ctx context.Context, provider string, eventID string, ttl time.Duration) (bool, error) {
	key := s.prefix + provider + ":" + eventID
	result, err := s.client.SetArgs(ctx, key, 1, goredis.SetArgs{
		Mode: "NX",
		TTL:  ttl,
	}).Result()
	if err != nil {
		if err == goredis.Nil {
			// Key already exists — event was already delivered
			return false, nil
		}
		return false, fmt.Errorf("redis event dedupe: %w", err)
	}
	return result == "OK", nil
}

// Forget removes a recorded event id so a later delivery counts as first
// again. Used when processing failed after the id was recorded and the
// gateway is expected to retry.
func (s *EventDedupeCache) Forget(ctx context.Context, provider string, eventID string) error {
	if err := s.client.Del(ctx, s.prefix+provider+":"+eventID).Err(); err != nil {
		return fmt.Errorf("redis event dedupe forget: %w", err)
	}
	return nil
}
