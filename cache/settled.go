// Package cache remembers correlation keys that were already reconciled so
// duplicate provider callbacks can skip the provider round trip.
package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

type SettledKeys struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewSettledKeys(rdb *redis.Client, ttl time.Duration) *SettledKeys {
	return &SettledKeys{rdb: rdb, ttl: ttl}
}

func settledKey(provider, correlationKey string) string {
	return fmt.Sprintf("reconcile:settled:%s:%s", provider, correlationKey)
}

func (s *SettledKeys) IsSettled(ctx context.Context, provider, correlationKey string) (bool, error) {
	n, err := s.rdb.Exists(ctx, settledKey(provider, correlationKey)).Result()
	return n > 0, err
}

// MarkSettled records the outcome for a correlation key. The first writer wins.
func (s *SettledKeys) MarkSettled(ctx context.Context, provider, correlationKey, outcome string) error {
	return s.rdb.SetNX(ctx, settledKey(provider, correlationKey), outcome, s.ttl).Err()
}
