// Package cache provides the shared caching abstraction: an in-process
// TTL store and a layered local/shared composition used by the scoring
// and adaptation paths. Values are opaque bytes; callers marshal.
package cache

import (
	"context"
	"encoding/json"
	"time"
)

// Store is the minimal cache contract. Get reports a miss with ok=false
// rather than an error, and Invalidate carries a reason tag so eviction
// events are attributable in logs.
type Store interface {
	Get(ctx context.Context, key string) (value []byte, ok bool, err error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Invalidate(ctx context.Context, key, reason string) error
}

// GetJSON reads key and unmarshals it into out. A miss or decode failure
// returns ok=false; decode failures also invalidate the entry so a
// poisoned value cannot keep serving misses.
func GetJSON(ctx context.Context, s Store, key string, out any) (bool, error) {
	raw, ok, err := s.Get(ctx, key)
	if err != nil || !ok {
		return false, err
	}
	if err := json.Unmarshal(raw, out); err != nil {
		_ = s.Invalidate(ctx, key, "decode-failure")
		return false, nil
	}
	return true, nil
}

// SetJSON marshals v and stores it under key.
func SetJSON(ctx context.Context, s Store, key string, v any, ttl time.Duration) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return s.Set(ctx, key, raw, ttl)
}
