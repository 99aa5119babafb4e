package cache

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// Layered composes a short-TTL local store over a longer-TTL shared one.
// Reads check local first, then shared (repopulating local on a shared
// hit); writes and invalidations go to both. Shared-store errors degrade
// to local-only behavior and are logged, never returned to readers.
type Layered struct {
	local     Store
	shared    Store
	localTTL  time.Duration
	sharedTTL time.Duration
	log       *zap.Logger
}

// NewLayered builds a layered store. A nil shared store yields a purely
// local cache with the local TTL.
func NewLayered(local, shared Store, localTTL, sharedTTL time.Duration, log *zap.Logger) *Layered {
	if log == nil {
		log = zap.NewNop()
	}
	return &Layered{local: local, shared: shared, localTTL: localTTL, sharedTTL: sharedTTL, log: log}
}

func (l *Layered) Get(ctx context.Context, key string) ([]byte, bool, error) {
	if v, ok, err := l.local.Get(ctx, key); err == nil && ok {
		return v, true, nil
	}
	if l.shared == nil {
		return nil, false, nil
	}
	v, ok, err := l.shared.Get(ctx, key)
	if err != nil {
		l.log.Warn("shared cache read failed", zap.String("key", key), zap.Error(err))
		return nil, false, nil
	}
	if !ok {
		return nil, false, nil
	}
	if err := l.local.Set(ctx, key, v, l.localTTL); err != nil {
		l.log.Warn("local cache repopulate failed", zap.String("key", key), zap.Error(err))
	}
	return v, true, nil
}

// Set stores under both layers. The ttl argument is ignored; the layer
// TTLs configured at construction apply.
func (l *Layered) Set(ctx context.Context, key string, value []byte, _ time.Duration) error {
	if err := l.local.Set(ctx, key, value, l.localTTL); err != nil {
		return err
	}
	if l.shared == nil {
		return nil
	}
	if err := l.shared.Set(ctx, key, value, l.sharedTTL); err != nil {
		l.log.Warn("shared cache write failed", zap.String("key", key), zap.Error(err))
	}
	return nil
}

func (l *Layered) Invalidate(ctx context.Context, key, reason string) error {
	l.log.Debug("cache invalidate", zap.String("key", key), zap.String("reason", reason))
	if err := l.local.Invalidate(ctx, key, reason); err != nil {
		return err
	}
	if l.shared == nil {
		return nil
	}
	if err := l.shared.Invalidate(ctx, key, reason); err != nil {
		l.log.Warn("shared cache invalidate failed", zap.String("key", key), zap.Error(err))
	}
	return nil
}
