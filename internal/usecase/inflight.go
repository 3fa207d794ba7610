package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/letsconnect/auth-gateway/internal/core/port"
)

// ErrRequestInFlight indicates an identical submission is already being
// processed; the duplicate is rejected, not queued.
var ErrRequestInFlight = errors.New("request already in flight")

const defaultInflightTTL = 30 * time.Second

// inflightGuard rejects a second submission of the same request while the
// first is still pending. A nil store disables the guard.
type inflightGuard struct {
	store  port.InflightStore
	ttl    time.Duration
	logger *zap.Logger
}

func newInflightGuard(store port.InflightStore, ttl time.Duration, logger *zap.Logger) inflightGuard {
	if ttl <= 0 {
		ttl = defaultInflightTTL
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return inflightGuard{store: store, ttl: ttl, logger: logger}
}

// acquire claims the key and returns a release closure. The release uses a
// detached context so cleanup survives request cancellation.
func (g inflightGuard) acquire(ctx context.Context, key string) (func(), error) {
	if g.store == nil {
		return func() {}, nil
	}

	ok, err := g.store.Acquire(ctx, key, g.ttl)
	if err != nil {
		return nil, fmt.Errorf("acquire inflight guard: %w", err)
	}
	if !ok {
		return nil, ErrRequestInFlight
	}

	return func() {
		if err := g.store.Release(context.WithoutCancel(ctx), key); err != nil {
			g.logger.Warn("Failed to release inflight guard",
				zap.String("key", key),
				zap.Error(err),
			)
		}
	}, nil
}
