package port

import (
	"context"
	"time"
)

// InflightStore guards against duplicate concurrent submissions of the same
// form. Acquire reports false when another submission for the key is already
// pending; Release frees the key once the flow settles.
type InflightStore interface {
	Acquire(ctx context.Context, key string, ttl time.Duration) (bool, error)
	Release(ctx context.Context, key string) error
}
