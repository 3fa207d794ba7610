package port

import (
	"context"
	"time"

	"github.com/letsconnect/auth-gateway/internal/core/domain"
)

// RecoveryStore holds in-flight password-recovery wizard sessions. Entries are
// TTL-bound; a missing entry is repository.ErrNotFound.
type RecoveryStore interface {
	Put(ctx context.Context, session domain.RecoverySession, ttl time.Duration) error
	Get(ctx context.Context, id string) (*domain.RecoverySession, error)
	IncrementAttempts(ctx context.Context, id string) (int, error)
	Delete(ctx context.Context, id string) error
}
