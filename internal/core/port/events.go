package port

import (
	"context"

	"github.com/letsconnect/auth-gateway/internal/core/domain"
)

// EventPublisher publishes auth domain events to the message bus.
type EventPublisher interface {
	PublishUserSignedUp(ctx context.Context, event domain.UserSignedUpEvent) error
	PublishPasswordResetRequested(ctx context.Context, event domain.PasswordResetRequestedEvent) error
	PublishPasswordChanged(ctx context.Context, event domain.PasswordChangedEvent) error
	PublishSessionRevoked(ctx context.Context, event domain.SessionRevokedEvent) error
}
