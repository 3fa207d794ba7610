package kafka

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/letsconnect/auth-gateway/internal/core/domain"
	"github.com/letsconnect/auth-gateway/internal/core/port"
	"github.com/letsconnect/auth-gateway/internal/infra/logger"
)

// StubPublisher logs events instead of sending them to Kafka. Useful for development environments.
type StubPublisher struct {
	logger *zap.Logger
}

// NewStubPublisher constructs a development-friendly event publisher.
func NewStubPublisher(logger *zap.Logger) *StubPublisher {
	return &StubPublisher{logger: logger}
}

func (p *StubPublisher) logEvent(eventType, accountID string, at time.Time, payload any) {
	if at.IsZero() {
		at = time.Now().UTC()
	}

	p.logger.Info("Stub event published",
		zap.String("event_type", eventType),
		zap.String("account_id", accountID),
		zap.Time("timestamp", at.UTC()),
		zap.Any("payload", payload),
	)
}

// PublishUserSignedUp logs auth.user.signed_up events.
func (p *StubPublisher) PublishUserSignedUp(_ context.Context, event domain.UserSignedUpEvent) error {
	payload := map[string]any{
		"account_id":    event.AccountID,
		"username":      event.Username,
		"email":         logger.MaskEmail(event.Email),
		"mobile_number": logger.MaskMobile(event.MobileNumber),
		"signed_up_at":  event.SignedUpAt,
		"metadata":      event.Metadata,
	}
	p.logEvent("user.signed_up", event.AccountID, event.SignedUpAt, payload)
	return nil
}

// PublishPasswordResetRequested logs auth.password.reset_requested events. The
// verification code is never written to the log.
func (p *StubPublisher) PublishPasswordResetRequested(_ context.Context, event domain.PasswordResetRequestedEvent) error {
	payload := map[string]any{
		"account_id":         event.AccountID,
		"recovery_id":        event.RecoveryID,
		"requested_at":       event.RequestedAt,
		"masked_destination": event.MaskedDestination,
		"expires_at":         event.ExpiresAt,
		"metadata":           event.Metadata,
	}
	p.logEvent("password.reset_requested", event.AccountID, event.RequestedAt, payload)
	return nil
}

// PublishPasswordChanged logs auth.password.changed events.
func (p *StubPublisher) PublishPasswordChanged(_ context.Context, event domain.PasswordChangedEvent) error {
	payload := map[string]any{
		"account_id":  event.AccountID,
		"recovery_id": event.RecoveryID,
		"changed_at":  event.ChangedAt,
		"metadata":    event.Metadata,
	}
	p.logEvent("password.changed", event.AccountID, event.ChangedAt, payload)
	return nil
}

// PublishSessionRevoked logs auth.session.revoked events.
func (p *StubPublisher) PublishSessionRevoked(_ context.Context, event domain.SessionRevokedEvent) error {
	payload := map[string]any{
		"account_id": event.AccountID,
		"revoked_at": event.RevokedAt,
		"reason":     event.Reason,
		"metadata":   event.Metadata,
	}
	p.logEvent("session.revoked", event.AccountID, event.RevokedAt, payload)
	return nil
}

var _ port.EventPublisher = (*StubPublisher)(nil)
