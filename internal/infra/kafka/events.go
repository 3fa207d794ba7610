package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/IBM/sarama"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/letsconnect/auth-gateway/internal/core/domain"
	"github.com/letsconnect/auth-gateway/internal/core/port"
	"github.com/letsconnect/auth-gateway/internal/infra/config"
	"github.com/letsconnect/auth-gateway/internal/infra/logger"
)

const schemaVersion = "1.0"

// EventPublisher implements port.EventPublisher using Kafka.
type EventPublisher struct {
	producer *Producer
	logger   *zap.Logger
	appCfg   config.AppSettings
}

// NewEventPublisher constructs a Kafka-backed event publisher.
func NewEventPublisher(producer *Producer, appCfg config.AppSettings, logger *zap.Logger) *EventPublisher {
	return &EventPublisher{producer: producer, appCfg: appCfg, logger: logger}
}

type envelopeMetadata map[string]string

type eventEnvelope struct {
	EventID   string           `json:"event_id"`
	EventType string           `json:"event_type"`
	AccountID string           `json:"account_id,omitempty"`
	Timestamp time.Time        `json:"timestamp"`
	Version   string           `json:"version"`
	Payload   any              `json:"payload"`
	Metadata  envelopeMetadata `json:"metadata,omitempty"`
}

func (p *EventPublisher) publish(ctx context.Context, eventID, eventType, accountID string, ts time.Time, payload any) error {
	if ts.IsZero() {
		ts = time.Now().UTC()
	}

	id := eventID
	if id == "" {
		id = uuid.NewString()
	}

	metadata := envelopeMetadata{
		"service":     p.appCfg.Name,
		"environment": p.appCfg.Env,
	}

	if requestID, ok := ctx.Value(logger.RequestIDKey{}).(string); ok && requestID != "" {
		metadata["request_id"] = requestID
	}

	envelope := eventEnvelope{
		EventID:   id,
		EventType: eventType,
		AccountID: accountID,
		Timestamp: ts.UTC(),
		Version:   schemaVersion,
		Payload:   payload,
		Metadata:  metadata,
	}

	bytes, err := json.Marshal(envelope)
	if err != nil {
		return fmt.Errorf("marshal event envelope: %w", err)
	}

	message := &sarama.ProducerMessage{
		Topic: p.producer.TopicName(eventType),
		Value: sarama.ByteEncoder(bytes),
	}

	select {
	case p.producer.Producer().Input() <- message:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// PublishUserSignedUp publishes auth.user.signed_up events.
func (p *EventPublisher) PublishUserSignedUp(ctx context.Context, event domain.UserSignedUpEvent) error {
	payload := struct {
		AccountID    string         `json:"account_id"`
		Username     string         `json:"username"`
		Email        string         `json:"email,omitempty"`
		MobileNumber string         `json:"mobile_number,omitempty"`
		SignedUpAt   time.Time      `json:"signed_up_at"`
		Metadata     map[string]any `json:"metadata,omitempty"`
	}{
		AccountID:    event.AccountID,
		Username:     event.Username,
		Email:        event.Email,
		MobileNumber: event.MobileNumber,
		SignedUpAt:   event.SignedUpAt.UTC(),
		Metadata:     event.Metadata,
	}

	return p.publish(ctx, event.EventID, "user.signed_up", event.AccountID, event.SignedUpAt, payload)
}

// PublishPasswordResetRequested publishes auth.password.reset_requested events.
// The verification code rides in the payload so the notification consumer can
// deliver it; the gateway itself only ever stores its hash.
func (p *EventPublisher) PublishPasswordResetRequested(ctx context.Context, event domain.PasswordResetRequestedEvent) error {
	payload := struct {
		AccountID         string         `json:"account_id"`
		RecoveryID        string         `json:"recovery_id"`
		RequestedAt       time.Time      `json:"requested_at"`
		Destination       string         `json:"destination"`
		MaskedDestination string         `json:"masked_destination,omitempty"`
		Code              string         `json:"code"`
		ExpiresAt         time.Time      `json:"expires_at"`
		Metadata          map[string]any `json:"metadata,omitempty"`
	}{
		AccountID:         event.AccountID,
		RecoveryID:        event.RecoveryID,
		RequestedAt:       event.RequestedAt.UTC(),
		Destination:       event.Destination,
		MaskedDestination: event.MaskedDestination,
		Code:              event.Code,
		ExpiresAt:         event.ExpiresAt.UTC(),
		Metadata:          event.Metadata,
	}

	return p.publish(ctx, event.EventID, "password.reset_requested", event.AccountID, event.RequestedAt, payload)
}

// PublishPasswordChanged publishes auth.password.changed events.
func (p *EventPublisher) PublishPasswordChanged(ctx context.Context, event domain.PasswordChangedEvent) error {
	payload := struct {
		AccountID  string         `json:"account_id"`
		RecoveryID string         `json:"recovery_id,omitempty"`
		ChangedAt  time.Time      `json:"changed_at"`
		Metadata   map[string]any `json:"metadata,omitempty"`
	}{
		AccountID:  event.AccountID,
		RecoveryID: event.RecoveryID,
		ChangedAt:  event.ChangedAt.UTC(),
		Metadata:   event.Metadata,
	}

	return p.publish(ctx, event.EventID, "password.changed", event.AccountID, event.ChangedAt, payload)
}

// PublishSessionRevoked publishes auth.session.revoked events.
func (p *EventPublisher) PublishSessionRevoked(ctx context.Context, event domain.SessionRevokedEvent) error {
	payload := struct {
		AccountID string         `json:"account_id"`
		RevokedAt time.Time      `json:"revoked_at"`
		Reason    string         `json:"reason,omitempty"`
		Metadata  map[string]any `json:"metadata,omitempty"`
	}{
		AccountID: event.AccountID,
		RevokedAt: event.RevokedAt.UTC(),
		Reason:    event.Reason,
		Metadata:  event.Metadata,
	}

	return p.publish(ctx, event.EventID, "session.revoked", event.AccountID, event.RevokedAt, payload)
}

var _ port.EventPublisher = (*EventPublisher)(nil)
