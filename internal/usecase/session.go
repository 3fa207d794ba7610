package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	uuid "github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/letsconnect/auth-gateway/internal/core/domain"
	"github.com/letsconnect/auth-gateway/internal/core/port"
	"github.com/letsconnect/auth-gateway/internal/repository"
)

// ErrSessionInvalid indicates the backend no longer honors the session token.
var ErrSessionInvalid = errors.New("session invalid")

// SessionService resolves and revokes backend-owned sessions. The gateway
// never mints tokens itself; it only forwards the opaque ones the backend issued.
type SessionService struct {
	accounts port.AccountService
	events   port.EventPublisher
	logger   *zap.Logger
	now      func() time.Time
}

// NewSessionService constructs a SessionService.
func NewSessionService(accounts port.AccountService, events port.EventPublisher, logger *zap.Logger) *SessionService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SessionService{
		accounts: accounts,
		events:   events,
		logger:   logger,
		now:      time.Now,
	}
}

// WithClock overrides the time source (primarily for tests).
func (s *SessionService) WithClock(now func() time.Time) {
	if now != nil {
		s.now = now
	}
}

// Current resolves the session token to its account.
func (s *SessionService) Current(ctx context.Context, sessionToken string) (*domain.Account, error) {
	sessionToken = strings.TrimSpace(sessionToken)
	if sessionToken == "" {
		return nil, ErrSessionInvalid
	}

	account, err := s.accounts.Current(ctx, sessionToken)
	if err != nil {
		if errors.Is(err, repository.ErrSessionInvalid) || errors.Is(err, repository.ErrNotFound) {
			return nil, ErrSessionInvalid
		}
		return nil, fmt.Errorf("resolve session: %w", err)
	}

	return account, nil
}

// Logout revokes the session behind the token, then makes exactly one check
// that the backend no longer honors it. Logging out a token that is missing
// or already dead succeeds silently; the end state is the same either way.
func (s *SessionService) Logout(ctx context.Context, sessionToken string) error {
	sessionToken = strings.TrimSpace(sessionToken)
	if sessionToken == "" {
		return nil
	}

	if err := s.accounts.Logout(ctx, sessionToken); err != nil {
		if !errors.Is(err, repository.ErrSessionInvalid) && !errors.Is(err, repository.ErrNotFound) {
			return fmt.Errorf("logout: %w", err)
		}
	}

	account, err := s.accounts.Current(ctx, sessionToken)
	if err == nil {
		s.logger.Warn("session survived revocation", zap.String("account_id", account.ID))
		return errors.New("session still active after logout")
	}
	if !errors.Is(err, repository.ErrSessionInvalid) && !errors.Is(err, repository.ErrNotFound) {
		return fmt.Errorf("confirm logout: %w", err)
	}

	s.publishSessionRevoked(ctx)

	return nil
}

func (s *SessionService) publishSessionRevoked(ctx context.Context) {
	if s.events == nil {
		return
	}

	// The confirming check runs after the token is dead, so the account behind
	// it can no longer be resolved. Consumers correlate through the metadata.
	event := domain.SessionRevokedEvent{
		EventID:   uuid.NewString(),
		RevokedAt: s.now().UTC(),
		Reason:    "user_logout",
	}
	if err := s.events.PublishSessionRevoked(ctx, event); err != nil {
		s.logger.Warn("Failed to publish session revoked event", zap.Error(err))
	}
}
