package usecase

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"strings"
	"time"

	uuid "github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/letsconnect/auth-gateway/internal/core/domain"
	"github.com/letsconnect/auth-gateway/internal/core/port"
	"github.com/letsconnect/auth-gateway/internal/infra/config"
	"github.com/letsconnect/auth-gateway/internal/infra/logger"
	"github.com/letsconnect/auth-gateway/internal/infra/security"
	"github.com/letsconnect/auth-gateway/internal/repository"
)

var (
	// ErrEmailNotFound indicates no account is registered under the email.
	ErrEmailNotFound = errors.New("email not found")
	// ErrRecoverySessionNotFound indicates the wizard session is unknown or expired.
	ErrRecoverySessionNotFound = errors.New("recovery session not found or expired")
	// ErrRecoveryStepOrder indicates the request targets a step the wizard has
	// not reached or has already passed. Steps only move forward, one at a time.
	ErrRecoveryStepOrder = errors.New("recovery step out of order")
	// ErrRecoveryCodeInvalid indicates the verification code does not match.
	ErrRecoveryCodeInvalid = errors.New("verification code invalid")
	// ErrRecoveryTooManyAttempts indicates the code was guessed wrong too often
	// and the session has been destroyed.
	ErrRecoveryTooManyAttempts = errors.New("too many verification attempts")
)

// PasswordResetService runs the three-step recovery wizard. All wizard state
// lives server-side in the recovery store; the client only ever holds the
// opaque recovery id.
type PasswordResetService struct {
	cfg               config.RecoverySettings
	accounts          port.AccountService
	store             port.RecoveryStore
	inflight          inflightGuard
	events            port.EventPublisher
	passwordValidator *security.PasswordValidator
	logger            *zap.Logger
	now               func() time.Time
	generateCode      func(length int) (string, error)
}

// NewPasswordResetService constructs a PasswordResetService.
func NewPasswordResetService(cfg config.RecoverySettings, accounts port.AccountService, store port.RecoveryStore, inflight port.InflightStore, events port.EventPublisher, validator *security.PasswordValidator, log *zap.Logger) *PasswordResetService {
	if validator == nil {
		validator = security.DefaultPasswordValidator()
	}
	if log == nil {
		log = zap.NewNop()
	}
	if cfg.CodeLength <= 0 {
		cfg.CodeLength = 6
	}
	if cfg.SessionTTL <= 0 {
		cfg.SessionTTL = 15 * time.Minute
	}
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = 5
	}
	if cfg.InflightTTL <= 0 {
		cfg.InflightTTL = 30 * time.Second
	}

	return &PasswordResetService{
		cfg:               cfg,
		accounts:          accounts,
		store:             store,
		inflight:          newInflightGuard(inflight, cfg.InflightTTL, log),
		events:            events,
		passwordValidator: validator,
		logger:            log,
		now:               time.Now,
		generateCode:      security.GenerateNumericCode,
	}
}

// WithClock overrides the time source (primarily for tests).
func (s *PasswordResetService) WithClock(now func() time.Time) {
	if now != nil {
		s.now = now
	}
}

// WithCodeGenerator overrides verification code generation (primarily for tests).
func (s *PasswordResetService) WithCodeGenerator(gen func(length int) (string, error)) {
	if gen != nil {
		s.generateCode = gen
	}
}

// StartResult describes a freshly opened wizard session. Code carries the raw
// verification code; the transport decides whether to expose it (development
// only) while delivery belongs to downstream consumers.
type StartResult struct {
	RecoveryID  string
	MaskedEmail string
	ExpiresAt   time.Time
	Code        string
}

// Start opens a recovery session for the given email address. Recovery is
// email-only: mobile numbers have no delivery channel here.
func (s *PasswordResetService) Start(ctx context.Context, email string) (*StartResult, error) {
	email = strings.TrimSpace(strings.ToLower(email))
	if email == "" {
		return nil, fmt.Errorf("%w: email is required", ErrValidation)
	}
	if !strings.Contains(email, "@") {
		return nil, fmt.Errorf("%w: recovery requires an email address", ErrValidation)
	}

	release, err := s.inflight.acquire(ctx, "start:"+email)
	if err != nil {
		return nil, err
	}
	defer release()

	account, err := s.accounts.LookupByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrEmailNotFound
		}
		return nil, fmt.Errorf("lookup account: %w", err)
	}

	code, err := s.generateCode(s.cfg.CodeLength)
	if err != nil {
		return nil, fmt.Errorf("generate verification code: %w", err)
	}

	now := s.now().UTC()
	session := domain.RecoverySession{
		ID:        uuid.NewString(),
		AccountID: account.ID,
		Email:     email,
		Step:      domain.RecoveryStepVerify,
		CodeHash:  security.HashToken(code),
		CreatedAt: now,
		ExpiresAt: now.Add(s.cfg.SessionTTL),
	}

	if err := s.store.Put(ctx, session, s.cfg.SessionTTL); err != nil {
		return nil, fmt.Errorf("store recovery session: %w", err)
	}

	s.publishResetRequested(ctx, session, code)

	return &StartResult{
		RecoveryID:  session.ID,
		MaskedEmail: logger.MaskEmail(email),
		ExpiresAt:   session.ExpiresAt,
		Code:        code,
	}, nil
}

// Verify checks the emailed code against the session. A correct code advances
// the wizard to the reset step; repeated wrong codes destroy the session.
func (s *PasswordResetService) Verify(ctx context.Context, recoveryID, code string) error {
	recoveryID = strings.TrimSpace(recoveryID)
	code = strings.TrimSpace(code)
	if recoveryID == "" {
		return fmt.Errorf("%w: recovery id is required", ErrValidation)
	}
	if code == "" {
		return fmt.Errorf("%w: verification code is required", ErrValidation)
	}

	release, err := s.inflight.acquire(ctx, "verify:"+recoveryID)
	if err != nil {
		return err
	}
	defer release()

	session, err := s.loadSession(ctx, recoveryID, domain.RecoveryStepVerify)
	if err != nil {
		return err
	}

	attempts, err := s.store.IncrementAttempts(ctx, recoveryID)
	if err != nil {
		return fmt.Errorf("record verification attempt: %w", err)
	}
	if attempts > s.cfg.MaxAttempts {
		if err := s.store.Delete(ctx, recoveryID); err != nil {
			s.logger.Warn("Failed to delete exhausted recovery session",
				zap.String("recovery_id", recoveryID),
				zap.Error(err),
			)
		}
		return ErrRecoveryTooManyAttempts
	}

	supplied := security.HashToken(code)
	if subtle.ConstantTimeCompare([]byte(supplied), []byte(session.CodeHash)) != 1 {
		return ErrRecoveryCodeInvalid
	}

	session.Advance()
	ttl := session.ExpiresAt.Sub(s.now().UTC())
	if ttl <= 0 {
		return ErrRecoverySessionNotFound
	}
	if err := s.store.Put(ctx, *session, ttl); err != nil {
		return fmt.Errorf("advance recovery session: %w", err)
	}

	return nil
}

// Complete sets the new password through the backend and closes the session.
// The password policy here is the same one the sign-up form enforces.
func (s *PasswordResetService) Complete(ctx context.Context, recoveryID, password, confirmPassword string) error {
	recoveryID = strings.TrimSpace(recoveryID)
	if recoveryID == "" {
		return fmt.Errorf("%w: recovery id is required", ErrValidation)
	}
	if password == "" {
		return fmt.Errorf("%w: password is required", ErrValidation)
	}
	if password != confirmPassword {
		return ErrPasswordMismatch
	}
	if err := s.passwordValidator.Validate(password); err != nil {
		return fmt.Errorf("%w: %v", ErrPasswordPolicyViolation, err)
	}

	release, err := s.inflight.acquire(ctx, "complete:"+recoveryID)
	if err != nil {
		return err
	}
	defer release()

	session, err := s.loadSession(ctx, recoveryID, domain.RecoveryStepReset)
	if err != nil {
		return err
	}

	if err := s.accounts.SetPassword(ctx, session.AccountID, password); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrRecoverySessionNotFound
		}
		return fmt.Errorf("set password: %w", err)
	}

	if err := s.store.Delete(ctx, recoveryID); err != nil {
		s.logger.Warn("Failed to delete completed recovery session",
			zap.String("recovery_id", recoveryID),
			zap.Error(err),
		)
	}

	s.publishPasswordChanged(ctx, session)

	return nil
}

// loadSession fetches the wizard session and enforces step ordering. The
// session expiring between calls is indistinguishable from it never existing.
func (s *PasswordResetService) loadSession(ctx context.Context, recoveryID string, want domain.RecoveryStep) (*domain.RecoverySession, error) {
	session, err := s.store.Get(ctx, recoveryID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrRecoverySessionNotFound
		}
		return nil, fmt.Errorf("load recovery session: %w", err)
	}

	if session.Step != want {
		return nil, ErrRecoveryStepOrder
	}

	return session, nil
}

func (s *PasswordResetService) publishResetRequested(ctx context.Context, session domain.RecoverySession, code string) {
	if s.events == nil {
		return
	}

	event := domain.PasswordResetRequestedEvent{
		EventID:           uuid.NewString(),
		AccountID:         session.AccountID,
		RecoveryID:        session.ID,
		RequestedAt:       session.CreatedAt,
		Destination:       session.Email,
		MaskedDestination: logger.MaskEmail(session.Email),
		Code:              code,
		ExpiresAt:         session.ExpiresAt,
	}
	if err := s.events.PublishPasswordResetRequested(ctx, event); err != nil {
		s.logger.Warn("Failed to publish password reset requested event",
			zap.String("recovery_id", session.ID),
			zap.Error(err),
		)
	}
}

func (s *PasswordResetService) publishPasswordChanged(ctx context.Context, session *domain.RecoverySession) {
	if s.events == nil {
		return
	}

	event := domain.PasswordChangedEvent{
		EventID:    uuid.NewString(),
		AccountID:  session.AccountID,
		RecoveryID: session.ID,
		ChangedAt:  s.now().UTC(),
	}
	if err := s.events.PublishPasswordChanged(ctx, event); err != nil {
		s.logger.Warn("Failed to publish password changed event",
			zap.String("recovery_id", session.ID),
			zap.Error(err),
		)
	}
}
