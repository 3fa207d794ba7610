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
	"github.com/letsconnect/auth-gateway/internal/infra/security"
	"github.com/letsconnect/auth-gateway/internal/repository"
)

var (
	// ErrPasswordPolicyViolation indicates the password does not satisfy complexity requirements.
	ErrPasswordPolicyViolation = errors.New("password does not meet complexity requirements")
	// ErrPasswordMismatch indicates the password and its confirmation differ.
	ErrPasswordMismatch = errors.New("passwords do not match")
	// ErrUsernameTaken indicates the chosen username is already registered.
	ErrUsernameTaken = errors.New("username already taken")
	// ErrEmailTaken indicates the email address is already registered.
	ErrEmailTaken = errors.New("email already taken")
)

// RegistrationService handles new account onboarding against the hosted backend.
type RegistrationService struct {
	accounts          port.AccountService
	inflight          inflightGuard
	events            port.EventPublisher
	passwordValidator *security.PasswordValidator
	logger            *zap.Logger
	now               func() time.Time
}

// NewRegistrationService constructs a registration service. A nil inflight
// store disables the duplicate-submission guard.
func NewRegistrationService(accounts port.AccountService, inflight port.InflightStore, events port.EventPublisher, validator *security.PasswordValidator, logger *zap.Logger) *RegistrationService {
	if validator == nil {
		validator = security.DefaultPasswordValidator()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RegistrationService{
		accounts:          accounts,
		inflight:          newInflightGuard(inflight, 0, logger),
		events:            events,
		passwordValidator: validator,
		logger:            logger,
		now:               time.Now,
	}
}

// WithClock overrides the time source (primarily for tests).
func (s *RegistrationService) WithClock(now func() time.Time) {
	if now != nil {
		s.now = now
	}
}

// SignUpInput carries the sign-up form fields. Identifier is a single field
// the user fills with either an email address or a mobile number.
type SignUpInput struct {
	Username        string
	Identifier      string
	Password        string
	ConfirmPassword string
}

// SignUpResult describes the created account plus the advisory strength score
// of the chosen password. The score never gates acceptance.
type SignUpResult struct {
	Account          *domain.Account
	PasswordStrength int
}

// SignUp validates the form locally, then asks the backend to create the
// account. Validation failures never reach the backend.
func (s *RegistrationService) SignUp(ctx context.Context, input SignUpInput) (*SignUpResult, error) {
	username := strings.TrimSpace(input.Username)
	identifier := strings.TrimSpace(input.Identifier)

	if username == "" {
		return nil, fmt.Errorf("%w: username is required", ErrValidation)
	}
	if identifier == "" {
		return nil, fmt.Errorf("%w: email or mobile number is required", ErrValidation)
	}
	if input.Password == "" {
		return nil, fmt.Errorf("%w: password is required", ErrValidation)
	}
	if input.Password != input.ConfirmPassword {
		return nil, ErrPasswordMismatch
	}
	if err := s.passwordValidator.Validate(input.Password); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPasswordPolicyViolation, err)
	}

	classified := domain.ClassifyIdentifier(identifier)

	release, err := s.inflight.acquire(ctx, "signup:"+strings.ToLower(username))
	if err != nil {
		return nil, err
	}
	defer release()

	newAccount := domain.NewAccount{
		Username: username,
		Password: input.Password,
	}
	if classified.IsEmail() {
		newAccount.Email = classified.LookupValue()
	} else {
		newAccount.MobileNumber = classified.LookupValue()
	}

	account, err := s.accounts.Create(ctx, newAccount)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrUsernameTaken):
			return nil, ErrUsernameTaken
		case errors.Is(err, repository.ErrEmailTaken):
			return nil, ErrEmailTaken
		}
		return nil, fmt.Errorf("create account: %w", err)
	}

	s.publishSignedUp(ctx, account)

	return &SignUpResult{
		Account:          account,
		PasswordStrength: security.StrengthScore(input.Password, username, identifier),
	}, nil
}

func (s *RegistrationService) publishSignedUp(ctx context.Context, account *domain.Account) {
	if s.events == nil {
		return
	}

	event := domain.UserSignedUpEvent{
		EventID:      uuid.NewString(),
		AccountID:    account.ID,
		Username:     account.Username,
		Email:        account.Email,
		MobileNumber: account.MobileNumber,
		SignedUpAt:   s.now().UTC(),
	}
	if err := s.events.PublishUserSignedUp(ctx, event); err != nil {
		s.logger.Warn("Failed to publish user signed up event",
			zap.String("account_id", account.ID),
			zap.Error(err),
		)
	}
}
