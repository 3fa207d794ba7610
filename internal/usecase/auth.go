package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/letsconnect/auth-gateway/internal/core/domain"
	"github.com/letsconnect/auth-gateway/internal/core/port"
	"github.com/letsconnect/auth-gateway/internal/repository"
)

var (
	// ErrInvalidCredentials indicates the provided identifier or password are incorrect.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrAccountNotFound tags a lookup miss. It matches ErrInvalidCredentials so
	// transports collapse unknown identifiers and wrong passwords into the same
	// rejection without revealing which accounts exist.
	ErrAccountNotFound = fmt.Errorf("%w: account not found", ErrInvalidCredentials)
	// ErrValidation indicates the request failed local validation before any
	// backend call was made.
	ErrValidation = errors.New("validation failed")
)

// AuthService coordinates the sign-in flow against the hosted backend.
type AuthService struct {
	accounts port.AccountService
	inflight inflightGuard
	logger   *zap.Logger
}

// NewAuthService constructs an AuthService instance. A nil inflight store
// disables the duplicate-submission guard.
func NewAuthService(accounts port.AccountService, inflight port.InflightStore, logger *zap.Logger) *AuthService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AuthService{
		accounts: accounts,
		inflight: newInflightGuard(inflight, 0, logger),
		logger:   logger,
	}
}

// SignIn resolves the identifier to an account and authenticates with the
// account's canonical username. The lookup and the credential check are two
// separate backend calls; a lookup miss never reaches the credential check.
func (s *AuthService) SignIn(ctx context.Context, identifier, password string) (*domain.Account, error) {
	identifier = strings.TrimSpace(identifier)
	if identifier == "" {
		return nil, fmt.Errorf("%w: identifier is required", ErrValidation)
	}
	if password == "" {
		return nil, fmt.Errorf("%w: password is required", ErrValidation)
	}

	classified := domain.ClassifyIdentifier(identifier)

	release, err := s.inflight.acquire(ctx, "login:"+classified.LookupValue())
	if err != nil {
		return nil, err
	}
	defer release()

	account, err := s.accounts.Lookup(ctx, classified)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			s.logger.Debug("sign-in lookup miss", zap.String("kind", string(classified.Kind)))
			return nil, ErrAccountNotFound
		}
		return nil, fmt.Errorf("lookup account: %w", err)
	}

	authenticated, err := s.accounts.Authenticate(ctx, account.Username, password)
	if err != nil {
		if errors.Is(err, repository.ErrInvalidCredentials) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("authenticate: %w", err)
	}

	return authenticated, nil
}
