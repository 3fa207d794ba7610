package usecase

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/letsconnect/auth-gateway/internal/core/domain"
	"github.com/letsconnect/auth-gateway/internal/core/port"
	"github.com/letsconnect/auth-gateway/internal/repository"
)

// stubAccountService lets each test wire only the backend calls it expects.
// Unconfigured calls fail loudly so accidental backend traffic is visible.
type stubAccountService struct {
	lookupFn        func(ctx context.Context, identifier domain.Identifier) (*domain.Account, error)
	lookupByEmailFn func(ctx context.Context, email string) (*domain.Account, error)
	authenticateFn  func(ctx context.Context, username, password string) (*domain.Account, error)
	createFn        func(ctx context.Context, account domain.NewAccount) (*domain.Account, error)
	setPasswordFn   func(ctx context.Context, accountID, password string) error
	logoutFn        func(ctx context.Context, sessionToken string) error
	currentFn       func(ctx context.Context, sessionToken string) (*domain.Account, error)

	lookupCalls       int
	authenticateCalls int
	createCalls       int
	setPasswordCalls  int
	logoutCalls       int
	currentCalls      int
}

func (s *stubAccountService) Lookup(ctx context.Context, identifier domain.Identifier) (*domain.Account, error) {
	s.lookupCalls++
	if s.lookupFn == nil {
		return nil, errors.New("unexpected call: Lookup")
	}
	return s.lookupFn(ctx, identifier)
}

func (s *stubAccountService) LookupByEmail(ctx context.Context, email string) (*domain.Account, error) {
	s.lookupCalls++
	if s.lookupByEmailFn == nil {
		return nil, errors.New("unexpected call: LookupByEmail")
	}
	return s.lookupByEmailFn(ctx, email)
}

func (s *stubAccountService) Authenticate(ctx context.Context, username, password string) (*domain.Account, error) {
	s.authenticateCalls++
	if s.authenticateFn == nil {
		return nil, errors.New("unexpected call: Authenticate")
	}
	return s.authenticateFn(ctx, username, password)
}

func (s *stubAccountService) Create(ctx context.Context, account domain.NewAccount) (*domain.Account, error) {
	s.createCalls++
	if s.createFn == nil {
		return nil, errors.New("unexpected call: Create")
	}
	return s.createFn(ctx, account)
}

func (s *stubAccountService) SetPassword(ctx context.Context, accountID, password string) error {
	s.setPasswordCalls++
	if s.setPasswordFn == nil {
		return errors.New("unexpected call: SetPassword")
	}
	return s.setPasswordFn(ctx, accountID, password)
}

func (s *stubAccountService) Logout(ctx context.Context, sessionToken string) error {
	s.logoutCalls++
	if s.logoutFn == nil {
		return errors.New("unexpected call: Logout")
	}
	return s.logoutFn(ctx, sessionToken)
}

func (s *stubAccountService) Current(ctx context.Context, sessionToken string) (*domain.Account, error) {
	s.currentCalls++
	if s.currentFn == nil {
		return nil, errors.New("unexpected call: Current")
	}
	return s.currentFn(ctx, sessionToken)
}

var _ port.AccountService = (*stubAccountService)(nil)

// stubRecoveryStore is an in-memory RecoveryStore without TTL expiry. Tests
// drive expiry through the session's ExpiresAt field instead.
type stubRecoveryStore struct {
	mu       sync.Mutex
	sessions map[string]domain.RecoverySession
}

func newStubRecoveryStore() *stubRecoveryStore {
	return &stubRecoveryStore{sessions: make(map[string]domain.RecoverySession)}
}

func (s *stubRecoveryStore) Put(_ context.Context, session domain.RecoverySession, _ time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[session.ID] = session
	return nil
}

func (s *stubRecoveryStore) Get(_ context.Context, id string) (*domain.RecoverySession, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	session, ok := s.sessions[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	copy := session
	return &copy, nil
}

func (s *stubRecoveryStore) IncrementAttempts(_ context.Context, id string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	session, ok := s.sessions[id]
	if !ok {
		return 0, repository.ErrNotFound
	}
	session.Attempts++
	s.sessions[id] = session
	return session.Attempts, nil
}

func (s *stubRecoveryStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, id)
	return nil
}

var _ port.RecoveryStore = (*stubRecoveryStore)(nil)

// stubInflightStore tracks held keys in memory.
type stubInflightStore struct {
	mu       sync.Mutex
	held     map[string]bool
	acquires int
	releases int
}

func newStubInflightStore() *stubInflightStore {
	return &stubInflightStore{held: make(map[string]bool)}
}

func (s *stubInflightStore) Acquire(_ context.Context, key string, _ time.Duration) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.acquires++
	if s.held[key] {
		return false, nil
	}
	s.held[key] = true
	return true, nil
}

func (s *stubInflightStore) Release(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.releases++
	delete(s.held, key)
	return nil
}

var _ port.InflightStore = (*stubInflightStore)(nil)

// stubEventPublisher records published events for assertions.
type stubEventPublisher struct {
	mu              sync.Mutex
	signedUp        []domain.UserSignedUpEvent
	resetRequested  []domain.PasswordResetRequestedEvent
	passwordChanged []domain.PasswordChangedEvent
	sessionRevoked  []domain.SessionRevokedEvent
}

func (p *stubEventPublisher) PublishUserSignedUp(_ context.Context, event domain.UserSignedUpEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.signedUp = append(p.signedUp, event)
	return nil
}

func (p *stubEventPublisher) PublishPasswordResetRequested(_ context.Context, event domain.PasswordResetRequestedEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.resetRequested = append(p.resetRequested, event)
	return nil
}

func (p *stubEventPublisher) PublishPasswordChanged(_ context.Context, event domain.PasswordChangedEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.passwordChanged = append(p.passwordChanged, event)
	return nil
}

func (p *stubEventPublisher) PublishSessionRevoked(_ context.Context, event domain.SessionRevokedEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.sessionRevoked = append(p.sessionRevoked, event)
	return nil
}

var _ port.EventPublisher = (*stubEventPublisher)(nil)
