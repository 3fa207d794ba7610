package usecase

import (
	"context"
	"errors"
	"testing"

	"github.com/letsconnect/auth-gateway/internal/core/domain"
	"github.com/letsconnect/auth-gateway/internal/repository"
)

func TestSignInResolvesEmailIdentifier(t *testing.T) {
	accounts := &stubAccountService{
		lookupFn: func(_ context.Context, identifier domain.Identifier) (*domain.Account, error) {
			if !identifier.IsEmail() {
				t.Fatalf("expected email classification, got %s", identifier.Kind)
			}
			if identifier.LookupValue() != "john@example.com" {
				t.Fatalf("expected lowercased lookup value, got %q", identifier.LookupValue())
			}
			return &domain.Account{ID: "acc-1", Username: "johnny"}, nil
		},
		authenticateFn: func(_ context.Context, username, password string) (*domain.Account, error) {
			if username != "johnny" {
				t.Fatalf("expected authentication with canonical username, got %q", username)
			}
			if password != "Sup3r$ecret" {
				t.Fatalf("unexpected password %q", password)
			}
			return &domain.Account{ID: "acc-1", Username: "johnny", SessionToken: "r:tok"}, nil
		},
	}

	svc := NewAuthService(accounts, nil, nil)

	account, err := svc.SignIn(context.Background(), "John@Example.com", "Sup3r$ecret")
	if err != nil {
		t.Fatalf("SignIn returned error: %v", err)
	}
	if account.SessionToken != "r:tok" {
		t.Fatalf("expected session token from authenticate, got %q", account.SessionToken)
	}
}

func TestSignInResolvesMobileIdentifier(t *testing.T) {
	accounts := &stubAccountService{
		lookupFn: func(_ context.Context, identifier domain.Identifier) (*domain.Account, error) {
			if identifier.IsEmail() {
				t.Fatal("expected mobile classification")
			}
			if identifier.LookupValue() != "5551234567" {
				t.Fatalf("expected exact mobile value, got %q", identifier.LookupValue())
			}
			return &domain.Account{ID: "acc-2", Username: "maria"}, nil
		},
		authenticateFn: func(_ context.Context, username, _ string) (*domain.Account, error) {
			return &domain.Account{ID: "acc-2", Username: username, SessionToken: "r:tok2"}, nil
		},
	}

	svc := NewAuthService(accounts, nil, nil)

	if _, err := svc.SignIn(context.Background(), "5551234567", "Sup3r$ecret"); err != nil {
		t.Fatalf("SignIn returned error: %v", err)
	}
}

func TestSignInEmptyFieldsMakeNoBackendCalls(t *testing.T) {
	cases := []struct {
		name       string
		identifier string
		password   string
	}{
		{name: "missing identifier", identifier: "", password: "Sup3r$ecret"},
		{name: "missing password", identifier: "john@example.com", password: ""},
		{name: "blank identifier", identifier: "   ", password: "Sup3r$ecret"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			accounts := &stubAccountService{}
			svc := NewAuthService(accounts, nil, nil)

			_, err := svc.SignIn(context.Background(), tc.identifier, tc.password)
			if !errors.Is(err, ErrValidation) {
				t.Fatalf("expected ErrValidation, got %v", err)
			}
			if accounts.lookupCalls != 0 || accounts.authenticateCalls != 0 {
				t.Fatalf("expected no backend calls, got lookup=%d authenticate=%d", accounts.lookupCalls, accounts.authenticateCalls)
			}
		})
	}
}

func TestSignInUnknownIdentifierSkipsAuthenticate(t *testing.T) {
	accounts := &stubAccountService{
		lookupFn: func(context.Context, domain.Identifier) (*domain.Account, error) {
			return nil, repository.ErrNotFound
		},
	}

	svc := NewAuthService(accounts, nil, nil)

	_, err := svc.SignIn(context.Background(), "ghost@example.com", "Sup3r$ecret")
	if !errors.Is(err, ErrAccountNotFound) {
		t.Fatalf("expected ErrAccountNotFound, got %v", err)
	}
	if !errors.Is(err, ErrInvalidCredentials) {
		t.Fatal("a lookup miss must still read as a credential rejection")
	}
	if accounts.authenticateCalls != 0 {
		t.Fatalf("expected no authenticate call after lookup miss, got %d", accounts.authenticateCalls)
	}
}

func TestSignInRejectsDuplicateSubmission(t *testing.T) {
	accounts := &stubAccountService{}
	inflight := newStubInflightStore()
	inflight.held["login:john@example.com"] = true

	svc := NewAuthService(accounts, inflight, nil)

	_, err := svc.SignIn(context.Background(), "John@Example.com", "Sup3r$ecret")
	if !errors.Is(err, ErrRequestInFlight) {
		t.Fatalf("expected ErrRequestInFlight, got %v", err)
	}
	if accounts.lookupCalls != 0 {
		t.Fatalf("duplicate submission must not reach the backend, got %d lookups", accounts.lookupCalls)
	}
}

func TestSignInReleasesInflightGuard(t *testing.T) {
	accounts := &stubAccountService{
		lookupFn: func(context.Context, domain.Identifier) (*domain.Account, error) {
			return &domain.Account{ID: "acc-1", Username: "johnny"}, nil
		},
		authenticateFn: func(context.Context, string, string) (*domain.Account, error) {
			return &domain.Account{ID: "acc-1", Username: "johnny", SessionToken: "r:tok"}, nil
		},
	}
	inflight := newStubInflightStore()

	svc := NewAuthService(accounts, inflight, nil)

	if _, err := svc.SignIn(context.Background(), "john@example.com", "Sup3r$ecret"); err != nil {
		t.Fatalf("SignIn returned error: %v", err)
	}
	if inflight.releases != 1 {
		t.Fatalf("expected guard released once, got %d", inflight.releases)
	}
	if _, err := svc.SignIn(context.Background(), "john@example.com", "Sup3r$ecret"); err != nil {
		t.Fatalf("second sequential SignIn returned error: %v", err)
	}
}

func TestSignInWrongPassword(t *testing.T) {
	accounts := &stubAccountService{
		lookupFn: func(context.Context, domain.Identifier) (*domain.Account, error) {
			return &domain.Account{ID: "acc-1", Username: "johnny"}, nil
		},
		authenticateFn: func(context.Context, string, string) (*domain.Account, error) {
			return nil, repository.ErrInvalidCredentials
		},
	}

	svc := NewAuthService(accounts, nil, nil)

	_, err := svc.SignIn(context.Background(), "john@example.com", "wrong")
	if !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
	if errors.Is(err, ErrAccountNotFound) {
		t.Fatal("a wrong password must not carry the lookup-miss tag")
	}
}

func TestSignInBackendFailureIsNotCredentialError(t *testing.T) {
	backendErr := errors.New("backend unavailable")
	accounts := &stubAccountService{
		lookupFn: func(context.Context, domain.Identifier) (*domain.Account, error) {
			return nil, backendErr
		},
	}

	svc := NewAuthService(accounts, nil, nil)

	_, err := svc.SignIn(context.Background(), "john@example.com", "Sup3r$ecret")
	if errors.Is(err, ErrInvalidCredentials) {
		t.Fatal("backend failure must not masquerade as bad credentials")
	}
	if !errors.Is(err, backendErr) {
		t.Fatalf("expected wrapped backend error, got %v", err)
	}
}
