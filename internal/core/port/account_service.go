package port

import (
	"context"

	"github.com/letsconnect/auth-gateway/internal/core/domain"
)

// AccountService is the capability surface of the external hosted backend.
// The backend owns account storage, password hashing, and session tokens; the
// gateway treats every operation here as an opaque remote call.
type AccountService interface {
	// Lookup resolves an identifier to the account it denotes. Emails are
	// matched case-insensitively, mobile numbers exactly, as a single
	// OR-combined query with limit 1. Absence is repository.ErrNotFound.
	Lookup(ctx context.Context, identifier domain.Identifier) (*domain.Account, error)

	// LookupByEmail resolves an email address only. The recovery wizard is
	// restricted to email; mobile lookup is deliberately not offered there.
	LookupByEmail(ctx context.Context, email string) (*domain.Account, error)

	// Authenticate logs in with the account's canonical username. On success
	// the returned account carries a fresh session token.
	Authenticate(ctx context.Context, username, password string) (*domain.Account, error)

	// Create registers a new account. Duplicate rejections surface as the
	// tagged errors in repository/parse.
	Create(ctx context.Context, account domain.NewAccount) (*domain.Account, error)

	// SetPassword overwrites the account's password using the backend's
	// privileged update primitive. Existing sessions are left to the
	// backend's revocation policy.
	SetPassword(ctx context.Context, accountID, password string) error

	// Logout destroys the session behind the token. Unknown or already-dead
	// tokens are not an error; logout is idempotent.
	Logout(ctx context.Context, sessionToken string) error

	// Current resolves the session token to its account, or reports
	// ErrSessionInvalid when the backend no longer honors the token.
	Current(ctx context.Context, sessionToken string) (*domain.Account, error)
}
