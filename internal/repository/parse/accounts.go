package parse

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/letsconnect/auth-gateway/internal/core/domain"
	"github.com/letsconnect/auth-gateway/internal/repository"
)

const (
	fieldEmail        = "email"
	fieldMobileNumber = "mobileNumber"
)

// AccountRepository implements port.AccountService against the backend's
// /users, /login, and /logout resources.
type AccountRepository struct {
	client *Client
}

// NewAccountRepository constructs an AccountRepository over the shared client.
func NewAccountRepository(client *Client) *AccountRepository {
	return &AccountRepository{client: client}
}

type userPayload struct {
	ObjectID     string `json:"objectId"`
	Username     string `json:"username"`
	Email        string `json:"email"`
	MobileNumber string `json:"mobileNumber"`
	SessionToken string `json:"sessionToken"`
	CreatedAt    string `json:"createdAt"`
	UpdatedAt    string `json:"updatedAt"`
}

func (p userPayload) toDomain() *domain.Account {
	account := &domain.Account{
		ID:           p.ObjectID,
		Username:     p.Username,
		Email:        p.Email,
		MobileNumber: p.MobileNumber,
		SessionToken: p.SessionToken,
	}
	if ts, err := time.Parse(time.RFC3339Nano, p.CreatedAt); err == nil {
		account.CreatedAt = ts
	}
	if ts, err := time.Parse(time.RFC3339Nano, p.UpdatedAt); err == nil {
		account.UpdatedAt = ts
	}
	return account
}

// Lookup resolves an identifier with a single OR-combined query, limit 1.
// Both branches are always included so the backend decides which matches:
// email comparisons use the lowercased identifier, mobile the exact string.
func (r *AccountRepository) Lookup(ctx context.Context, identifier domain.Identifier) (*domain.Account, error) {
	where := map[string]any{
		"$or": []map[string]any{
			{fieldEmail: strings.ToLower(identifier.Raw)},
			{fieldMobileNumber: identifier.Raw},
		},
	}

	return r.findOne(ctx, where)
}

// LookupByEmail resolves an email address only; used by the recovery wizard.
func (r *AccountRepository) LookupByEmail(ctx context.Context, email string) (*domain.Account, error) {
	return r.findOne(ctx, map[string]any{fieldEmail: strings.ToLower(strings.TrimSpace(email))})
}

func (r *AccountRepository) findOne(ctx context.Context, where map[string]any) (*domain.Account, error) {
	encoded, err := json.Marshal(where)
	if err != nil {
		return nil, fmt.Errorf("encode query predicate: %w", err)
	}

	query := url.Values{}
	query.Set("where", string(encoded))
	query.Set("limit", "1")

	var result struct {
		Results []userPayload `json:"results"`
	}
	if err := r.client.do(ctx, http.MethodGet, "/users", query, nil, &result); err != nil {
		return nil, err
	}
	if len(result.Results) == 0 {
		return nil, repository.ErrNotFound
	}

	return result.Results[0].toDomain(), nil
}

// Authenticate performs a username/password login and requests a revocable
// session token.
func (r *AccountRepository) Authenticate(ctx context.Context, username, password string) (*domain.Account, error) {
	query := url.Values{}
	query.Set("username", username)
	query.Set("password", password)

	var payload userPayload
	if err := r.client.do(ctx, http.MethodGet, "/login", query, nil, &payload, withRevocableSession()); err != nil {
		return nil, err
	}

	return payload.toDomain(), nil
}

// Create registers a new account. Exactly one of Email/MobileNumber is set by
// the caller; the backend enforces username and email uniqueness.
func (r *AccountRepository) Create(ctx context.Context, account domain.NewAccount) (*domain.Account, error) {
	body := map[string]any{
		"username": account.Username,
		"password": account.Password,
	}
	if account.Email != "" {
		body[fieldEmail] = account.Email
	}
	if account.MobileNumber != "" {
		body[fieldMobileNumber] = account.MobileNumber
	}

	var payload userPayload
	if err := r.client.do(ctx, http.MethodPost, "/users", nil, body, &payload, withRevocableSession()); err != nil {
		return nil, err
	}

	created := payload.toDomain()
	created.Username = account.Username
	created.Email = account.Email
	created.MobileNumber = account.MobileNumber

	return created, nil
}

// SetPassword overwrites the account password through the master-key update
// primitive. The backend re-hashes and revokes sessions per its own policy.
func (r *AccountRepository) SetPassword(ctx context.Context, accountID, password string) error {
	if strings.TrimSpace(accountID) == "" {
		return fmt.Errorf("account id is required")
	}

	body := map[string]any{"password": password}
	if err := r.client.do(ctx, http.MethodPut, "/users/"+accountID, nil, body, nil, r.client.withMasterKey()); err != nil {
		var apiErr *APIError
		if errors.As(err, &apiErr) && apiErr.Code == codeObjectNotFound {
			return repository.ErrNotFound
		}
		return err
	}

	return nil
}

// Logout destroys the session. A token the backend no longer recognizes is
// treated as already logged out.
func (r *AccountRepository) Logout(ctx context.Context, sessionToken string) error {
	err := r.client.do(ctx, http.MethodPost, "/logout", nil, nil, nil, withSessionToken(sessionToken))
	if err != nil && !errors.Is(err, repository.ErrSessionInvalid) {
		return err
	}
	return nil
}

// Current resolves the session token to its account.
func (r *AccountRepository) Current(ctx context.Context, sessionToken string) (*domain.Account, error) {
	var payload userPayload
	if err := r.client.do(ctx, http.MethodGet, "/users/me", nil, nil, &payload, withSessionToken(sessionToken)); err != nil {
		return nil, err
	}

	account := payload.toDomain()
	if account.SessionToken == "" {
		account.SessionToken = sessionToken
	}

	return account, nil
}
