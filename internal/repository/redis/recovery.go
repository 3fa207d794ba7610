package redis

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	red "github.com/redis/go-redis/v9"

	"github.com/letsconnect/auth-gateway/internal/core/domain"
	"github.com/letsconnect/auth-gateway/internal/repository"
)

const (
	defaultRecoveryPrefix = "recovery"

	fieldAccountID = "account_id"
	fieldEmail     = "email"
	fieldStep      = "step"
	fieldCodeHash  = "code_hash"
	fieldAttempts  = "attempts"
	fieldCreatedAt = "created_at"
	fieldExpiresAt = "expires_at"
)

// RecoveryRepository keeps password-recovery wizard sessions in Redis hashes
// with a TTL matching the wizard's lifetime.
type RecoveryRepository struct {
	client *red.Client
	prefix string
}

// NewRecoveryRepository constructs the repository with the provided client and
// key prefix.
func NewRecoveryRepository(client *red.Client, keyPrefix string) *RecoveryRepository {
	prefix := strings.TrimSpace(keyPrefix)
	if prefix == "" {
		prefix = defaultRecoveryPrefix
	}

	return &RecoveryRepository{
		client: client,
		prefix: prefix,
	}
}

// Put stores or replaces the wizard session under the supplied TTL.
func (r *RecoveryRepository) Put(ctx context.Context, session domain.RecoverySession, ttl time.Duration) error {
	switch {
	case strings.TrimSpace(session.ID) == "":
		return errors.New("recovery session id is required")
	case ttl <= 0:
		return errors.New("ttl must be positive")
	}

	key := r.key(session.ID)

	pipe := r.client.TxPipeline()
	pipe.HSet(ctx, key, map[string]any{
		fieldAccountID: session.AccountID,
		fieldEmail:     session.Email,
		fieldStep:      strconv.Itoa(int(session.Step)),
		fieldCodeHash:  session.CodeHash,
		fieldAttempts:  strconv.Itoa(session.Attempts),
		fieldCreatedAt: strconv.FormatInt(session.CreatedAt.Unix(), 10),
		fieldExpiresAt: strconv.FormatInt(session.ExpiresAt.Unix(), 10),
	})
	pipe.Expire(ctx, key, ttl)

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("redis store recovery session: %w", err)
	}

	return nil
}

// Get retrieves the wizard session, or repository.ErrNotFound when absent or
// expired.
func (r *RecoveryRepository) Get(ctx context.Context, id string) (*domain.RecoverySession, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, errors.New("recovery session id is required")
	}

	values, err := r.client.HGetAll(ctx, r.key(id)).Result()
	if err != nil {
		return nil, fmt.Errorf("redis hgetall recovery session: %w", err)
	}
	if len(values) == 0 {
		return nil, repository.ErrNotFound
	}

	step, err := strconv.Atoi(values[fieldStep])
	if err != nil {
		return nil, fmt.Errorf("parse step: %w", err)
	}

	createdAt, err := parseUnix(values[fieldCreatedAt])
	if err != nil {
		return nil, fmt.Errorf("parse created_at: %w", err)
	}

	expiresAt, err := parseUnix(values[fieldExpiresAt])
	if err != nil {
		return nil, fmt.Errorf("parse expires_at: %w", err)
	}

	attempts := 0
	if raw := values[fieldAttempts]; raw != "" {
		if v, convErr := strconv.Atoi(raw); convErr == nil {
			attempts = v
		}
	}

	return &domain.RecoverySession{
		ID:        id,
		AccountID: values[fieldAccountID],
		Email:     values[fieldEmail],
		Step:      domain.RecoveryStep(step),
		CodeHash:  values[fieldCodeHash],
		Attempts:  attempts,
		CreatedAt: createdAt,
		ExpiresAt: expiresAt,
	}, nil
}

// IncrementAttempts bumps the verification attempt counter and returns the new
// value.
func (r *RecoveryRepository) IncrementAttempts(ctx context.Context, id string) (int, error) {
	if _, err := r.Get(ctx, id); err != nil {
		return 0, err
	}

	count, err := r.client.HIncrBy(ctx, r.key(id), fieldAttempts, 1).Result()
	if err != nil {
		return 0, fmt.Errorf("redis hincrby recovery attempts: %w", err)
	}

	return int(count), nil
}

// Delete removes the wizard session once the flow completes or is abandoned.
func (r *RecoveryRepository) Delete(ctx context.Context, id string) error {
	id = strings.TrimSpace(id)
	if id == "" {
		return errors.New("recovery session id is required")
	}

	deleted, err := r.client.Del(ctx, r.key(id)).Result()
	if err != nil {
		return fmt.Errorf("redis delete recovery session: %w", err)
	}
	if deleted == 0 {
		return repository.ErrNotFound
	}

	return nil
}

func (r *RecoveryRepository) key(id string) string {
	return fmt.Sprintf("%s:%s", r.prefix, id)
}

func parseUnix(raw string) (time.Time, error) {
	if strings.TrimSpace(raw) == "" {
		return time.Time{}, errors.New("timestamp is empty")
	}
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return time.Time{}, err
	}
	return time.Unix(v, 0).UTC(), nil
}
