package redis

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	red "github.com/redis/go-redis/v9"

	"github.com/letsconnect/auth-gateway/internal/core/domain"
	"github.com/letsconnect/auth-gateway/internal/repository"
)

func newTestRedis(t *testing.T) (*miniredis.Miniredis, *red.Client) {
	t.Helper()

	srv := miniredis.RunT(t)
	client := red.NewClient(&red.Options{Addr: srv.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	return srv, client
}

func sampleSession(id string) domain.RecoverySession {
	created := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	return domain.RecoverySession{
		ID:        id,
		AccountID: "acc-1",
		Email:     "john@example.com",
		Step:      domain.RecoveryStepVerify,
		CodeHash:  "deadbeef",
		CreatedAt: created,
		ExpiresAt: created.Add(15 * time.Minute),
	}
}

func TestRecoveryPutGetRoundTrip(t *testing.T) {
	_, client := newTestRedis(t)
	repo := NewRecoveryRepository(client, "test:recovery")

	session := sampleSession("rec-1")
	if err := repo.Put(context.Background(), session, 15*time.Minute); err != nil {
		t.Fatalf("Put returned error: %v", err)
	}

	got, err := repo.Get(context.Background(), "rec-1")
	if err != nil {
		t.Fatalf("Get returned error: %v", err)
	}

	if got.AccountID != session.AccountID {
		t.Fatalf("account id mismatch: %q", got.AccountID)
	}
	if got.Email != session.Email {
		t.Fatalf("email mismatch: %q", got.Email)
	}
	if got.Step != domain.RecoveryStepVerify {
		t.Fatalf("step mismatch: %d", got.Step)
	}
	if got.CodeHash != session.CodeHash {
		t.Fatalf("code hash mismatch: %q", got.CodeHash)
	}
	if !got.CreatedAt.Equal(session.CreatedAt) {
		t.Fatalf("created at mismatch: %v", got.CreatedAt)
	}
	if !got.ExpiresAt.Equal(session.ExpiresAt) {
		t.Fatalf("expires at mismatch: %v", got.ExpiresAt)
	}
}

func TestRecoveryGetMissing(t *testing.T) {
	_, client := newTestRedis(t)
	repo := NewRecoveryRepository(client, "test:recovery")

	if _, err := repo.Get(context.Background(), "nope"); !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestRecoverySessionExpires(t *testing.T) {
	srv, client := newTestRedis(t)
	repo := NewRecoveryRepository(client, "test:recovery")

	if err := repo.Put(context.Background(), sampleSession("rec-ttl"), time.Minute); err != nil {
		t.Fatalf("Put returned error: %v", err)
	}

	srv.FastForward(2 * time.Minute)

	if _, err := repo.Get(context.Background(), "rec-ttl"); !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("expected ErrNotFound after TTL, got %v", err)
	}
}

func TestRecoveryIncrementAttempts(t *testing.T) {
	_, client := newTestRedis(t)
	repo := NewRecoveryRepository(client, "test:recovery")

	if err := repo.Put(context.Background(), sampleSession("rec-att"), time.Minute); err != nil {
		t.Fatalf("Put returned error: %v", err)
	}

	for want := 1; want <= 3; want++ {
		got, err := repo.IncrementAttempts(context.Background(), "rec-att")
		if err != nil {
			t.Fatalf("IncrementAttempts returned error: %v", err)
		}
		if got != want {
			t.Fatalf("expected %d attempts, got %d", want, got)
		}
	}

	if _, err := repo.IncrementAttempts(context.Background(), "missing"); !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("expected ErrNotFound for missing session, got %v", err)
	}
}

func TestRecoveryDelete(t *testing.T) {
	_, client := newTestRedis(t)
	repo := NewRecoveryRepository(client, "test:recovery")

	if err := repo.Put(context.Background(), sampleSession("rec-del"), time.Minute); err != nil {
		t.Fatalf("Put returned error: %v", err)
	}

	if err := repo.Delete(context.Background(), "rec-del"); err != nil {
		t.Fatalf("Delete returned error: %v", err)
	}

	if _, err := repo.Get(context.Background(), "rec-del"); !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("expected ErrNotFound after delete, got %v", err)
	}

	if err := repo.Delete(context.Background(), "rec-del"); !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("expected ErrNotFound on repeated delete, got %v", err)
	}
}
