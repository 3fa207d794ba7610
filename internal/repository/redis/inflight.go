package redis

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	red "github.com/redis/go-redis/v9"
)

const defaultInflightPrefix = "inflight"

// InflightRepository guards form submissions with short-lived SETNX locks so a
// second submission while one is pending is rejected instead of duplicated.
type InflightRepository struct {
	client *red.Client
	prefix string
}

// NewInflightRepository constructs the guard with the provided client and key
// prefix.
func NewInflightRepository(client *red.Client, keyPrefix string) *InflightRepository {
	prefix := strings.TrimSpace(keyPrefix)
	if prefix == "" {
		prefix = defaultInflightPrefix
	}
	return &InflightRepository{client: client, prefix: prefix}
}

// Acquire claims the key for the duration of one submission. It reports false
// when another submission already holds it. The TTL bounds the hold so a
// crashed flow cannot wedge the form forever.
func (r *InflightRepository) Acquire(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	key = strings.TrimSpace(key)
	if key == "" {
		return false, errors.New("inflight key is required")
	}
	if ttl <= 0 {
		return false, errors.New("ttl must be positive")
	}

	ok, err := r.client.SetNX(ctx, r.key(key), "1", ttl).Result()
	if err != nil {
		return false, fmt.Errorf("redis setnx inflight: %w", err)
	}

	return ok, nil
}

// Release frees the key once the submission settles. Releasing an unheld key
// is a no-op.
func (r *InflightRepository) Release(ctx context.Context, key string) error {
	key = strings.TrimSpace(key)
	if key == "" {
		return errors.New("inflight key is required")
	}

	if err := r.client.Del(ctx, r.key(key)).Err(); err != nil {
		return fmt.Errorf("redis del inflight: %w", err)
	}

	return nil
}

func (r *InflightRepository) key(key string) string {
	return fmt.Sprintf("%s:%s", r.prefix, key)
}
