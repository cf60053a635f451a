// Package shared contains helpers reused across the HTTP modules.
package shared

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/odyssey-erp/odyssey-bff/internal/platform/httpx"
)

// IdempotencyHeader carries the client supplied request key.
const IdempotencyHeader = "Idempotency-Key"

const idempotencyPrefix = "idempotency"

// ErrIdempotencyConflict indicates a duplicate key.
var ErrIdempotencyConflict = fmt.Errorf("%w: idempotent request already processed", httpx.ErrDuplicate)

// IdempotencyStore remembers processed keys in Redis until they expire.
type IdempotencyStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewIdempotencyStore constructs the store.
func NewIdempotencyStore(client *redis.Client, ttl time.Duration) *IdempotencyStore {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &IdempotencyStore{client: client, ttl: ttl}
}

// ParseIdempotencyKey validates a header value. An empty value is allowed and
// means the request is not idempotent.
func ParseIdempotencyKey(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", nil
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return "", fmt.Errorf("%w: %s must be a UUID", httpx.ErrInvalidArgument, IdempotencyHeader)
	}
	return id.String(), nil
}

// CheckAndInsert claims key for module, failing with ErrIdempotencyConflict
// when it was already claimed.
func (s *IdempotencyStore) CheckAndInsert(ctx context.Context, key, module string) error {
	if s == nil || s.client == nil {
		return errors.New("idempotency store not initialised")
	}
	if key == "" {
		return errors.New("idempotency key required")
	}
	if module == "" {
		return errors.New("idempotency module required")
	}
	ok, err := s.client.SetNX(ctx, redisKey(module, key), time.Now().UTC().Format(time.RFC3339), s.ttl).Result()
	if err != nil {
		return fmt.Errorf("idempotency: claim key: %w", err)
	}
	if !ok {
		return ErrIdempotencyConflict
	}
	return nil
}

// Delete releases a key, typically used to roll back failed processing.
func (s *IdempotencyStore) Delete(ctx context.Context, key, module string) error {
	if s == nil || s.client == nil {
		return nil
	}
	if key == "" {
		return errors.New("idempotency key required")
	}
	return s.client.Del(ctx, redisKey(module, key)).Err()
}

func redisKey(module, key string) string {
	return idempotencyPrefix + ":" + module + ":" + key
}
