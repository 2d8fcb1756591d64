package payments

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/careerforge/careerforge-backend/pkg/redis"
)

// IdempotencyGuard short-circuits exact webhook re-deliveries before they
// reach the database. It is a fast path only; the conditional status update
// remains the authoritative idempotency layer.
type IdempotencyGuard struct {
	store redis.IdempotencyStore
	ttl   time.Duration
	scope string
}

func NewIdempotencyGuard(store redis.IdempotencyStore, ttl time.Duration, scope string) (*IdempotencyGuard, error) {
	if store == nil {
		return nil, errors.New("idempotency store is required")
	}
	if ttl < 0 {
		return nil, errors.New("ttl must be non-negative")
	}
	if scope == "" {
		return nil, errors.New("scope is required")
	}
	return &IdempotencyGuard{
		store: store,
		ttl:   ttl,
		scope: scope,
	}, nil
}

// TokenFingerprint derives the dedup key for a raw token string.
func TokenFingerprint(rawToken string) string {
	sum := sha256.Sum256([]byte(rawToken))
	return hex.EncodeToString(sum[:])
}

func (g *IdempotencyGuard) CheckAndMark(ctx context.Context, fingerprint string) (bool, error) {
	if fingerprint == "" {
		return false, errors.New("fingerprint is required")
	}
	key := g.store.IdempotencyKey(g.scope, fingerprint)
	set, err := g.store.SetNX(ctx, key, "1", g.ttl)
	if err != nil {
		return false, fmt.Errorf("set idempotency key: %w", err)
	}
	return !set, nil
}

func (g *IdempotencyGuard) Delete(ctx context.Context, fingerprint string) error {
	if fingerprint == "" {
		return errors.New("fingerprint is required")
	}
	key := g.store.IdempotencyKey(g.scope, fingerprint)
	return g.store.Del(ctx, key)
}
