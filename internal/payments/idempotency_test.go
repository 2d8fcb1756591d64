package payments

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type inMemoryStore struct {
	mu   sync.Mutex
	data map[string]string
}

func newInMemoryStore() *inMemoryStore {
	return &inMemoryStore{data: map[string]string{}}
}

func (s *inMemoryStore) Get(ctx context.Context, key string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.data[key], nil
}

func (s *inMemoryStore) SetNX(ctx context.Context, key string, value any, ttl time.Duration) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.data[key]; exists {
		return false, nil
	}
	s.data[key] = "1"
	return true, nil
}

func (s *inMemoryStore) IdempotencyKey(scope, id string) string {
	return "idempotency:" + scope + ":" + id
}

func (s *inMemoryStore) Del(ctx context.Context, keys ...string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, key := range keys {
		delete(s.data, key)
	}
	return nil
}

func TestIdempotencyGuardMarksOnce(t *testing.T) {
	guard, err := NewIdempotencyGuard(newInMemoryStore(), time.Minute, "payment-webhook")
	require.NoError(t, err)

	fp := TokenFingerprint("hdr.payload.sig")

	already, err := guard.CheckAndMark(context.Background(), fp)
	require.NoError(t, err)
	assert.False(t, already)

	already, err = guard.CheckAndMark(context.Background(), fp)
	require.NoError(t, err)
	assert.True(t, already)
}

func TestIdempotencyGuardDeleteAllowsRetry(t *testing.T) {
	guard, err := NewIdempotencyGuard(newInMemoryStore(), time.Minute, "payment-webhook")
	require.NoError(t, err)

	fp := TokenFingerprint("hdr.payload.sig")

	_, err = guard.CheckAndMark(context.Background(), fp)
	require.NoError(t, err)
	require.NoError(t, guard.Delete(context.Background(), fp))

	already, err := guard.CheckAndMark(context.Background(), fp)
	require.NoError(t, err)
	assert.False(t, already)
}

func TestTokenFingerprintStable(t *testing.T) {
	assert.Equal(t, TokenFingerprint("abc"), TokenFingerprint("abc"))
	assert.NotEqual(t, TokenFingerprint("abc"), TokenFingerprint("abd"))
}
