package redis

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/bengbengle/nft-lend/internal/infrastructure/metrics"
	"github.com/bengbengle/nft-lend/internal/usecase"
)

// PendingMarker is stored while the first request for a key is in flight.
const PendingMarker = usecase.IdempotencyPending

// IdempotencyStore implements usecase.IdempotencyStore using Redis.
type IdempotencyStore struct {
	client  *redis.Client
	prefix  string
	metrics *metrics.Metrics
}

// NewIdempotencyStore creates a new IdempotencyStore. m may be nil.
func NewIdempotencyStore(client *redis.Client, m *metrics.Metrics) *IdempotencyStore {
	return &IdempotencyStore{
		client:  client,
		prefix:  "nftlend:idempotency:",
		metrics: m,
	}
}

// CheckAndSet atomically checks if key exists, sets if not.
func (s *IdempotencyStore) CheckAndSet(ctx context.Context, key string, response []byte, ttl time.Duration) (bool, []byte, error) {
	fullKey := s.prefix + key

	var value any = PendingMarker
	if response != nil {
		value = response
	}

	s.observe("setnx")
	set, err := s.client.SetNX(ctx, fullKey, value, ttl).Result()
	if err != nil {
		s.fail("setnx")
		return false, nil, err
	}
	if set {
		return false, nil, nil
	}

	// Another request got there first
	s.observe("get")
	existing, err := s.client.Get(ctx, fullKey).Bytes()
	if errors.Is(err, redis.Nil) {
		// Expired between SETNX and GET; treat as taken rather than racing.
		return true, nil, nil
	}
	if err != nil {
		s.fail("get")
		return false, nil, err
	}
	return true, existing, nil
}

// Update updates an existing idempotency key with the final response.
func (s *IdempotencyStore) Update(ctx context.Context, key string, response []byte, ttl time.Duration) error {
	s.observe("set")
	if err := s.client.Set(ctx, s.prefix+key, response, ttl).Err(); err != nil {
		s.fail("set")
		return err
	}
	return nil
}

// Release deletes the key.
func (s *IdempotencyStore) Release(ctx context.Context, key string) error {
	s.observe("del")
	if err := s.client.Del(ctx, s.prefix+key).Err(); err != nil {
		s.fail("del")
		return err
	}
	return nil
}

func (s *IdempotencyStore) observe(op string) {
	if s.metrics != nil {
		s.metrics.RedisOperations.WithLabelValues(op).Inc()
	}
}

func (s *IdempotencyStore) fail(op string) {
	if s.metrics != nil {
		s.metrics.RedisErrors.WithLabelValues(op).Inc()
	}
}
