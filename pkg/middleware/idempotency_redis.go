package middleware

import (
	"context"
	"medibook/pkg/cache"
	"medibook/pkg/logger"
	"time"
)

// RedisIdempotencyStore keeps replayable responses in the shared cache so
// every replica honours the same keys. Cache failures degrade to "not seen".
type RedisIdempotencyStore struct {
	cache cache.Cache
	ttl   time.Duration
	log   *logger.Logger
}

func NewRedisIdempotencyStore(c cache.Cache, ttl time.Duration, log *logger.Logger) *RedisIdempotencyStore {
	return &RedisIdempotencyStore{cache: c, ttl: ttl, log: log}
}

func (s *RedisIdempotencyStore) Get(ctx context.Context, key string) (*CachedResponse, bool) {
	var cached CachedResponse
	found, err := s.cache.Get(ctx, key, &cached)
	if err != nil {
		s.log.Warn("Idempotency lookup failed", "error", err)
		return nil, false
	}
	if !found {
		return nil, false
	}
	return &cached, true
}

func (s *RedisIdempotencyStore) Set(ctx context.Context, key string, response *CachedResponse) {
	response.CreatedAt = time.Now()
	if err := s.cache.Set(ctx, key, response, s.ttl); err != nil {
		s.log.Warn("Idempotency store failed", "error", err)
	}
}

func (s *RedisIdempotencyStore) Stop() {}
