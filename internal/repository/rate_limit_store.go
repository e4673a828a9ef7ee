package repository

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// RateLimitStore counts requests in fixed windows.
type RateLimitStore interface {
	// Increment records a hit for key and returns the hit count in the
	// current window and the time until that window resets.
	Increment(ctx context.Context, key string, window time.Duration) (int64, time.Duration, error)
}

type rateWindow struct {
	count   int64
	resetAt time.Time
}

// sweepThreshold is the map size above which the memory stores purge
// expired entries.
const sweepThreshold = 10000

// memoryRateLimitStore keeps counters in process memory.
type memoryRateLimitStore struct {
	mu      sync.Mutex
	windows map[string]*rateWindow
	now     func() time.Time
}

// NewMemoryRateLimitStore creates an in-process RateLimitStore.
func NewMemoryRateLimitStore() RateLimitStore {
	return newMemoryRateLimitStore(time.Now)
}

func newMemoryRateLimitStore(now func() time.Time) *memoryRateLimitStore {
	return &memoryRateLimitStore{
		windows: make(map[string]*rateWindow),
		now:     now,
	}
}

func (s *memoryRateLimitStore) Increment(ctx context.Context, key string, window time.Duration) (int64, time.Duration, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	if len(s.windows) > sweepThreshold {
		for k, w := range s.windows {
			if !now.Before(w.resetAt) {
				delete(s.windows, k)
			}
		}
	}

	w, ok := s.windows[key]
	if !ok || !now.Before(w.resetAt) {
		w = &rateWindow{resetAt: now.Add(window)}
		s.windows[key] = w
	}
	w.count++

	return w.count, w.resetAt.Sub(now), nil
}

// redisRateLimitStore keeps counters in Redis with INCR and PEXPIRE.
type redisRateLimitStore struct {
	redis *redis.Client
}

// NewRedisRateLimitStore creates a Redis-backed RateLimitStore.
func NewRedisRateLimitStore(client *redis.Client) RateLimitStore {
	return &redisRateLimitStore{redis: client}
}

func (s *redisRateLimitStore) Increment(ctx context.Context, key string, window time.Duration) (int64, time.Duration, error) {
	pipe := s.redis.Pipeline()
	incr := pipe.Incr(ctx, key)
	ttl := pipe.PTTL(ctx, key)
	if _, err := pipe.Exec(ctx); err != nil {
		return 0, 0, fmt.Errorf("failed to increment rate limit counter: %w", err)
	}

	resetIn := ttl.Val()
	if resetIn <= 0 {
		// New key, or one left without an expiry: start the window now.
		if err := s.redis.PExpire(ctx, key, window).Err(); err != nil {
			return 0, 0, fmt.Errorf("failed to set rate limit window: %w", err)
		}
		resetIn = window
	}
	return incr.Val(), resetIn, nil
}
