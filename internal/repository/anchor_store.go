package repository

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

const anchorKeyPrefix = "discount:anchor:"

// AnchorStore records when an address was first quoted. The first quote
// anchors the discount clock; later quotes for the same address reuse it.
type AnchorStore interface {
	// Anchor stores now for key unless an anchor already exists, and
	// returns the effective anchor. created is true when now was stored.
	Anchor(ctx context.Context, key string, now time.Time) (anchor time.Time, created bool, err error)

	// Lookup returns the stored anchor for key, if any.
	Lookup(ctx context.Context, key string) (time.Time, bool, error)
}

// AnchorKey derives the store key for an address. Addresses are trimmed,
// lower-cased and whitespace-collapsed, then hashed so raw addresses
// never reach the store.
func AnchorKey(address string) string {
	normalized := strings.Join(strings.Fields(strings.ToLower(address)), " ")
	sum := sha256.Sum256([]byte(normalized))
	return hex.EncodeToString(sum[:])
}

type anchorEntry struct {
	at      time.Time
	expires time.Time
}

// memoryAnchorStore keeps anchors in process memory. Expired anchors are
// purged on insert once the map holds more than sweepAbove entries.
type memoryAnchorStore struct {
	mu         sync.Mutex
	entries    map[string]anchorEntry
	retention  time.Duration
	sweepAbove int
	now        func() time.Time
}

// NewMemoryAnchorStore creates an in-process AnchorStore. Anchors expire
// after retention.
func NewMemoryAnchorStore(retention time.Duration) AnchorStore {
	return newMemoryAnchorStore(retention, time.Now)
}

func newMemoryAnchorStore(retention time.Duration, now func() time.Time) *memoryAnchorStore {
	return &memoryAnchorStore{
		entries:    make(map[string]anchorEntry),
		retention:  retention,
		sweepAbove: sweepThreshold,
		now:        now,
	}
}

func (s *memoryAnchorStore) Anchor(ctx context.Context, key string, now time.Time) (time.Time, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	current := s.now()
	if entry, ok := s.entries[key]; ok && current.Before(entry.expires) {
		return entry.at, false, nil
	}

	if len(s.entries) > s.sweepAbove {
		s.sweepExpired(current)
	}
	s.entries[key] = anchorEntry{at: now, expires: current.Add(s.retention)}
	return now, true, nil
}

func (s *memoryAnchorStore) sweepExpired(current time.Time) {
	for key, entry := range s.entries {
		if !current.Before(entry.expires) {
			delete(s.entries, key)
		}
	}
}

func (s *memoryAnchorStore) Lookup(ctx context.Context, key string) (time.Time, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.entries[key]
	if !ok {
		return time.Time{}, false, nil
	}
	if !s.now().Before(entry.expires) {
		delete(s.entries, key)
		return time.Time{}, false, nil
	}
	return entry.at, true, nil
}

// redisAnchorStore keeps anchors in Redis as millisecond timestamps.
type redisAnchorStore struct {
	redis     *redis.Client
	retention time.Duration
}

// NewRedisAnchorStore creates a Redis-backed AnchorStore.
func NewRedisAnchorStore(client *redis.Client, retention time.Duration) AnchorStore {
	return &redisAnchorStore{redis: client, retention: retention}
}

func (s *redisAnchorStore) Anchor(ctx context.Context, key string, now time.Time) (time.Time, bool, error) {
	created, err := s.redis.SetNX(ctx, anchorKeyPrefix+key, now.UnixMilli(), s.retention).Result()
	if err != nil {
		return time.Time{}, false, fmt.Errorf("failed to set discount anchor: %w", err)
	}
	if created {
		return now, true, nil
	}

	anchor, found, err := s.Lookup(ctx, key)
	if err != nil {
		return time.Time{}, false, err
	}
	if !found {
		// Expired between SETNX and GET; the caller's time stands.
		return now, false, nil
	}
	return anchor, false, nil
}

func (s *redisAnchorStore) Lookup(ctx context.Context, key string) (time.Time, bool, error) {
	val, err := s.redis.Get(ctx, anchorKeyPrefix+key).Result()
	if err == redis.Nil {
		return time.Time{}, false, nil
	}
	if err != nil {
		return time.Time{}, false, fmt.Errorf("failed to read discount anchor: %w", err)
	}

	ms, err := strconv.ParseInt(val, 10, 64)
	if err != nil {
		return time.Time{}, false, fmt.Errorf("invalid discount anchor %q: %w", val, err)
	}
	return time.UnixMilli(ms), true, nil
}
