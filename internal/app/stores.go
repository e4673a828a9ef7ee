package app

import (
	"context"

	"github.com/Carter-75/SnowRemovel/internal/config"
	"github.com/Carter-75/SnowRemovel/internal/database"
	"github.com/Carter-75/SnowRemovel/internal/logger"
	"github.com/Carter-75/SnowRemovel/internal/repository"
	"github.com/redis/go-redis/v9"
)

// Stores holds the discount anchor and rate-limit stores.
type Stores struct {
	Anchors    repository.AnchorStore
	RateLimits repository.RateLimitStore

	// Redis is the shared client when REDIS_ADDR is set, else nil.
	Redis *redis.Client
}

// NewStores connects to Redis when configured and falls back to
// in-process stores otherwise.
func NewStores(ctx context.Context, cfg *config.Config, log *logger.Logger) (*Stores, error) {
	if !cfg.UsesRedis() {
		log.Warn("REDIS_ADDR not set, discount anchors and rate limits are per-process", nil)
		return &Stores{
			Anchors:    repository.NewMemoryAnchorStore(cfg.Discount.AnchorRetention),
			RateLimits: repository.NewMemoryRateLimitStore(),
		}, nil
	}

	client, err := database.NewRedisClient(ctx, cfg.Redis)
	if err != nil {
		return nil, err
	}

	log.Info("Redis connection established", map[string]interface{}{
		"addr": cfg.Redis.Addr,
		"db":   cfg.Redis.DB,
	})

	return &Stores{
		Anchors:    repository.NewRedisAnchorStore(client, cfg.Discount.AnchorRetention),
		RateLimits: repository.NewRedisRateLimitStore(client),
		Redis:      client,
	}, nil
}

// Close closes the Redis client, if any.
func (s *Stores) Close() {
	if s.Redis != nil {
		_ = s.Redis.Close()
	}
}
