package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	app "github.com/retailpos/backend/internal/application/purchasing"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const reorderReportKey = "reorder:report"

// RedisConfig holds Redis connection configuration
type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

// NewRedisClient creates and pings a Redis client
func NewRedisClient(cfg RedisConfig) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}
	return client, nil
}

// RedisReorderCache caches the reorder report in Redis with a short TTL.
// Cache failures degrade to regeneration, never to request failure.
type RedisReorderCache struct {
	client *redis.Client
	ttl    time.Duration
	logger *zap.Logger
}

// NewRedisReorderCache creates a new RedisReorderCache
func NewRedisReorderCache(client *redis.Client, ttl time.Duration, logger *zap.Logger) *RedisReorderCache {
	return &RedisReorderCache{
		client: client,
		ttl:    ttl,
		logger: logger,
	}
}

// Get returns the cached report, or ok=false on miss or backend failure
func (c *RedisReorderCache) Get(ctx context.Context) (*app.ReorderReportResponse, bool) {
	data, err := c.client.Get(ctx, reorderReportKey).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			c.logger.Warn("reorder cache read failed", zap.Error(err))
		}
		return nil, false
	}

	var report app.ReorderReportResponse
	if err := json.Unmarshal(data, &report); err != nil {
		c.logger.Warn("reorder cache payload corrupt, dropping", zap.Error(err))
		c.client.Del(ctx, reorderReportKey)
		return nil, false
	}
	return &report, true
}

// Set stores the report with the configured TTL
func (c *RedisReorderCache) Set(ctx context.Context, report *app.ReorderReportResponse) {
	data, err := json.Marshal(report)
	if err != nil {
		c.logger.Warn("reorder cache marshal failed", zap.Error(err))
		return
	}
	if err := c.client.Set(ctx, reorderReportKey, data, c.ttl).Err(); err != nil {
		c.logger.Warn("reorder cache write failed", zap.Error(err))
	}
}

// Invalidate drops the cached report
func (c *RedisReorderCache) Invalidate(ctx context.Context) {
	if err := c.client.Del(ctx, reorderReportKey).Err(); err != nil {
		c.logger.Warn("reorder cache invalidation failed", zap.Error(err))
	}
}

var _ app.ReorderCache = (*RedisReorderCache)(nil)
