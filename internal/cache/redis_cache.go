package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/smallbiznis/revboard/internal/dashboard/domain"
	"go.uber.org/zap"
)

// RedisSeriesCache shares computed series across instances through Redis.
type RedisSeriesCache struct {
	client *redis.Client
	ttl    time.Duration
	log    *zap.Logger
}

func NewRedisSeriesCache(client *redis.Client, ttl time.Duration, log *zap.Logger) *RedisSeriesCache {
	if log == nil {
		log = zap.NewNop()
	}
	return &RedisSeriesCache{
		client: client,
		ttl:    ttl,
		log:    log.Named("cache.redis"),
	}
}

func (c *RedisSeriesCache) Get(ctx context.Context, fingerprint string) ([]domain.MetricRecord, bool) {
	payload, err := c.client.Get(ctx, fingerprint).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			c.log.Warn("cache read failed", zap.String("key", fingerprint), zap.Error(err))
		}
		return nil, false
	}
	var records []domain.MetricRecord
	if err := json.Unmarshal(payload, &records); err != nil {
		c.log.Warn("cache payload corrupt, treating as miss", zap.String("key", fingerprint), zap.Error(err))
		return nil, false
	}
	return records, true
}

func (c *RedisSeriesCache) Put(ctx context.Context, fingerprint string, records []domain.MetricRecord) {
	payload, err := json.Marshal(records)
	if err != nil {
		c.log.Warn("cache encode failed", zap.String("key", fingerprint), zap.Error(err))
		return
	}
	if err := c.client.Set(ctx, fingerprint, payload, c.ttl).Err(); err != nil {
		c.log.Warn("cache write failed", zap.String("key", fingerprint), zap.Error(err))
	}
}

func (c *RedisSeriesCache) Backend() string { return "redis" }
