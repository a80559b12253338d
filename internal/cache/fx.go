package cache

import (
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/smallbiznis/revboard/internal/config"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

// NewSeriesCache selects the cache backend from configuration. Without a
// Redis address the in-memory cache is used.
func NewSeriesCache(cfg config.Config, log *zap.Logger) SeriesCache {
	ttl := time.Duration(cfg.Cache.TTLSeconds) * time.Second
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	if cfg.Cache.RedisAddr == "" {
		return NewMemorySeriesCache(ttl)
	}
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Cache.RedisAddr,
		Password: cfg.Cache.RedisPassword,
		DB:       cfg.Cache.RedisDB,
	})
	return NewRedisSeriesCache(client, ttl, log)
}

var Module = fx.Module("cache",
	fx.Provide(NewSeriesCache),
)
