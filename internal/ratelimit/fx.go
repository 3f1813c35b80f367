package ratelimit

import (
	redis "github.com/redis/go-redis/v9"
	"github.com/vitalpath/vitalpath/internal/config"
	"go.uber.org/fx"
)

var Module = fx.Module("rate.limit",
	fx.Provide(
		NewRedisClient,
		NewTokenBucket,
		NewCheckoutLimiter,
	),
)

// NewRedisClient returns nil when no redis address is configured; the
// limiter chain treats nil as disabled.
func NewRedisClient(cfg config.Config) *redis.Client {
	if cfg.RedisAddr == "" {
		return nil
	}
	return redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
	})
}
