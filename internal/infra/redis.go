package infra

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"travelmind/internal/config"
)

// InitRedis parses REDIS_URL. The connection is lazy; callers see errors on
// first use.
func InitRedis(cfg *config.Config) (*redis.Client, error) {
	opts, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		return nil, fmt.Errorf("parse REDIS_URL: %w", err)
	}
	return redis.NewClient(opts), nil
}

func PingRedis(ctx context.Context, rdb redis.Cmdable) error {
	return rdb.Ping(ctx).Err()
}

func CloseRedis(rdb *redis.Client, log *zap.Logger) {
	if err := rdb.Close(); err != nil {
		log.Warn("error closing redis client", zap.Error(err))
		return
	}
	log.Info("redis client closed")
}
