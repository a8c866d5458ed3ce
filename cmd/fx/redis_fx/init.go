package redis_fx

import (
	"context"

	"github.com/redis/go-redis/v9"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"travelmind/internal/config"
	"travelmind/internal/infra"
)

var Module = fx.Provide(
	provideRedisClient,
	func(rdb *redis.Client) redis.Cmdable { return rdb },
)

func provideRedisClient(lc fx.Lifecycle, cfg *config.Config, log *zap.Logger) (*redis.Client, error) {
	rdb, err := infra.InitRedis(cfg)
	if err != nil {
		return nil, err
	}
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			// Not fatal: the planner works without Redis, only the companion needs it.
			if err := infra.PingRedis(ctx, rdb); err != nil {
				log.Warn("redis not reachable at startup", zap.Error(err))
			}
			return nil
		},
		OnStop: func(ctx context.Context) error {
			infra.CloseRedis(rdb, log)
			return nil
		},
	})
	return rdb, nil
}
