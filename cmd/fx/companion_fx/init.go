package companion_fx

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"travelmind/internal/config"
	"travelmind/internal/repositories"
	"travelmind/internal/services"
	"travelmind/pkg/llm"
)

var Module = fx.Options(
	fx.Provide(
		providePlaceRepo,
		provideWeatherService,
		providePlaceStatusService,
		provideCompanionService,
		provideCompanionWorker,
		provideHealthService,
	),
	fx.Invoke(startCompanionWorker),
)

func providePlaceRepo(db *gorm.DB) repositories.PlaceRepository {
	return repositories.NewPlaceRepository(db)
}

func provideWeatherService(cfg *config.Config) services.WeatherServiceInterface {
	return services.NewWeatherService(cfg.Companion.WeatherURL, cfg.Companion.WeatherTimeout, cfg.Companion.WeatherTTL)
}

func providePlaceStatusService(repo repositories.PlaceRepository, loc *time.Location) services.PlaceStatusServiceInterface {
	return services.NewPlaceStatusService(repo, loc)
}

func provideCompanionService(
	rdb redis.Cmdable,
	chat llm.Chatter,
	trips repositories.TripRepository,
	cfg *config.Config,
	loc *time.Location,
	log *zap.Logger,
) services.CompanionServiceInterface {
	return services.NewCompanionService(rdb, chat, trips, services.CompanionConfig{
		CacheTTL: cfg.Companion.CacheTTL,
		Location: loc,
	}, log)
}

func provideCompanionWorker(
	rdb redis.Cmdable,
	weather services.WeatherServiceInterface,
	places services.PlaceStatusServiceInterface,
	cfg *config.Config,
	log *zap.Logger,
) *services.CompanionWorker {
	return services.NewCompanionWorker(rdb, weather, places, services.WorkerConfig{
		ResultTTL: cfg.Companion.ResultTTL,
		PollWait:  cfg.Companion.PollWait,
	}, log.Named("companion_worker"))
}

func provideHealthService(db *gorm.DB, rdb redis.Cmdable) services.HealthServiceInterface {
	return services.NewHealthService(db, rdb, config.Version)
}

func startCompanionWorker(lc fx.Lifecycle, cfg *config.Config, worker *services.CompanionWorker) {
	if !cfg.Companion.WorkerEnabled {
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	lc.Append(fx.Hook{
		OnStart: func(context.Context) error {
			go func() {
				defer close(done)
				worker.Run(ctx)
			}()
			return nil
		},
		OnStop: func(stopCtx context.Context) error {
			cancel()
			select {
			case <-done:
			case <-stopCtx.Done():
			}
			return nil
		},
	})
}
