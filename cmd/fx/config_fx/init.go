package config_fx

import (
	"time"

	"go.uber.org/fx"
	"go.uber.org/zap"

	"travelmind/internal/config"
	"travelmind/pkg/logger"
	"travelmind/pkg/utils"
)

var Module = fx.Provide(
	config.Load,
	provideLogger,
	provideLocation,
)

func provideLogger(cfg *config.Config) (*zap.Logger, error) {
	return logger.New(cfg.Log.Level, cfg.Log.Format)
}

func provideLocation(cfg *config.Config) *time.Location {
	return utils.LoadLocation(cfg.Timezone)
}
