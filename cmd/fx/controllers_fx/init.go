package controllers_fx

import (
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"travelmind/internal/api"
	"travelmind/internal/api/controllers"
	"travelmind/internal/config"
	"travelmind/pkg/utils"
)

var Module = fx.Options(
	fx.Provide(controllers.NewTripController),
	fx.Provide(controllers.NewTodoController),
	fx.Provide(controllers.NewCompanionController),
	fx.Provide(controllers.NewHealthController),
	fx.Provide(provideTokenIssuer),
	fx.Provide(provideRouter))

func provideTokenIssuer(cfg *config.Config) *utils.TokenIssuer {
	return utils.NewTokenIssuer(cfg.HTTP.JWTSecret, 24*time.Hour)
}

func provideRouter(
	cfg *config.Config,
	log *zap.Logger,
	issuer *utils.TokenIssuer,
	trip *controllers.TripController,
	todo *controllers.TodoController,
	companion *controllers.CompanionController,
	health *controllers.HealthController,
) *gin.Engine {
	return api.NewRouter(api.RouterConfig{
		CORSOrigins:    cfg.HTTP.CORSOrigins,
		RateLimitRPS:   cfg.HTTP.RateLimitRPS,
		RateLimitBurst: cfg.HTTP.RateLimitBurst,
		Release:        !cfg.IsDevelopment(),
	}, log, issuer, api.Handlers{
		Trip:      trip,
		Todo:      todo,
		Companion: companion,
		Health:    health,
	})
}
