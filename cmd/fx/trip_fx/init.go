package trip_fx

import (
	"time"

	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"travelmind/internal/config"
	"travelmind/internal/repositories"
	"travelmind/internal/services"
	"travelmind/pkg/llm"
)

var Module = fx.Provide(provideTripRepo, provideItineraryService, provideTripService)

func provideTripRepo(db *gorm.DB) repositories.TripRepository {
	return repositories.NewTripRepository(db)
}

func provideItineraryService(chat llm.Chatter, cfg *config.Config, loc *time.Location, log *zap.Logger) services.ItineraryServiceInterface {
	return services.NewItineraryService(chat, services.ItineraryConfig{
		FallbackAttempts: cfg.LLM.FallbackAttempts,
		MaxOutputTokens:  cfg.LLM.MaxOutputTokens,
		Temperature:      cfg.LLM.Temperature,
		Location:         loc,
	}, log)
}

func provideTripService(
	repo repositories.TripRepository,
	itineraries services.ItineraryServiceInterface,
	todos services.TodoServiceInterface,
	loc *time.Location,
	log *zap.Logger,
) services.TripServiceInterface {
	return services.NewTripService(repo, itineraries, todos, loc, log)
}
