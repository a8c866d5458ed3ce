package api

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"travelmind/internal/api/controllers"
	"travelmind/pkg/middleware"
	"travelmind/pkg/utils"
)

type RouterConfig struct {
	CORSOrigins    []string
	RateLimitRPS   float64
	RateLimitBurst int
	Release        bool
}

type Handlers struct {
	Trip      *controllers.TripController
	Todo      *controllers.TodoController
	Companion *controllers.CompanionController
	Health    *controllers.HealthController
}

func NewRouter(cfg RouterConfig, logger *zap.Logger, issuer *utils.TokenIssuer, h Handlers) *gin.Engine {
	if cfg.Release {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(middleware.TraceIDMiddleware())
	r.Use(middleware.Recovery(logger))
	r.Use(middleware.RequestLogger(logger))
	r.Use(middleware.CORSMiddleware(cfg.CORSOrigins))
	r.Use(middleware.RateLimitMiddleware(middleware.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst)))

	RegisterRoutes(r, issuer, h)
	return r
}

func RegisterRoutes(r *gin.Engine, issuer *utils.TokenIssuer, h Handlers) {
	apiGroup := r.Group("/api")
	apiGroup.GET("/health", h.Health.Health)

	authed := apiGroup.Group("")
	authed.Use(middleware.OptionalJWTMiddleware(issuer))

	trips := authed.Group("/trips")
	trips.POST("", h.Trip.CreateTrip)
	trips.GET("", h.Trip.ListTrips)
	trips.GET("/:id", h.Trip.GetTrip)

	authed.PUT("/plan/:tripId", h.Trip.ReplacePlan)

	todos := authed.Group("/todos")
	todos.GET("/:tripId", h.Todo.ListTodos)
	todos.POST("", h.Todo.CreateTodo)
	todos.PATCH("/:id", h.Todo.UpdateTodo)

	companion := authed.Group("/companion")
	companion.POST("/ask", h.Companion.Ask)
	companion.POST("/evaluate", h.Companion.Evaluate)
	companion.GET("/evaluate/:jobId", h.Companion.EvaluationResult)
}
