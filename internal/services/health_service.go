package services

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"travelmind/internal/infra"
	"travelmind/internal/models/response_models"
)

type HealthServiceInterface interface {
	Check(ctx context.Context) response_models.HealthResponse
}

type HealthService struct {
	db      *gorm.DB
	rdb     redis.Cmdable
	version string
}

func NewHealthService(db *gorm.DB, rdb redis.Cmdable, version string) HealthServiceInterface {
	return &HealthService{db: db, rdb: rdb, version: version}
}

func (s *HealthService) Check(ctx context.Context) response_models.HealthResponse {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	resp := response_models.HealthResponse{DB: "ok", Redis: "ok", Version: s.version}
	if err := infra.PingPostgresql(ctx, s.db); err != nil {
		resp.DB = err.Error()
	}
	if err := infra.PingRedis(ctx, s.rdb); err != nil {
		resp.Redis = err.Error()
	}
	resp.OK = resp.DB == "ok" && resp.Redis == "ok"
	return resp
}
