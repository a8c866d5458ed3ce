// Command seed migrates the schema and loads the default todo templates.
// It refuses to run outside development unless -force is given.
package main

import (
	"context"
	"flag"
	"os"

	"go.uber.org/zap"

	"travelmind/internal/config"
	"travelmind/internal/infra"
	"travelmind/internal/repositories"
	"travelmind/internal/services"
	"travelmind/pkg/logger"
	"travelmind/pkg/utils"
)

func main() {
	force := flag.Bool("force", false, "seed even when APP_ENV is not development")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}
	log, err := logger.New(cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		panic(err)
	}
	defer func() { _ = log.Sync() }()

	if !cfg.IsDevelopment() && !*force {
		log.Error("refusing to seed a non-development database", zap.String("env", cfg.Env))
		os.Exit(1)
	}

	cfg.AutoMigrate = true
	db, err := infra.InitPostgresql(cfg, log)
	if err != nil {
		log.Fatal("database unavailable", zap.Error(err))
	}
	defer infra.ClosePostgresql(db, log)

	todos := services.NewTodoService(repositories.NewTodoRepository(db), utils.LoadLocation(cfg.Timezone))
	n, err := todos.SeedDefaultTemplates(context.Background())
	if err != nil {
		log.Fatal("seeding todo templates failed", zap.Error(err))
	}
	log.Info("todo templates seeded", zap.Int("added", n))
}
