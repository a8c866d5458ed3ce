package main

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/gin-gonic/gin"
	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"
	"go.uber.org/zap"

	"travelmind/cmd/fx/companion_fx"
	"travelmind/cmd/fx/config_fx"
	"travelmind/cmd/fx/controllers_fx"
	"travelmind/cmd/fx/db_fx"
	"travelmind/cmd/fx/llm_fx"
	"travelmind/cmd/fx/redis_fx"
	"travelmind/cmd/fx/todo_fx"
	"travelmind/cmd/fx/trip_fx"
	"travelmind/internal/config"
)

func main() {
	app := fx.New(
		config_fx.Module,
		fx.WithLogger(func(log *zap.Logger) fxevent.Logger {
			return &fxevent.ZapLogger{Logger: log.Named("fx")}
		}),
		db_fx.Module,
		redis_fx.Module,
		llm_fx.Module,
		todo_fx.Module,
		trip_fx.Module,
		companion_fx.Module,
		controllers_fx.Module,

		fx.Invoke(InitSentry),
		fx.Invoke(StartServer),
	)

	app.Run()
}

func InitSentry(lc fx.Lifecycle, cfg *config.Config, log *zap.Logger) {
	if cfg.HTTP.SentryDSN == "" {
		return
	}
	err := sentry.Init(sentry.ClientOptions{
		Dsn:              cfg.HTTP.SentryDSN,
		Environment:      cfg.Env,
		Release:          config.Version,
		AttachStacktrace: true,
	})
	if err != nil {
		log.Warn("sentry initialization failed", zap.Error(err))
		return
	}
	log.Info("sentry initialized", zap.String("environment", cfg.Env))
	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			sentry.Flush(2 * time.Second)
			return nil
		},
	})
}

func StartServer(lc fx.Lifecycle, cfg *config.Config, engine *gin.Engine, log *zap.Logger) {
	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			ln, err := net.Listen("tcp", srv.Addr)
			if err != nil {
				return err
			}
			log.Info("starting HTTP server", zap.String("addr", srv.Addr))
			go func() {
				if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
					log.Error("HTTP server stopped", zap.Error(err))
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			log.Info("stopping HTTP server")
			shutdownCtx, cancel := context.WithTimeout(ctx, cfg.HTTP.ShutdownTimeout)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		},
	})
}
