package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rongwang/nailpos-server/internal/api"
	"github.com/rongwang/nailpos-server/internal/config"
	"github.com/rongwang/nailpos-server/internal/repository"
	"github.com/rongwang/nailpos-server/internal/service"
	"github.com/rongwang/nailpos-server/internal/utils"
	"go.uber.org/fx"
)

func main() {
	app := fx.New(
		fx.Provide(
			config.LoadConfig,
			utils.NewLogger,
			ProvideRepository,
			ProvideService,
			api.NewHandler,
			ProvideRouter,
		),
		fx.Invoke(SyncAccounts),
		fx.Invoke(StartServer),
	)

	app.Run()
}

// ProvideRepository opens the configured store. The memory driver keeps
// everything in process and starts from the seed menu.
func ProvideRepository(lc fx.Lifecycle, cfg *config.Config, logger *utils.Logger) (repository.Repository, error) {
	if cfg.Database.Driver == "memory" {
		logger.Warn("using in-memory store, data is lost on restart")
		return repository.NewMemoryRepository(cfg.Catalog.SeedMenu), nil
	}

	db, err := config.SetupDatabase(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to set up database: %w", err)
	}

	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			logger.Info("closing database")
			return db.Close()
		},
	})

	return repository.NewPostgresRepository(db), nil
}

func ProvideService(repo repository.Repository, cfg *config.Config, logger *utils.Logger) service.Service {
	return service.NewDefaultService(repo, cfg, logger)
}

func ProvideRouter(cfg *config.Config, handler *api.Handler) *gin.Engine {
	router := gin.Default()
	router.Use(api.TraceIDMiddleware())
	router.Use(api.JWTSecretMiddleware([]byte(cfg.Auth.JWTSecret)))

	handler.SetupRoutes(router)
	return router
}

// SyncAccounts gives every roster member a login account before the server
// accepts requests
func SyncAccounts(lc fx.Lifecycle, svc service.Service, logger *utils.Logger) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			if err := svc.EnsureBootstrapAdmin(ctx); err != nil {
				return err
			}

			synced, err := svc.SyncAllAccounts(ctx)
			if err != nil {
				// Login still works for accounts that already exist
				logger.Error("account sync failed: %v", err)
				return nil
			}
			logger.Info("account sync complete: %d roster members", synced)
			return nil
		},
	})
}

func StartServer(lc fx.Lifecycle, cfg *config.Config, router *gin.Engine, logger *utils.Logger) {
	server := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.Port),
		Handler: router,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				logger.Info("Starting server on %s", server.Addr)
				if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					logger.Error("server stopped: %v", err)
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			logger.Info("Stopping server")
			return server.Shutdown(ctx)
		},
	})
}
