package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	httptransport "github.com/spec-kit/tutorial-service/internal/api/http"
	"github.com/spec-kit/tutorial-service/internal/api/http/handlers"
	"github.com/spec-kit/tutorial-service/internal/auth"
	"github.com/spec-kit/tutorial-service/internal/config"
	"github.com/spec-kit/tutorial-service/internal/events"
	"github.com/spec-kit/tutorial-service/internal/observability"
	"github.com/spec-kit/tutorial-service/internal/persistence"
	"github.com/spec-kit/tutorial-service/internal/repository"
	"github.com/spec-kit/tutorial-service/internal/service"
	"github.com/spec-kit/tutorial-service/internal/validation"
	"github.com/spec-kit/tutorial-service/internal/worker"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logger)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	deps := map[string]handlers.Pinger{}
	catalogRepo := repository.NewMemoryCatalogRepository()
	if cfg.Catalog.Backend == "redis" {
		redis := persistence.NewRedis(ctx, cfg.Redis, logger)
		defer redis.Close()
		catalogRepo = repository.NewRedisCatalogRepository(redis.Client)
		deps["redis"] = redis
	}

	catalog := service.NewCatalogService(catalogRepo)
	if err := catalog.Seed(ctx); err != nil {
		logger.Warn("failed to seed catalog", zap.Error(err))
	}

	validator, err := validation.New()
	if err != nil {
		logger.Fatal("failed to load schemas", zap.Error(err))
	}

	dispatcher := events.NewInMemoryDispatcher()
	worker.StartNotificationWorker(service.NewNotificationService(dispatcher, logger, cfg.Notification))

	accounts := repository.NewMemoryAccountRepository(repository.SeedAccounts()...)
	tokens := auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.AccessTokenTTL())
	authService := service.NewAuthService(accounts, tokens, dispatcher, cfg.Auth.BcryptCost, logger)

	docs, err := handlers.NewDocsHandler(cfg.App.Name)
	if err != nil {
		logger.Fatal("failed to load docs", zap.Error(err))
	}
	pages, err := handlers.NewPagesHandler()
	if err != nil {
		logger.Fatal("failed to load templates", zap.Error(err))
	}

	metrics := observability.NewMetrics()
	app := httptransport.NewApp(cfg.App.Name)
	httptransport.RegisterMiddlewares(app, logger, metrics, httptransport.MiddlewareConfig{
		Timeout: cfg.App.RequestTimeout(),
		CORS:    &cfg.CORS,
	})

	httptransport.RegisterTutorialRoutes(app, httptransport.TutorialRoutes{
		Health:    handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, deps, metrics),
		Users:     handlers.NewUsersHandler(authService, validator),
		Items:     handlers.NewItemsHandler(catalog, validator),
		Docs:      docs,
		Pages:     pages,
		Gate:      auth.NewGate(authService.TokenManager(), accounts),
		StaticDir: cfg.App.StaticDir,
	})

	go func() {
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)

	_ = app.Shutdown()
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
