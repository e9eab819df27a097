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

	// Request sessions and the notes pool are independent handles.
	sessions, err := persistence.Open(ctx, cfg.Database, logger)
	if err != nil {
		logger.Fatal("failed to open database", zap.Error(err))
	}
	defer sessions.Close()

	if cfg.Database.RunMigrations {
		if err := persistence.RunMigrations(ctx, sessions, logger); err != nil {
			logger.Fatal("failed to run migrations", zap.Error(err))
		}
	}

	notesPool, err := persistence.Open(ctx, cfg.Database, logger)
	if err != nil {
		logger.Fatal("failed to open notes pool", zap.Error(err))
	}
	defer notesPool.Close()

	validator, err := validation.New()
	if err != nil {
		logger.Fatal("failed to load schemas", zap.Error(err))
	}

	dispatcher := events.NewInMemoryDispatcher()
	worker.StartNotificationWorker(service.NewNotificationService(dispatcher, logger, cfg.Notification))

	directory := service.NewDirectoryService(dispatcher, cfg.Auth.BcryptCost, logger)
	notes := service.NewNotesService(repository.NewNoteRepository(notesPool.DB, notesPool.Dialect), dispatcher, logger)

	metrics := observability.NewMetrics()
	app := httptransport.NewApp(cfg.App.Name)
	httptransport.RegisterMiddlewares(app, logger, metrics, httptransport.MiddlewareConfig{
		Timeout: cfg.App.RequestTimeout(),
	})

	httptransport.RegisterDirectoryRoutes(app, httptransport.DirectoryRoutes{
		Health: handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, map[string]handlers.Pinger{
			"database": sessions,
			"notes":    notesPool,
		}, metrics),
		Directory: handlers.NewDirectoryHandler(directory, validator),
		Notes:     handlers.NewNotesHandler(notes, validator),
		Gateway:   persistence.NewGateway(sessions, logger),
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
