package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"mirror-server/internal/adapter/repo"
	"mirror-server/internal/http/handlers"
	httpapi "mirror-server/internal/http/httpapi"
	"mirror-server/internal/infra"
	"mirror-server/internal/storage"
	"mirror-server/internal/tryon"
)

func main() {
	_ = godotenv.Load()

	cfg, err := infra.LoadConfig()
	if err != nil {
		panic(err)
	}
	logger := infra.NewLogger(cfg.AppEnv)

	if err := infra.RunMigrations(cfg.MigrationsDir, cfg.DatabaseURL); err != nil {
		logger.Fatal().Err(err).Msg("failed to run migrations")
	}

	ctx := context.Background()
	dbpool, err := infra.NewDBPool(ctx, cfg)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect database")
	}
	defer dbpool.Close()

	runner := infra.NewSQLRunner(dbpool, logger)
	catalog := repo.NewCatalogRepo(runner)
	users := repo.NewUserRepo(runner)
	batches := repo.NewBatchRepo(runner)
	results := repo.NewResultRepo(runner)

	photos, err := storage.NewFileStore(cfg.TempDir)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to prepare temp storage")
	}

	resolver := tryon.NewResolver(tryon.ResolverOptions{
		PublicDir: cfg.PublicDir,
		DataDir:   cfg.DataDir,
		TempDir:   cfg.TempDir,
	})

	var client tryon.Client
	if cfg.MockSynthesis() {
		logger.Warn().Msg("FITROOM_API_KEY not set, running with simulated try-on results")
		client = tryon.NewMockClient(0)
	} else {
		client = tryon.NewFitRoomClient(tryon.FitRoomOptions{
			BaseURL: cfg.FitRoomAPIURL,
			APIKey:  cfg.FitRoomAPIKey,
		})
	}

	orchestrator := tryon.NewOrchestrator(tryon.OrchestratorOptions{
		Client:   client,
		Resolver: resolver,
		Batches:  batches,
		Logger:   logger,
	})

	app := &handlers.App{
		Catalog:      catalog,
		Users:        users,
		Batches:      batches,
		Results:      results,
		Orchestrator: orchestrator,
		Resolver:     resolver,
		Photos:       photos,
		Config:       cfg,
		Logger:       logger,
	}

	router := httpapi.NewRouter(app, cfg)
	server := infra.NewHTTPServer(cfg, router)

	// Staged user photos only live long enough for one batch.
	go func() {
		ticker := time.NewTicker(cfg.TempFileTTL)
		defer ticker.Stop()
		for range ticker.C {
			if removed, err := photos.Sweep(cfg.TempFileTTL); err != nil {
				logger.Error().Err(err).Msg("temp sweep failed")
			} else if removed > 0 {
				logger.Debug().Int("removed", removed).Msg("temp sweep")
			}
		}
	}()

	go func() {
		logger.Info().Msgf("API listening on :%s", cfg.Port)
		if err := server.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal().Err(err).Msg("http server failed")
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTPIdleTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("failed to shutdown server")
	}
	logger.Info().Msg("server stopped")
}
