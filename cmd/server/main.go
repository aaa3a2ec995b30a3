package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/jayanthkotte/Personalized-Investment-Recommendation-App/internal/config"
	"github.com/jayanthkotte/Personalized-Investment-Recommendation-App/internal/database"
	"github.com/jayanthkotte/Personalized-Investment-Recommendation-App/internal/modules/accounts"
	"github.com/jayanthkotte/Personalized-Investment-Recommendation-App/internal/modules/catalog"
	"github.com/jayanthkotte/Personalized-Investment-Recommendation-App/internal/modules/investments"
	"github.com/jayanthkotte/Personalized-Investment-Recommendation-App/internal/modules/recommendation"
	"github.com/jayanthkotte/Personalized-Investment-Recommendation-App/internal/modules/recommendation/artifact"
	"github.com/jayanthkotte/Personalized-Investment-Recommendation-App/internal/modules/transactions"
	"github.com/jayanthkotte/Personalized-Investment-Recommendation-App/internal/modules/users"
	"github.com/jayanthkotte/Personalized-Investment-Recommendation-App/internal/scheduler"
	"github.com/jayanthkotte/Personalized-Investment-Recommendation-App/internal/server"
	"github.com/jayanthkotte/Personalized-Investment-Recommendation-App/pkg/logger"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		bootLog := logger.New(logger.Config{Level: "info", Pretty: true})
		bootLog.Fatal().Err(err).Msg("Failed to load configuration")
	}

	// Initialize logger
	log := logger.New(logger.Config{
		Level:  cfg.LogLevel,
		Pretty: cfg.DevMode,
	})

	log.Info().Msg("Starting investment advisor")

	// Initialize databases
	appDB, err := database.New(database.Config{
		Path:    cfg.AppDatabasePath(),
		Profile: database.ProfileStandard,
		Name:    "app",
	})
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to open app database")
	}
	defer appDB.Close()

	catalogDB, err := database.New(database.Config{
		Path:    cfg.CatalogDatabasePath(),
		Profile: database.ProfileCache,
		Name:    "catalog",
	})
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to open catalog database")
	}
	defer catalogDB.Close()

	// Run migrations
	if err := appDB.Migrate(); err != nil {
		log.Fatal().Err(err).Msg("Failed to migrate app database")
	}
	if err := catalogDB.Migrate(); err != nil {
		log.Fatal().Err(err).Msg("Failed to migrate catalog database")
	}

	// Repositories
	userRepo := users.NewRepository(appDB.Conn(), log)
	txRepo := transactions.NewRepository(appDB.Conn(), log)
	holdingRepo := investments.NewRepository(appDB.Conn(), log)
	recRepo := recommendation.NewRepository(appDB.Conn(), log)
	optionRepo := catalog.NewOptionRepository(catalogDB.Conn(), log)

	// Seed the investment catalog on first run
	if err := catalog.SeedIfEmpty(optionRepo, log); err != nil {
		log.Fatal().Err(err).Msg("Failed to seed investment catalog")
	}

	// Classifier artifacts
	profileProvider, err := artifact.NewProvider(cfg.ProfileBundlePath, log)
	if err != nil {
		log.Fatal().Err(err).Str("path", cfg.ProfileBundlePath).Msg("Failed to load profile classifier bundle")
	}
	rtcProvider, err := artifact.NewProvider(cfg.RTCBundlePath, log)
	if err != nil {
		log.Fatal().Err(err).Str("path", cfg.RTCBundlePath).Msg("Failed to load risk/tenure/capital classifier bundle")
	}

	// Services
	authService := accounts.NewService(userRepo, cfg.JWTSecret, time.Duration(cfg.TokenTTLHours)*time.Hour, log)
	txService := transactions.NewService(txRepo, userRepo, log)
	investService := investments.NewService(appDB.Conn(), holdingRepo, userRepo, log)
	engine := recommendation.NewEngine(userRepo, optionRepo, recRepo, profileProvider, rtcProvider, log)

	// Background jobs
	sched := scheduler.New(log)
	registerJobs(sched, cfg, log, profileProvider, rtcProvider, appDB, catalogDB)
	sched.Start()
	defer sched.Stop()

	// HTTP server
	srv := server.New(cfg, server.Handlers{
		Auth:           accounts.NewHandlers(authService, log),
		Users:          users.NewHandlers(userRepo, log),
		Transactions:   transactions.NewHandlers(txService, txRepo, userRepo, log),
		Catalog:        catalog.NewHandlers(optionRepo, log),
		Investments:    investments.NewHandlers(investService, log),
		Recommendation: recommendation.NewHandlers(engine, log),
	}, log)

	go func() {
		if err := srv.Start(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	log.Info().Int("port", cfg.Port).Msg("Server started successfully")

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server stopped")
}

func registerJobs(sched *scheduler.Scheduler, cfg *config.Config, log zerolog.Logger, profileProvider, rtcProvider *artifact.Provider, appDB, catalogDB *database.DB) {
	jobs := []struct {
		schedule string
		job      scheduler.Job
	}{
		{cfg.ArtifactReloadSpec, scheduler.NewArtifactReloadJob("profile_bundle_reload", profileProvider, log)},
		{cfg.ArtifactReloadSpec, scheduler.NewArtifactReloadJob("rtc_bundle_reload", rtcProvider, log)},
		{cfg.CheckpointSpec, scheduler.NewCheckpointJob(appDB, log)},
		{cfg.CheckpointSpec, scheduler.NewCheckpointJob(catalogDB, log)},
	}
	for _, j := range jobs {
		if err := sched.AddJob(j.schedule, j.job); err != nil {
			log.Fatal().Err(err).Str("job", j.job.Name()).Msg("Failed to register job")
		}
	}
}
