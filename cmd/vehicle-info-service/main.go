package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"vehicle-info-service/internal/aggregator"
	"vehicle-info-service/internal/auth"
	"vehicle-info-service/internal/cache"
	"vehicle-info-service/internal/config"
	"vehicle-info-service/internal/db"
	"vehicle-info-service/internal/domain/vehicle"
	"vehicle-info-service/internal/fetch"
	"vehicle-info-service/internal/fetch/carspec"
	"vehicle-info-service/internal/fetch/fixture"
	"vehicle-info-service/internal/fetch/insurance"
	"vehicle-info-service/internal/fetch/iomreg"
	"vehicle-info-service/internal/fetch/mot"
	"vehicle-info-service/internal/fetch/ves"
	httphandler "vehicle-info-service/internal/http"
	"vehicle-info-service/internal/http/middleware"
	"vehicle-info-service/internal/logger"
	"vehicle-info-service/internal/repository"
	"vehicle-info-service/internal/storage"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	appLogger := logger.New(cfg.Environment)

	// The audit database is optional: without a DSN the service still
	// answers lookups, it just keeps no history.
	var database *gorm.DB
	var lookupRepo *repository.LookupRepository
	if cfg.DB.DSN != "" {
		database, err = db.New(cfg, appLogger)
		if err != nil {
			appLogger.Fatal().Err(err).Msg("failed to connect database")
		}
		lookupRepo = repository.NewLookupRepository(database)
	} else {
		appLogger.Warn().Msg("DB_DSN not set, lookup audit trail disabled")
	}

	if lookupRepo != nil && cfg.DB.LookupRetentionDays > 0 {
		go pruneLookups(lookupRepo, cfg.DB.LookupRetentionDays, appLogger)
	}

	// Archive store for scraped pages that defeated extraction (optional).
	r2Client, err := storage.NewR2ClientFromEnv()
	if err != nil && !errors.Is(err, storage.ErrNotConfigured) {
		appLogger.Fatal().Err(err).Msg("failed to initialize R2 client")
	}
	if err != nil {
		appLogger.Warn().Msg("R2 storage not configured, scrape archiving disabled")
	}

	vesClient := ves.New(ves.Config{
		BaseURL: cfg.VES.BaseURL,
		APIKey:  cfg.VES.APIKey,
		Timeout: cfg.VES.Timeout,
	}, cache.New[vehicle.VehicleRecord](cfg.VES.CacheTTL), appLogger)

	motClient := mot.New(mot.Config{
		BaseURL:      cfg.MOT.BaseURL,
		APIKey:       cfg.MOT.APIKey,
		ClientID:     cfg.MOT.ClientID,
		ClientSecret: cfg.MOT.ClientSecret,
		TokenURL:     cfg.MOT.TokenURL,
		Scope:        cfg.MOT.Scope,
		Timeout:      cfg.MOT.Timeout,
	}, cache.New[[]vehicle.MOTTest](cfg.MOT.CacheTTL), appLogger)

	var specArchive carspec.Archiver
	var registryArchive iomreg.Archiver
	if r2Client != nil {
		specArchive = r2Client
		registryArchive = r2Client
	}

	scraper := carspec.New(carspec.Config{
		BaseURL: cfg.Scraper.BaseURL,
		Timeout: cfg.Scraper.Timeout,
	}, fetch.NewGate(cfg.Scraper.MinInterval),
		cache.New[vehicle.RawSpecRecord](cfg.Scraper.CacheTTL), specArchive, appLogger)

	registry := iomreg.New(iomreg.Config{
		BaseURL: cfg.Registry.BaseURL,
		Timeout: cfg.Registry.Timeout,
	}, cache.New[vehicle.RawIoMRecord](cfg.Registry.CacheTTL), registryArchive, appLogger)

	insuranceChecker := insurance.New(insurance.Config{
		BaseURL: cfg.Insurance.BaseURL,
		APIKey:  cfg.Insurance.APIKey,
		Timeout: cfg.Insurance.Timeout,
	}, cache.New[vehicle.InsuranceStatus](cfg.Insurance.CacheTTL), appLogger)

	agg := aggregator.New(vesClient, motClient, scraper, registry, fixture.New(), appLogger)

	tokenParser := auth.NewParser(cfg.Auth.AccessSecret)

	handler := httphandler.NewHandler(agg, insuranceChecker, lookupRepo, appLogger)
	authMiddleware := middleware.Auth(tokenParser)
	router := httphandler.NewRouter(handler, authMiddleware, cfg.Environment, database, appLogger)

	addr := fmt.Sprintf("%s:%d", cfg.HTTP.Host, cfg.HTTP.Port)
	appLogger.Info().Str("addr", addr).Msg("starting vehicle info service")

	srv := &http.Server{
		Addr:    addr,
		Handler: router,
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			appLogger.Error().Err(err).Msg("failed to start server")
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	appLogger.Info().Msg("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		appLogger.Error().Err(err).Msg("server forced to shutdown")
	}

	appLogger.Info().Msg("server exited")
}

// pruneLookups trims the audit trail once at startup and then daily.
func pruneLookups(repo *repository.LookupRepository, days int, log zerolog.Logger) {
	prune := func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
		defer cancel()

		deleted, err := repo.DeleteOldLookups(ctx, days)
		if err != nil {
			log.Error().Err(err).Int("retention_days", days).Msg("failed to prune old lookups")
			return
		}
		if deleted > 0 {
			log.Info().Int64("deleted", deleted).Int("retention_days", days).Msg("pruned old lookups")
		}
	}

	prune()
	for range time.Tick(24 * time.Hour) {
		prune()
	}
}
