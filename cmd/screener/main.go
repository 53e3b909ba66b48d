package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/couchcryptid/parcel-screening/internal/adapter/assessor"
	"github.com/couchcryptid/parcel-screening/internal/adapter/httpapi"
	"github.com/couchcryptid/parcel-screening/internal/adapter/soils"
	"github.com/couchcryptid/parcel-screening/internal/adapter/synthetic"
	"github.com/couchcryptid/parcel-screening/internal/config"
	"github.com/couchcryptid/parcel-screening/internal/domain"
	"github.com/couchcryptid/parcel-screening/internal/observability"
	"github.com/couchcryptid/parcel-screening/internal/pipeline"
	"github.com/couchcryptid/parcel-screening/internal/program"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg)
	metrics := observability.NewMetrics()

	registry, err := program.Load(cfg.ProgramCatalogPath)
	if err != nil {
		logger.Error("failed to load program catalog", "path", cfg.ProgramCatalogPath, "error", err)
		os.Exit(1)
	}
	logger.Info("program catalog loaded", "path", cfg.ProgramCatalogPath, "programs", registry.Keys())

	// Soil enrichment is feature-flagged via SOIL_ENABLED.
	var soilSource domain.SoilSource
	if cfg.SoilEnabled {
		client := soils.NewClient(cfg.SDAURL, cfg.SDATimeout, logger)
		soilSource = soils.NewCachedSource(client, cfg.SoilCacheSize, metrics)
		logger.Info("soil enrichment enabled", "cache_size", cfg.SoilCacheSize, "timeout", cfg.SDATimeout)
	} else {
		logger.Info("soil enrichment disabled")
	}

	// The synthetic source stands in for the assessor in two cases: no live
	// endpoint configured, or configured but failing with fallback enabled.
	var live domain.ParcelSource
	var fallback domain.ParcelSource
	if cfg.AssessorBaseURL != "" {
		live = assessor.NewClient(cfg.AssessorBaseURL, cfg.AssessorTimeout, logger)
		if cfg.FallbackEnabled {
			fallback = synthetic.NewSource()
			logger.Info("synthetic fallback enabled")
		}
	} else {
		live = synthetic.NewSource()
		logger.Warn("no assessor endpoint configured, serving synthetic data")
	}

	p := pipeline.New(registry, live, fallback, soilSource, logger, metrics, pipeline.Options{
		Workers:          cfg.Workers,
		MaxFetchAttempts: cfg.FetchMaxAttempts,
	})

	srv := httpapi.NewServer(cfg.HTTPAddr, p, logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "error", err)
	}

	logger.Info("shutdown complete")
}
