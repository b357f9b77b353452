// Package main provides the entrypoint for the drive-time API server.
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"

	"github.com/drivetime/drivetime/internal/api"
	"github.com/drivetime/drivetime/internal/api/middleware"
	"github.com/drivetime/drivetime/internal/config"
	"github.com/drivetime/drivetime/internal/drivetime"
	"github.com/drivetime/drivetime/internal/engine"
	"github.com/drivetime/drivetime/internal/maps/googlemaps"
	"github.com/drivetime/drivetime/internal/provider/resilience"
	"github.com/drivetime/drivetime/internal/telemetry"
)

// Version and BuildTime are set at compile time via ldflags.
var (
	Version   = "dev"
	BuildTime = "unknown"
)

func main() {
	const serviceName = "drivetime-api"

	// Local development convenience; a missing .env is fine.
	_ = godotenv.Load()

	log := zerolog.New(os.Stdout).
		With().
		Timestamp().
		Str("service", serviceName).
		Str("version", Version).
		Logger()

	log.Info().
		Str("build_time", BuildTime).
		Msg("starting drive-time API")

	cfg := config.FromEnv()
	if err := cfg.Validate(); err != nil {
		log.Fatal().Err(err).Msg("invalid configuration")
	}

	ctx := context.Background()

	tp, err := telemetry.Init(ctx, telemetry.Config{
		ServiceName:    serviceName,
		ServiceVersion: Version,
		Environment:    cfg.Environment,
		OTLPEndpoint:   cfg.OTLPEndpoint,
		Enabled:        cfg.TelemetryEnabled,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize telemetry")
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if shutdownErr := tp.Shutdown(shutdownCtx); shutdownErr != nil {
			log.Error().Err(shutdownErr).Msg("failed to shutdown telemetry")
		}
	}()

	if cfg.TelemetryEnabled {
		log.Info().
			Str("otlp_endpoint", cfg.OTLPEndpoint).
			Msg("OpenTelemetry initialized")
	}

	metrics, err := middleware.NewMetrics()
	if err != nil {
		log.Error().Err(err).Msg("failed to initialize metrics")
		os.Exit(1) //nolint:gocritic // intentional exit, telemetry cleanup is best-effort
	}

	// Provider health registry feeds the readiness and status endpoints.
	registry := resilience.NewRegistry()

	mapsClient := googlemaps.NewClient(googlemaps.ClientConfig{
		APIKey:   cfg.GoogleMapsAPIKey,
		BaseURL:  cfg.GoogleMapsBaseURL,
		Timeout:  cfg.ProviderTimeout,
		Registry: registry,
		Logger:   log.With().Str("component", "googlemaps").Logger(),
	})
	log.Info().Str("provider", mapsClient.Name()).Msg("maps client initialized")

	engCfg := engine.DefaultConfig()
	engCfg.Logger = log.With().Str("component", "engine").Logger()
	eng := engine.New(engCfg)

	analyzer := drivetime.NewService(drivetime.ServiceConfig{
		Provider: mapsClient,
		Engine:   eng,
		Logger:   log.With().Str("component", "drivetime").Logger(),
	})
	log.Info().Msg("analysis service initialized")

	router := api.NewRouter(api.RouterConfig{
		Version:     Version,
		BuildTime:   BuildTime,
		Logger:      log,
		ServiceName: serviceName,
		Metrics:     metrics,
		Analyzer:    analyzer,
		Geocoder:    mapsClient,
		StaticMaps:  mapsClient,
		Registry:    registry,
		EngineStats: eng,
	})

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 2 * time.Minute, // eta-series runs can take a while
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info().
			Str("addr", server.Addr).
			Msg("server listening")

		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("server forced to shutdown")
		os.Exit(1)
	}

	log.Info().Msg("server stopped")
}
