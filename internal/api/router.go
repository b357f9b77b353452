// Package api provides the HTTP API for the drive-time analysis service.
package api

import (
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"github.com/drivetime/drivetime/internal/api/handler"
	"github.com/drivetime/drivetime/internal/api/middleware"
	"github.com/drivetime/drivetime/internal/maps"
	"github.com/drivetime/drivetime/internal/provider/resilience"
)

// RouterConfig holds configuration for the router.
type RouterConfig struct {
	Version     string
	BuildTime   string
	Logger      zerolog.Logger
	ServiceName string
	Metrics     *middleware.Metrics
	Analyzer    handler.Analyzer
	Geocoder    maps.Geocoder
	StaticMaps  handler.StaticMapper
	Registry    *resilience.Registry
	EngineStats handler.EngineStats
}

// NewRouter creates a new chi router with all API routes configured.
func NewRouter(cfg RouterConfig) *chi.Mux {
	r := chi.NewRouter()

	serviceName := cfg.ServiceName
	if serviceName == "" {
		serviceName = "drivetime-api"
	}

	// Global middleware - order matters
	r.Use(middleware.RequestID)
	r.Use(middleware.Tracing(serviceName))
	if cfg.Metrics != nil {
		r.Use(cfg.Metrics.Middleware())
	}
	r.Use(middleware.Logger(cfg.Logger))
	r.Use(middleware.Recovery(cfg.Logger))
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.SecurityHeaders)
	r.Use(middleware.RequireJSON)

	opsHandler := handler.NewOpsHandler(cfg.Version, cfg.BuildTime, cfg.Registry, cfg.EngineStats)
	geocodeHandler := handler.NewGeocodeHandler(cfg.Geocoder)
	staticMapHandler := handler.NewStaticMapHandler(cfg.StaticMaps)
	analysisHandler := handler.NewAnalysisHandler(cfg.Analyzer)

	// One eta-series call fans out dozens of upstream requests, so it gets
	// the strict tier.
	expensiveRateLimit := middleware.RateLimitByIP(middleware.ExpensiveRateLimit)
	standardRateLimit := middleware.RateLimitByIP(middleware.StandardRateLimit)

	r.Route("/v1", func(r chi.Router) {
		r.Route("/ops", func(r chi.Router) {
			r.Get("/health", opsHandler.HealthCheck)
			r.Get("/ready", opsHandler.ReadinessCheck)
			r.Get("/status", opsHandler.SystemStatus)
		})

		r.With(standardRateLimit).Get("/geocode", geocodeHandler.Geocode)
		r.With(standardRateLimit).Get("/static-map", staticMapHandler.StaticMap)

		r.With(expensiveRateLimit).Post("/eta-series", analysisHandler.ETASeries)
	})

	return r
}
