// Package config loads service configuration from the environment.
package config

import (
	"errors"
	"os"
	"strconv"
	"time"
)

// ErrMissingAPIKey indicates no maps API key was configured.
var ErrMissingAPIKey = errors.New("GOOGLE_MAPS_API_KEY is not set")

// Config holds the runtime configuration shared by the API server and CLI.
type Config struct {
	// Environment is the deployment environment (development, production).
	Environment string

	// Port is the HTTP listen port for the API server.
	Port string

	// GoogleMapsAPIKey authenticates against the Google Maps Platform.
	GoogleMapsAPIKey string

	// GoogleMapsBaseURL overrides the maps API base URL (tests, proxies).
	GoogleMapsBaseURL string

	// ProviderTimeout bounds each upstream maps request.
	ProviderTimeout time.Duration

	// OTLPEndpoint is the OpenTelemetry collector endpoint.
	OTLPEndpoint string

	// TelemetryEnabled toggles OTLP trace and metric export.
	TelemetryEnabled bool
}

// FromEnv creates a Config from environment variables.
func FromEnv() Config {
	timeout, _ := time.ParseDuration(getEnvOrDefault("PROVIDER_TIMEOUT", "10s"))
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	enabled, _ := strconv.ParseBool(getEnvOrDefault("OTEL_ENABLED", "false"))

	return Config{
		Environment:       getEnvOrDefault("APP_ENV", "development"),
		Port:              getEnvOrDefault("APP_PORT", "8080"),
		GoogleMapsAPIKey:  os.Getenv("GOOGLE_MAPS_API_KEY"),
		GoogleMapsBaseURL: os.Getenv("GOOGLE_MAPS_BASE_URL"),
		ProviderTimeout:   timeout,
		OTLPEndpoint:      getEnvOrDefault("OTEL_EXPORTER_OTLP_ENDPOINT", "localhost:4317"),
		TelemetryEnabled:  enabled,
	}
}

// Validate checks that required settings are present.
func (c Config) Validate() error {
	if c.GoogleMapsAPIKey == "" {
		return ErrMissingAPIKey
	}
	return nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
