package config_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/drivetime/drivetime/internal/config"
)

func TestFromEnv_Defaults(t *testing.T) {
	cfg := config.FromEnv()

	assert.Equal(t, "development", cfg.Environment)
	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, 10*time.Second, cfg.ProviderTimeout)
	assert.Equal(t, "localhost:4317", cfg.OTLPEndpoint)
	assert.False(t, cfg.TelemetryEnabled)
}

func TestFromEnv_Overrides(t *testing.T) {
	t.Setenv("APP_ENV", "production")
	t.Setenv("APP_PORT", "9090")
	t.Setenv("GOOGLE_MAPS_API_KEY", "test-key")
	t.Setenv("GOOGLE_MAPS_BASE_URL", "http://localhost:8081")
	t.Setenv("PROVIDER_TIMEOUT", "3s")
	t.Setenv("OTEL_ENABLED", "true")

	cfg := config.FromEnv()

	assert.Equal(t, "production", cfg.Environment)
	assert.Equal(t, "9090", cfg.Port)
	assert.Equal(t, "test-key", cfg.GoogleMapsAPIKey)
	assert.Equal(t, "http://localhost:8081", cfg.GoogleMapsBaseURL)
	assert.Equal(t, 3*time.Second, cfg.ProviderTimeout)
	assert.True(t, cfg.TelemetryEnabled)
}

func TestFromEnv_BadTimeoutFallsBack(t *testing.T) {
	t.Setenv("PROVIDER_TIMEOUT", "not-a-duration")

	cfg := config.FromEnv()
	assert.Equal(t, 10*time.Second, cfg.ProviderTimeout)
}

func TestConfig_Validate(t *testing.T) {
	cfg := config.Config{}
	assert.ErrorIs(t, cfg.Validate(), config.ErrMissingAPIKey)

	cfg.GoogleMapsAPIKey = "key"
	assert.NoError(t, cfg.Validate())
}
