// Package handler provides HTTP handlers for the drive-time API.
package handler

import (
	"net/http"
	"time"

	"github.com/sony/gobreaker/v2"

	"github.com/drivetime/drivetime/internal/api/models"
	"github.com/drivetime/drivetime/internal/api/response"
	"github.com/drivetime/drivetime/internal/provider/resilience"
)

// EngineStats exposes batch engine counters for the status endpoint.
type EngineStats interface {
	MetricsSnapshot() map[string]interface{}
}

// OpsHandler handles operational endpoints.
type OpsHandler struct {
	version   string
	buildTime string
	registry  *resilience.Registry
	engine    EngineStats
}

// NewOpsHandler creates a new OpsHandler.
func NewOpsHandler(version, buildTime string, registry *resilience.Registry, engine EngineStats) *OpsHandler {
	return &OpsHandler{
		version:   version,
		buildTime: buildTime,
		registry:  registry,
		engine:    engine,
	}
}

// HealthCheck handles GET /v1/ops/health - liveness check.
func (h *OpsHandler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	health := models.Health{
		Status: models.HealthStatusOK,
		Time:   models.Timestamp(time.Now()),
		Details: map[string]interface{}{
			"version":   h.version,
			"buildTime": h.buildTime,
		},
	}
	response.JSON(w, r, http.StatusOK, health)
}

// ReadinessCheck handles GET /v1/ops/ready - readiness check.
// The service is not ready when any provider circuit breaker is open.
func (h *OpsHandler) ReadinessCheck(w http.ResponseWriter, r *http.Request) {
	status := models.HealthStatusOK
	code := http.StatusOK

	if h.registry != nil {
		for _, p := range h.registry.AllHealth() {
			if !p.Healthy() {
				status = models.HealthStatusDegraded
				code = http.StatusServiceUnavailable
				break
			}
		}
	}

	health := models.Health{
		Status: status,
		Time:   models.Timestamp(time.Now()),
	}
	response.JSON(w, r, code, health)
}

// SystemStatus handles GET /v1/ops/status - provider and engine status.
func (h *OpsHandler) SystemStatus(w http.ResponseWriter, r *http.Request) {
	status := models.SystemStatus{
		Status:    models.HealthStatusOK,
		Time:      models.Timestamp(time.Now()),
		Providers: []models.ProviderStatus{},
	}

	if h.registry != nil {
		for _, p := range h.registry.AllHealth() {
			status.Providers = append(status.Providers, providerStatus(p))
			if !p.Healthy() {
				status.Status = models.HealthStatusDegraded
			}
		}
	}

	if h.engine != nil {
		status.Engine = h.engine.MetricsSnapshot()
	}

	response.JSON(w, r, http.StatusOK, status)
}

func providerStatus(p *resilience.Health) models.ProviderStatus {
	ps := models.ProviderStatus{
		Provider:     p.Name,
		Status:       models.HealthStatusOK,
		BreakerState: p.BreakerState.String(),
	}
	if p.BreakerState != gobreaker.StateClosed {
		ps.Status = models.HealthStatusDegraded
	}
	if p.LastSuccessAt != nil {
		ts := models.Timestamp(*p.LastSuccessAt)
		ps.LastSuccessAt = &ts
	}
	if p.LastFailureAt != nil {
		ts := models.Timestamp(*p.LastFailureAt)
		ps.LastFailureAt = &ts
	}
	if p.LastError != "" {
		msg := p.LastError
		ps.Message = &msg
	}
	return ps
}
