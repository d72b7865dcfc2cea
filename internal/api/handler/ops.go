package handler

import (
	"net/http"
	"time"

	"github.com/routeweaver/routeweaver/internal/api/models"
	"github.com/routeweaver/routeweaver/internal/api/response"
	"github.com/routeweaver/routeweaver/internal/provider/resilience"
)

// OpsHandler handles operational endpoints.
type OpsHandler struct {
	version   string
	buildTime string
	providers *resilience.Registry
}

// NewOpsHandler creates a new OpsHandler.
func NewOpsHandler(version, buildTime string, providers *resilience.Registry) *OpsHandler {
	return &OpsHandler{
		version:   version,
		buildTime: buildTime,
		providers: providers,
	}
}

// HealthCheck handles GET /v1/ops/health - liveness check.
func (h *OpsHandler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	health := models.Health{
		Status: models.HealthStatusOK,
		Time:   time.Now().UTC(),
		Details: map[string]interface{}{
			"version":   h.version,
			"buildTime": h.buildTime,
		},
	}
	response.JSON(w, r, http.StatusOK, health)
}

// ReadinessCheck handles GET /v1/ops/ready - readiness check.
func (h *OpsHandler) ReadinessCheck(w http.ResponseWriter, r *http.Request) {
	health := models.Health{
		Status: models.HealthStatusOK,
		Time:   time.Now().UTC(),
	}
	response.JSON(w, r, http.StatusOK, health)
}

// SystemStatus handles GET /v1/ops/status - provider circuit health.
func (h *OpsHandler) SystemStatus(w http.ResponseWriter, r *http.Request) {
	status := models.SystemStatus{
		Status:    models.HealthStatusOK,
		Time:      time.Now().UTC(),
		Providers: []models.ProviderStatus{},
	}

	if h.providers != nil {
		for _, ph := range h.providers.GetAllHealth() {
			providerStatus := models.HealthStatusOK
			if !ph.IsHealthy() {
				providerStatus = models.HealthStatusDegraded
				status.Status = models.HealthStatusDegraded
			}
			status.Providers = append(status.Providers, models.ProviderStatus{
				Provider:      ph.Name,
				Status:        providerStatus,
				CircuitState:  ph.CircuitState.String(),
				LastSuccessAt: ph.LastSuccessAt,
				LastFailureAt: ph.LastFailureAt,
				LastError:     ph.LastError,
			})
		}
	}

	response.JSON(w, r, http.StatusOK, status)
}
