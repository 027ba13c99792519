package handlers

import (
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/velox-ai/agents/models"
	"github.com/velox-ai/agents/services/backends"
	"github.com/velox-ai/agents/utils"
)

// HealthResponse represents the health check response
type HealthResponse struct {
	Status    string            `json:"status"`
	Service   string            `json:"service"`
	Timestamp string            `json:"timestamp"`
	Checks    map[string]string `json:"checks,omitempty"`
}

// HealthHandler handles health-related HTTP requests
type HealthHandler struct {
	registry *backends.Registry
	logger   *zap.Logger
}

// NewHealthHandler creates a new HealthHandler
func NewHealthHandler(registry *backends.Registry, logger *zap.Logger) *HealthHandler {
	return &HealthHandler{
		registry: registry,
		logger:   logger,
	}
}

// HandleHealth handles GET /healthz
// Basic liveness check - always returns 200 if service is running
func (h *HealthHandler) HandleHealth(w http.ResponseWriter, r *http.Request) {
	response := HealthResponse{
		Status:    "healthy",
		Service:   "velox-agent-service",
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	}

	_ = utils.WriteOK(w, response)
}

// HandleReadiness handles GET /readyz
// The light tier is optional (it has a guaranteed fallback); the hosted
// tiers are required, since without them a light failure has nowhere to go.
func (h *HealthHandler) HandleReadiness(w http.ResponseWriter, r *http.Request) {
	checks := make(map[string]string)
	ready := true

	for _, tier := range models.AllTiers() {
		if h.registry.Has(tier) {
			checks[tier.String()] = "configured"
			continue
		}
		checks[tier.String()] = "unconfigured"
		if tier != models.TierLight {
			ready = false
		}
	}

	status := "ready"
	httpStatus := http.StatusOK
	if !ready {
		status = "not_ready"
		httpStatus = http.StatusServiceUnavailable
		h.logger.Warn("readiness check failed", zap.Any("checks", checks))
	}

	response := HealthResponse{
		Status:    status,
		Service:   "velox-agent-service",
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Checks:    checks,
	}

	if err := utils.WriteJSON(w, httpStatus, utils.SuccessResponse{Data: response}); err != nil {
		h.logger.Error("failed to write readiness response", zap.Error(err))
	}
}
