package handler

import (
	"context"
	"net/http"

	"github.com/omnistat/platform-server/internal/model"
	"github.com/omnistat/platform-server/internal/service"
)

// HealthService probes the service's dependencies.
type HealthService interface {
	Check(ctx context.Context) model.HealthStatus
}

// Health answers liveness and readiness probes.
type Health struct {
	service HealthService
}

func NewHealth(service HealthService) *Health {
	return &Health{service: service}
}

type healthResponse struct {
	Status string `json:"status"`
	model.HealthStatus
}

func (h *Health) Check(w http.ResponseWriter, r *http.Request) {
	status := h.service.Check(r.Context())

	response := healthResponse{Status: "ok", HealthStatus: status}
	code := http.StatusOK
	if !service.Healthy(status) {
		response.Status = "unavailable"
		code = http.StatusServiceUnavailable
	} else if !status.CacheReachable {
		response.Status = "degraded"
	}

	writeJSON(w, code, response)
}
