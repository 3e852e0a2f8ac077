package http

import (
	"context"
	"log/slog"
	"net/http"
	"time"
)

type HealthResponse struct {
	Status   string `json:"status"`
	Database string `json:"database"`
}

func (h *handler) healthz(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	res := HealthResponse{Status: "ok", Database: "up"}
	status := http.StatusOK

	if ok, err := h.health.IsHealthy(ctx); !ok {
		h.logger.WarnContext(ctx, "database unhealthy", slog.Any("error", err))
		res = HealthResponse{Status: "degraded", Database: "down"}
		status = http.StatusServiceUnavailable
	}

	h.writeJSON(w, r, status, res)
}
