package handlers

import (
	"net/http"
	"rally-metrics-go/services"
)

// HealthHandler reports whether the stats backend is reachable
type HealthHandler struct {
	playerService services.PlayerService
	demo          bool
}

// NewHealthHandler creates a new health handler
func NewHealthHandler(playerService services.PlayerService, demo bool) *HealthHandler {
	return &HealthHandler{playerService: playerService, demo: demo}
}

// HealthResponse is the body of GET /healthz
type HealthResponse struct {
	Status string `json:"status"`
	API    bool   `json:"api"`
	Demo   bool   `json:"demo"`
}

// Health handles GET /healthz
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	apiUp := h.playerService.HealthCheck(r.Context())
	resp := HealthResponse{Status: "ok", API: apiUp, Demo: h.demo}
	status := http.StatusOK
	if !apiUp {
		resp.Status = "degraded"
		status = http.StatusServiceUnavailable
	}
	writeJSON(w, status, resp)
}
