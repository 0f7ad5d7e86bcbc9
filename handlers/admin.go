package handlers

import (
	"net/http"
	"rally-metrics-go/logging"
	"rally-metrics-go/services"
)

// AdminHandler serves maintenance endpoints
type AdminHandler struct {
	listCache services.PlayerListCache
	summaries *services.SummaryService
	logger    *logging.Logger
}

// NewAdminHandler creates a new admin handler. listCache may be nil.
func NewAdminHandler(listCache services.PlayerListCache, summaries *services.SummaryService) *AdminHandler {
	return &AdminHandler{
		listCache: listCache,
		summaries: summaries,
		logger:    logging.WithPrefix("AdminHandler"),
	}
}

// PurgeCaches handles POST /admin/cache/purge
func (h *AdminHandler) PurgeCaches(w http.ResponseWriter, r *http.Request) {
	result := map[string]bool{"players": false, "summaries": false}

	if h.listCache != nil {
		if err := h.listCache.Purge(r.Context()); err != nil {
			h.logger.Errorf("Failed to purge player list cache: %v", err)
		} else {
			result["players"] = true
		}
	}

	if err := h.summaries.Purge(r.Context()); err != nil {
		h.logger.Errorf("Failed to purge summaries: %v", err)
	} else {
		result["summaries"] = true
	}

	h.logger.Infof("Cache purge: players=%t summaries=%t", result["players"], result["summaries"])
	status := http.StatusOK
	if !result["summaries"] || (h.listCache != nil && !result["players"]) {
		status = http.StatusInternalServerError
	}
	writeJSON(w, status, result)
}
