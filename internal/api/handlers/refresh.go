package handlers

import (
	"net/http"

	"github.com/ycliang/portfolio-performance-engine/internal/api/response"
	"github.com/ycliang/portfolio-performance-engine/internal/service"
)

// RefreshHandler exposes the FX cache refresh job for manual runs.
// Guarded by the internal API key middleware.
type RefreshHandler struct {
	refreshService *service.RefreshService
}

// NewRefreshHandler creates a new RefreshHandler with the provided service dependency.
func NewRefreshHandler(refreshService *service.RefreshService) *RefreshHandler {
	return &RefreshHandler{
		refreshService: refreshService,
	}
}

// RefreshRates handles POST requests to resolve exchange rates for all
// transactions still missing one.
//
// Endpoint: POST /api/internal/refresh-rates
// Response: 200 OK with {"updated": n}
func (h *RefreshHandler) RefreshRates(w http.ResponseWriter, r *http.Request) {
	updated, err := h.refreshService.RefreshMissingRates(r.Context())
	if err != nil {
		response.RespondError(w, http.StatusInternalServerError, "failed to refresh exchange rates", err.Error())
		return
	}

	response.RespondJSON(w, http.StatusOK, map[string]int{"updated": updated})
}
