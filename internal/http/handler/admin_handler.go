package handler

import (
	"net/http"

	"github.com/dealbridge/negotiation-api/internal/service"
	"go.uber.org/zap"
)

// AdminHandler handles API-key guarded administrative endpoints
type AdminHandler struct {
	negotiationService *service.NegotiationService
	logger             *zap.Logger
}

// NewAdminHandler creates a new admin handler instance
func NewAdminHandler(negotiationService *service.NegotiationService, logger *zap.Logger) *AdminHandler {
	return &AdminHandler{
		negotiationService: negotiationService,
		logger:             logger,
	}
}

// Cleanup handles POST /api/v1/admin/cleanup. Wipes all negotiation data.
func (h *AdminHandler) Cleanup(w http.ResponseWriter, r *http.Request) {
	if err := h.negotiationService.ResetAll(r.Context()); err != nil {
		h.logger.Error("failed to reset data", zap.Error(err))
		respondWithError(w, http.StatusInternalServerError, "Failed to reset data")
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "reset"})
}
