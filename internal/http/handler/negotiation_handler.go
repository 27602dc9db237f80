package handler

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/dealbridge/negotiation-api/internal/domain"
	"github.com/dealbridge/negotiation-api/internal/service"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// NegotiationHandler handles negotiation lifecycle endpoints
type NegotiationHandler struct {
	negotiationService *service.NegotiationService
	logger             *zap.Logger
}

// NewNegotiationHandler creates a new negotiation handler instance
func NewNegotiationHandler(negotiationService *service.NegotiationService, logger *zap.Logger) *NegotiationHandler {
	return &NegotiationHandler{
		negotiationService: negotiationService,
		logger:             logger,
	}
}

// Create handles POST /api/v1/negotiations
func (h *NegotiationHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req domain.CreateNegotiationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := validate.Struct(&req); err != nil {
		respondValidationError(w, err)
		return
	}

	resp, err := h.negotiationService.Create(r.Context(), &req)
	if err != nil {
		h.logger.Error("failed to create negotiation", zap.Error(err))
		respondWithError(w, http.StatusInternalServerError, "Failed to create negotiation")
		return
	}

	w.Header().Set("Location", fmt.Sprintf("/api/v1/negotiations/%s", resp.UniqueLink))
	respondJSON(w, http.StatusCreated, resp)
}

// List handles GET /api/v1/negotiations
func (h *NegotiationHandler) List(w http.ResponseWriter, r *http.Request) {
	negotiations, err := h.negotiationService.List(r.Context())
	if err != nil {
		h.logger.Error("failed to list negotiations", zap.Error(err))
		respondWithError(w, http.StatusInternalServerError, "Failed to list negotiations")
		return
	}
	respondJSON(w, http.StatusOK, negotiations)
}

// GetByLink handles GET /api/v1/negotiations/{link}
func (h *NegotiationHandler) GetByLink(w http.ResponseWriter, r *http.Request) {
	link := chi.URLParam(r, "link")

	negotiation, err := h.negotiationService.GetByLink(r.Context(), link)
	if err != nil {
		if errors.Is(err, service.ErrNegotiationNotFound) {
			respondWithError(w, http.StatusNotFound, "Negotiation not found")
			return
		}
		h.logger.Error("failed to get negotiation", zap.Error(err))
		respondWithError(w, http.StatusInternalServerError, "Failed to get negotiation")
		return
	}
	respondJSON(w, http.StatusOK, negotiation)
}

// Conclude handles POST /api/v1/negotiations/{link}/conclude
func (h *NegotiationHandler) Conclude(w http.ResponseWriter, r *http.Request) {
	link := chi.URLParam(r, "link")

	resp, err := h.negotiationService.Conclude(r.Context(), link)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrNegotiationNotFound):
			respondWithError(w, http.StatusNotFound, "Negotiation not found")
		case errors.Is(err, service.ErrAlreadyConcluded):
			respondWithError(w, http.StatusConflict, "Negotiation already concluded")
		default:
			h.logger.Error("failed to conclude negotiation", zap.Error(err))
			respondWithError(w, http.StatusInternalServerError, "Failed to conclude negotiation")
		}
		return
	}
	respondJSON(w, http.StatusOK, resp)
}

// Export handles GET /api/v1/negotiations/{link}/export
func (h *NegotiationHandler) Export(w http.ResponseWriter, r *http.Request) {
	link := chi.URLParam(r, "link")

	// render to a buffer first so errors can still produce a JSON response
	var buf bytes.Buffer
	filename, err := h.negotiationService.ExportSummary(r.Context(), link, &buf)
	if err != nil {
		if errors.Is(err, service.ErrNegotiationNotFound) {
			respondWithError(w, http.StatusNotFound, "Negotiation not found")
			return
		}
		h.logger.Error("failed to export negotiation summary", zap.Error(err))
		respondWithError(w, http.StatusInternalServerError, "Failed to export summary")
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.WriteHeader(http.StatusOK)
	_, _ = buf.WriteTo(w)
}

// Typing handles POST /api/v1/negotiations/{link}/typing
func (h *NegotiationHandler) Typing(w http.ResponseWriter, r *http.Request) {
	link := chi.URLParam(r, "link")

	var req domain.TypingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := validate.Struct(&req); err != nil {
		respondValidationError(w, err)
		return
	}

	if err := h.negotiationService.Typing(r.Context(), link, &req); err != nil {
		if errors.Is(err, service.ErrNegotiationNotFound) {
			respondWithError(w, http.StatusNotFound, "Negotiation not found")
			return
		}
		h.logger.Error("failed to relay typing indicator", zap.Error(err))
		respondWithError(w, http.StatusInternalServerError, "Failed to relay typing indicator")
		return
	}
	respondJSON(w, http.StatusAccepted, map[string]string{"status": "relayed"})
}
