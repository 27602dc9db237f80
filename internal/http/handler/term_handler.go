package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/dealbridge/negotiation-api/internal/domain"
	"github.com/dealbridge/negotiation-api/internal/service"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// TermHandler handles term ledger endpoints
type TermHandler struct {
	termService *service.TermService
	logger      *zap.Logger
}

// NewTermHandler creates a new term handler instance
func NewTermHandler(termService *service.TermService, logger *zap.Logger) *TermHandler {
	return &TermHandler{
		termService: termService,
		logger:      logger,
	}
}

// UpdateQuoted handles PUT /api/v1/terms/{id}/quoted
func (h *TermHandler) UpdateQuoted(w http.ResponseWriter, r *http.Request) {
	h.update(w, r, h.termService.UpdateQuoted)
}

// UpdateCurrent handles PUT /api/v1/terms/{id}/current
func (h *TermHandler) UpdateCurrent(w http.ResponseWriter, r *http.Request) {
	h.update(w, r, h.termService.UpdateCurrent)
}

// UpdateAgreed handles PUT /api/v1/terms/{id}/agreed
func (h *TermHandler) UpdateAgreed(w http.ResponseWriter, r *http.Request) {
	h.update(w, r, h.termService.UpdateAgreed)
}

func (h *TermHandler) update(
	w http.ResponseWriter,
	r *http.Request,
	apply func(context.Context, uuid.UUID, string) (*domain.TermDTO, error),
) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid term ID")
		return
	}

	var req domain.UpdateTermValueRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := validate.Struct(&req); err != nil {
		respondValidationError(w, err)
		return
	}

	term, err := apply(r.Context(), id, req.Value)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrTermNotFound):
			respondWithError(w, http.StatusNotFound, "Term not found")
		case errors.Is(err, service.ErrNegotiationConcluded):
			respondWithError(w, http.StatusConflict, "Negotiation is concluded")
		case errors.Is(err, service.ErrAgreedValueSet):
			respondWithError(w, http.StatusConflict, "Agreed value already set")
		default:
			h.logger.Error("failed to update term", zap.Error(err))
			respondWithError(w, http.StatusInternalServerError, "Failed to update term")
		}
		return
	}
	respondJSON(w, http.StatusOK, term)
}
