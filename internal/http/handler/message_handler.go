package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/dealbridge/negotiation-api/internal/domain"
	"github.com/dealbridge/negotiation-api/internal/service"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// MessageHandler handles the message log and AI reply endpoints
type MessageHandler struct {
	messageService *service.MessageService
	replyService   *service.ReplyService
	logger         *zap.Logger
}

// NewMessageHandler creates a new message handler instance
func NewMessageHandler(
	messageService *service.MessageService,
	replyService *service.ReplyService,
	logger *zap.Logger,
) *MessageHandler {
	return &MessageHandler{
		messageService: messageService,
		replyService:   replyService,
		logger:         logger,
	}
}

// List handles GET /api/v1/negotiations/{link}/messages
func (h *MessageHandler) List(w http.ResponseWriter, r *http.Request) {
	link := chi.URLParam(r, "link")

	messages, err := h.messageService.List(r.Context(), link)
	if err != nil {
		if errors.Is(err, service.ErrNegotiationNotFound) {
			respondWithError(w, http.StatusNotFound, "Negotiation not found")
			return
		}
		h.logger.Error("failed to list messages", zap.Error(err))
		respondWithError(w, http.StatusInternalServerError, "Failed to list messages")
		return
	}
	respondJSON(w, http.StatusOK, messages)
}

// Post handles POST /api/v1/negotiations/{link}/messages
func (h *MessageHandler) Post(w http.ResponseWriter, r *http.Request) {
	link := chi.URLParam(r, "link")

	var req domain.PostMessageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := validate.Struct(&req); err != nil {
		respondValidationError(w, err)
		return
	}

	message, err := h.messageService.Post(r.Context(), link, &req)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrNegotiationNotFound):
			respondWithError(w, http.StatusNotFound, "Negotiation not found")
		case errors.Is(err, service.ErrNegotiationConcluded):
			respondWithError(w, http.StatusConflict, "Negotiation is concluded")
		case errors.Is(err, service.ErrInvalidRole):
			respondWithError(w, http.StatusBadRequest, "Invalid message role")
		default:
			h.logger.Error("failed to post message", zap.Error(err))
			respondWithError(w, http.StatusInternalServerError, "Failed to post message")
		}
		return
	}
	respondJSON(w, http.StatusCreated, message)
}

// Reply handles POST /api/v1/negotiations/{link}/reply
func (h *MessageHandler) Reply(w http.ResponseWriter, r *http.Request) {
	link := chi.URLParam(r, "link")

	var req domain.RequestReplyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := validate.Struct(&req); err != nil {
		respondValidationError(w, err)
		return
	}

	message, err := h.replyService.Generate(r.Context(), link, &req)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrNegotiationNotFound):
			respondWithError(w, http.StatusNotFound, "Negotiation not found")
		case errors.Is(err, service.ErrNegotiationConcluded):
			respondWithError(w, http.StatusConflict, "Negotiation is concluded")
		default:
			h.logger.Error("failed to generate reply", zap.Error(err))
			respondWithError(w, http.StatusInternalServerError, "Failed to generate reply")
		}
		return
	}
	respondJSON(w, http.StatusCreated, message)
}
