package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/dealbridge/negotiation-api/internal/logger"
	"github.com/dealbridge/negotiation-api/internal/realtime"
	"github.com/dealbridge/negotiation-api/internal/service"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// keepaliveInterval is how often an SSE comment is written to hold idle
// connections open through proxies
const keepaliveInterval = 25 * time.Second

// EventsHandler bridges the in-process relay hub to Server-Sent Events
type EventsHandler struct {
	negotiationService *service.NegotiationService
	hub                *realtime.Hub
	logger             *zap.Logger
}

// NewEventsHandler creates a new events handler instance
func NewEventsHandler(
	negotiationService *service.NegotiationService,
	hub *realtime.Hub,
	logger *zap.Logger,
) *EventsHandler {
	return &EventsHandler{
		negotiationService: negotiationService,
		hub:                hub,
		logger:             logger,
	}
}

// Subscribe handles GET /api/v1/negotiations/{link}/events. The subscriber
// joins the negotiation's relay room for the lifetime of the connection.
func (h *EventsHandler) Subscribe(w http.ResponseWriter, r *http.Request) {
	link := chi.URLParam(r, "link")

	negotiation, err := h.negotiationService.GetByLink(r.Context(), link)
	if err != nil {
		if errors.Is(err, service.ErrNegotiationNotFound) {
			respondWithError(w, http.StatusNotFound, "Negotiation not found")
			return
		}
		h.logger.Error("failed to resolve negotiation for events", zap.Error(err))
		respondWithError(w, http.StatusInternalServerError, "Failed to subscribe")
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		respondWithError(w, http.StatusInternalServerError, "Streaming not supported")
		return
	}

	log := logger.WithNegotiation(h.logger, negotiation.ID.String(), link)

	// Lift the server-wide write timeout for this connection; it is an
	// absolute deadline that would sever the stream regardless of
	// keepalive activity.
	if err := http.NewResponseController(w).SetWriteDeadline(time.Time{}); err != nil {
		log.Debug("could not clear write deadline", zap.Error(err))
	}

	room := realtime.Room(negotiation.ID)
	sub := h.hub.Subscribe(room)
	defer h.hub.Unsubscribe(sub)

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	log.Debug("event subscriber joined",
		zap.String("room", room),
		zap.Int("subscribers", h.hub.SubscriberCount(room)),
	)

	keepalive := time.NewTicker(keepaliveInterval)
	defer keepalive.Stop()

	for {
		select {
		case <-r.Context().Done():
			return
		case <-keepalive.C:
			fmt.Fprint(w, ": keepalive\n\n")
			flusher.Flush()
		case event, open := <-sub.C:
			if !open {
				return
			}
			data, err := json.Marshal(event.Data)
			if err != nil {
				log.Error("failed to encode relay event",
					zap.String("event", event.Name), zap.Error(err))
				continue
			}
			fmt.Fprintf(w, "event: %s\ndata: %s\n\n", event.Name, data)
			flusher.Flush()
		}
	}
}
