package realtime

import (
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Event names published over the relay
const (
	EventNewMessage    = "new-message"
	EventStatusChanged = "negotiation-status-changed"
	EventUserTyping    = "user-typing"
)

// Event is one relay notification. Data must be JSON-serializable.
type Event struct {
	Name string
	Data interface{}
}

// Room returns the relay room name for a negotiation
func Room(negotiationID uuid.UUID) string {
	return "negotiation-" + negotiationID.String()
}

// Subscription is one listener on a room. Events arrive on C; the channel is
// closed when the subscription is cancelled or the hub shuts down.
type Subscription struct {
	C    chan Event
	room string
}

// Hub is an in-process fan-out relay. Delivery is best effort: publishing
// never blocks, and events sent to a subscriber whose buffer is full are
// dropped. Not a durable queue.
type Hub struct {
	mu     sync.RWMutex
	rooms  map[string]map[*Subscription]struct{}
	buffer int
	closed bool
	logger *zap.Logger
}

// NewHub creates a new relay hub
func NewHub(logger *zap.Logger) *Hub {
	return &Hub{
		rooms:  make(map[string]map[*Subscription]struct{}),
		buffer: 16,
		logger: logger,
	}
}

// Subscribe registers a listener on a room
func (h *Hub) Subscribe(room string) *Subscription {
	sub := &Subscription{
		C:    make(chan Event, h.buffer),
		room: room,
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		close(sub.C)
		return sub
	}
	if h.rooms[room] == nil {
		h.rooms[room] = make(map[*Subscription]struct{})
	}
	h.rooms[room][sub] = struct{}{}
	return sub
}

// Unsubscribe removes a listener and closes its channel. Safe to call more
// than once.
func (h *Hub) Unsubscribe(sub *Subscription) {
	h.mu.Lock()
	defer h.mu.Unlock()

	subs, ok := h.rooms[sub.room]
	if !ok {
		return
	}
	if _, ok := subs[sub]; !ok {
		return
	}
	delete(subs, sub)
	if len(subs) == 0 {
		delete(h.rooms, sub.room)
	}
	close(sub.C)
}

// Publish delivers an event to every subscriber of the room. Slow consumers
// are skipped rather than blocked on.
func (h *Hub) Publish(room string, event Event) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	if h.closed {
		return
	}
	for sub := range h.rooms[room] {
		select {
		case sub.C <- event:
		default:
			h.logger.Debug("relay event dropped, subscriber buffer full",
				zap.String("room", room),
				zap.String("event", event.Name),
			)
		}
	}
}

// SubscriberCount returns the number of listeners currently in a room
func (h *Hub) SubscriberCount(room string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rooms[room])
}

// Close shuts the hub down and closes every subscriber channel
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		return
	}
	h.closed = true
	for room, subs := range h.rooms {
		for sub := range subs {
			close(sub.C)
		}
		delete(h.rooms, room)
	}
}
