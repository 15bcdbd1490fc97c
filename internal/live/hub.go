// Package live fans collection events out to WebSocket subscribers. The hub
// is transport-agnostic; the HTTP layer owns the sockets.
package live

import (
	"sync"

	"github.com/rs/zerolog"

	"github.com/DDMYmia/NEWS-READER-ELITE/internal/globaltime"
)

const (
	EventTypeLog        = "log"
	EventTypeDataUpdate = "data_update"

	eventTimestampLayout = "2006-01-02 15:04:05"

	// Per-subscriber buffer. A subscriber that falls this far behind is
	// dropped rather than allowed to stall collection.
	subscriberBuffer = 64
)

// Event is one message pushed to subscribers.
type Event struct {
	Type      string `json:"type"`
	Timestamp string `json:"timestamp"`
	Message   string `json:"message,omitempty"`
	Payload   any    `json:"payload,omitempty"`
}

// Hub distributes events to any number of subscribers. Publishing never
// blocks: a full subscriber channel costs that subscriber its subscription.
type Hub struct {
	mu          sync.Mutex
	subscribers map[chan Event]struct{}
	logger      zerolog.Logger
}

func NewHub(logger zerolog.Logger) *Hub {
	return &Hub{
		subscribers: make(map[chan Event]struct{}),
		logger:      logger,
	}
}

// Subscribe registers a new subscriber. The returned cancel func is
// idempotent and closes the channel.
func (h *Hub) Subscribe() (<-chan Event, func()) {
	ch := make(chan Event, subscriberBuffer)

	h.mu.Lock()
	h.subscribers[ch] = struct{}{}
	h.mu.Unlock()

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			h.mu.Lock()
			if _, exists := h.subscribers[ch]; exists {
				delete(h.subscribers, ch)
				close(ch)
			}
			h.mu.Unlock()
		})
	}
	return ch, cancel
}

// Publish delivers the event to every subscriber without blocking.
func (h *Hub) Publish(event Event) {
	if h == nil {
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	for ch := range h.subscribers {
		select {
		case ch <- event:
		default:
			delete(h.subscribers, ch)
			close(ch)
			h.logger.Warn().Msg("dropping slow event subscriber")
		}
	}
}

// Log publishes a human-readable progress line.
func (h *Hub) Log(message string) {
	h.Publish(Event{
		Type:      EventTypeLog,
		Timestamp: globaltime.UTC().Format(eventTimestampLayout),
		Message:   message,
	})
}

// DataUpdate publishes a structured payload, typically collection results.
func (h *Hub) DataUpdate(payload any) {
	h.Publish(Event{
		Type:      EventTypeDataUpdate,
		Timestamp: globaltime.UTC().Format(eventTimestampLayout),
		Payload:   payload,
	})
}

// SubscriberCount reports the current number of live subscribers.
func (h *Hub) SubscriberCount() int {
	if h == nil {
		return 0
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subscribers)
}
