package ws

import (
	"encoding/json"
	"time"

	"go.uber.org/zap"
)

type Event struct {
	Type      string `json:"type"`
	Payload   any    `json:"payload,omitempty"`
	Timestamp string `json:"timestamp"`
}

// Publish encodes an event and broadcasts it to every client.
func (h *Hub) Publish(eventType string, payload any) {
	if h == nil {
		return
	}
	b, err := json.Marshal(Event{
		Type:      eventType,
		Payload:   payload,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	})
	if err != nil {
		h.logger.Warn("ws event encode failed", zap.String("type", eventType), zap.Error(err))
		return
	}
	h.Broadcast(b)
}
