package stream

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// envelope is the wire form of one frame on the real-time channel. Inbound
// frames carry at least the event name and payload; outbound frames are
// stamped with a fresh ID and a millisecond timestamp.
type envelope struct {
	Event     string          `json:"event"`
	ID        string          `json:"id,omitempty"`
	Timestamp int64           `json:"timestamp,omitempty"`
	Payload   json.RawMessage `json:"payload,omitempty"`
}

// newEnvelope stamps an outbound frame.
func newEnvelope(event string, payload json.RawMessage) envelope {
	return envelope{
		Event:     event,
		ID:        uuid.New().String(),
		Timestamp: time.Now().UnixMilli(),
		Payload:   payload,
	}
}

// parseEnvelope decodes one inbound frame. Frames without an event name
// have nowhere to go and are rejected.
func parseEnvelope(data []byte) (*envelope, error) {
	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("malformed frame: %w", err)
	}
	if env.Event == "" {
		return nil, fmt.Errorf("frame missing event name")
	}
	return &env, nil
}
