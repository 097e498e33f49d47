package stream

import (
	"encoding/json"
	"fmt"

	"github.com/omniwire/chat-sync/internal/models"
)

// parseEnvelope decodes one inbound frame. A frame that cannot be decoded,
// lacks required fields, or carries an unknown type is an error; the caller
// drops it without touching any state.
func parseEnvelope(data []byte) (Event, error) {
	var env struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(data, &env); err != nil {
		return Event{}, fmt.Errorf("decode envelope: %w", err)
	}

	switch env.Type {
	case models.EventConnectionEstablished:
		var ev models.ConnectionEstablishedEvent
		if err := json.Unmarshal(data, &ev); err != nil {
			return Event{}, fmt.Errorf("decode %s: %w", env.Type, err)
		}
		return Event{Type: env.Type, Established: &ev}, nil

	case models.EventNewMessage:
		var ev models.NewMessageEvent
		if err := json.Unmarshal(data, &ev); err != nil {
			return Event{}, fmt.Errorf("decode %s: %w", env.Type, err)
		}
		if ev.RoomID == "" {
			return Event{}, fmt.Errorf("%s missing room_id", env.Type)
		}
		if ev.MessageType != models.DirectionIncoming && ev.MessageType != models.DirectionOutgoing {
			return Event{}, fmt.Errorf("%s has invalid message_type %q", env.Type, ev.MessageType)
		}
		return Event{Type: env.Type, NewMessage: &ev}, nil

	case "":
		return Event{}, fmt.Errorf("envelope missing type")

	default:
		return Event{}, fmt.Errorf("unknown event type %q", env.Type)
	}
}
