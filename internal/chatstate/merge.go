package chatstate

import (
	"fmt"

	"github.com/omniwire/chat-sync/internal/models"
)

// MergeTimeline combines the historical page and the live log of one room
// into a single deduplicated sequence: the historical block first, then the
// live-only block, each in its own internal order.
//
// This is deliberately an append-block merge, not a timestamp interleave:
// live messages are always newer than any historical page already loaded, so
// a global re-sort would only reshuffle ties. Live entries whose ID appears
// in history are dropped (the message arrived live and was later confirmed by
// the fetch), and the live block itself is deduplicated by ID and, for
// locally synthesized IDs that differ between duplicate deliveries, by the
// (direction, text, timestamp) tuple.
func MergeTimeline(history, live []models.Message) []models.Message {
	merged := make([]models.Message, 0, len(history)+len(live))
	merged = append(merged, history...)

	ids := make(map[string]struct{}, len(history))
	for _, msg := range history {
		ids[msg.ID] = struct{}{}
	}

	tuples := make(map[string]struct{}, len(live))
	for _, msg := range live {
		if _, ok := ids[msg.ID]; ok {
			continue
		}
		tuple := liveTupleKey(msg)
		if _, ok := tuples[tuple]; ok {
			continue
		}
		ids[msg.ID] = struct{}{}
		tuples[tuple] = struct{}{}
		merged = append(merged, msg)
	}

	return merged
}

func liveTupleKey(msg models.Message) string {
	return fmt.Sprintf("%s\x00%s\x00%d", msg.Direction, msg.Text, msg.Timestamp.UnixMilli())
}
