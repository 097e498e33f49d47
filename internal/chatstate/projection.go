package chatstate

import (
	"strings"

	"github.com/omniwire/chat-sync/internal/models"
)

// ProjectRooms filters a room list by search text and channel. A room matches
// when the search text is empty or case-insensitively contained in its
// counterparty name or last message text, AND the channel filter is "all" or
// equals the room's channel. Pure: the input is never mutated and identical
// inputs yield identical output.
func ProjectRooms(rooms []models.Room, search string, channel models.Channel) []models.Room {
	needle := strings.ToLower(strings.TrimSpace(search))

	out := make([]models.Room, 0, len(rooms))
	for _, room := range rooms {
		if channel != models.ChannelAll && room.Channel != channel {
			continue
		}
		if needle != "" &&
			!strings.Contains(strings.ToLower(room.ClientID), needle) &&
			!strings.Contains(strings.ToLower(room.LastMessageText), needle) {
			continue
		}
		out = append(out, room)
	}
	return out
}
