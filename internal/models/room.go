package models

import "time"

// Channel is the messaging platform a room belongs to.
type Channel string

const (
	ChannelFacebook  Channel = "facebook"
	ChannelWhatsapp  Channel = "whatsapp"
	ChannelInstagram Channel = "instagram"
	ChannelChat      Channel = "chat" // internal test channel

	// ChannelAll is the filter wildcard. It is never stored on a room.
	ChannelAll Channel = "all"
)

func (c Channel) Valid() bool {
	switch c {
	case ChannelFacebook, ChannelWhatsapp, ChannelInstagram, ChannelChat:
		return true
	}
	return false
}

// Room is one conversation thread between a connected channel profile and an
// external counterparty. The registry keys rooms by RoomID.
type Room struct {
	RoomID          string    `json:"room_id" validate:"required"`
	ClientID        string    `json:"client_id"`
	Channel         Channel   `json:"channel"`
	LastMessageText string    `json:"last_message_text"`
	LastMessageType Direction `json:"last_message_type"`
	LastActivityAt  time.Time `json:"last_activity_at"`
	UnreadCount     int       `json:"unread_count"`
	IsRead          bool      `json:"is_read"`
	ProfileID       string    `json:"profile_id"`
	ProfileName     string    `json:"profile_name"`
}

// Unread reports whether the room carries pending unread activity. Both
// signals are honored: different update paths may set one flag but not the
// other.
func (r Room) Unread() bool {
	return r.UnreadCount > 0 || !r.IsRead
}
