package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"
)

// Stream event types delivered over the chat websocket.
const (
	EventConnectionEstablished = "connection_established"
	EventNewMessage            = "new_message"
)

// StringID unmarshals a JSON string or number into a string. The backend
// stringifies room IDs inconsistently between the snapshot and live events.
type StringID string

func (s *StringID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*s = ""
		return nil
	}
	if data[0] == '"' {
		var v string
		if err := json.Unmarshal(data, &v); err != nil {
			return err
		}
		*s = StringID(v)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("room id is neither string nor number: %w", err)
	}
	*s = StringID(n.String())
	return nil
}

func (s StringID) String() string { return string(s) }

// ConnectionEstablishedEvent is the full snapshot sent once per connection.
// It is the only source of room bootstrap data.
type ConnectionEstablishedEvent struct {
	Profiles []ProfileSnapshot `json:"profiles"`
}

// ProfileSnapshot is one of the tenant's connected channel profiles together
// with its rooms.
type ProfileSnapshot struct {
	Platform    Channel        `json:"platform"`
	ProfileID   StringID       `json:"profile_id"`
	ProfileName string         `json:"profile_name"`
	Rooms       []RoomSnapshot `json:"room"`
}

// RoomSnapshot is the wire shape of a room inside the snapshot.
type RoomSnapshot struct {
	RoomID      StringID  `json:"room_id"`
	ClientID    string    `json:"client_id"`
	LastMsg     *string   `json:"last_msg"`
	Timestamp   int64     `json:"timestamp"`
	Type        Direction `json:"type"`
	UnreadCount *int      `json:"unread_count"`
}

// NewMessageEvent is an incremental live message. It carries no backend
// message ID; the consumer synthesizes a local one.
type NewMessageEvent struct {
	RoomID      StringID  `json:"room_id"`
	Message     string    `json:"message"`
	Timestamp   int64     `json:"timestamp"`
	MessageType Direction `json:"message_type"`
}

// NoMessagesText is the placeholder body for rooms without any message yet.
const NoMessagesText = "No messages yet"

// RoomFromSnapshot maps one snapshot room into a Room.
func RoomFromSnapshot(profile ProfileSnapshot, snap RoomSnapshot) Room {
	lastMsg := NoMessagesText
	if snap.LastMsg != nil {
		lastMsg = *snap.LastMsg
	}
	unread := 0
	if snap.UnreadCount != nil {
		unread = *snap.UnreadCount
	}
	return Room{
		RoomID:          snap.RoomID.String(),
		ClientID:        snap.ClientID,
		Channel:         profile.Platform,
		LastMessageText: lastMsg,
		LastMessageType: snap.Type,
		LastActivityAt:  TimeFromMillis(snap.Timestamp),
		UnreadCount:     unread,
		IsRead:          unread == 0,
		ProfileID:       profile.ProfileID.String(),
		ProfileName:     profile.ProfileName,
	}
}

// RoomsFromSnapshot flattens a snapshot into the registry's room list,
// preserving wire order.
func RoomsFromSnapshot(ev ConnectionEstablishedEvent) []Room {
	var rooms []Room
	for _, profile := range ev.Profiles {
		for _, snap := range profile.Rooms {
			rooms = append(rooms, RoomFromSnapshot(profile, snap))
		}
	}
	return rooms
}

// TimeFromMillis converts a wire epoch-milliseconds timestamp. Zero stays the
// zero time so missing timestamps sort last rather than as 1970.
func TimeFromMillis(ms int64) time.Time {
	if ms == 0 {
		return time.Time{}
	}
	return time.UnixMilli(ms).UTC()
}

// MillisFromTime is the inverse of TimeFromMillis.
func MillisFromTime(t time.Time) int64 {
	if t.IsZero() {
		return 0
	}
	return t.UnixMilli()
}
