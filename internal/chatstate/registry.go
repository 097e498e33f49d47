package chatstate

import (
	"sync"
	"time"

	"github.com/omniwire/chat-sync/internal/models"
)

// RoomRegistry is the single source of truth for the set of known rooms and
// their summary state. Rooms are kept in recency order: a snapshot lays them
// out in wire order and every live upsert promotes its room to the front.
// The displayed inbox order is derived on read (see ordering.go), not stored.
type RoomRegistry struct {
	mu    sync.RWMutex
	rooms []models.Room
}

func NewRoomRegistry() *RoomRegistry {
	return &RoomRegistry{}
}

// ReplaceAll atomically overwrites the registry with the snapshot rooms.
// Stale rooms from a previous connection are discarded. Duplicate room IDs in
// the input collapse to the first occurrence.
func (r *RoomRegistry) ReplaceAll(rooms []models.Room) {
	next := make([]models.Room, 0, len(rooms))
	seen := make(map[string]struct{}, len(rooms))
	for _, room := range rooms {
		if _, ok := seen[room.RoomID]; ok {
			continue
		}
		seen[room.RoomID] = struct{}{}
		next = append(next, room)
	}

	r.mu.Lock()
	r.rooms = next
	r.mu.Unlock()
}

// UpsertLastMessage updates a room's last-message summary and promotes it to
// the front of the recency order. The unread count is deliberately left
// untouched: a live message does not clear or bump unread state by itself.
//
// A message for an unknown room creates a degraded placeholder entry rather
// than silently losing the update; created reports whether that happened.
func (r *RoomRegistry) UpsertLastMessage(roomID, text string, ts time.Time, direction models.Direction) (created bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i := range r.rooms {
		if r.rooms[i].RoomID != roomID {
			continue
		}
		room := r.rooms[i]
		room.LastMessageText = text
		room.LastMessageType = direction
		room.LastActivityAt = ts
		copy(r.rooms[1:i+1], r.rooms[:i])
		r.rooms[0] = room
		return false
	}

	placeholder := models.Room{
		RoomID:          roomID,
		LastMessageText: text,
		LastMessageType: direction,
		LastActivityAt:  ts,
		// An incoming message on a never-seen room is pending activity even
		// though no snapshot ever gave it an unread count.
		IsRead: direction != models.DirectionIncoming,
	}
	r.rooms = append([]models.Room{placeholder}, r.rooms...)
	return true
}

// MarkRead clears the room's unread state, keeping both signals consistent.
func (r *RoomRegistry) MarkRead(roomID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i := range r.rooms {
		if r.rooms[i].RoomID == roomID {
			r.rooms[i].UnreadCount = 0
			r.rooms[i].IsRead = true
			return nil
		}
	}
	return models.ErrNotFound
}

// All returns a snapshot of the registry in recency order.
func (r *RoomRegistry) All() []models.Room {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]models.Room, len(r.rooms))
	copy(out, r.rooms)
	return out
}

// ByID returns one room or models.ErrNotFound.
func (r *RoomRegistry) ByID(roomID string) (models.Room, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, room := range r.rooms {
		if room.RoomID == roomID {
			return room, nil
		}
	}
	return models.Room{}, models.ErrNotFound
}
