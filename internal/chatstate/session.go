package chatstate

import (
	"context"
	"sync"

	log "github.com/carousell/ct-go/pkg/logger/log_context"
	"github.com/segmentio/ksuid"

	"github.com/omniwire/chat-sync/internal/models"
)

// Session owns all chat state for one authenticated session: the room
// registry and the per-room message logs. It is constructed once per login
// and injected into the stream consumer and any reader; there is no global
// store. All mutation goes through the Apply methods, driven by the event
// consumer loop and the history-fetch completion path.
//
// Each websocket connection carries a generation number. A snapshot installs
// its generation as the active one; any event tagged with a different
// generation is discarded, so a stale connection can never mutate state after
// a newer snapshot replaced the registry.
type Session struct {
	registry *RoomRegistry
	store    *MessageStore

	mu        sync.RWMutex
	activeGen int64
}

func NewSession() *Session {
	return &Session{
		registry: NewRoomRegistry(),
		store:    NewMessageStore(),
	}
}

// ApplySnapshot installs the connection_established snapshot: the generation
// becomes active and the registry is replaced wholesale. A snapshot from an
// older connection than the active one is rejected.
func (s *Session) ApplySnapshot(ctx context.Context, gen int64, ev models.ConnectionEstablishedEvent) error {
	s.mu.Lock()
	if gen < s.activeGen {
		s.mu.Unlock()
		return models.ErrStaleConnection
	}
	s.activeGen = gen
	s.mu.Unlock()

	rooms := models.RoomsFromSnapshot(ev)
	s.registry.ReplaceAll(rooms)
	log.Infow(ctx, "applied room snapshot", "generation", gen, "rooms", len(rooms))
	return nil
}

// ApplyNewMessage appends a live message to the room's log and refreshes the
// room's last-message summary. Events from any connection other than the one
// that produced the active snapshot are dropped.
func (s *Session) ApplyNewMessage(ctx context.Context, gen int64, ev models.NewMessageEvent) error {
	s.mu.RLock()
	active := s.activeGen
	s.mu.RUnlock()
	if gen != active {
		return models.ErrStaleConnection
	}

	roomID := ev.RoomID.String()
	msg := models.Message{
		ID:        ksuid.New().String(),
		Text:      ev.Message,
		Timestamp: models.TimeFromMillis(ev.Timestamp),
		Direction: ev.MessageType,
		Read:      ev.MessageType == models.DirectionOutgoing,
	}

	s.store.AppendLive(roomID, msg)
	if created := s.registry.UpsertLastMessage(roomID, ev.Message, msg.Timestamp, ev.MessageType); created {
		log.Warnw(ctx, "live message for unknown room, created placeholder",
			"room_id", roomID, "direction", ev.MessageType)
	}
	return nil
}

// ActiveGeneration returns the generation of the connection whose snapshot is
// currently installed.
func (s *Session) ActiveGeneration() int64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.activeGen
}

// Inbox derives the user-facing room list: summaries refreshed from the
// merged timelines, ordered by the unread-first policy, then filtered.
func (s *Session) Inbox(search string, channel models.Channel, mode SortMode) []models.Room {
	rooms := s.registry.All()
	for i := range rooms {
		rooms[i] = s.withDerivedSummary(rooms[i])
	}
	return ProjectRooms(OrderRooms(rooms, mode), search, channel)
}

// RoomSummary returns one room with its last-message fields derived from the
// merged timeline when the room's log has data. Keeping the summary a derived
// read prevents the registry and the message store from drifting apart.
func (s *Session) RoomSummary(roomID string) (models.Room, error) {
	room, err := s.registry.ByID(roomID)
	if err != nil {
		return models.Room{}, err
	}
	return s.withDerivedSummary(room), nil
}

func (s *Session) withDerivedSummary(room models.Room) models.Room {
	timeline, state := s.store.Timeline(room.RoomID)
	if state == HistoryUnfetched || len(timeline) == 0 {
		return room
	}
	last := timeline[len(timeline)-1]
	room.LastMessageText = last.Text
	room.LastMessageType = last.Direction
	if last.Timestamp.After(room.LastActivityAt) {
		room.LastActivityAt = last.Timestamp
	}
	return room
}

// Timeline returns the merged timeline and history state for a room.
func (s *Session) Timeline(roomID string) ([]models.Message, HistoryState) {
	return s.store.Timeline(roomID)
}

// BeginHistoryFetch claims the historical fetch for a room; see MessageStore.
func (s *Session) BeginHistoryFetch(roomID string) bool {
	return s.store.BeginHistoryFetch(roomID)
}

// SetHistory records a resolved historical page.
func (s *Session) SetHistory(roomID string, messages []models.Message) {
	s.store.SetHistory(roomID, messages)
}

// SetHistoryFailed marks a failed historical fetch; the room stays retriable.
func (s *Session) SetHistoryFailed(roomID string) {
	s.store.SetHistoryFailed(roomID)
}

// MarkRead clears a room's unread state.
func (s *Session) MarkRead(roomID string) error {
	return s.registry.MarkRead(roomID)
}
