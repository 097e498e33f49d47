package usecase

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/omniwire/chat-sync/internal/chatstate"
	"github.com/omniwire/chat-sync/internal/models"
)

type fakeHistory struct {
	calls    int
	messages []models.Message
	err      error
}

func (f *fakeHistory) FetchMessages(_ context.Context, roomID string, _ models.Channel) ([]models.Message, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.messages, nil
}

func seedSession(t *testing.T) *chatstate.Session {
	t.Helper()
	session := chatstate.NewSession()
	lastMsg := "hi"
	unread := 2
	err := session.ApplySnapshot(context.Background(), 1, models.ConnectionEstablishedEvent{
		Profiles: []models.ProfileSnapshot{{
			Platform:    models.ChannelWhatsapp,
			ProfileID:   "p1",
			ProfileName: "Page",
			Rooms: []models.RoomSnapshot{{
				RoomID:      "42",
				ClientID:    "Alice",
				LastMsg:     &lastMsg,
				Timestamp:   1000,
				Type:        models.DirectionIncoming,
				UnreadCount: &unread,
			}},
		}},
	})
	require.NoError(t, err)
	return session
}

func history(id, text string, ts int64) models.Message {
	return models.Message{ID: id, Text: text, Timestamp: models.TimeFromMillis(ts), Direction: models.DirectionIncoming}
}

func TestRoomTimelineFetchesHistoryOnce(t *testing.T) {
	session := seedSession(t)
	fake := &fakeHistory{messages: []models.Message{history("h1", "old", 500)}}
	uc := NewInboxUsecase(session, fake)

	tl, err := uc.RoomTimeline(context.Background(), "42")
	require.NoError(t, err)
	assert.Equal(t, chatstate.HistoryReady, tl.History)
	require.Len(t, tl.Messages, 1)
	assert.Equal(t, "h1", tl.Messages[0].ID)

	_, err = uc.RoomTimeline(context.Background(), "42")
	require.NoError(t, err)
	assert.Equal(t, 1, fake.calls, "history is fetched once per room")
}

func TestRoomTimelineFailureIsRetriable(t *testing.T) {
	session := seedSession(t)
	fake := &fakeHistory{err: fmt.Errorf("boom")}
	uc := NewInboxUsecase(session, fake)

	tl, err := uc.RoomTimeline(context.Background(), "42")
	require.NoError(t, err, "fetch failure is a room state, not a request error")
	assert.Equal(t, chatstate.HistoryFailed, tl.History)

	// Next open retries and succeeds.
	fake.err = nil
	fake.messages = []models.Message{history("h1", "old", 500)}
	tl, err = uc.RoomTimeline(context.Background(), "42")
	require.NoError(t, err)
	assert.Equal(t, chatstate.HistoryReady, tl.History)
	assert.Equal(t, 2, fake.calls)
}

func TestRoomTimelineUnknownRoom(t *testing.T) {
	uc := NewInboxUsecase(seedSession(t), &fakeHistory{})

	_, err := uc.RoomTimeline(context.Background(), "nope")
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestInboxDefaults(t *testing.T) {
	session := seedSession(t)
	uc := NewInboxUsecase(session, &fakeHistory{})

	rooms := uc.Inbox(InboxParams{})
	require.Len(t, rooms, 1)
	assert.Equal(t, "42", rooms[0].RoomID)

	rooms = uc.Inbox(InboxParams{Channel: models.ChannelFacebook})
	assert.Empty(t, rooms)
}

func TestMarkRead(t *testing.T) {
	session := seedSession(t)
	uc := NewInboxUsecase(session, &fakeHistory{})

	require.NoError(t, uc.MarkRead("42"))
	room, err := uc.RoomSummary("42")
	require.NoError(t, err)
	assert.False(t, room.Unread())

	assert.ErrorIs(t, uc.MarkRead("nope"), models.ErrNotFound)
}
