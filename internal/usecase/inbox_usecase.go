package usecase

import (
	"context"

	log "github.com/carousell/ct-go/pkg/logger/log_context"

	"github.com/omniwire/chat-sync/internal/chatstate"
	"github.com/omniwire/chat-sync/internal/models"
	"github.com/omniwire/chat-sync/internal/repo/historyapi"
)

type InboxUsecase interface {
	Inbox(params InboxParams) []models.Room
	RoomSummary(roomID string) (models.Room, error)
	RoomTimeline(ctx context.Context, roomID string) (*RoomTimeline, error)
	MarkRead(roomID string) error
}

type InboxParams struct {
	Search  string
	Channel models.Channel
	Sort    chatstate.SortMode
}

// RoomTimeline is the merged view of one room plus its history-fetch state so
// the consumer can tell "loading" and "failed" apart from "empty".
type RoomTimeline struct {
	RoomID   string                 `json:"room_id"`
	History  chatstate.HistoryState `json:"history"`
	Messages []models.Message       `json:"messages"`
}

type inboxUsecase struct {
	session *chatstate.Session
	history historyapi.Client
}

func NewInboxUsecase(session *chatstate.Session, history historyapi.Client) InboxUsecase {
	return &inboxUsecase{
		session: session,
		history: history,
	}
}

func (u *inboxUsecase) Inbox(params InboxParams) []models.Room {
	channel := params.Channel
	if channel == "" {
		channel = models.ChannelAll
	}
	sort := params.Sort
	if sort == "" {
		sort = chatstate.SortNewest
	}
	return u.session.Inbox(params.Search, channel, sort)
}

func (u *inboxUsecase) RoomSummary(roomID string) (models.Room, error) {
	return u.session.RoomSummary(roomID)
}

// RoomTimeline returns the merged timeline for a room, lazily fetching the
// historical page the first time the room is opened. A previously failed
// fetch is retried here; while the fetch is in flight from another caller the
// timeline falls back to live messages only.
func (u *inboxUsecase) RoomTimeline(ctx context.Context, roomID string) (*RoomTimeline, error) {
	room, err := u.session.RoomSummary(roomID)
	if err != nil {
		return nil, err
	}

	if u.session.BeginHistoryFetch(roomID) {
		messages, err := u.history.FetchMessages(ctx, roomID, room.Channel)
		if err != nil {
			u.session.SetHistoryFailed(roomID)
			log.Errorw(ctx, "history fetch failed", "room_id", roomID, "channel", room.Channel, "error", err)
		} else {
			u.session.SetHistory(roomID, messages)
		}
	}

	messages, state := u.session.Timeline(roomID)
	return &RoomTimeline{
		RoomID:   roomID,
		History:  state,
		Messages: messages,
	}, nil
}

func (u *inboxUsecase) MarkRead(roomID string) error {
	return u.session.MarkRead(roomID)
}
