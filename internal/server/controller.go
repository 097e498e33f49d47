package server

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/omniwire/chat-sync/internal/chatstate"
	"github.com/omniwire/chat-sync/internal/models"
	"github.com/omniwire/chat-sync/internal/usecase"
)

type Controller interface {
	Health(c echo.Context) error
	GetInbox(c echo.Context) error
	GetRoom(c echo.Context) error
	GetRoomMessages(c echo.Context) error
	MarkRoomRead(c echo.Context) error
}

type controller struct {
	inboxUsecase usecase.InboxUsecase
}

func NewHandler(inboxUsecase usecase.InboxUsecase) Controller {
	return &controller{
		inboxUsecase: inboxUsecase,
	}
}

type InboxRequest struct {
	Search  string             `query:"search"`
	Channel models.Channel     `query:"channel" validate:"omitempty,channel"`
	Sort    chatstate.SortMode `query:"sort" validate:"omitempty,oneof=newest default"`
}

func (h *controller) GetInbox(c echo.Context) error {
	var req InboxRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid query parameters")
	}
	if err := c.Validate(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	rooms := h.inboxUsecase.Inbox(usecase.InboxParams{
		Search:  req.Search,
		Channel: req.Channel,
		Sort:    req.Sort,
	})

	return c.JSON(http.StatusOK, map[string]any{
		"rooms": rooms,
		"total": len(rooms),
	})
}

func (h *controller) GetRoom(c echo.Context) error {
	roomID := c.Param("room_id")
	room, err := h.inboxUsecase.RoomSummary(roomID)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "room not found")
		}
		return err
	}
	return c.JSON(http.StatusOK, room)
}

func (h *controller) GetRoomMessages(c echo.Context) error {
	roomID := c.Param("room_id")
	ctx := c.Request().Context()

	timeline, err := h.inboxUsecase.RoomTimeline(ctx, roomID)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "room not found")
		}
		return err
	}

	// A failed history fetch still carries the live messages, but the caller
	// should know the page is incomplete.
	status := http.StatusOK
	if timeline.History == chatstate.HistoryFailed {
		status = http.StatusBadGateway
	}
	return c.JSON(status, timeline)
}

func (h *controller) MarkRoomRead(c echo.Context) error {
	roomID := c.Param("room_id")
	if err := h.inboxUsecase.MarkRead(roomID); err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "room not found")
		}
		return err
	}
	return c.JSON(http.StatusOK, map[string]string{
		"status": "success",
	})
}

func (h *controller) Health(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{
		"status":  "healthy",
		"service": "chat-sync",
	})
}
