package historyapi

import (
	"context"
	"fmt"

	"github.com/go-resty/resty/v2"

	"github.com/omniwire/chat-sync/internal/config"
	"github.com/omniwire/chat-sync/internal/models"
	"github.com/omniwire/chat-sync/pkg/util"
)

// Client fetches the authoritative historical messages of a room. The page is
// keyed by room and channel; ordering comes from the backend and is preserved.
type Client interface {
	FetchMessages(ctx context.Context, roomID string, channel models.Channel) ([]models.Message, error)
}

type historyMessage struct {
	ID        models.StringID  `json:"id"`
	Text      string           `json:"text"`
	Timestamp int64            `json:"timestamp"`
	Direction models.Direction `json:"direction"`
	Read      bool             `json:"read"`
}

type historyResponse struct {
	Messages []historyMessage `json:"messages"`
}

type client struct {
	http    *resty.Client
	baseURL string
	token   string
}

func NewClient(conf *config.Config) Client {
	return &client{
		http:    util.NewRestyClient(),
		baseURL: conf.History.BaseURL,
		token:   conf.History.Token,
	}
}

func (c *client) FetchMessages(ctx context.Context, roomID string, channel models.Channel) ([]models.Message, error) {
	var result historyResponse

	req := c.http.R().
		SetContext(ctx).
		SetQueryParam("room_id", roomID).
		SetQueryParam("channel", string(channel)).
		SetResult(&result)
	if c.token != "" {
		req.SetAuthToken(c.token)
	}

	resp, err := req.Get(c.baseURL + "/api/v1/chat/messages")
	if err != nil {
		return nil, fmt.Errorf("fetch message history: %w", err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("history api returned status %d", resp.StatusCode())
	}

	return util.ConvertList(result.Messages, func(m historyMessage) models.Message {
		return models.Message{
			ID:        m.ID.String(),
			Text:      m.Text,
			Timestamp: models.TimeFromMillis(m.Timestamp),
			Direction: m.Direction,
			Read:      m.Read,
		}
	}), nil
}
