package stream

import (
	"context"
	"fmt"
	"net/url"
	"sync"
	"sync/atomic"

	log "github.com/carousell/ct-go/pkg/logger/log_context"
	"github.com/gorilla/websocket"

	"github.com/omniwire/chat-sync/internal/config"
	"github.com/omniwire/chat-sync/internal/models"
)

// connSeq numbers connections across the process so state mutation can tell
// a stale connection's events from the active one's.
var connSeq atomic.Int64

// Event is one parsed envelope from the chat stream, tagged with the
// generation of the connection that delivered it. Exactly one of the payload
// fields is set.
type Event struct {
	Generation  int64
	Type        string
	Established *models.ConnectionEstablishedEvent
	NewMessage  *models.NewMessageEvent
}

// Client owns one websocket connection to the chat stream. It delivers
// parsed events on Events in strict arrival order and never reorders.
// A Client is single-use: reconnecting means creating a new Client, which
// gets a fresh generation.
type Client struct {
	url        string
	dialer     *websocket.Dialer
	conn       *websocket.Conn
	generation int64
	events     chan Event
	done       chan struct{}
	closeOnce  sync.Once
}

// NewClient builds a client for the stream URL with the session's bearer
// token as a query parameter.
func NewClient(conf config.StreamConfig) (*Client, error) {
	u, err := url.Parse(conf.URL)
	if err != nil {
		return nil, fmt.Errorf("parse stream url: %w", err)
	}
	q := u.Query()
	q.Set("token", conf.Token)
	u.RawQuery = q.Encode()

	return &Client{
		url:        u.String(),
		dialer:     websocket.DefaultDialer,
		generation: connSeq.Add(1),
		events:     make(chan Event, 64),
		done:       make(chan struct{}),
	}, nil
}

// Generation identifies this connection.
func (c *Client) Generation() int64 {
	return c.generation
}

// Events is closed when the connection ends, deliberately or not.
func (c *Client) Events() <-chan Event {
	return c.events
}

// Connect opens the websocket and starts the read loop.
func (c *Client) Connect(ctx context.Context) error {
	conn, resp, err := c.dialer.DialContext(ctx, c.url, nil)
	if resp != nil && resp.Body != nil {
		resp.Body.Close()
	}
	if err != nil {
		return fmt.Errorf("dial chat stream: %w", err)
	}
	c.conn = conn
	go c.readLoop(ctx)
	return nil
}

func (c *Client) readLoop(ctx context.Context) {
	defer close(c.events)
	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			select {
			case <-c.done:
			default:
				// Unexpected close. State downstream keeps its last snapshot;
				// the owner decides whether to build a new client.
				log.Warnw(ctx, "chat stream closed", "generation", c.generation, "error", err)
			}
			return
		}

		ev, err := parseEnvelope(data)
		if err != nil {
			log.Warnw(ctx, "dropping malformed stream event", "generation", c.generation, "error", err)
			continue
		}
		ev.Generation = c.generation

		select {
		case c.events <- ev:
		case <-c.done:
			return
		}
	}
}

// Close tears down the connection. Idempotent; pending events are dropped.
func (c *Client) Close() error {
	c.closeOnce.Do(func() {
		close(c.done)
		if c.conn != nil {
			c.conn.Close()
		}
	})
	return nil
}
