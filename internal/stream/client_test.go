package stream

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/omniwire/chat-sync/internal/config"
)

var testUpgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// newStreamServer serves one websocket connection, checks the token query
// param, writes the given frames, then keeps the connection open until the
// client goes away.
func newStreamServer(t *testing.T, frames []string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "test-token", r.URL.Query().Get("token"))
		conn, err := testUpgrader.Upgrade(w, r, nil)
		require.NoError(t, err)
		defer conn.Close()
		for _, frame := range frames {
			require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte(frame)))
		}
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}))
	t.Cleanup(srv.Close)
	return srv
}

func wsURL(srv *httptest.Server) string {
	return "ws" + strings.TrimPrefix(srv.URL, "http")
}

func dialTestClient(t *testing.T, srv *httptest.Server) *Client {
	t.Helper()
	client, err := NewClient(config.StreamConfig{URL: wsURL(srv), Token: "test-token"})
	require.NoError(t, err)
	require.NoError(t, client.Connect(context.Background()))
	t.Cleanup(func() { client.Close() })
	return client
}

func collectEvents(t *testing.T, client *Client, n int) []Event {
	t.Helper()
	var events []Event
	timeout := time.After(5 * time.Second)
	for len(events) < n {
		select {
		case ev, ok := <-client.Events():
			if !ok {
				t.Fatalf("stream closed after %d events, want %d", len(events), n)
			}
			events = append(events, ev)
		case <-timeout:
			t.Fatalf("timed out after %d events, want %d", len(events), n)
		}
	}
	return events
}

func TestClientDeliversEventsInOrder(t *testing.T) {
	srv := newStreamServer(t, []string{
		`{"type":"connection_established","profiles":[{"platform":"whatsapp","profile_id":"p1","profile_name":"Page","room":[{"room_id":42,"client_id":"Alice","last_msg":"hi","timestamp":1000,"type":"incoming","unread_count":2}]}]}`,
		`{"type":"new_message","room_id":"42","message":"there","timestamp":2000,"message_type":"incoming"}`,
		`{"type":"new_message","room_id":"42","message":"again","timestamp":3000,"message_type":"outgoing"}`,
	})
	client := dialTestClient(t, srv)

	events := collectEvents(t, client, 3)

	require.NotNil(t, events[0].Established)
	rooms := events[0].Established.Profiles[0].Rooms
	require.Len(t, rooms, 1)
	assert.Equal(t, "42", rooms[0].RoomID.String(), "numeric room ids are stringified")

	require.NotNil(t, events[1].NewMessage)
	assert.Equal(t, "there", events[1].NewMessage.Message)
	require.NotNil(t, events[2].NewMessage)
	assert.Equal(t, "again", events[2].NewMessage.Message)

	for _, ev := range events {
		assert.Equal(t, client.Generation(), ev.Generation)
	}
}

func TestClientDropsMalformedFrames(t *testing.T) {
	srv := newStreamServer(t, []string{
		`not json at all`,
		`{"type":"presence_update"}`,
		`{"type":"new_message","message":"no room id","timestamp":1,"message_type":"incoming"}`,
		`{"type":"new_message","room_id":"1","message":"ok","timestamp":2,"message_type":"incoming"}`,
	})
	client := dialTestClient(t, srv)

	// Only the final well-formed event survives; the loop never dies.
	events := collectEvents(t, client, 1)
	require.NotNil(t, events[0].NewMessage)
	assert.Equal(t, "ok", events[0].NewMessage.Message)
}

func TestClientCloseIsIdempotent(t *testing.T) {
	srv := newStreamServer(t, nil)
	client := dialTestClient(t, srv)

	require.NoError(t, client.Close())
	require.NoError(t, client.Close())

	// The events channel drains and closes; nothing further is delivered.
	select {
	case _, ok := <-client.Events():
		assert.False(t, ok)
	case <-time.After(5 * time.Second):
		t.Fatal("events channel not closed after Close")
	}
}

func TestClientGenerationsAreUnique(t *testing.T) {
	srv := newStreamServer(t, nil)

	a, err := NewClient(config.StreamConfig{URL: wsURL(srv), Token: "test-token"})
	require.NoError(t, err)
	b, err := NewClient(config.StreamConfig{URL: wsURL(srv), Token: "test-token"})
	require.NoError(t, err)

	assert.NotEqual(t, a.Generation(), b.Generation())
	assert.Greater(t, b.Generation(), a.Generation())
}

func TestClientRejectsBadURL(t *testing.T) {
	_, err := NewClient(config.StreamConfig{URL: "://bad", Token: "x"})
	assert.Error(t, err)
}
