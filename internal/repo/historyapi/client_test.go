package historyapi

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/omniwire/chat-sync/internal/config"
	"github.com/omniwire/chat-sync/internal/models"
)

func newTestClient(srv *httptest.Server) Client {
	return NewClient(&config.Config{
		History: config.HistoryConfig{BaseURL: srv.URL, Token: "secret"},
	})
}

func TestFetchMessages(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/chat/messages", r.URL.Path)
		assert.Equal(t, "42", r.URL.Query().Get("room_id"))
		assert.Equal(t, "whatsapp", r.URL.Query().Get("channel"))
		assert.Equal(t, "Bearer secret", r.Header.Get("Authorization"))

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"messages":[
			{"id":101,"text":"hi","timestamp":1000,"direction":"incoming","read":true},
			{"id":"102","text":"hello","timestamp":2000,"direction":"outgoing","read":false}
		]}`))
	}))
	t.Cleanup(srv.Close)

	msgs, err := newTestClient(srv).FetchMessages(context.Background(), "42", models.ChannelWhatsapp)
	require.NoError(t, err)
	require.Len(t, msgs, 2)

	assert.Equal(t, "101", msgs[0].ID, "numeric ids are stringified")
	assert.Equal(t, "hi", msgs[0].Text)
	assert.Equal(t, int64(1000), msgs[0].Timestamp.UnixMilli())
	assert.Equal(t, models.DirectionIncoming, msgs[0].Direction)
	assert.Equal(t, "102", msgs[1].ID)
	assert.Equal(t, models.DirectionOutgoing, msgs[1].Direction)
}

func TestFetchMessagesNonSuccess(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusForbidden)
	}))
	t.Cleanup(srv.Close)

	_, err := newTestClient(srv).FetchMessages(context.Background(), "42", models.ChannelWhatsapp)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "403")
}

func TestFetchMessagesEmptyPage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"messages":[]}`))
	}))
	t.Cleanup(srv.Close)

	msgs, err := newTestClient(srv).FetchMessages(context.Background(), "42", models.ChannelChat)
	require.NoError(t, err)
	assert.Empty(t, msgs)
}
