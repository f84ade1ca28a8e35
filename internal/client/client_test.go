package client

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/raphaelgruber/sayar/internal/metrics"
	"github.com/raphaelgruber/sayar/internal/models"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	upgrader := websocket.Upgrader{}
	mux := http.NewServeMux()

	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("ok\n"))
	})
	mux.HandleFunc("/api/stats", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(metrics.Snapshot{UptimeSeconds: 12, LLMGenerate: &metrics.OperationSnapshot{Count: 3}})
	})
	mux.HandleFunc("/api/chat", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodGet {
			_ = json.NewEncoder(w).Encode(models.ConversationState{Loading: true})
			return
		}
		var req struct {
			Text string `json:"text"`
		}
		_ = json.NewDecoder(r.Body).Decode(&req)
		if req.Text == "busy" {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusConflict)
			_, _ = w.Write([]byte(`{"error":"Please wait for the current response to finish.","kind":"busy"}`))
			return
		}
		msg := models.NewChatMessage("reply to "+req.Text, false, time.Now())
		_ = json.NewEncoder(w).Encode(map[string]any{"message": msg})
	})
	mux.HandleFunc("/api/chat/ws", func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()
		for i := range 3 {
			msgs := make([]models.ChatMessage, i)
			if err := conn.WriteJSON(models.ConversationState{Messages: msgs}); err != nil {
				return
			}
		}
		_ = conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
	})

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func TestClientRequests(t *testing.T) {
	srv := newTestServer(t)
	c := New(srv.URL + "/")
	ctx := context.Background()

	require.NoError(t, c.Health(ctx))

	stats, err := c.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 12.0, stats.UptimeSeconds)
	require.NotNil(t, stats.LLMGenerate)
	assert.Equal(t, int64(3), stats.LLMGenerate.Count)

	state, err := c.ChatState(ctx)
	require.NoError(t, err)
	assert.True(t, state.Loading)

	reply, err := c.Submit(ctx, "hi")
	require.NoError(t, err)
	assert.Equal(t, "reply to hi", reply.Content)
}

func TestClientDecodesErrors(t *testing.T) {
	srv := newTestServer(t)
	c := New(srv.URL)

	_, err := c.Submit(context.Background(), "busy")
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusConflict, apiErr.StatusCode)
	assert.Equal(t, "busy", apiErr.Kind)
	assert.Equal(t, "Please wait for the current response to finish.", apiErr.Message)

	_, err = c.do(context.Background(), http.MethodGet, "/missing", nil, nil)
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusNotFound, apiErr.StatusCode)
}

func TestWatchChat(t *testing.T) {
	srv := newTestServer(t)
	c := New(srv.URL)

	var counts []int
	err := c.WatchChat(context.Background(), func(s models.ConversationState) error {
		counts = append(counts, len(s.Messages))
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, []int{0, 1, 2}, counts)
}

func TestWatchChatStop(t *testing.T) {
	srv := newTestServer(t)
	c := New(srv.URL)

	calls := 0
	err := c.WatchChat(context.Background(), func(models.ConversationState) error {
		calls++
		return ErrStopWatching
	})
	require.NoError(t, err)
	assert.Equal(t, 1, calls)

	boom := errors.New("boom")
	err = c.WatchChat(context.Background(), func(models.ConversationState) error { return boom })
	assert.ErrorIs(t, err, boom)
}
