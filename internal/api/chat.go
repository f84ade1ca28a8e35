package api

import (
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/raphaelgruber/sayar/internal/models"
)

const wsWriteTimeout = 10 * time.Second

type submitResponse struct {
	Message *models.ChatMessage      `json:"message"`
	State   models.ConversationState `json:"state"`
}

func (s *Server) handleChatState(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.deps.Chat.State())
}

func (s *Server) handleChatSubmit(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Text string `json:"text"`
	}
	if err := decodeJSON(r, &req); err != nil {
		badRequest(w, "invalid request body")
		return
	}

	msg, err := s.deps.Chat.Submit(r.Context(), req.Text)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, submitResponse{Message: msg, State: s.deps.Chat.State()})
}

func (s *Server) handleChatClear(w http.ResponseWriter, r *http.Request) {
	s.deps.Chat.Clear()
	writeJSON(w, http.StatusOK, s.deps.Chat.State())
}

func (s *Server) handleChatClearError(w http.ResponseWriter, r *http.Request) {
	s.deps.Chat.ClearError()
	writeJSON(w, http.StatusOK, s.deps.Chat.State())
}

func (s *Server) handleChatExport(w http.ResponseWriter, r *http.Request) {
	result, err := s.deps.Export.ExportChat(r.Context())
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleChatImport(w http.ResponseWriter, r *http.Request) {
	n, err := s.deps.Export.ImportChat(r.Context())
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"messages": n})
}

// handleChatStream pushes the conversation state to the client on every change.
// Incoming frames are read only to notice when the client goes away.
func (s *Server) handleChatStream(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn("websocket upgrade failed", "error", err)
		return
	}
	defer conn.Close()

	states, cancel := s.deps.Chat.Subscribe()
	defer cancel()

	gone := make(chan struct{})
	go func() {
		defer close(gone)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	send := func(state models.ConversationState) bool {
		_ = conn.SetWriteDeadline(time.Now().Add(wsWriteTimeout))
		if err := conn.WriteJSON(state); err != nil {
			s.logger.Debug("websocket write failed", "error", err)
			return false
		}
		return true
	}

	if !send(s.deps.Chat.State()) {
		return
	}
	for {
		select {
		case <-r.Context().Done():
			_ = conn.WriteControl(websocket.CloseMessage, closeMessage, time.Now().Add(time.Second))
			return
		case <-gone:
			return
		case state, ok := <-states:
			if !ok || !send(state) {
				return
			}
		}
	}
}

// closeMessage is sent before the server drops a stream.
var closeMessage = websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")
