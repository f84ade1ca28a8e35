package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

func (s *Server) handleGetSettings(w http.ResponseWriter, r *http.Request) {
	current, err := s.deps.Settings.Current(r.Context())
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, current.Redacted())
}

func (s *Server) handleSetSetting(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Key   string `json:"key"`
		Value string `json:"value"`
	}
	if err := decodeJSON(r, &req); err != nil || req.Key == "" {
		badRequest(w, "key is required")
		return
	}
	if err := s.deps.Settings.Set(r.Context(), req.Key, req.Value); err != nil {
		badRequest(w, err.Error())
		return
	}
	s.handleGetSettings(w, r)
}

func (s *Server) handleListConversations(w http.ResponseWriter, r *http.Request) {
	if s.deps.Archive == nil {
		s.writeError(w, errArchiveDisabled)
		return
	}
	email, ok := s.currentEmail(w, r)
	if !ok {
		return
	}
	convs, err := s.deps.Archive.ListConversations(r.Context(), email)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, convs)
}

func (s *Server) handleConversationMessages(w http.ResponseWriter, r *http.Request) {
	if s.deps.Archive == nil {
		s.writeError(w, errArchiveDisabled)
		return
	}
	if _, ok := s.currentEmail(w, r); !ok {
		return
	}
	msgs, err := s.deps.Archive.ConversationMessages(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, msgs)
}
