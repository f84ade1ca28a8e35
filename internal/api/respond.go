package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/raphaelgruber/sayar/internal/auth"
	"github.com/raphaelgruber/sayar/internal/chat"
	"github.com/raphaelgruber/sayar/internal/db"
	"github.com/raphaelgruber/sayar/internal/drive"
	"github.com/raphaelgruber/sayar/internal/service"
	"github.com/raphaelgruber/sayar/internal/store"
)

var errArchiveDisabled = errors.New("transcript archive is not configured")

type errorResponse struct {
	Error string `json:"error"`
	Kind  string `json:"kind,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func badRequest(w http.ResponseWriter, msg string) {
	writeJSON(w, http.StatusBadRequest, errorResponse{Error: msg})
}

// statusFor maps an error to an HTTP status.
func statusFor(err error) int {
	var chatErr *chat.Error
	if errors.As(err, &chatErr) {
		switch chatErr.Kind {
		case chat.KindBusy:
			return http.StatusConflict
		case chat.KindConfiguration:
			return http.StatusUnprocessableEntity
		default:
			return http.StatusBadGateway
		}
	}

	switch {
	case errors.Is(err, auth.ErrNotSignedIn):
		return http.StatusUnauthorized
	case errors.Is(err, auth.ErrInvalidToken), errors.Is(err, store.ErrInvalid):
		return http.StatusBadRequest
	case errors.Is(err, store.ErrNotFound), errors.Is(err, db.ErrNotFound), errors.Is(err, service.ErrNoHistory):
		return http.StatusNotFound
	case errors.Is(err, drive.ErrNotInitialized), errors.Is(err, service.ErrNothingToExport), errors.Is(err, chat.ErrBusy),
		errors.Is(err, db.ErrDuplicate), errors.Is(err, db.ErrConflict):
		return http.StatusConflict
	case errors.Is(err, service.ErrDriveDisabled), errors.Is(err, errArchiveDisabled):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) writeError(w http.ResponseWriter, err error) {
	resp := errorResponse{Error: err.Error()}
	var chatErr *chat.Error
	if errors.As(err, &chatErr) {
		resp.Kind = chatErr.Kind.String()
	}
	writeJSON(w, statusFor(err), resp)
}

func decodeJSON(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}
