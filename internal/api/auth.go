package api

import (
	"net/http"

	"github.com/raphaelgruber/sayar/internal/models"
	"github.com/raphaelgruber/sayar/internal/service"
)

type signInResponse struct {
	User       models.User        `json:"user"`
	DriveSetup service.DriveSetup `json:"driveSetup"`
}

func (s *Server) handleSignInGoogle(w http.ResponseWriter, r *http.Request) {
	var req struct {
		IDToken string `json:"idToken"`
	}
	if err := decodeJSON(r, &req); err != nil || req.IDToken == "" {
		badRequest(w, "idToken is required")
		return
	}
	user, setup, err := s.deps.Account.SignInWithGoogle(r.Context(), req.IDToken)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, signInResponse{User: user, DriveSetup: setup})
}

func (s *Server) handleSignInDemo(w http.ResponseWriter, r *http.Request) {
	user, setup, err := s.deps.Account.SignInAsDemo(r.Context())
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, signInResponse{User: user, DriveSetup: setup})
}

func (s *Server) handleSignOut(w http.ResponseWriter, r *http.Request) {
	if err := s.deps.Account.SignOut(r.Context()); err != nil {
		s.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleMe(w http.ResponseWriter, r *http.Request) {
	user, err := s.deps.Account.CurrentUser(r.Context())
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, user)
}

func (s *Server) handleDriveSetup(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.deps.Account.DriveSetup())
}

func (s *Server) handleRetryDriveSetup(w http.ResponseWriter, r *http.Request) {
	setup, err := s.deps.Account.RetryDriveSetup(r.Context())
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, setup)
}

// currentEmail returns the signed-in user's email or writes an error.
func (s *Server) currentEmail(w http.ResponseWriter, r *http.Request) (string, bool) {
	user, err := s.deps.Account.CurrentUser(r.Context())
	if err != nil {
		s.writeError(w, err)
		return "", false
	}
	return user.Email, true
}
