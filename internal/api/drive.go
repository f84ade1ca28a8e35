package api

import (
	"io"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/raphaelgruber/sayar/internal/models"
	"github.com/raphaelgruber/sayar/internal/service"
)

// maxUploadSize caps request bodies for uploads.
const maxUploadSize = 32 << 20

func (s *Server) driveEnabled(w http.ResponseWriter) bool {
	if s.deps.Drive == nil {
		s.writeError(w, service.ErrDriveDisabled)
		return false
	}
	return true
}

func (s *Server) handleFolders(w http.ResponseWriter, r *http.Request) {
	if !s.driveEnabled(w) {
		return
	}
	email, ok := s.currentEmail(w, r)
	if !ok {
		return
	}
	set, err := s.deps.Drive.Folders(r.Context(), email)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, set)
}

func (s *Server) handleListFiles(w http.ResponseWriter, r *http.Request) {
	if !s.driveEnabled(w) {
		return
	}
	category, err := models.ParseFolderCategory(chi.URLParam(r, "category"))
	if err != nil {
		badRequest(w, err.Error())
		return
	}
	email, ok := s.currentEmail(w, r)
	if !ok {
		return
	}
	files, err := s.deps.Drive.ListFiles(r.Context(), email, category)
	if err != nil {
		s.writeError(w, err)
		return
	}
	if files == nil {
		files = []models.DriveFile{}
	}
	writeJSON(w, http.StatusOK, files)
}

// handleUploadFile stores the raw request body under ?name= in the category folder.
func (s *Server) handleUploadFile(w http.ResponseWriter, r *http.Request) {
	if !s.driveEnabled(w) {
		return
	}
	category, err := models.ParseFolderCategory(chi.URLParam(r, "category"))
	if err != nil {
		badRequest(w, err.Error())
		return
	}
	name := strings.TrimSpace(r.URL.Query().Get("name"))
	if name == "" {
		badRequest(w, "name is required")
		return
	}
	email, ok := s.currentEmail(w, r)
	if !ok {
		return
	}

	content, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxUploadSize))
	if err != nil {
		writeJSON(w, http.StatusRequestEntityTooLarge, errorResponse{Error: err.Error()})
		return
	}
	mimeType := r.Header.Get("Content-Type")
	if mimeType == "" {
		mimeType = "application/octet-stream"
	}

	file, err := s.deps.Drive.UploadTo(r.Context(), email, category, name, mimeType, content)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, file)
}

func (s *Server) handleDownloadFile(w http.ResponseWriter, r *http.Request) {
	if !s.driveEnabled(w) {
		return
	}
	if _, ok := s.currentEmail(w, r); !ok {
		return
	}
	data, err := s.deps.Drive.Download(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/octet-stream")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

func (s *Server) handleDeleteFile(w http.ResponseWriter, r *http.Request) {
	if !s.driveEnabled(w) {
		return
	}
	if _, ok := s.currentEmail(w, r); !ok {
		return
	}
	if err := s.deps.Drive.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		s.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleDriveTest(w http.ResponseWriter, r *http.Request) {
	result, err := s.deps.Diagnostics.RunDriveTest(r.Context(), nil)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}
