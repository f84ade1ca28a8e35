package api

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/raphaelgruber/sayar/internal/models"
)

type studentRequest struct {
	Name          *string `json:"name"`
	RollNumber    *string `json:"rollNumber"`
	Grade         *string `json:"grade"`
	ParentContact *string `json:"parentContact"`
	Notes         *string `json:"notes"`
}

// apply copies the set fields onto st.
func (req studentRequest) apply(st *models.Student) {
	if req.Name != nil {
		st.Name = strings.TrimSpace(*req.Name)
	}
	if req.RollNumber != nil {
		st.RollNumber = strings.TrimSpace(*req.RollNumber)
	}
	if req.Grade != nil {
		st.Grade = strings.TrimSpace(*req.Grade)
	}
	if req.ParentContact != nil {
		st.ParentContact = req.ParentContact
	}
	if req.Notes != nil {
		st.Notes = req.Notes
	}
}

func (s *Server) handleListStudents(w http.ResponseWriter, r *http.Request) {
	var (
		students []models.Student
		err      error
	)
	switch q, grade := r.URL.Query().Get("q"), r.URL.Query().Get("grade"); {
	case q != "":
		students, err = s.deps.Students.SearchStudents(r.Context(), q)
	case grade != "":
		students, err = s.deps.Students.ListStudentsByGrade(r.Context(), grade)
	default:
		students, err = s.deps.Students.ListStudents(r.Context())
	}
	if err != nil {
		s.writeError(w, err)
		return
	}
	if students == nil {
		students = []models.Student{}
	}
	writeJSON(w, http.StatusOK, students)
}

func (s *Server) handleCreateStudent(w http.ResponseWriter, r *http.Request) {
	var req studentRequest
	if err := decodeJSON(r, &req); err != nil {
		badRequest(w, "invalid request body")
		return
	}
	st := models.NewStudent("", "", "")
	req.apply(&st)
	if err := s.deps.Students.PutStudent(r.Context(), st); err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, st)
}

func (s *Server) handleGetStudent(w http.ResponseWriter, r *http.Request) {
	st, err := s.deps.Students.GetStudent(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, st)
}

func (s *Server) handleUpdateStudent(w http.ResponseWriter, r *http.Request) {
	var req studentRequest
	if err := decodeJSON(r, &req); err != nil {
		badRequest(w, "invalid request body")
		return
	}
	st, err := s.deps.Students.GetStudent(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	req.apply(&st)
	if err := s.deps.Students.UpdateStudent(r.Context(), st); err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, st)
}

func (s *Server) handleDeleteStudent(w http.ResponseWriter, r *http.Request) {
	if err := s.deps.Students.DeleteStudent(r.Context(), chi.URLParam(r, "id")); err != nil {
		s.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleExportStudents(w http.ResponseWriter, r *http.Request) {
	file, err := s.deps.Export.ExportStudents(r.Context())
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, file)
}
