// Package api exposes the assistant over HTTP with a WebSocket stream of
// conversation state.
package api

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/websocket"

	"github.com/raphaelgruber/sayar/internal/chat"
	"github.com/raphaelgruber/sayar/internal/metrics"
	"github.com/raphaelgruber/sayar/internal/models"
	"github.com/raphaelgruber/sayar/internal/service"
)

// StudentStore is the student persistence used by the API.
type StudentStore interface {
	ListStudents(ctx context.Context) ([]models.Student, error)
	ListStudentsByGrade(ctx context.Context, grade string) ([]models.Student, error)
	SearchStudents(ctx context.Context, query string) ([]models.Student, error)
	GetStudent(ctx context.Context, id string) (models.Student, error)
	PutStudent(ctx context.Context, st models.Student) error
	UpdateStudent(ctx context.Context, st models.Student) error
	DeleteStudent(ctx context.Context, id string) error
}

// Drive is the per-user file storage used by the API.
type Drive interface {
	Folders(ctx context.Context, email string) (models.FolderSet, error)
	ListFiles(ctx context.Context, email string, category models.FolderCategory) ([]models.DriveFile, error)
	UploadTo(ctx context.Context, email string, category models.FolderCategory, name, mimeType string, content []byte) (models.DriveFile, error)
	Download(ctx context.Context, fileID string) ([]byte, error)
	Delete(ctx context.Context, fileID string) error
}

// SettingsStore reads and edits the user's preferences.
type SettingsStore interface {
	Current(ctx context.Context) (models.AppSettings, error)
	Set(ctx context.Context, key, value string) error
}

// Archive lists archived transcripts.
type Archive interface {
	ListConversations(ctx context.Context, owner string) ([]models.Conversation, error)
	ConversationMessages(ctx context.Context, id string) ([]models.Message, error)
}

// Dependencies holds the components served by the API.
// Drive and Archive are nil when not configured.
type Dependencies struct {
	Chat        *chat.Manager
	Account     *service.AccountService
	Export      *service.ExportService
	Diagnostics *service.DiagnosticsService
	Students    StudentStore
	Drive       Drive
	Settings    SettingsStore
	Archive     Archive
	Metrics     *metrics.Collector
	Logger      *slog.Logger
}

// Server is the HTTP API.
type Server struct {
	deps     Dependencies
	logger   *slog.Logger
	router   chi.Router
	upgrader websocket.Upgrader
}

// New creates the API server and its routes.
func New(deps Dependencies) *Server {
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}
	s := &Server{
		deps:   deps,
		logger: logger,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				return true // local single-user server
			},
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
	}
	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(RequestLogger(s.logger))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok\n"))
	})

	r.Route("/api", func(r chi.Router) {
		r.Get("/stats", s.handleStats)

		r.Route("/auth", func(r chi.Router) {
			r.Post("/google", s.handleSignInGoogle)
			r.Post("/demo", s.handleSignInDemo)
			r.Post("/logout", s.handleSignOut)
			r.Get("/me", s.handleMe)
			r.Get("/drive", s.handleDriveSetup)
			r.Post("/drive/retry", s.handleRetryDriveSetup)
		})

		r.Route("/chat", func(r chi.Router) {
			r.Get("/", s.handleChatState)
			r.Post("/", s.handleChatSubmit)
			r.Delete("/", s.handleChatClear)
			r.Delete("/error", s.handleChatClearError)
			r.Post("/export", s.handleChatExport)
			r.Post("/import", s.handleChatImport)
			r.Get("/ws", s.handleChatStream)
		})

		r.Route("/students", func(r chi.Router) {
			r.Get("/", s.handleListStudents)
			r.Post("/", s.handleCreateStudent)
			r.Post("/export", s.handleExportStudents)
			r.Get("/{id}", s.handleGetStudent)
			r.Put("/{id}", s.handleUpdateStudent)
			r.Delete("/{id}", s.handleDeleteStudent)
		})

		r.Route("/drive", func(r chi.Router) {
			r.Get("/folders", s.handleFolders)
			r.Get("/folders/{category}/files", s.handleListFiles)
			r.Post("/folders/{category}/files", s.handleUploadFile)
			r.Get("/files/{id}", s.handleDownloadFile)
			r.Delete("/files/{id}", s.handleDeleteFile)
			r.Post("/test", s.handleDriveTest)
		})

		r.Get("/settings", s.handleGetSettings)
		r.Patch("/settings", s.handleSetSetting)

		r.Get("/conversations", s.handleListConversations)
		r.Get("/conversations/{id}/messages", s.handleConversationMessages)
	})

	s.router = r
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// ListenAndServe serves on addr until ctx is cancelled, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	httpServer := &http.Server{
		Addr:         addr,
		Handler:      s,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 120 * time.Second, // long for LLM responses
		IdleTimeout:  120 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("http api listening", "addr", addr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	s.logger.Info("shutting down http api")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return httpServer.Shutdown(shutdownCtx)
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.deps.Metrics.Snapshot())
}
