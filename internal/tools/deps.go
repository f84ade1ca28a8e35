// Package tools provides MCP tool handlers and registration.
package tools

import (
	"context"
	"log/slog"

	"github.com/raphaelgruber/sayar/internal/chat"
	"github.com/raphaelgruber/sayar/internal/models"
)

// StudentStore is the student persistence the tools read and write.
type StudentStore interface {
	ListStudents(ctx context.Context) ([]models.Student, error)
	ListStudentsByGrade(ctx context.Context, grade string) ([]models.Student, error)
	SearchStudents(ctx context.Context, query string) ([]models.Student, error)
	PutStudent(ctx context.Context, st models.Student) error
}

// Drive is the per-user file storage the tools use.
type Drive interface {
	ListFiles(ctx context.Context, email string, category models.FolderCategory) ([]models.DriveFile, error)
	UploadTo(ctx context.Context, email string, category models.FolderCategory, name, mimeType string, content []byte) (models.DriveFile, error)
}

// Users resolves the signed-in user.
type Users interface {
	CurrentUser(ctx context.Context) (models.User, error)
}

// Dependencies holds shared services for tool handlers.
// Passed to handler factories via closure capture. Drive is nil when disabled.
type Dependencies struct {
	Chat     *chat.Manager
	Students StudentStore
	Drive    Drive
	Users    Users
	Logger   *slog.Logger
}
