// Package service orchestrates sign-in, export and diagnostics across the
// auth, chat, drive and archive components.
package service

import (
	"context"
	"errors"

	"github.com/raphaelgruber/sayar/internal/models"
)

var (
	// ErrDriveDisabled is returned for Drive operations when Drive is not configured.
	ErrDriveDisabled = errors.New("google drive is disabled")
	// ErrNothingToExport is returned when the conversation is empty.
	ErrNothingToExport = errors.New("no messages to export")
	// ErrNoHistory is returned when no exported chat history exists.
	ErrNoHistory = errors.New("no saved chat history")
)

// Drive is the per-user remote storage used by the services.
type Drive interface {
	Initialize(ctx context.Context, email string) (models.FolderSet, error)
	Invalidate(ctx context.Context, email string) error
	Folders(ctx context.Context, email string) (models.FolderSet, error)
	UploadTo(ctx context.Context, email string, category models.FolderCategory, name, mimeType string, content []byte) (models.DriveFile, error)
	Delete(ctx context.Context, fileID string) error
	SaveChatHistory(ctx context.Context, email string, data []byte) (models.DriveFile, error)
	LoadChatHistory(ctx context.Context, email string) ([]byte, bool, error)
}

// Archive stores conversation transcripts.
type Archive interface {
	SaveConversation(ctx context.Context, owner, title string, messages []models.ChatMessage) (*models.Conversation, error)
}

// Users resolves the signed-in user.
type Users interface {
	CurrentUser(ctx context.Context) (models.User, error)
}

// StudentLister lists student records.
type StudentLister interface {
	ListStudents(ctx context.Context) ([]models.Student, error)
}
