// Package drive provisions per-user folders in Google Drive, caches their
// IDs and routes file operations through typed folder categories.
package drive

import (
	"context"
	"errors"

	"github.com/raphaelgruber/sayar/internal/models"
)

// ErrNotInitialized is returned when no folder set is cached for a user.
var ErrNotInitialized = errors.New("user folders not initialized")

// Backend is the remote storage the folders live in.
type Backend interface {
	// FindFolder returns the ID of the first folder named name under parentID.
	FindFolder(ctx context.Context, name, parentID string) (id string, found bool, err error)
	CreateFolder(ctx context.Context, name, parentID string) (string, error)
	UploadFile(ctx context.Context, name, mimeType string, content []byte, parentID string) (models.DriveFile, error)
	UpdateFile(ctx context.Context, fileID, mimeType string, content []byte) (models.DriveFile, error)
	// ListFiles returns the non-trashed files in folderID, most recently modified first.
	ListFiles(ctx context.Context, folderID string) ([]models.DriveFile, error)
	DownloadFile(ctx context.Context, fileID string) ([]byte, error)
	DeleteFile(ctx context.Context, fileID string) error
}
