package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/raphaelgruber/sayar/internal/models"
)

// DriveTestResult summarizes a successful connection test.
type DriveTestResult struct {
	Message string   `json:"message"`
	Details []string `json:"details"`
}

// DiagnosticsService checks that Drive is reachable for the current user.
type DiagnosticsService struct {
	users  Users
	drive  Drive
	logger *slog.Logger
	now    func() time.Time
}

// NewDiagnosticsService creates a diagnostics service. drive may be nil.
func NewDiagnosticsService(users Users, drive Drive, logger *slog.Logger) *DiagnosticsService {
	if logger == nil {
		logger = slog.Default()
	}
	return &DiagnosticsService{users: users, drive: drive, logger: logger, now: time.Now}
}

// RunDriveTest uploads and deletes a small file in the Documents folder.
// progress, if non-nil, is called before each step. Failing to delete the
// test file does not fail the test.
func (s *DiagnosticsService) RunDriveTest(ctx context.Context, progress func(step string)) (DriveTestResult, error) {
	if s.drive == nil {
		return DriveTestResult{}, ErrDriveDisabled
	}
	report := func(step string) {
		s.logger.Debug("drive test", "step", step)
		if progress != nil {
			progress(step)
		}
	}

	report("Step 1/4: Checking signed-in user...")
	user, err := s.users.CurrentUser(ctx)
	if err != nil {
		return DriveTestResult{}, fmt.Errorf("connection test failed: %w", err)
	}

	report("Step 2/4: Getting user folders...")
	folders, err := s.drive.Folders(ctx, user.Email)
	if err != nil {
		return DriveTestResult{}, fmt.Errorf("user folders not initialized, please sign in first: %w", err)
	}

	report("Step 3/4: Uploading test file...")
	now := s.now()
	name := fmt.Sprintf("connection_test_%d.txt", now.UnixMilli())
	content := fmt.Sprintf("Sayar Assistant Drive Test\nTimestamp: %s", now.Format(time.RFC1123))
	file, err := s.drive.UploadTo(ctx, user.Email, models.FolderDocuments, name, "text/plain", []byte(content))
	if err != nil {
		return DriveTestResult{}, fmt.Errorf("upload failed: %w", err)
	}

	report("Step 4/4: Cleaning up test file...")
	cleanup := "Test file uploaded and deleted successfully"
	if err := s.drive.Delete(ctx, file.ID); err != nil {
		s.logger.Warn("failed to delete drive test file", "file", file.ID, "error", err)
		cleanup = "Test file uploaded; cleanup failed: " + err.Error()
	}

	return DriveTestResult{
		Message: "Drive connection successful!",
		Details: []string{
			"Root Folder: " + folders.RootFolderID,
			"Timetables: " + folders.TimetablesFolderID,
			"Students: " + folders.StudentsFolderID,
			"Documents: " + folders.DocumentsFolderID,
			cleanup,
		},
	}, nil
}
