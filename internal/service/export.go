package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/raphaelgruber/sayar/internal/chat"
	"github.com/raphaelgruber/sayar/internal/models"
)

// StudentsExportFile is the name of the student export in the Students folder.
const StudentsExportFile = "students.json"

// ExportResult lists where a conversation was exported to.
type ExportResult struct {
	DriveFile    *models.DriveFile    `json:"driveFile,omitempty"`
	Conversation *models.Conversation `json:"conversation,omitempty"`
	Messages     int                  `json:"messages"`
}

// ExportService moves the conversation and student records out to Drive
// and the transcript archive.
type ExportService struct {
	users    Users
	chat     *chat.Manager
	drive    Drive   // nil when Drive is disabled
	archive  Archive // nil when no archive is configured
	students StudentLister
	logger   *slog.Logger
}

// NewExportService creates an export service. drive and archive may be nil.
func NewExportService(users Users, manager *chat.Manager, drive Drive, archive Archive, students StudentLister, logger *slog.Logger) *ExportService {
	if logger == nil {
		logger = slog.Default()
	}
	return &ExportService{
		users:    users,
		chat:     manager,
		drive:    drive,
		archive:  archive,
		students: students,
		logger:   logger,
	}
}

// ExportChat writes the conversation to Drive and the archive, whichever
// are configured.
func (s *ExportService) ExportChat(ctx context.Context) (ExportResult, error) {
	user, err := s.users.CurrentUser(ctx)
	if err != nil {
		return ExportResult{}, err
	}
	messages := s.chat.Messages()
	if len(messages) == 0 {
		return ExportResult{}, ErrNothingToExport
	}
	if s.drive == nil && s.archive == nil {
		return ExportResult{}, ErrDriveDisabled
	}

	result := ExportResult{Messages: len(messages)}
	if s.drive != nil {
		data, err := json.MarshalIndent(messages, "", "  ")
		if err != nil {
			return ExportResult{}, fmt.Errorf("encode chat history: %w", err)
		}
		file, err := s.drive.SaveChatHistory(ctx, user.Email, data)
		if err != nil {
			return ExportResult{}, fmt.Errorf("save chat history: %w", err)
		}
		result.DriveFile = &file
	}
	if s.archive != nil {
		conv, err := s.archive.SaveConversation(ctx, user.Email, "", messages)
		if err != nil {
			return result, fmt.Errorf("archive conversation: %w", err)
		}
		result.Conversation = conv
	}

	s.logger.Info("chat exported", "user", user.Email, "messages", len(messages),
		"drive", result.DriveFile != nil, "archive", result.Conversation != nil)
	return result, nil
}

// ImportChat replaces the conversation with the history saved in Drive.
func (s *ExportService) ImportChat(ctx context.Context) (int, error) {
	if s.drive == nil {
		return 0, ErrDriveDisabled
	}
	user, err := s.users.CurrentUser(ctx)
	if err != nil {
		return 0, err
	}
	data, found, err := s.drive.LoadChatHistory(ctx, user.Email)
	if err != nil {
		return 0, fmt.Errorf("load chat history: %w", err)
	}
	if !found {
		return 0, ErrNoHistory
	}

	var messages []models.ChatMessage
	if err := json.Unmarshal(data, &messages); err != nil {
		return 0, fmt.Errorf("decode chat history: %w", err)
	}
	if err := s.chat.Restore(messages); err != nil {
		return 0, err
	}
	return len(messages), nil
}

// ExportStudents uploads every student record as JSON to the Students folder.
func (s *ExportService) ExportStudents(ctx context.Context) (models.DriveFile, error) {
	if s.drive == nil {
		return models.DriveFile{}, ErrDriveDisabled
	}
	user, err := s.users.CurrentUser(ctx)
	if err != nil {
		return models.DriveFile{}, err
	}
	students, err := s.students.ListStudents(ctx)
	if err != nil {
		return models.DriveFile{}, fmt.Errorf("list students: %w", err)
	}
	if students == nil {
		students = []models.Student{}
	}
	data, err := json.MarshalIndent(students, "", "  ")
	if err != nil {
		return models.DriveFile{}, fmt.Errorf("encode students: %w", err)
	}
	return s.drive.UploadTo(ctx, user.Email, models.FolderStudents, StudentsExportFile, "application/json", data)
}
