package models

import (
	"fmt"
	"strings"
)

// FolderMimeType is the Drive MIME type that marks a file as a folder.
const FolderMimeType = "application/vnd.google-apps.folder"

// FolderCategory selects one of the folders provisioned for a user.
type FolderCategory string

const (
	FolderRoot       FolderCategory = "root"
	FolderTimetables FolderCategory = "timetables"
	FolderStudents   FolderCategory = "students"
	FolderDocuments  FolderCategory = "documents"
)

// ParseFolderCategory parses a category name, case-insensitively.
// "schedule" is accepted as an alias for timetables.
func ParseFolderCategory(s string) (FolderCategory, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "root":
		return FolderRoot, nil
	case "timetables", "timetable", "schedule":
		return FolderTimetables, nil
	case "students":
		return FolderStudents, nil
	case "documents", "docs":
		return FolderDocuments, nil
	default:
		return "", fmt.Errorf("unknown folder category: %q", s)
	}
}

// FolderSet holds the Drive folder IDs provisioned for one user.
// Once created for a user the IDs are stable.
type FolderSet struct {
	UserEmail          string `json:"userEmail"`
	RootFolderID       string `json:"rootFolderId"`
	TimetablesFolderID string `json:"timetablesFolderId"`
	StudentsFolderID   string `json:"studentsFolderId"`
	DocumentsFolderID  string `json:"documentsFolderId"`
}

// FolderID returns the folder ID for the given category.
func (f FolderSet) FolderID(category FolderCategory) (string, error) {
	switch category {
	case FolderRoot:
		return f.RootFolderID, nil
	case FolderTimetables:
		return f.TimetablesFolderID, nil
	case FolderStudents:
		return f.StudentsFolderID, nil
	case FolderDocuments:
		return f.DocumentsFolderID, nil
	default:
		return "", fmt.Errorf("unknown folder category: %q", category)
	}
}

// DriveFile describes a file stored in the remote backend.
type DriveFile struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	MimeType     string `json:"mimeType"`
	Size         *int64 `json:"size,omitempty"`
	CreatedTime  string `json:"createdTime,omitempty"`
	ModifiedTime string `json:"modifiedTime,omitempty"`
	WebViewLink  string `json:"webViewLink,omitempty"`
}
