package tools

import (
	"context"
	"fmt"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/raphaelgruber/sayar/internal/models"
)

// ListFilesInput defines the input schema for the list_files tool.
type ListFilesInput struct {
	Folder string `json:"folder" jsonschema:"required,Folder category: timetables, students, documents or root"`
}

// UploadDocumentInput defines the input schema for the upload_document tool.
type UploadDocumentInput struct {
	Folder   string `json:"folder,omitempty" jsonschema:"Folder category (default documents)"`
	Name     string `json:"name" jsonschema:"required,File name"`
	Content  string `json:"content" jsonschema:"required,Text content"`
	MimeType string `json:"mime_type,omitempty" jsonschema:"MIME type (default text/plain)"`
}

// driveUser returns the signed-in user's email, or an error result when
// Drive cannot be used.
func driveUser(ctx context.Context, deps *Dependencies) (string, *mcp.CallToolResult) {
	if deps.Drive == nil {
		return "", ErrorResult("Google Drive is disabled", "Set GOOGLE_DRIVE_ENABLED=true and restart")
	}
	user, err := deps.Users.CurrentUser(ctx)
	if err != nil {
		return "", ErrorResult("Not signed in", "Run `sayar login` first")
	}
	return user.Email, nil
}

// NewListFilesHandler creates the list_files tool handler.
func NewListFilesHandler(deps *Dependencies) mcp.ToolHandlerFor[ListFilesInput, any] {
	return func(ctx context.Context, req *mcp.CallToolRequest, input ListFilesInput) (*mcp.CallToolResult, any, error) {
		category, err := models.ParseFolderCategory(input.Folder)
		if err != nil {
			return ErrorResult(err.Error(), "Use timetables, students, documents or root"), nil, nil
		}
		email, errResult := driveUser(ctx, deps)
		if errResult != nil {
			return errResult, nil, nil
		}

		files, err := deps.Drive.ListFiles(ctx, email, category)
		if err != nil {
			deps.Logger.Error("list files failed", "folder", category, "error", err)
			return ErrorResult("Failed to list files", err.Error()), nil, nil
		}
		if len(files) == 0 {
			return TextResult("No files found"), nil, nil
		}
		lines := make([]string, 0, len(files))
		for _, f := range files {
			lines = append(lines, fmt.Sprintf("%s (%s) id %s", f.Name, f.MimeType, f.ID))
		}
		return listResult(lines), nil, nil
	}
}

// NewUploadDocumentHandler creates the upload_document tool handler.
func NewUploadDocumentHandler(deps *Dependencies) mcp.ToolHandlerFor[UploadDocumentInput, any] {
	return func(ctx context.Context, req *mcp.CallToolRequest, input UploadDocumentInput) (*mcp.CallToolResult, any, error) {
		folder := input.Folder
		if folder == "" {
			folder = string(models.FolderDocuments)
		}
		category, err := models.ParseFolderCategory(folder)
		if err != nil {
			return ErrorResult(err.Error(), "Use timetables, students, documents or root"), nil, nil
		}
		name := strings.TrimSpace(input.Name)
		if name == "" {
			return ErrorResult("Name is required", "Provide a file name"), nil, nil
		}
		mimeType := input.MimeType
		if mimeType == "" {
			mimeType = "text/plain"
		}
		email, errResult := driveUser(ctx, deps)
		if errResult != nil {
			return errResult, nil, nil
		}

		file, err := deps.Drive.UploadTo(ctx, email, category, name, mimeType, []byte(input.Content))
		if err != nil {
			deps.Logger.Error("upload failed", "folder", category, "name", name, "error", err)
			return ErrorResult("Failed to upload "+name, err.Error()), nil, nil
		}
		return JSONResult(file), nil, nil
	}
}
