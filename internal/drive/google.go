package drive

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/raphaelgruber/sayar/internal/models"
	"golang.org/x/oauth2/google"
	drivev3 "google.golang.org/api/drive/v3"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
)

const (
	folderFields = "files(id, name, createdTime, modifiedTime)"
	fileFields   = "id, name, mimeType, size, createdTime, modifiedTime, webViewLink"
)

// GoogleBackend implements Backend on the Drive v3 API.
type GoogleBackend struct {
	svc *drivev3.Service
}

// Compile-time check that GoogleBackend implements Backend.
var _ Backend = (*GoogleBackend)(nil)

// NewGoogleBackend authenticates with a service account key file.
func NewGoogleBackend(ctx context.Context, serviceAccountFile string) (*GoogleBackend, error) {
	data, err := os.ReadFile(serviceAccountFile)
	if err != nil {
		return nil, fmt.Errorf("read service account key: %w", err)
	}
	creds, err := google.CredentialsFromJSON(ctx, data, drivev3.DriveScope)
	if err != nil {
		return nil, fmt.Errorf("parse service account key: %w", err)
	}
	svc, err := drivev3.NewService(ctx, option.WithCredentials(creds))
	if err != nil {
		return nil, fmt.Errorf("create drive service: %w", err)
	}
	return &GoogleBackend{svc: svc}, nil
}

// NewGoogleBackendWithService wraps an existing Drive service.
func NewGoogleBackendWithService(svc *drivev3.Service) *GoogleBackend {
	return &GoogleBackend{svc: svc}
}

// quote escapes a value for use inside a single-quoted Drive query literal.
func quote(v string) string {
	v = strings.ReplaceAll(v, `\`, `\\`)
	return "'" + strings.ReplaceAll(v, `'`, `\'`) + "'"
}

func folderQuery(name, parentID string) string {
	return fmt.Sprintf("name = %s and %s in parents and mimeType = '%s' and trashed = false",
		quote(name), quote(parentID), models.FolderMimeType)
}

func toDriveFile(f *drivev3.File) models.DriveFile {
	out := models.DriveFile{
		ID:           f.Id,
		Name:         f.Name,
		MimeType:     f.MimeType,
		CreatedTime:  f.CreatedTime,
		ModifiedTime: f.ModifiedTime,
		WebViewLink:  f.WebViewLink,
	}
	if out.MimeType == "" {
		out.MimeType = "application/octet-stream"
	}
	if f.Size > 0 {
		size := f.Size
		out.Size = &size
	}
	return out
}

func (b *GoogleBackend) FindFolder(ctx context.Context, name, parentID string) (string, bool, error) {
	list, err := b.svc.Files.List().
		Q(folderQuery(name, parentID)).
		Spaces("drive").
		Fields(folderFields).
		Context(ctx).
		Do()
	if err != nil {
		return "", false, fmt.Errorf("find folder %q: %w", name, err)
	}
	if len(list.Files) == 0 {
		return "", false, nil
	}
	return list.Files[0].Id, true, nil
}

func (b *GoogleBackend) CreateFolder(ctx context.Context, name, parentID string) (string, error) {
	meta := &drivev3.File{
		Name:     name,
		MimeType: models.FolderMimeType,
		Parents:  []string{parentID},
	}
	f, err := b.svc.Files.Create(meta).Fields("id, name, createdTime, webViewLink").Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("create folder %q: %w", name, err)
	}
	return f.Id, nil
}

func (b *GoogleBackend) UploadFile(ctx context.Context, name, mimeType string, content []byte, parentID string) (models.DriveFile, error) {
	meta := &drivev3.File{Name: name, Parents: []string{parentID}}
	f, err := b.svc.Files.Create(meta).
		Media(bytes.NewReader(content), googleapi.ContentType(mimeType)).
		Fields(fileFields).
		Context(ctx).
		Do()
	if err != nil {
		return models.DriveFile{}, fmt.Errorf("upload %q: %w", name, err)
	}
	return toDriveFile(f), nil
}

func (b *GoogleBackend) UpdateFile(ctx context.Context, fileID, mimeType string, content []byte) (models.DriveFile, error) {
	f, err := b.svc.Files.Update(fileID, &drivev3.File{}).
		Media(bytes.NewReader(content), googleapi.ContentType(mimeType)).
		Fields(fileFields).
		Context(ctx).
		Do()
	if err != nil {
		return models.DriveFile{}, fmt.Errorf("update file %s: %w", fileID, err)
	}
	return toDriveFile(f), nil
}

func (b *GoogleBackend) ListFiles(ctx context.Context, folderID string) ([]models.DriveFile, error) {
	var files []models.DriveFile
	err := b.svc.Files.List().
		Q(fmt.Sprintf("%s in parents and trashed = false", quote(folderID))).
		Spaces("drive").
		Fields("nextPageToken, files("+fileFields+")").
		OrderBy("modifiedTime desc").
		Pages(ctx, func(page *drivev3.FileList) error {
			for _, f := range page.Files {
				files = append(files, toDriveFile(f))
			}
			return nil
		})
	if err != nil {
		return nil, fmt.Errorf("list files in %s: %w", folderID, err)
	}
	return files, nil
}

func (b *GoogleBackend) DownloadFile(ctx context.Context, fileID string) ([]byte, error) {
	resp, err := b.svc.Files.Get(fileID).Context(ctx).Download()
	if err != nil {
		return nil, fmt.Errorf("download file %s: %w", fileID, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read file %s: %w", fileID, err)
	}
	return data, nil
}

func (b *GoogleBackend) DeleteFile(ctx context.Context, fileID string) error {
	if err := b.svc.Files.Delete(fileID).Context(ctx).Do(); err != nil {
		return fmt.Errorf("delete file %s: %w", fileID, err)
	}
	return nil
}
