package drive

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/raphaelgruber/sayar/internal/metrics"
	"github.com/raphaelgruber/sayar/internal/models"
)

// Files kept in the user's root folder.
const (
	ChatHistoryFile = "chat_history.json"
	ProfileFile     = "profile.json"
	jsonMimeType    = "application/json"
)

// Repository is the per-user entry point for Drive operations.
type Repository struct {
	backend     Backend
	provisioner *Provisioner
	cache       *FolderCache
	metrics     *metrics.Collector
	logger      *slog.Logger

	locksMu sync.Mutex
	locks   map[string]*sync.Mutex
}

// NewRepository wires a repository from its parts.
func NewRepository(backend Backend, provisioner *Provisioner, cache *FolderCache, collector *metrics.Collector, logger *slog.Logger) *Repository {
	if logger == nil {
		logger = slog.Default()
	}
	return &Repository{
		backend:     backend,
		provisioner: provisioner,
		cache:       cache,
		metrics:     collector,
		logger:      logger,
		locks:       make(map[string]*sync.Mutex),
	}
}

func (r *Repository) userLock(email string) *sync.Mutex {
	r.locksMu.Lock()
	defer r.locksMu.Unlock()
	mu, ok := r.locks[email]
	if !ok {
		mu = &sync.Mutex{}
		r.locks[email] = mu
	}
	return mu
}

// Initialize provisions the user's folders and caches their IDs.
// Calls for the same user are serialized.
func (r *Repository) Initialize(ctx context.Context, email string) (models.FolderSet, error) {
	if email == "" {
		return models.FolderSet{}, fmt.Errorf("user email is required")
	}
	mu := r.userLock(email)
	mu.Lock()
	defer mu.Unlock()

	start := time.Now()
	set, err := r.provisioner.ProvisionUserHierarchy(ctx, email)
	if err != nil {
		r.logger.Warn("folder provisioning failed", "user", email, "error", err)
		return models.FolderSet{}, err
	}
	if err := r.cache.Put(ctx, set); err != nil {
		return models.FolderSet{}, err
	}
	r.logger.Info("user folders ready", "user", email, "root", set.RootFolderID,
		"duration_ms", time.Since(start).Milliseconds())
	return set, nil
}

// Folders returns the cached folder set, or ErrNotInitialized.
func (r *Repository) Folders(ctx context.Context, email string) (models.FolderSet, error) {
	set, ok, err := r.cache.Get(ctx, email)
	if err != nil {
		return models.FolderSet{}, err
	}
	if !ok {
		return models.FolderSet{}, ErrNotInitialized
	}
	return set, nil
}

// ResolveFolderID maps a category to the user's folder ID.
func (r *Repository) ResolveFolderID(ctx context.Context, email string, category models.FolderCategory) (string, error) {
	set, err := r.Folders(ctx, email)
	if err != nil {
		return "", err
	}
	return set.FolderID(category)
}

// UploadTo creates a file in the user's folder for category.
func (r *Repository) UploadTo(ctx context.Context, email string, category models.FolderCategory, name, mimeType string, content []byte) (_ models.DriveFile, err error) {
	folderID, err := r.ResolveFolderID(ctx, email, category)
	if err != nil {
		return models.DriveFile{}, err
	}

	defer func(start time.Time) {
		r.metrics.RecordTiming(metrics.OpDriveUpload, time.Since(start), err)
	}(time.Now())

	file, err := r.backend.UploadFile(ctx, name, mimeType, content, folderID)
	if err != nil {
		return models.DriveFile{}, fmt.Errorf("upload to %s: %w", category, err)
	}
	if file.MimeType == "" {
		file.MimeType = mimeType
	}
	return file, nil
}

// ListFiles lists the files in the user's folder for category.
func (r *Repository) ListFiles(ctx context.Context, email string, category models.FolderCategory) ([]models.DriveFile, error) {
	folderID, err := r.ResolveFolderID(ctx, email, category)
	if err != nil {
		return nil, err
	}
	return r.backend.ListFiles(ctx, folderID)
}

// Download returns the content of a file.
func (r *Repository) Download(ctx context.Context, fileID string) (_ []byte, err error) {
	defer func(start time.Time) {
		r.metrics.RecordTiming(metrics.OpDriveDownload, time.Since(start), err)
	}(time.Now())
	return r.backend.DownloadFile(ctx, fileID)
}

// Delete removes a file.
func (r *Repository) Delete(ctx context.Context, fileID string) error {
	return r.backend.DeleteFile(ctx, fileID)
}

// CheckUserFoldersExist reports whether the user's root folder exists
// remotely. Lookup errors count as absent.
func (r *Repository) CheckUserFoldersExist(ctx context.Context, email string) bool {
	ok, err := r.provisioner.UserRootExists(ctx, email)
	if err != nil {
		r.logger.Debug("folder existence check failed", "user", email, "error", err)
		return false
	}
	return ok
}

// Invalidate forgets the user's cached folders.
func (r *Repository) Invalidate(ctx context.Context, email string) error {
	return r.cache.Invalidate(ctx, email)
}

// SaveChatHistory writes data as the user's chat history file.
func (r *Repository) SaveChatHistory(ctx context.Context, email string, data []byte) (models.DriveFile, error) {
	return r.saveRootFile(ctx, email, ChatHistoryFile, data)
}

// LoadChatHistory reads the user's chat history file. found is false when
// the file does not exist.
func (r *Repository) LoadChatHistory(ctx context.Context, email string) (data []byte, found bool, err error) {
	return r.loadRootFile(ctx, email, ChatHistoryFile)
}

// SaveProfile writes data as the user's profile file.
func (r *Repository) SaveProfile(ctx context.Context, email string, data []byte) (models.DriveFile, error) {
	return r.saveRootFile(ctx, email, ProfileFile, data)
}

// LoadProfile reads the user's profile file.
func (r *Repository) LoadProfile(ctx context.Context, email string) ([]byte, bool, error) {
	return r.loadRootFile(ctx, email, ProfileFile)
}

func (r *Repository) findRootFile(ctx context.Context, email, name string) (models.DriveFile, bool, error) {
	files, err := r.ListFiles(ctx, email, models.FolderRoot)
	if err != nil {
		return models.DriveFile{}, false, err
	}
	for _, f := range files {
		if f.Name == name {
			return f, true, nil
		}
	}
	return models.DriveFile{}, false, nil
}

// saveRootFile replaces an existing file of the same name instead of adding another.
func (r *Repository) saveRootFile(ctx context.Context, email, name string, data []byte) (models.DriveFile, error) {
	existing, found, err := r.findRootFile(ctx, email, name)
	if err != nil {
		return models.DriveFile{}, err
	}
	if !found {
		return r.UploadTo(ctx, email, models.FolderRoot, name, jsonMimeType, data)
	}

	file, err := r.backend.UpdateFile(ctx, existing.ID, jsonMimeType, data)
	if err != nil {
		return models.DriveFile{}, fmt.Errorf("replace %s: %w", name, err)
	}
	return file, nil
}

func (r *Repository) loadRootFile(ctx context.Context, email, name string) ([]byte, bool, error) {
	file, found, err := r.findRootFile(ctx, email, name)
	if err != nil || !found {
		return nil, false, err
	}
	data, err := r.Download(ctx, file.ID)
	if err != nil {
		return nil, false, fmt.Errorf("download %s: %w", name, err)
	}
	return data, true, nil
}
