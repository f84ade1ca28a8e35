package drive

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/raphaelgruber/sayar/internal/metrics"
	"github.com/raphaelgruber/sayar/internal/models"
)

// Child folder names created under each user's root.
const (
	TimetablesFolderName = "Timetables"
	StudentsFolderName   = "Students"
	DocumentsFolderName  = "Documents"
)

// Provisioner creates the per-user folder hierarchy.
type Provisioner struct {
	backend Backend
	rootID  string
	metrics *metrics.Collector
	logger  *slog.Logger
}

// NewProvisioner creates a provisioner that places user folders under rootID.
func NewProvisioner(backend Backend, rootID string, collector *metrics.Collector, logger *slog.Logger) *Provisioner {
	if logger == nil {
		logger = slog.Default()
	}
	return &Provisioner{backend: backend, rootID: rootID, metrics: collector, logger: logger}
}

// GetOrCreate returns the ID of the folder named name under parentID,
// creating it if it does not exist. When several match, the first one the
// backend lists wins.
//
// Not safe for concurrent calls with the same name and parent: two callers
// can both miss and create duplicates. Callers serialize per user.
func (p *Provisioner) GetOrCreate(ctx context.Context, name, parentID string) (string, error) {
	id, found, err := p.backend.FindFolder(ctx, name, parentID)
	if err != nil {
		return "", err
	}
	if found {
		return id, nil
	}
	id, err = p.backend.CreateFolder(ctx, name, parentID)
	if err != nil {
		return "", err
	}
	p.logger.Info("created folder", "name", name, "parent", parentID, "id", id)
	return id, nil
}

// ProvisionUserHierarchy resolves or creates the user's root folder and its
// three children. It stops at the first error and returns the folders
// resolved so far; nothing is rolled back, so calling it again resumes.
func (p *Provisioner) ProvisionUserHierarchy(ctx context.Context, email string) (_ models.FolderSet, err error) {
	defer func(start time.Time) {
		p.metrics.RecordTiming(metrics.OpDriveProvision, time.Since(start), err)
	}(time.Now())

	set := models.FolderSet{UserEmail: email}

	set.RootFolderID, err = p.GetOrCreate(ctx, email, p.rootID)
	if err != nil {
		return set, fmt.Errorf("provision root folder: %w", err)
	}

	children := []struct {
		name string
		dst  *string
	}{
		{TimetablesFolderName, &set.TimetablesFolderID},
		{StudentsFolderName, &set.StudentsFolderID},
		{DocumentsFolderName, &set.DocumentsFolderID},
	}
	for _, child := range children {
		*child.dst, err = p.GetOrCreate(ctx, child.name, set.RootFolderID)
		if err != nil {
			return set, fmt.Errorf("provision %s folder: %w", child.name, err)
		}
	}
	return set, nil
}

// UserRootExists reports whether the user's root folder exists.
func (p *Provisioner) UserRootExists(ctx context.Context, email string) (bool, error) {
	_, found, err := p.backend.FindFolder(ctx, email, p.rootID)
	return found, err
}
