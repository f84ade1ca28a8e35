package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/raphaelgruber/sayar/internal/auth"
	"github.com/raphaelgruber/sayar/internal/chat"
	"github.com/raphaelgruber/sayar/internal/models"
)

// DriveSetupStatus is the state of the signed-in user's folder provisioning.
type DriveSetupStatus string

const (
	DriveSetupIdle     DriveSetupStatus = "idle"
	DriveSetupDisabled DriveSetupStatus = "disabled"
	DriveSetupReady    DriveSetupStatus = "ready"
	DriveSetupFailed   DriveSetupStatus = "failed"
)

// DriveSetup reports the outcome of the last provisioning attempt.
type DriveSetup struct {
	Status  DriveSetupStatus  `json:"status"`
	Folders *models.FolderSet `json:"folders,omitempty"`
	Error   string            `json:"error,omitempty"`
}

// AccountService signs users in and out and provisions their Drive folders.
type AccountService struct {
	auth   *auth.Service
	drive  Drive // nil when Drive is disabled
	chat   *chat.Manager
	logger *slog.Logger

	mu    sync.Mutex
	setup DriveSetup
}

// NewAccountService creates an account service. drive may be nil.
func NewAccountService(authSvc *auth.Service, drive Drive, manager *chat.Manager, logger *slog.Logger) *AccountService {
	if logger == nil {
		logger = slog.Default()
	}
	return &AccountService{
		auth:   authSvc,
		drive:  drive,
		chat:   manager,
		logger: logger,
		setup:  DriveSetup{Status: DriveSetupIdle},
	}
}

// SignInWithGoogle signs in with an ID token and sets up the user's folders.
// A Drive failure is reported in the returned DriveSetup; the sign-in stands.
func (s *AccountService) SignInWithGoogle(ctx context.Context, idToken string) (models.User, DriveSetup, error) {
	user, err := s.auth.SignInWithGoogle(ctx, idToken)
	if err != nil {
		return models.User{}, DriveSetup{}, err
	}
	return user, s.setupDrive(ctx, user.Email), nil
}

// SignInAsDemo signs in as the demo user and sets up its folders.
func (s *AccountService) SignInAsDemo(ctx context.Context) (models.User, DriveSetup, error) {
	user, err := s.auth.SignInAsDemo(ctx)
	if err != nil {
		return models.User{}, DriveSetup{}, err
	}
	return user, s.setupDrive(ctx, user.Email), nil
}

// RetryDriveSetup provisions the current user's folders again.
func (s *AccountService) RetryDriveSetup(ctx context.Context) (DriveSetup, error) {
	user, err := s.auth.CurrentUser(ctx)
	if err != nil {
		return DriveSetup{}, err
	}
	return s.setupDrive(ctx, user.Email), nil
}

func (s *AccountService) setupDrive(ctx context.Context, email string) DriveSetup {
	var setup DriveSetup
	if s.drive == nil {
		s.logger.Debug("google drive disabled, skipping folder setup")
		setup = DriveSetup{Status: DriveSetupDisabled}
	} else if folders, err := s.drive.Initialize(ctx, email); err != nil {
		s.logger.Error("failed to set up drive folders", "user", email, "error", err)
		setup = DriveSetup{Status: DriveSetupFailed, Error: err.Error()}
	} else {
		setup = DriveSetup{Status: DriveSetupReady, Folders: &folders}
	}

	s.mu.Lock()
	s.setup = setup
	s.mu.Unlock()
	return setup
}

// DriveSetup returns the result of the last provisioning attempt.
func (s *AccountService) DriveSetup() DriveSetup {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.setup
}

// CurrentUser returns the signed-in user.
func (s *AccountService) CurrentUser(ctx context.Context) (models.User, error) {
	return s.auth.CurrentUser(ctx)
}

// SignOut drops the user's cached folders, clears the conversation and ends
// the session.
func (s *AccountService) SignOut(ctx context.Context) error {
	user, err := s.auth.CurrentUser(ctx)
	switch {
	case errors.Is(err, auth.ErrNotSignedIn):
	case err != nil:
		return err
	case s.drive != nil:
		if err := s.drive.Invalidate(ctx, user.Email); err != nil {
			return fmt.Errorf("clear drive cache: %w", err)
		}
	}

	if s.chat != nil {
		s.chat.Clear()
		s.chat.ClearError()
	}
	if err := s.auth.SignOut(ctx); err != nil {
		return err
	}

	s.mu.Lock()
	s.setup = DriveSetup{Status: DriveSetupIdle}
	s.mu.Unlock()
	s.logger.Info("signed out", "user", user.Email)
	return nil
}
