// Package auth manages the signed-in user.
package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"github.com/raphaelgruber/sayar/internal/models"
	"github.com/raphaelgruber/sayar/internal/store"
)

var (
	// ErrNotSignedIn is returned when no user is signed in.
	ErrNotSignedIn = errors.New("not signed in")
	// ErrInvalidToken is returned for ID tokens that cannot be decoded.
	ErrInvalidToken = errors.New("invalid ID token")
)

const (
	userKey    = "auth.user"
	idTokenKey = "auth.id_token"

	DemoEmail = "demo@sayar.app"
	demoToken = "demo_token"
)

// KV is the key-value store holding the session.
type KV interface {
	GetValue(ctx context.Context, key string) ([]byte, error)
	SetValue(ctx context.Context, key string, value []byte) error
	DeleteValue(ctx context.Context, key string) error
}

// Service signs users in and out.
type Service struct {
	kv     KV
	logger *slog.Logger
}

// NewService creates an auth service persisting to kv.
func NewService(kv KV, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{kv: kv, logger: logger}
}

type idTokenClaims struct {
	Email   string `json:"email"`
	Name    string `json:"name,omitempty"`
	Picture string `json:"picture,omitempty"`
	jwt.RegisteredClaims
}

// SignInWithGoogle signs in with a Google ID token. The signature is not
// checked here; only the payload is read.
func (s *Service) SignInWithGoogle(ctx context.Context, idToken string) (models.User, error) {
	var claims idTokenClaims
	if _, _, err := jwt.NewParser().ParseUnverified(strings.TrimSpace(idToken), &claims); err != nil {
		return models.User{}, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if claims.Subject == "" || claims.Email == "" {
		return models.User{}, fmt.Errorf("%w: missing sub or email", ErrInvalidToken)
	}

	user := models.User{ID: claims.Subject, Email: claims.Email}
	if claims.Name != "" {
		user.DisplayName = &claims.Name
	}
	if claims.Picture != "" {
		user.PhotoURL = &claims.Picture
	}

	if err := s.save(ctx, user, idToken); err != nil {
		return models.User{}, err
	}
	s.logger.Info("signed in", "user", user.Email)
	return user, nil
}

// SignInAsDemo signs in as the built-in demo teacher.
func (s *Service) SignInAsDemo(ctx context.Context) (models.User, error) {
	name := "Demo Teacher"
	user := models.User{ID: "demo_user", Email: DemoEmail, DisplayName: &name}
	if err := s.save(ctx, user, demoToken); err != nil {
		return models.User{}, err
	}
	s.logger.Info("signed in as demo user")
	return user, nil
}

func (s *Service) save(ctx context.Context, user models.User, token string) error {
	data, err := json.Marshal(user)
	if err != nil {
		return fmt.Errorf("encode user: %w", err)
	}
	if err := s.kv.SetValue(ctx, userKey, data); err != nil {
		return fmt.Errorf("save user: %w", err)
	}
	if err := s.kv.SetValue(ctx, idTokenKey, []byte(token)); err != nil {
		return fmt.Errorf("save token: %w", err)
	}
	return nil
}

// SignOut removes the stored session.
func (s *Service) SignOut(ctx context.Context) error {
	if err := s.kv.DeleteValue(ctx, userKey); err != nil {
		return fmt.Errorf("clear user: %w", err)
	}
	if err := s.kv.DeleteValue(ctx, idTokenKey); err != nil {
		return fmt.Errorf("clear token: %w", err)
	}
	return nil
}

// CurrentUser returns the signed-in user or ErrNotSignedIn. A stored
// session that cannot be read counts as signed out.
func (s *Service) CurrentUser(ctx context.Context) (models.User, error) {
	data, err := s.kv.GetValue(ctx, userKey)
	if errors.Is(err, store.ErrNotFound) {
		return models.User{}, ErrNotSignedIn
	}
	if err != nil {
		return models.User{}, fmt.Errorf("load user: %w", err)
	}
	var user models.User
	if err := json.Unmarshal(data, &user); err != nil || user.Email == "" {
		s.logger.Warn("stored user is unreadable", "error", err)
		return models.User{}, ErrNotSignedIn
	}
	return user, nil
}

// IsSignedIn reports whether a user is signed in.
func (s *Service) IsSignedIn(ctx context.Context) bool {
	_, err := s.CurrentUser(ctx)
	return err == nil
}
