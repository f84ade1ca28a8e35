// Package settings persists user preferences as a YAML file.
package settings

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/raphaelgruber/sayar/internal/models"
	"gopkg.in/yaml.v3"
)

// Seed holds credentials applied when the settings file has none.
type Seed struct {
	GeminiAPIKey string
	OpenAIAPIKey string
}

// FileStore keeps the current settings in memory and writes every change
// to a YAML file.
type FileStore struct {
	path   string
	logger *slog.Logger

	mu      sync.RWMutex
	current models.AppSettings

	subMu   sync.Mutex
	subs    map[int]chan models.AppSettings
	nextSub int
}

// Open loads settings from path. A missing file yields defaults.
func Open(path string, seed Seed, logger *slog.Logger) (*FileStore, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("settings path is required")
	}
	if logger == nil {
		logger = slog.Default()
	}

	current := models.DefaultSettings()
	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		logger.Debug("settings file not found, using defaults", "path", path)
	case err != nil:
		return nil, fmt.Errorf("read settings: %w", err)
	default:
		if err := yaml.Unmarshal(data, &current); err != nil {
			return nil, fmt.Errorf("parse settings %s: %w", path, err)
		}
	}
	current.Normalize()

	if current.GeminiAPIKey == "" {
		current.GeminiAPIKey = seed.GeminiAPIKey
	}
	if current.OpenAIAPIKey == "" {
		current.OpenAIAPIKey = seed.OpenAIAPIKey
	}

	return &FileStore{
		path:    path,
		logger:  logger,
		current: current,
		subs:    make(map[int]chan models.AppSettings),
	}, nil
}

// Path returns the settings file location.
func (s *FileStore) Path() string {
	return s.path
}

// Current returns the settings snapshot.
func (s *FileStore) Current(ctx context.Context) (models.AppSettings, error) {
	if err := ctx.Err(); err != nil {
		return models.AppSettings{}, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current, nil
}

// Update applies fn to a copy of the settings, persists the result and
// notifies subscribers. Nothing changes if writing fails.
func (s *FileStore) Update(ctx context.Context, fn func(*models.AppSettings)) (models.AppSettings, error) {
	if err := ctx.Err(); err != nil {
		return models.AppSettings{}, err
	}

	s.mu.Lock()
	next := s.current
	fn(&next)
	next.Normalize()
	if err := s.write(next); err != nil {
		s.mu.Unlock()
		return models.AppSettings{}, err
	}
	s.current = next
	s.mu.Unlock()

	s.logger.Debug("settings updated", "provider", next.AIProvider, "theme", next.Theme, "language", next.Language)
	s.notify(next)
	return next, nil
}

// write saves settings through a temp file and rename. Caller must hold mu.
func (s *FileStore) write(v models.AppSettings) error {
	data, err := yaml.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode settings: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return fmt.Errorf("create settings dir: %w", err)
	}
	tmp, err := os.CreateTemp(filepath.Dir(s.path), ".settings-*.yaml")
	if err != nil {
		return fmt.Errorf("create temp settings: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("write settings: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close settings: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		return fmt.Errorf("replace settings: %w", err)
	}
	return nil
}

// Subscribe returns a channel receiving settings after each change and a
// cancel function. Only the latest value is buffered.
func (s *FileStore) Subscribe() (<-chan models.AppSettings, func()) {
	ch := make(chan models.AppSettings, 1)

	s.subMu.Lock()
	id := s.nextSub
	s.nextSub++
	s.subs[id] = ch
	s.subMu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			s.subMu.Lock()
			delete(s.subs, id)
			s.subMu.Unlock()
			close(ch)
		})
	}
}

func (s *FileStore) notify(v models.AppSettings) {
	s.subMu.Lock()
	defer s.subMu.Unlock()
	for _, ch := range s.subs {
		select {
		case <-ch:
		default:
		}
		select {
		case ch <- v:
		default:
		}
	}
}
