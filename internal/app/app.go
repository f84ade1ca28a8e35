// Package app wires the assistant's components from configuration.
// It serves as dependency injection for the command-line, HTTP and MCP
// entry points.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/raphaelgruber/sayar/internal/api"
	"github.com/raphaelgruber/sayar/internal/auth"
	"github.com/raphaelgruber/sayar/internal/chat"
	"github.com/raphaelgruber/sayar/internal/config"
	"github.com/raphaelgruber/sayar/internal/db"
	"github.com/raphaelgruber/sayar/internal/drive"
	"github.com/raphaelgruber/sayar/internal/llm"
	"github.com/raphaelgruber/sayar/internal/metrics"
	"github.com/raphaelgruber/sayar/internal/service"
	"github.com/raphaelgruber/sayar/internal/settings"
	"github.com/raphaelgruber/sayar/internal/store"
	"github.com/raphaelgruber/sayar/internal/tools"
)

// driveRootAlias addresses the service account's My Drive.
const driveRootAlias = "root"

// App holds every component. Drive and Transcripts are nil when disabled.
type App struct {
	Config      config.Config
	Logger      *slog.Logger
	Metrics     *metrics.Collector
	Store       *store.Store
	Settings    *settings.FileStore
	Auth        *auth.Service
	Chat        *chat.Manager
	Drive       *drive.Repository
	Transcripts *db.Client

	Account     *service.AccountService
	Export      *service.ExportService
	Diagnostics *service.DiagnosticsService
}

// New opens local storage and connects the optional remote components.
func New(ctx context.Context, cfg config.Config, logger *slog.Logger) (*App, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if err := os.MkdirAll(cfg.DataDir, 0o700); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}

	mc := metrics.NewCollector()

	st, err := store.Open(cfg.DBPath, mc)
	if err != nil {
		return nil, err
	}
	a := &App{Config: cfg, Logger: logger, Metrics: mc, Store: st}

	a.Settings, err = settings.Open(cfg.SettingsFile, settings.Seed{
		GeminiAPIKey: cfg.GeminiAPIKey,
		OpenAIAPIKey: cfg.OpenAIAPIKey,
	}, logger)
	if err != nil {
		_ = a.Close(ctx)
		return nil, err
	}

	a.Auth = auth.NewService(st, logger)
	router := llm.NewDefaultRouter(cfg.GeminiModel, cfg.OpenAIModel, cfg.OllamaModel, mc, logger)
	a.Chat = chat.NewManager(router, a.Settings, logger)

	if cfg.DriveEnabled {
		if a.Drive, err = newDrive(ctx, cfg, st, mc, logger); err != nil {
			_ = a.Close(ctx)
			return nil, err
		}
	}

	if cfg.TranscriptsEnabled() {
		if a.Transcripts, err = newTranscripts(ctx, cfg, logger); err != nil {
			_ = a.Close(ctx)
			return nil, err
		}
	}

	// Typed nils must not leak into the service interfaces.
	var (
		svcDrive service.Drive
		archive  service.Archive
	)
	if a.Drive != nil {
		svcDrive = a.Drive
	}
	if a.Transcripts != nil {
		archive = a.Transcripts
	}
	a.Account = service.NewAccountService(a.Auth, svcDrive, a.Chat, logger)
	a.Export = service.NewExportService(a.Auth, a.Chat, svcDrive, archive, st, logger)
	a.Diagnostics = service.NewDiagnosticsService(a.Auth, svcDrive, logger)

	logger.Debug("components ready",
		"data_dir", cfg.DataDir,
		"drive", a.Drive != nil,
		"transcripts", a.Transcripts != nil,
	)
	return a, nil
}

func newDrive(ctx context.Context, cfg config.Config, kv drive.KV, mc *metrics.Collector, logger *slog.Logger) (*drive.Repository, error) {
	backend, err := drive.NewGoogleBackend(ctx, cfg.ServiceAccountFile)
	if err != nil {
		return nil, fmt.Errorf("connect to google drive: %w", err)
	}
	rootID := cfg.DriveRootFolderID
	if rootID == "" {
		rootID = driveRootAlias
	}
	cache, err := drive.NewFolderCache(cfg.FolderCacheCapacity, kv, logger)
	if err != nil {
		return nil, err
	}
	provisioner := drive.NewProvisioner(backend, rootID, mc, logger)
	return drive.NewRepository(backend, provisioner, cache, mc, logger), nil
}

func newTranscripts(ctx context.Context, cfg config.Config, logger *slog.Logger) (*db.Client, error) {
	client, err := db.NewClient(ctx, db.Config{
		URL:       cfg.SurrealDBURL,
		Namespace: cfg.SurrealDBNamespace,
		Database:  cfg.SurrealDBDatabase,
		Username:  cfg.SurrealDBUser,
		Password:  cfg.SurrealDBPass,
		AuthLevel: cfg.SurrealDBAuthLevel,
	}, logger)
	if err != nil {
		return nil, fmt.Errorf("connect to transcript archive: %w", err)
	}
	if err := client.InitSchema(ctx); err != nil {
		_ = client.Close(ctx)
		return nil, fmt.Errorf("initialize transcript schema: %w", err)
	}
	return client, nil
}

// APIDependencies returns the components served by the HTTP API.
func (a *App) APIDependencies() api.Dependencies {
	deps := api.Dependencies{
		Chat:        a.Chat,
		Account:     a.Account,
		Export:      a.Export,
		Diagnostics: a.Diagnostics,
		Students:    a.Store,
		Settings:    a.Settings,
		Metrics:     a.Metrics,
		Logger:      a.Logger,
	}
	if a.Drive != nil {
		deps.Drive = a.Drive
	}
	if a.Transcripts != nil {
		deps.Archive = a.Transcripts
	}
	return deps
}

// ToolDependencies returns the components used by the MCP tools.
func (a *App) ToolDependencies() *tools.Dependencies {
	deps := &tools.Dependencies{
		Chat:     a.Chat,
		Students: a.Store,
		Users:    a.Auth,
		Logger:   a.Logger,
	}
	if a.Drive != nil {
		deps.Drive = a.Drive
	}
	return deps
}

// Close releases every open connection.
func (a *App) Close(ctx context.Context) error {
	var errs []error
	if a.Transcripts != nil {
		errs = append(errs, a.Transcripts.Close(ctx))
	}
	if a.Store != nil {
		errs = append(errs, a.Store.Close())
	}
	return errors.Join(errs...)
}
