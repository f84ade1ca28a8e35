// Package config loads runtime configuration from the environment.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/caarlos0/env/v11"
)

// Config holds all configuration values.
type Config struct {
	// Local storage
	DataDir      string `env:"SAYAR_DATA_DIR"`
	DBPath       string `env:"SAYAR_DB_PATH"`
	SettingsFile string `env:"SAYAR_SETTINGS_FILE"`

	// Logging
	LogFile     string `env:"SAYAR_LOG_FILE" envDefault:"/tmp/sayar.log"`
	LogLevelRaw string `env:"SAYAR_LOG_LEVEL" envDefault:"INFO"`
	LogLevel    slog.Level

	// HTTP API
	ServerPort string `env:"SAYAR_SERVER_PORT" envDefault:"8484"`

	// AI providers. The keys only seed the settings store on first run.
	GeminiAPIKey string `env:"GEMINI_API_KEY"`
	OpenAIAPIKey string `env:"OPENAI_API_KEY"`
	GeminiModel  string `env:"GEMINI_MODEL" envDefault:"gemini-2.5-flash"`
	OpenAIModel  string `env:"OPENAI_MODEL" envDefault:"gpt-4o-mini"`
	OllamaModel  string `env:"OLLAMA_MODEL" envDefault:"llama3.2"`

	// Google Drive
	DriveEnabled        bool   `env:"GOOGLE_DRIVE_ENABLED" envDefault:"false"`
	DriveRootFolderID   string `env:"GOOGLE_DRIVE_ROOT_FOLDER_ID"`
	ServiceAccountFile  string `env:"GOOGLE_SERVICE_ACCOUNT_FILE"`
	FolderCacheCapacity int    `env:"FOLDER_CACHE_SIZE" envDefault:"8"`

	// SurrealDB transcript archive (disabled when URL is empty)
	SurrealDBURL       string `env:"SURREALDB_URL"`
	SurrealDBNamespace string `env:"SURREALDB_NAMESPACE" envDefault:"sayar"`
	SurrealDBDatabase  string `env:"SURREALDB_DATABASE" envDefault:"transcripts"`
	SurrealDBUser      string `env:"SURREALDB_USER" envDefault:"root"`
	SurrealDBPass      string `env:"SURREALDB_PASS" envDefault:"root"`
	SurrealDBAuthLevel string `env:"SURREALDB_AUTH_LEVEL" envDefault:"root"`
}

// Load reads configuration from environment variables and fills in
// paths derived from the data directory.
func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}

	if cfg.DataDir == "" {
		cfg.DataDir = defaultDataDir()
	}
	if cfg.DBPath == "" {
		cfg.DBPath = filepath.Join(cfg.DataDir, "sayar.db")
	}
	if cfg.SettingsFile == "" {
		cfg.SettingsFile = filepath.Join(cfg.DataDir, "settings.yaml")
	}
	if cfg.FolderCacheCapacity <= 0 {
		cfg.FolderCacheCapacity = 8
	}
	cfg.LogLevel = parseLogLevel(cfg.LogLevelRaw)
	return cfg, nil
}

// TranscriptsEnabled reports whether a SurrealDB archive is configured.
func (c Config) TranscriptsEnabled() bool {
	return strings.TrimSpace(c.SurrealDBURL) != ""
}

func defaultDataDir() string {
	if dir, err := os.UserConfigDir(); err == nil {
		return filepath.Join(dir, "sayar")
	}
	return filepath.Join(os.TempDir(), "sayar")
}

func parseLogLevel(s string) slog.Level {
	switch strings.ToUpper(s) {
	case "DEBUG":
		return slog.LevelDebug
	case "INFO":
		return slog.LevelInfo
	case "WARN", "WARNING":
		return slog.LevelWarn
	case "ERROR":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
