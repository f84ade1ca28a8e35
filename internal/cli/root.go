// Package cli provides the command-line interface for sayar.
package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/raphaelgruber/sayar/internal/app"
	"github.com/raphaelgruber/sayar/internal/config"
	"github.com/raphaelgruber/sayar/internal/service"
)

var (
	// Version is set at build time.
	Version = "0.1.0"

	// Global flags
	verbose bool

	// Global config and components
	cfg         config.Config
	application *app.App
	closeLog    func() error
)

// standalone marks commands that talk to a running server instead of
// opening local storage.
const standalone = "standalone"

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "sayar",
	Short: "AI teaching assistant for teachers",
	Long: `Sayar is a teaching assistant: chat with an AI helper that knows your
grade and subject, keep student records, and store timetables and documents
in per-teacher Google Drive folders.

Preferences (AI provider, API keys, grade, subject) are kept in a settings
file; see 'sayar settings show'.`,
	Version:       Version,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if cmd.Name() == "help" || cmd.Name() == "version" || cmd.Annotations[standalone] == "true" {
			return nil
		}

		var err error
		cfg, err = config.Load()
		if err != nil {
			return err
		}

		// Log to the file only so command output stays clean, unless verbose.
		var logger *slog.Logger
		if verbose {
			logger, closeLog = config.SetupLogger(cfg.LogFile, slog.LevelDebug)
		} else {
			logger, closeLog = config.SetupFileLogger(cfg.LogFile, cfg.LogLevel)
		}
		slog.SetDefault(logger)

		application, err = app.New(cmd.Context(), cfg, logger)
		if err != nil {
			return fmt.Errorf("initialize: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if application != nil {
			if err := application.Close(context.Background()); err != nil {
				fmt.Fprintf(os.Stderr, "Warning: failed to close storage: %v\n", err)
			}
		}
		if closeLog != nil {
			_ = closeLog()
		}
	},
}

// Execute adds all child commands to the root command and runs it.
func Execute(ctx context.Context) error {
	err := rootCmd.ExecuteContext(ctx)
	if err != nil {
		printError(err)
	}
	return err
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "log to stderr at debug level")

	rootCmd.AddCommand(loginCmd)
	rootCmd.AddCommand(logoutCmd)
	rootCmd.AddCommand(whoamiCmd)
	rootCmd.AddCommand(chatCmd)
	rootCmd.AddCommand(askCmd)
	rootCmd.AddCommand(studentsCmd)
	rootCmd.AddCommand(driveCmd)
	rootCmd.AddCommand(settingsCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(usageCmd)
	rootCmd.AddCommand(watchCmd)
}

// currentEmail returns the signed-in user's email.
func currentEmail(ctx context.Context) (string, error) {
	user, err := application.Auth.CurrentUser(ctx)
	if err != nil {
		return "", fmt.Errorf("%w (run 'sayar login demo' or 'sayar login google')", err)
	}
	return user.Email, nil
}

// requireDrive fails when Google Drive is not configured.
func requireDrive() error {
	if application.Drive == nil {
		return fmt.Errorf("%w: set GOOGLE_DRIVE_ENABLED=true and GOOGLE_SERVICE_ACCOUNT_FILE", service.ErrDriveDisabled)
	}
	return nil
}
