package cli

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/raphaelgruber/sayar/internal/models"
	"github.com/raphaelgruber/sayar/internal/service"
)

var loginToken string

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Sign in and set up your Drive folders",
}

var loginDemoCmd = &cobra.Command{
	Use:   "demo",
	Short: "Sign in as the demo teacher",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		var (
			user  models.User
			setup service.DriveSetup
		)
		err := runTask(cmd.Context(), "Signing in...", 0, func(ctx context.Context, _ func(string)) error {
			var err error
			user, setup, err = application.Account.SignInAsDemo(ctx)
			return err
		})
		if err != nil {
			return err
		}
		printSignIn(user, setup)
		return nil
	},
}

var loginGoogleCmd = &cobra.Command{
	Use:   "google",
	Short: "Sign in with a Google ID token",
	Long: `Sign in with a Google ID token obtained from Google Sign-In.

The token is read from --token or the GOOGLE_ID_TOKEN environment variable.

Examples:
  sayar login google --token eyJhbGciOi...
  GOOGLE_ID_TOKEN=eyJhbGciOi... sayar login google`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		token := strings.TrimSpace(loginToken)
		if token == "" {
			token = strings.TrimSpace(os.Getenv("GOOGLE_ID_TOKEN"))
		}
		if token == "" {
			return fmt.Errorf("an ID token is required (--token or GOOGLE_ID_TOKEN)")
		}

		var (
			user  models.User
			setup service.DriveSetup
		)
		err := runTask(cmd.Context(), "Signing in...", 0, func(ctx context.Context, _ func(string)) error {
			var err error
			user, setup, err = application.Account.SignInWithGoogle(ctx, token)
			return err
		})
		if err != nil {
			return err
		}
		printSignIn(user, setup)
		return nil
	},
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Sign out and clear cached folders",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := application.Account.SignOut(cmd.Context()); err != nil {
			return err
		}
		printSuccess("Signed out")
		return nil
	},
}

var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Show the signed-in user",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		user, err := application.Account.CurrentUser(cmd.Context())
		if err != nil {
			return err
		}
		fmt.Printf("Email: %s\n", user.Email)
		if user.DisplayName != nil {
			fmt.Printf("Name:  %s\n", *user.DisplayName)
		}
		if application.Drive == nil {
			printHint("Google Drive is disabled")
			return nil
		}
		if set, err := application.Drive.Folders(cmd.Context(), user.Email); err == nil {
			fmt.Printf("Drive: %s\n", set.RootFolderID)
		} else {
			printHint("Drive folders not set up yet. Run 'sayar drive init'.")
		}
		return nil
	},
}

func init() {
	loginGoogleCmd.Flags().StringVar(&loginToken, "token", "", "Google ID token")
	loginCmd.AddCommand(loginDemoCmd)
	loginCmd.AddCommand(loginGoogleCmd)
}

func printSignIn(user models.User, setup service.DriveSetup) {
	name := user.Email
	if user.DisplayName != nil && *user.DisplayName != "" {
		name = fmt.Sprintf("%s <%s>", *user.DisplayName, user.Email)
	}
	printSuccess("Signed in as %s", name)
	printDriveSetup(setup)
}

func printDriveSetup(setup service.DriveSetup) {
	switch setup.Status {
	case service.DriveSetupReady:
		printSuccess("Drive folders ready (root %s)", setup.Folders.RootFolderID)
	case service.DriveSetupFailed:
		fmt.Println(defaultTheme.errorStyle().Render("✗ Drive setup failed: " + setup.Error))
		printHint("You are still signed in. Run 'sayar drive init' to retry.")
	case service.DriveSetupDisabled:
		printHint("Google Drive is disabled; files and exports stay local.")
	}
}
