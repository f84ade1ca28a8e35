package cli

import (
	"context"
	"fmt"
	"mime"
	"os"
	"path/filepath"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/raphaelgruber/sayar/internal/models"
	"github.com/raphaelgruber/sayar/internal/service"
)

var (
	uploadName   string
	downloadPath string
)

var driveCmd = &cobra.Command{
	Use:   "drive",
	Short: "Work with your Google Drive folders",
	Long: `Work with the folders Sayar keeps in Google Drive:

  Sayar Assistant - <email>/
    Timetables/
    Students/
    Documents/

Categories: timetables (or schedule), students, documents, root.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := rootCmd.PersistentPreRunE(cmd, args); err != nil {
			return err
		}
		return requireDrive()
	},
}

var driveInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Create or find your folders",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		var setup service.DriveSetup
		err := runTask(cmd.Context(), "Setting up Drive folders...", 0, func(ctx context.Context, _ func(string)) error {
			var err error
			setup, err = application.Account.RetryDriveSetup(ctx)
			return err
		})
		if err != nil {
			return err
		}
		printDriveSetup(setup)
		if setup.Status == service.DriveSetupFailed {
			return fmt.Errorf("drive setup failed")
		}
		return nil
	},
}

var driveFoldersCmd = &cobra.Command{
	Use:   "folders",
	Short: "Show your folder IDs",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		email, err := currentEmail(cmd.Context())
		if err != nil {
			return err
		}
		set, err := application.Drive.Folders(cmd.Context(), email)
		if err != nil {
			return err
		}
		printHeading("Folders for " + set.UserEmail)
		fmt.Printf("Root:       %s\n", set.RootFolderID)
		fmt.Printf("Timetables: %s\n", set.TimetablesFolderID)
		fmt.Printf("Students:   %s\n", set.StudentsFolderID)
		fmt.Printf("Documents:  %s\n", set.DocumentsFolderID)
		return nil
	},
}

var driveListCmd = &cobra.Command{
	Use:     "ls <category>",
	Aliases: []string{"list"},
	Short:   "List files in a folder",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		category, err := models.ParseFolderCategory(args[0])
		if err != nil {
			return err
		}
		email, err := currentEmail(cmd.Context())
		if err != nil {
			return err
		}
		files, err := application.Drive.ListFiles(cmd.Context(), email, category)
		if err != nil {
			return err
		}
		if len(files) == 0 {
			printHint("No files in %s", category)
			return nil
		}
		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tNAME\tSIZE\tMODIFIED")
		for _, f := range files {
			size := "-"
			if f.Size != nil {
				size = fmt.Sprintf("%d", *f.Size)
			}
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", f.ID, f.Name, size, f.ModifiedTime)
		}
		return w.Flush()
	},
}

var driveUploadCmd = &cobra.Command{
	Use:   "upload <category> <file>",
	Short: "Upload a local file into a folder",
	Long: `Upload a local file into one of your folders.

Examples:
  sayar drive upload timetables ./week3.pdf
  sayar drive upload documents notes.txt --name "Lesson notes.txt"`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		category, err := models.ParseFolderCategory(args[0])
		if err != nil {
			return err
		}
		content, err := os.ReadFile(args[1])
		if err != nil {
			return err
		}
		name := uploadName
		if name == "" {
			name = filepath.Base(args[1])
		}
		mimeType := mime.TypeByExtension(filepath.Ext(name))
		if mimeType == "" {
			mimeType = "application/octet-stream"
		}

		email, err := currentEmail(cmd.Context())
		if err != nil {
			return err
		}
		var file models.DriveFile
		err = runTask(cmd.Context(), "Uploading "+name+"...", 0, func(ctx context.Context, _ func(string)) error {
			var err error
			file, err = application.Drive.UploadTo(ctx, email, category, name, mimeType, content)
			return err
		})
		if err != nil {
			return err
		}
		printSuccess("Uploaded %s (%s)", file.Name, file.ID)
		if file.WebViewLink != "" {
			printHint("%s", file.WebViewLink)
		}
		return nil
	},
}

var driveDownloadCmd = &cobra.Command{
	Use:   "download <file-id>",
	Short: "Download a file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		data, err := application.Drive.Download(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		if downloadPath == "" || downloadPath == "-" {
			_, err = os.Stdout.Write(data)
			return err
		}
		if err := os.WriteFile(downloadPath, data, 0o644); err != nil {
			return err
		}
		printSuccess("Wrote %d bytes to %s", len(data), downloadPath)
		return nil
	},
}

var driveDeleteCmd = &cobra.Command{
	Use:     "rm <file-id>",
	Aliases: []string{"delete"},
	Short:   "Delete a file",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := application.Drive.Delete(cmd.Context(), args[0]); err != nil {
			return err
		}
		printSuccess("Deleted %s", args[0])
		return nil
	},
}

var driveTestCmd = &cobra.Command{
	Use:   "test",
	Short: "Check that Drive works by uploading and deleting a file",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		var result service.DriveTestResult
		err := runTask(cmd.Context(), "Testing Drive connection...", 4, func(ctx context.Context, report func(string)) error {
			var err error
			result, err = application.Diagnostics.RunDriveTest(ctx, report)
			return err
		})
		if err != nil {
			return err
		}
		printSuccess("%s", result.Message)
		for _, d := range result.Details {
			fmt.Println("  " + d)
		}
		return nil
	},
}

func init() {
	driveUploadCmd.Flags().StringVar(&uploadName, "name", "", "file name in Drive (defaults to the local name)")
	driveDownloadCmd.Flags().StringVarP(&downloadPath, "output", "o", "", "write to this path instead of stdout")

	driveCmd.AddCommand(driveInitCmd)
	driveCmd.AddCommand(driveFoldersCmd)
	driveCmd.AddCommand(driveListCmd)
	driveCmd.AddCommand(driveUploadCmd)
	driveCmd.AddCommand(driveDownloadCmd)
	driveCmd.AddCommand(driveDeleteCmd)
	driveCmd.AddCommand(driveTestCmd)
}
