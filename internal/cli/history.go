package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/raphaelgruber/sayar/internal/models"
)

var errNoArchive = errors.New("transcript archive is not configured (set SURREALDB_URL)")

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Export, import and browse saved conversations",
}

var historyExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Save the conversation kept on Drive into the transcript archive",
	Long: `Load the conversation saved in Drive and export it again, writing
chat_history.json to Drive and a transcript to the archive when one is
configured.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := requireDrive(); err != nil {
			return err
		}
		if err := importHistory(cmd.Context()); err != nil {
			return err
		}
		return exportHistory(cmd.Context())
	},
}

var historyImportCmd = &cobra.Command{
	Use:   "import",
	Short: "Show the conversation saved in Drive",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := importHistory(cmd.Context()); err != nil {
			return err
		}
		for _, msg := range application.Chat.Messages() {
			printMessage(msg)
		}
		return nil
	},
}

var historyListCmd = &cobra.Command{
	Use:   "list",
	Short: "List archived conversations",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if application.Transcripts == nil {
			return errNoArchive
		}
		email, err := currentEmail(cmd.Context())
		if err != nil {
			return err
		}
		convs, err := application.Transcripts.ListConversations(cmd.Context(), email)
		if err != nil {
			return err
		}
		if len(convs) == 0 {
			printHint("No archived conversations")
			return nil
		}
		for _, c := range convs {
			id, _ := models.RecordIDString(c.ID)
			fmt.Printf("%-24s %s  %3d msgs  %s\n", id, c.CreatedAt.Local().Format("2006-01-02 15:04"), c.MessageCount, c.Title)
		}
		return nil
	},
}

var historyShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Print an archived conversation",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if application.Transcripts == nil {
			return errNoArchive
		}
		if _, err := currentEmail(cmd.Context()); err != nil {
			return err
		}
		msgs, err := application.Transcripts.ConversationMessages(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		for _, m := range msgs {
			printMessage(m.ChatMessage())
		}
		return nil
	},
}

func init() {
	historyCmd.AddCommand(historyExportCmd)
	historyCmd.AddCommand(historyImportCmd)
	historyCmd.AddCommand(historyListCmd)
	historyCmd.AddCommand(historyShowCmd)
}
