package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/raphaelgruber/sayar/internal/models"
	"github.com/raphaelgruber/sayar/internal/service"
)

var chatResume bool

var askCmd = &cobra.Command{
	Use:   "ask <message>",
	Short: "Ask the assistant a single question",
	Long: `Ask the assistant a single question. The reply uses your configured
provider, grade and subject.

Examples:
  sayar ask "Give me three warm-up questions on fractions"
  sayar ask "ကလေးများအတွက် သင်ခန်းစာ အစီအစဉ်"`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		reply, err := submit(cmd.Context(), strings.Join(args, " "))
		if err != nil {
			return err
		}
		if reply != nil {
			fmt.Println(reply.Content)
		}
		return nil
	},
}

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Start an interactive conversation",
	Long: `Start an interactive conversation with the assistant. The last 10
messages are sent as context with every question.

Commands inside the chat:
  /clear    forget the conversation
  /export   save the conversation to Drive and the transcript archive
  /import   replace the conversation with the copy saved in Drive
  /quit     leave`,
	Args: cobra.NoArgs,
	RunE: runChat,
}

func init() {
	chatCmd.Flags().BoolVar(&chatResume, "resume", false, "load the conversation saved in Drive first")
}

// submit sends text to the conversation manager behind a spinner.
func submit(ctx context.Context, text string) (*models.ChatMessage, error) {
	var reply *models.ChatMessage
	err := runTask(ctx, "Thinking...", 0, func(ctx context.Context, _ func(string)) error {
		var err error
		reply, err = application.Chat.Submit(ctx, text)
		return err
	})
	return reply, err
}

func runChat(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	if chatResume {
		if err := importHistory(ctx); err != nil {
			return err
		}
		for _, msg := range application.Chat.Messages() {
			printMessage(msg)
		}
	}

	printHint("Type a message, or /help. Ctrl+D to quit.")
	scanner := bufio.NewScanner(os.Stdin)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)
	for {
		fmt.Print(defaultTheme.speakerStyle(true).Render("you> "))
		if !scanner.Scan() {
			fmt.Println()
			return scanner.Err()
		}
		line := strings.TrimSpace(scanner.Text())

		switch line {
		case "":
			continue
		case "/quit", "/exit":
			return nil
		case "/help":
			printHint("/clear  /export  /import  /quit")
			continue
		case "/clear":
			application.Chat.Clear()
			application.Chat.ClearError()
			printSuccess("Conversation cleared")
			continue
		case "/export":
			if err := exportHistory(ctx); err != nil {
				printError(err)
			}
			continue
		case "/import":
			if err := importHistory(ctx); err != nil {
				printError(err)
			}
			continue
		}

		reply, err := submit(ctx, line)
		if err != nil {
			if errors.Is(err, context.Canceled) {
				return nil
			}
			printError(err)
			continue
		}
		if reply != nil {
			printMessage(*reply)
		}
	}
}

func printMessage(msg models.ChatMessage) {
	speaker := "sayar>"
	if msg.FromUser {
		speaker = "you>"
	}
	fmt.Printf("%s %s\n", defaultTheme.speakerStyle(msg.FromUser).Render(speaker), msg.Content)
}

func exportHistory(ctx context.Context) error {
	var result service.ExportResult
	err := runTask(ctx, "Exporting conversation...", 0, func(ctx context.Context, _ func(string)) error {
		var err error
		result, err = application.Export.ExportChat(ctx)
		return err
	})
	if result.DriveFile != nil {
		printSuccess("Saved %d messages to Drive (%s)", result.Messages, result.DriveFile.Name)
	}
	if result.Conversation != nil {
		printSuccess("Archived as %q", result.Conversation.Title)
	}
	return err
}

func importHistory(ctx context.Context) error {
	var n int
	err := runTask(ctx, "Loading conversation from Drive...", 0, func(ctx context.Context, _ func(string)) error {
		var err error
		n, err = application.Export.ImportChat(ctx)
		return err
	})
	if err != nil {
		return err
	}
	printSuccess("Loaded %d messages", n)
	return nil
}
