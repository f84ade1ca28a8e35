package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/raphaelgruber/sayar/internal/client"
	"github.com/raphaelgruber/sayar/internal/models"
)

var watchOnce bool

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Follow the conversation of a running sayar-server",
	Long: `Print the conversation held by a running sayar-server and follow it
as new messages arrive. Useful next to the web or MCP surface.

The server address comes from SAYAR_SERVER_URL (default http://localhost:8484).`,
	Annotations: map[string]string{standalone: "true"},
	Args:        cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		c := client.New("")
		if err := c.Health(cmd.Context()); err != nil {
			return fmt.Errorf("server not reachable: %w", err)
		}

		w := &stateWatcher{}
		err := c.WatchChat(cmd.Context(), func(state models.ConversationState) error {
			w.render(state)
			if watchOnce {
				return client.ErrStopWatching
			}
			return nil
		})
		if errors.Is(err, context.Canceled) {
			return nil
		}
		return err
	},
}

func init() {
	watchCmd.Flags().BoolVar(&watchOnce, "once", false, "print the current conversation and exit")
}

// stateWatcher prints only what changed between two conversation states.
type stateWatcher struct {
	printed   []string
	loading   bool
	lastError string
}

func (w *stateWatcher) render(state models.ConversationState) {
	if len(state.Messages) < len(w.printed) || !w.samePrefix(state.Messages) {
		printHint("-- conversation cleared --")
		w.printed = nil
	}
	for _, msg := range state.Messages[len(w.printed):] {
		printMessage(msg)
		w.printed = append(w.printed, msg.ID)
	}

	if state.Loading && !w.loading {
		fmt.Println(defaultTheme.statusStyle().Render("… thinking"))
	}
	w.loading = state.Loading

	if state.LastError != "" && state.LastError != w.lastError {
		fmt.Println(defaultTheme.errorStyle().Render("✗ " + state.LastError))
	}
	w.lastError = state.LastError
}

func (w *stateWatcher) samePrefix(messages []models.ChatMessage) bool {
	for i, id := range w.printed {
		if messages[i].ID != id {
			return false
		}
	}
	return true
}
