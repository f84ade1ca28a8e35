package cli

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"
	"gopkg.in/yaml.v3"

	"github.com/raphaelgruber/sayar/internal/models"
	"github.com/raphaelgruber/sayar/internal/settings"
)

var settingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "Show or change preferences",
}

var settingsShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print current settings with API keys masked",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		current, err := application.Settings.Current(cmd.Context())
		if err != nil {
			return err
		}
		out, err := yaml.Marshal(current.Redacted())
		if err != nil {
			return err
		}
		printHint("# %s", application.Settings.Path())
		fmt.Print(string(out))
		return nil
	},
}

var settingsSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Change one setting",
	Long: fmt.Sprintf(`Change one setting.

Keys: %s

Examples:
  sayar settings set ai_provider ollama
  sayar settings set teacher_grade "Grade 5"`, strings.Join(settings.Keys(), ", ")),
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := application.Settings.Set(cmd.Context(), args[0], args[1]); err != nil {
			return err
		}
		printSuccess("Set %s", args[0])
		return nil
	},
}

var settingsSetKeyCmd = &cobra.Command{
	Use:   "set-key <gemini|openai>",
	Short: "Store an API key without echoing it",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		provider, ok := models.ParseAIProvider(args[0])
		if !ok || provider == models.ProviderOllama {
			return fmt.Errorf("set-key takes gemini or openai, got %q", args[0])
		}

		key, err := readSecret(fmt.Sprintf("%s API key: ", provider.DisplayName()))
		if err != nil {
			return err
		}
		if key == "" {
			return fmt.Errorf("no key entered")
		}

		ctx := cmd.Context()
		if provider == models.ProviderOpenAI {
			err = application.Settings.SetOpenAIAPIKey(ctx, key)
		} else {
			err = application.Settings.SetGeminiAPIKey(ctx, key)
		}
		if err != nil {
			return err
		}
		printSuccess("Saved %s API key", provider.DisplayName())
		return nil
	},
}

func init() {
	settingsCmd.AddCommand(settingsShowCmd)
	settingsCmd.AddCommand(settingsSetCmd)
	settingsCmd.AddCommand(settingsSetKeyCmd)
}

// readSecret prompts on a terminal without echo, or reads one line from a pipe.
func readSecret(prompt string) (string, error) {
	fd := int(os.Stdin.Fd())
	if term.IsTerminal(fd) {
		fmt.Fprint(os.Stderr, prompt)
		b, err := term.ReadPassword(fd)
		fmt.Fprintln(os.Stderr)
		if err != nil {
			return "", err
		}
		return strings.TrimSpace(string(b)), nil
	}
	line, err := bufio.NewReader(os.Stdin).ReadString('\n')
	if err != nil && line == "" {
		return "", err
	}
	return strings.TrimSpace(line), nil
}
