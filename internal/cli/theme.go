package cli

import (
	"errors"
	"fmt"
	"os"

	"github.com/charmbracelet/lipgloss"

	"github.com/raphaelgruber/sayar/internal/chat"
)

// Theme holds the color scheme for terminal output.
type Theme struct {
	Status    lipgloss.Color
	Success   lipgloss.Color
	Error     lipgloss.Color
	Hint      lipgloss.Color
	User      lipgloss.Color
	Assistant lipgloss.Color
}

var defaultTheme = Theme{
	Status:    lipgloss.Color("#5FAFD7"), // light blue
	Success:   lipgloss.Color("#00D787"), // green
	Error:     lipgloss.Color("#FF005F"), // red
	Hint:      lipgloss.Color("#6C6C6C"), // dim gray
	User:      lipgloss.Color("#D7AF5F"), // amber
	Assistant: lipgloss.Color("#AF87FF"), // violet
}

func (t Theme) statusStyle() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(t.Status)
}

func (t Theme) completedStyle() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(t.Success).Bold(true)
}

func (t Theme) errorStyle() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(t.Error).Bold(true)
}

func (t Theme) hintStyle() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(t.Hint).Italic(true)
}

func (t Theme) headingStyle() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(t.Status).Bold(true).Underline(true)
}

func (t Theme) speakerStyle(fromUser bool) lipgloss.Style {
	if fromUser {
		return lipgloss.NewStyle().Foreground(t.User).Bold(true)
	}
	return lipgloss.NewStyle().Foreground(t.Assistant).Bold(true)
}

func printSuccess(format string, args ...any) {
	fmt.Println(defaultTheme.completedStyle().Render("✓ " + fmt.Sprintf(format, args...)))
}

func printHint(format string, args ...any) {
	fmt.Println(defaultTheme.hintStyle().Render(fmt.Sprintf(format, args...)))
}

func printHeading(title string) {
	fmt.Println(defaultTheme.headingStyle().Render(title))
}

// printError prints err for the user. Chat failures already carry a
// display message; their kind is shown as a hint.
func printError(err error) {
	msg := err.Error()
	var chatErr *chat.Error
	if errors.As(err, &chatErr) {
		msg = chatErr.Message
	}
	fmt.Fprintln(os.Stderr, defaultTheme.errorStyle().Render("✗ "+msg))
}
