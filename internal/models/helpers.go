package models

import (
	"fmt"
	"strings"

	surrealmodels "github.com/surrealdb/surrealdb.go/pkg/models"
)

// RecordIDString safely extracts the string ID from a SurrealDB RecordID.
// Returns an error if the ID is not a string type.
func RecordIDString(id surrealmodels.RecordID) (string, error) {
	s, ok := id.ID.(string)
	if !ok {
		return "", fmt.Errorf("unexpected ID type: %T (expected string)", id.ID)
	}
	return s, nil
}

// TitleFromMessages derives a short transcript title from the first user message.
func TitleFromMessages(messages []ChatMessage, maxLen int) string {
	for _, m := range messages {
		if !m.FromUser {
			continue
		}
		title := strings.Join(strings.Fields(m.Content), " ")
		if r := []rune(title); maxLen > 3 && len(r) > maxLen {
			title = string(r[:maxLen-3]) + "..."
		}
		return title
	}
	return "Untitled conversation"
}
