package models

import (
	"time"

	surrealmodels "github.com/surrealdb/surrealdb.go/pkg/models"
)

// Conversation is an archived chat transcript.
type Conversation struct {
	ID           surrealmodels.RecordID `json:"id"`
	Owner        string                 `json:"owner"`
	Title        string                 `json:"title"`
	MessageCount int                    `json:"message_count"`
	CreatedAt    time.Time              `json:"created_at"`
}

// Message is a single archived message within a conversation.
type Message struct {
	ID           surrealmodels.RecordID `json:"id"`
	Conversation surrealmodels.RecordID `json:"conversation"`
	Position     int                    `json:"position"`
	Role         string                 `json:"role"`
	Content      string                 `json:"content"`
	CreatedAt    time.Time              `json:"created_at"`
}

// ChatMessage converts an archived message back into a history entry.
func (m Message) ChatMessage() ChatMessage {
	id, err := RecordIDString(m.ID)
	if err != nil {
		id = ""
	}
	return ChatMessage{
		ID:        id,
		Content:   m.Content,
		FromUser:  m.Role == RoleUser,
		Timestamp: m.CreatedAt,
	}
}
