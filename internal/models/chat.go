// Package models defines data structures shared across the Sayar assistant.
package models

import (
	"time"

	"github.com/google/uuid"
)

// Message roles as sent to AI providers and stored in transcripts.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// ChatMessage is a single immutable entry in a conversation history.
type ChatMessage struct {
	ID        string    `json:"id"`
	Content   string    `json:"content"`
	FromUser  bool      `json:"isFromUser"`
	Timestamp time.Time `json:"timestamp"`
}

// NewChatMessage creates a message with a fresh ID stamped at now.
func NewChatMessage(content string, fromUser bool, now time.Time) ChatMessage {
	return ChatMessage{
		ID:        uuid.New().String(),
		Content:   content,
		FromUser:  fromUser,
		Timestamp: now,
	}
}

// Role returns RoleUser or RoleAssistant depending on the message origin.
func (m ChatMessage) Role() string {
	if m.FromUser {
		return RoleUser
	}
	return RoleAssistant
}

// ConversationState is a point-in-time view of a conversation.
type ConversationState struct {
	Messages  []ChatMessage `json:"messages"`
	Loading   bool          `json:"loading"`
	LastError string        `json:"lastError,omitempty"`
}
