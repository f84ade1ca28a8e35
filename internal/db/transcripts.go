package db

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/raphaelgruber/sayar/internal/models"
	"github.com/surrealdb/surrealdb.go"
)

// titleMaxLen bounds the derived conversation title.
const titleMaxLen = 60

// SaveConversation archives messages as a new conversation owned by owner.
// An empty title is derived from the first user message.
func (c *Client) SaveConversation(ctx context.Context, owner, title string, messages []models.ChatMessage) (*models.Conversation, error) {
	if strings.TrimSpace(owner) == "" {
		return nil, fmt.Errorf("save conversation: owner is required")
	}
	if strings.TrimSpace(title) == "" {
		title = models.TitleFromMessages(messages, titleMaxLen)
	}

	rows := make([]map[string]any, len(messages))
	for i, m := range messages {
		rows[i] = map[string]any{
			"position":   i,
			"role":       m.Role(),
			"content":    m.Content,
			"created_at": m.Timestamp.UTC().Format(time.RFC3339Nano),
		}
	}

	// Conversation and messages are written in one transaction.
	sql := `
		BEGIN TRANSACTION;
		LET $conv = type::record("conversation", $id);
		CREATE $conv SET
			owner = $owner,
			title = $title,
			message_count = array::len($messages),
			created_at = time::now();
		FOR $m IN $messages {
			CREATE message SET
				conversation = $conv,
				position = $m.position,
				role = $m.role,
				content = $m.content,
				created_at = type::datetime($m.created_at);
		};
		COMMIT TRANSACTION;
	`
	id := uuid.New().String()
	if _, err := surrealdb.Query[any](ctx, c.db, sql, map[string]any{
		"id":       id,
		"owner":    owner,
		"title":    title,
		"messages": rows,
	}); err != nil {
		return nil, fmt.Errorf("save conversation: %w", classify(err))
	}

	conv, err := c.GetConversation(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("save conversation: %w", err)
	}
	c.log.Info("archived conversation", "id", id, "owner", owner, "messages", len(messages))
	return conv, nil
}

// GetConversation retrieves a conversation by ID. Returns ErrNotFound if absent.
func (c *Client) GetConversation(ctx context.Context, id string) (*models.Conversation, error) {
	results, err := surrealdb.Query[[]models.Conversation](ctx, c.db, `
		SELECT * FROM type::record("conversation", $id)
	`, map[string]any{"id": id})
	if err != nil {
		return nil, fmt.Errorf("get conversation: %w", classify(err))
	}
	if results == nil || len(*results) == 0 || len((*results)[0].Result) == 0 {
		return nil, ErrNotFound
	}
	return &(*results)[0].Result[0], nil
}

// ListConversations returns the owner's conversations, newest first.
func (c *Client) ListConversations(ctx context.Context, owner string) ([]models.Conversation, error) {
	results, err := surrealdb.Query[[]models.Conversation](ctx, c.db, `
		SELECT * FROM conversation WHERE owner = $owner ORDER BY created_at DESC
	`, map[string]any{"owner": owner})
	if err != nil {
		return nil, fmt.Errorf("list conversations: %w", classify(err))
	}
	if results == nil || len(*results) == 0 {
		return []models.Conversation{}, nil
	}
	return (*results)[0].Result, nil
}

// ConversationMessages returns a conversation's messages in order.
// Returns ErrNotFound if the conversation does not exist.
func (c *Client) ConversationMessages(ctx context.Context, id string) ([]models.Message, error) {
	if _, err := c.GetConversation(ctx, id); err != nil {
		return nil, err
	}
	results, err := surrealdb.Query[[]models.Message](ctx, c.db, `
		SELECT * FROM message
		WHERE conversation = type::record("conversation", $id)
		ORDER BY position ASC
	`, map[string]any{"id": id})
	if err != nil {
		return nil, fmt.Errorf("conversation messages: %w", classify(err))
	}
	if results == nil || len(*results) == 0 {
		return []models.Message{}, nil
	}
	return (*results)[0].Result, nil
}

// DeleteConversation removes a conversation and its messages.
// Returns ErrNotFound if it does not exist.
func (c *Client) DeleteConversation(ctx context.Context, id string) error {
	results, err := surrealdb.Query[[]models.Conversation](ctx, c.db, `
		DELETE message WHERE conversation = type::record("conversation", $id);
		DELETE type::record("conversation", $id) RETURN BEFORE;
	`, map[string]any{"id": id})
	if err != nil {
		return fmt.Errorf("delete conversation: %w", classify(err))
	}
	if results == nil || len(*results) < 2 || len((*results)[1].Result) == 0 {
		return ErrNotFound
	}
	return nil
}
