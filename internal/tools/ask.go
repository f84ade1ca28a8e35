package tools

import (
	"context"
	"errors"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/raphaelgruber/sayar/internal/chat"
)

// AskInput defines the input schema for the ask_assistant tool.
type AskInput struct {
	Message string `json:"message" jsonschema:"required,Message for the teaching assistant"`
	Reset   bool   `json:"reset,omitempty" jsonschema:"Clear the conversation before sending"`
}

// NewAskHandler creates the ask_assistant tool handler.
func NewAskHandler(deps *Dependencies) mcp.ToolHandlerFor[AskInput, any] {
	return func(ctx context.Context, req *mcp.CallToolRequest, input AskInput) (*mcp.CallToolResult, any, error) {
		if input.Reset {
			deps.Chat.Clear()
		}
		reply, err := deps.Chat.Submit(ctx, input.Message)
		if err != nil {
			var chatErr *chat.Error
			if errors.As(err, &chatErr) && chatErr.Kind == chat.KindConfiguration {
				return ErrorResult(chatErr.Message, "Run `sayar settings set-key` to configure the provider"), nil, nil
			}
			deps.Logger.Warn("ask_assistant failed", "error", err)
			return ErrorResult(err.Error(), ""), nil, nil
		}
		if reply == nil {
			return ErrorResult("Message is required", "Provide a non-blank message"), nil, nil
		}
		return TextResult(reply.Content), nil, nil
	}
}
