package tools

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// PingInput defines the input schema for the ping tool.
type PingInput struct {
	Echo   string `json:"echo,omitempty" jsonschema:"Text to echo back"`
	Status bool   `json:"status,omitempty" jsonschema:"Report sign-in, Drive and conversation status instead of pong"`
}

// Status is what ping reports when asked for status.
type Status struct {
	SignedIn     bool   `json:"signedIn"`
	Email        string `json:"email,omitempty"`
	DriveEnabled bool   `json:"driveEnabled"`
	Messages     int    `json:"messages"`
	Loading      bool   `json:"loading"`
	LastError    string `json:"lastError,omitempty"`
}

// NewPingHandler answers "pong", echoes input, or reports status.
func NewPingHandler(deps *Dependencies) mcp.ToolHandlerFor[PingInput, any] {
	return func(ctx context.Context, req *mcp.CallToolRequest, input PingInput) (*mcp.CallToolResult, any, error) {
		switch {
		case input.Status && deps != nil:
			return JSONResult(status(ctx, deps)), nil, nil
		case input.Echo != "":
			return TextResult(input.Echo), nil, nil
		}
		return TextResult("pong"), nil, nil
	}
}

func status(ctx context.Context, deps *Dependencies) Status {
	var s Status
	if deps.Users != nil {
		if user, err := deps.Users.CurrentUser(ctx); err == nil {
			s.SignedIn, s.Email = true, user.Email
		}
	}
	s.DriveEnabled = deps.Drive != nil
	if deps.Chat != nil {
		state := deps.Chat.State()
		s.Messages, s.Loading, s.LastError = len(state.Messages), state.Loading, state.LastError
	}
	return s
}
