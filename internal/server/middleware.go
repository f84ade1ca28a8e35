package server

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

const (
	// maxArgLogLen bounds logged tool arguments, in runes.
	maxArgLogLen = 200

	// slowCallThreshold is generous because ask_assistant waits on an AI provider.
	slowCallThreshold = 5 * time.Second
)

// LoggingMiddleware logs every request with its duration. Tool calls also
// log the tool name and arguments, which may hold student details, only
// at DEBUG. Failures go to ERROR and slow calls to WARN.
func LoggingMiddleware(logger *slog.Logger) mcp.Middleware {
	return func(next mcp.MethodHandler) mcp.MethodHandler {
		return func(ctx context.Context, method string, req mcp.Request) (mcp.Result, error) {
			start := time.Now()
			result, err := next(ctx, method, req)
			elapsed := time.Since(start)

			attrs := []any{"method", method, "duration_ms", elapsed.Milliseconds()}
			tool, args := toolCall(req)
			if tool != "" {
				attrs = append(attrs, "tool", tool)
			}
			if res, ok := result.(*mcp.CallToolResult); ok && res != nil && res.IsError {
				attrs = append(attrs, "tool_error", true)
			}

			switch {
			case err != nil:
				logger.Error("mcp request failed", append(attrs, "error", err)...)
			case elapsed > slowCallThreshold:
				logger.Warn("slow mcp request", attrs...)
			default:
				if args != "" {
					attrs = append(attrs, "args", truncate(args, maxArgLogLen))
				}
				logger.Debug("mcp request", attrs...)
			}
			return result, err
		}
	}
}

// toolCall extracts the tool name and raw arguments from a tools/call request.
func toolCall(req mcp.Request) (name, args string) {
	call, ok := req.(*mcp.CallToolRequest)
	if !ok || call == nil || call.Params == nil {
		return "", ""
	}
	if len(call.Params.Arguments) > 0 && json.Valid(call.Params.Arguments) {
		args = string(call.Params.Arguments)
	}
	return call.Params.Name, args
}

// truncate shortens s to maxLen runes, ending in "..." if it was cut.
func truncate(s string, maxLen int) string {
	runes := []rune(s)
	if len(runes) <= maxLen {
		return s
	}
	if maxLen < 3 {
		return string(runes[:maxLen])
	}
	return string(runes[:maxLen-3]) + "..."
}
