package tools

import (
	"encoding/json"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

func textContent(text string, isError bool) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: text}},
		IsError: isError,
	}
}

// ErrorResult reports a failure the calling model can act on. A non-empty
// hint is appended as "{msg}. {hint}".
func ErrorResult(msg, hint string) *mcp.CallToolResult {
	if hint != "" {
		msg += ". " + hint
	}
	return textContent(msg, true)
}

// TextResult is a plain text success.
func TextResult(text string) *mcp.CallToolResult {
	return textContent(text, false)
}

// JSONResult renders v as indented JSON.
func JSONResult(v any) *mcp.CallToolResult {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return ErrorResult("Failed to encode result", err.Error())
	}
	return TextResult(string(data))
}

// listResult renders one entry per line.
func listResult(items []string) *mcp.CallToolResult {
	return TextResult(strings.Join(items, "\n"))
}
