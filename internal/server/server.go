// Package server runs the assistant's tools as an MCP server over stdio.
package server

import (
	"context"
	"log/slog"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/raphaelgruber/sayar/internal/tools"
)

// Name is the implementation name reported to MCP clients.
const Name = "sayar"

const instructions = `Sayar is a teaching assistant. Use ask_assistant for lesson plans,
exam questions and teaching advice; it remembers the last 10 messages.
Student records are local (list_students, search_students, add_student).
Files live in the signed-in teacher's Google Drive folders (list_files,
upload_document). Call ping with status=true to see whether a teacher is
signed in and Drive is enabled.`

// Server is the MCP surface of the assistant.
type Server struct {
	mcp    *mcp.Server
	deps   *tools.Dependencies
	logger *slog.Logger
}

// New creates the server. With nil deps no tools are registered.
func New(version string, deps *tools.Dependencies, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	impl := &mcp.Implementation{Name: Name, Title: "Sayar teaching assistant", Version: version}
	return &Server{
		mcp:    mcp.NewServer(impl, &mcp.ServerOptions{Instructions: instructions}),
		deps:   deps,
		logger: logger,
	}
}

// Run serves on stdio until the client disconnects or ctx is done.
func (s *Server) Run(ctx context.Context) error {
	s.logger.Info("serving MCP", "transport", "stdio", "tools", s.deps != nil)
	return s.mcp.Run(ctx, &mcp.StdioTransport{})
}

// MCPServer exposes the underlying server, for other transports.
func (s *Server) MCPServer() *mcp.Server {
	return s.mcp
}

// Setup installs request logging and registers the tools. Tools without
// their own logger share the server's.
func (s *Server) Setup() {
	s.mcp.AddReceivingMiddleware(LoggingMiddleware(s.logger))
	if s.deps == nil {
		return
	}
	if s.deps.Logger == nil {
		s.deps.Logger = s.logger
	}
	tools.RegisterAll(s.mcp, s.deps)
}
