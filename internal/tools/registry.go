package tools

import (
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// RegisterAll registers all tools with the MCP server.
// Call it before Run.
func RegisterAll(server *mcp.Server, deps *Dependencies) {
	mcp.AddTool(server, &mcp.Tool{
		Name:        "ping",
		Description: "Health check: responds with pong, echoes input, or with status=true reports sign-in, Drive and conversation state",
	}, NewPingHandler(deps))

	// Conversation with the teaching assistant
	mcp.AddTool(server, &mcp.Tool{
		Name:        "ask_assistant",
		Description: "Send a message to the teaching assistant and get its reply. The conversation keeps the last 10 messages as context",
	}, NewAskHandler(deps))

	// Student records
	mcp.AddTool(server, &mcp.Tool{
		Name:        "list_students",
		Description: "List student records ordered by grade and roll number, optionally filtered by grade",
	}, NewListStudentsHandler(deps))

	mcp.AddTool(server, &mcp.Tool{
		Name:        "search_students",
		Description: "Search students by name or roll number",
	}, NewSearchStudentsHandler(deps))

	mcp.AddTool(server, &mcp.Tool{
		Name:        "add_student",
		Description: "Add a student record",
	}, NewAddStudentHandler(deps))

	// Drive files
	mcp.AddTool(server, &mcp.Tool{
		Name:        "list_files",
		Description: "List files in one of the user's Drive folders (timetables, students, documents, root)",
	}, NewListFilesHandler(deps))

	mcp.AddTool(server, &mcp.Tool{
		Name:        "upload_document",
		Description: "Upload a text document to one of the user's Drive folders",
	}, NewUploadDocumentHandler(deps))
}
