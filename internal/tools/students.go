package tools

import (
	"context"
	"fmt"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/raphaelgruber/sayar/internal/models"
)

// ListStudentsInput defines the input schema for the list_students tool.
type ListStudentsInput struct {
	Grade string `json:"grade,omitempty" jsonschema:"Only list students in this grade"`
}

// SearchStudentsInput defines the input schema for the search_students tool.
type SearchStudentsInput struct {
	Query string `json:"query" jsonschema:"required,Name or roll number fragment"`
}

// AddStudentInput defines the input schema for the add_student tool.
type AddStudentInput struct {
	Name          string `json:"name" jsonschema:"required,Student name"`
	RollNumber    string `json:"roll_number" jsonschema:"required,Roll number within the grade"`
	Grade         string `json:"grade" jsonschema:"required,Grade or class"`
	ParentContact string `json:"parent_contact,omitempty" jsonschema:"Parent phone or email"`
	Notes         string `json:"notes,omitempty" jsonschema:"Free-form notes"`
}

func formatStudents(students []models.Student) string {
	if len(students) == 0 {
		return "No students found"
	}
	lines := make([]string, 0, len(students))
	for _, st := range students {
		lines = append(lines, fmt.Sprintf("%s | roll %s | %s | id %s", st.Grade, st.RollNumber, st.Name, st.ID))
	}
	return strings.Join(lines, "\n")
}

// NewListStudentsHandler creates the list_students tool handler.
func NewListStudentsHandler(deps *Dependencies) mcp.ToolHandlerFor[ListStudentsInput, any] {
	return func(ctx context.Context, req *mcp.CallToolRequest, input ListStudentsInput) (*mcp.CallToolResult, any, error) {
		var (
			students []models.Student
			err      error
		)
		if grade := strings.TrimSpace(input.Grade); grade != "" {
			students, err = deps.Students.ListStudentsByGrade(ctx, grade)
		} else {
			students, err = deps.Students.ListStudents(ctx)
		}
		if err != nil {
			deps.Logger.Error("list students failed", "error", err)
			return ErrorResult("Failed to list students", "Local database may be unavailable"), nil, nil
		}
		return TextResult(formatStudents(students)), nil, nil
	}
}

// NewSearchStudentsHandler creates the search_students tool handler.
func NewSearchStudentsHandler(deps *Dependencies) mcp.ToolHandlerFor[SearchStudentsInput, any] {
	return func(ctx context.Context, req *mcp.CallToolRequest, input SearchStudentsInput) (*mcp.CallToolResult, any, error) {
		query := strings.TrimSpace(input.Query)
		if query == "" {
			return ErrorResult("Query is required", "Provide part of a name or roll number"), nil, nil
		}
		students, err := deps.Students.SearchStudents(ctx, query)
		if err != nil {
			deps.Logger.Error("search students failed", "query", query, "error", err)
			return ErrorResult("Failed to search students", "Local database may be unavailable"), nil, nil
		}
		return TextResult(formatStudents(students)), nil, nil
	}
}

// NewAddStudentHandler creates the add_student tool handler.
func NewAddStudentHandler(deps *Dependencies) mcp.ToolHandlerFor[AddStudentInput, any] {
	return func(ctx context.Context, req *mcp.CallToolRequest, input AddStudentInput) (*mcp.CallToolResult, any, error) {
		st := models.NewStudent(strings.TrimSpace(input.Name), strings.TrimSpace(input.RollNumber), strings.TrimSpace(input.Grade))
		if v := strings.TrimSpace(input.ParentContact); v != "" {
			st.ParentContact = &v
		}
		if v := strings.TrimSpace(input.Notes); v != "" {
			st.Notes = &v
		}
		if err := deps.Students.PutStudent(ctx, st); err != nil {
			return ErrorResult("Failed to add student", err.Error()), nil, nil
		}
		deps.Logger.Info("student added", "id", st.ID, "grade", st.Grade)
		return JSONResult(st), nil, nil
	}
}
