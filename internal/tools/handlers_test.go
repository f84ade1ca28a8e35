package tools_test

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"sync"
	"testing"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/raphaelgruber/sayar/internal/chat"
	"github.com/raphaelgruber/sayar/internal/llm"
	"github.com/raphaelgruber/sayar/internal/models"
	"github.com/raphaelgruber/sayar/internal/tools"
)

type memStudents struct {
	mu       sync.Mutex
	students []models.Student
}

func (m *memStudents) ListStudents(context.Context) ([]models.Student, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]models.Student(nil), m.students...), nil
}

func (m *memStudents) ListStudentsByGrade(_ context.Context, grade string) ([]models.Student, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.Student
	for _, st := range m.students {
		if st.Grade == grade {
			out = append(out, st)
		}
	}
	return out, nil
}

func (m *memStudents) SearchStudents(_ context.Context, query string) ([]models.Student, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.Student
	q := strings.ToLower(query)
	for _, st := range m.students {
		if strings.Contains(strings.ToLower(st.Name), q) || strings.Contains(st.RollNumber, q) {
			out = append(out, st)
		}
	}
	return out, nil
}

func (m *memStudents) PutStudent(_ context.Context, st models.Student) error {
	if st.Name == "" || st.RollNumber == "" || st.Grade == "" {
		return errors.New("name, roll number and grade are required")
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.students = append(m.students, st)
	return nil
}

type memDrive struct {
	files map[models.FolderCategory][]models.DriveFile
}

func (d *memDrive) ListFiles(_ context.Context, _ string, category models.FolderCategory) ([]models.DriveFile, error) {
	return d.files[category], nil
}

func (d *memDrive) UploadTo(_ context.Context, _ string, category models.FolderCategory, name, mimeType string, _ []byte) (models.DriveFile, error) {
	f := models.DriveFile{ID: "id-" + name, Name: name, MimeType: mimeType}
	d.files[category] = append(d.files[category], f)
	return f, nil
}

type signedIn struct{ ok bool }

func (u signedIn) CurrentUser(context.Context) (models.User, error) {
	if !u.ok {
		return models.User{}, errors.New("not signed in")
	}
	return models.User{ID: "u1", Email: "teacher@example.com"}, nil
}

type replyGenerator struct{}

func (replyGenerator) Generate(_ context.Context, req llm.GenerateRequest) (llm.GenerateResponse, error) {
	return llm.GenerateResponse{Candidates: []string{"reply: " + req.Turns[len(req.Turns)-1].Text}}, nil
}

type settingsWith struct{ s models.AppSettings }

func (f settingsWith) Current(context.Context) (models.AppSettings, error) { return f.s, nil }

func newDeps(t *testing.T) *tools.Dependencies {
	t.Helper()
	prefs := models.DefaultSettings()
	prefs.GeminiAPIKey = "key"
	return &tools.Dependencies{
		Chat:     chat.NewManager(replyGenerator{}, settingsWith{prefs}, nil),
		Students: &memStudents{},
		Drive:    &memDrive{files: map[models.FolderCategory][]models.DriveFile{}},
		Users:    signedIn{ok: true},
		Logger:   slog.New(slog.DiscardHandler),
	}
}

func text(t *testing.T, result *mcp.CallToolResult) string {
	t.Helper()
	require.Len(t, result.Content, 1)
	return result.Content[0].(*mcp.TextContent).Text
}

func TestErrorResult(t *testing.T) {
	result := tools.ErrorResult("Failed", "Try again")
	assert.True(t, result.IsError)
	assert.Equal(t, "Failed. Try again", text(t, result))
	assert.Equal(t, "Failed", text(t, tools.ErrorResult("Failed", "")))
}

func TestPingHandler(t *testing.T) {
	h := tools.NewPingHandler(nil)
	result, _, err := h(context.Background(), nil, tools.PingInput{})
	require.NoError(t, err)
	assert.Equal(t, "pong", text(t, result))

	result, _, err = h(context.Background(), nil, tools.PingInput{Echo: "hello"})
	require.NoError(t, err)
	assert.Equal(t, "hello", text(t, result))
}

func TestPingStatus(t *testing.T) {
	deps := newDeps(t)
	h := tools.NewPingHandler(deps)

	result, _, err := h(context.Background(), nil, tools.PingInput{Status: true})
	require.NoError(t, err)

	var status tools.Status
	require.NoError(t, json.Unmarshal([]byte(text(t, result)), &status))
	assert.True(t, status.SignedIn)
	assert.True(t, status.DriveEnabled)
	assert.Zero(t, status.Messages)
}

func TestStudentHandlers(t *testing.T) {
	deps := newDeps(t)
	ctx := context.Background()

	add := tools.NewAddStudentHandler(deps)
	result, _, err := add(ctx, nil, tools.AddStudentInput{Name: "Aung Aung", RollNumber: "1", Grade: "Grade 5", Notes: "  "})
	require.NoError(t, err)
	require.False(t, result.IsError)
	assert.Contains(t, text(t, result), `"name": "Aung Aung"`)
	assert.NotContains(t, text(t, result), "notes")

	result, _, err = add(ctx, nil, tools.AddStudentInput{Name: "Missing"})
	require.NoError(t, err)
	assert.True(t, result.IsError)

	list := tools.NewListStudentsHandler(deps)
	result, _, err = list(ctx, nil, tools.ListStudentsInput{})
	require.NoError(t, err)
	assert.Contains(t, text(t, result), "Grade 5 | roll 1 | Aung Aung")

	result, _, err = list(ctx, nil, tools.ListStudentsInput{Grade: "Grade 6"})
	require.NoError(t, err)
	assert.Equal(t, "No students found", text(t, result))

	search := tools.NewSearchStudentsHandler(deps)
	result, _, err = search(ctx, nil, tools.SearchStudentsInput{Query: " "})
	require.NoError(t, err)
	assert.True(t, result.IsError)
}

func TestAskHandler(t *testing.T) {
	deps := newDeps(t)
	ask := tools.NewAskHandler(deps)
	ctx := context.Background()

	result, _, err := ask(ctx, nil, tools.AskInput{Message: "Hello"})
	require.NoError(t, err)
	assert.Equal(t, "reply: Hello", text(t, result))
	assert.Len(t, deps.Chat.Messages(), 2)

	result, _, err = ask(ctx, nil, tools.AskInput{Message: "Again", Reset: true})
	require.NoError(t, err)
	assert.False(t, result.IsError)
	assert.Len(t, deps.Chat.Messages(), 2)

	result, _, err = ask(ctx, nil, tools.AskInput{Message: "   "})
	require.NoError(t, err)
	assert.True(t, result.IsError)
}

func TestAskHandlerMissingKey(t *testing.T) {
	deps := newDeps(t)
	deps.Chat = chat.NewManager(replyGenerator{}, settingsWith{models.DefaultSettings()}, nil)

	result, _, err := tools.NewAskHandler(deps)(context.Background(), nil, tools.AskInput{Message: "Hi"})
	require.NoError(t, err)
	assert.True(t, result.IsError)
	assert.Contains(t, text(t, result), "Please configure your Gemini API key in Settings")
}

func TestFileHandlers(t *testing.T) {
	deps := newDeps(t)
	ctx := context.Background()

	upload := tools.NewUploadDocumentHandler(deps)
	result, _, err := upload(ctx, nil, tools.UploadDocumentInput{Name: "lesson.txt", Content: "Fractions"})
	require.NoError(t, err)
	require.False(t, result.IsError, text(t, result))

	list := tools.NewListFilesHandler(deps)
	result, _, err = list(ctx, nil, tools.ListFilesInput{Folder: "docs"})
	require.NoError(t, err)
	assert.Equal(t, "lesson.txt (text/plain) id id-lesson.txt", text(t, result))

	result, _, err = list(ctx, nil, tools.ListFilesInput{Folder: "music"})
	require.NoError(t, err)
	assert.True(t, result.IsError)

	deps.Users = signedIn{ok: false}
	result, _, err = list(ctx, nil, tools.ListFilesInput{Folder: "documents"})
	require.NoError(t, err)
	assert.Equal(t, "Not signed in. Run `sayar login` first", text(t, result))

	deps.Drive = nil
	result, _, err = upload(ctx, nil, tools.UploadDocumentInput{Name: "x.txt"})
	require.NoError(t, err)
	assert.Contains(t, text(t, result), "Google Drive is disabled")
}
