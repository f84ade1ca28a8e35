package service

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/raphaelgruber/sayar/internal/llm"
	"github.com/raphaelgruber/sayar/internal/models"
	"github.com/raphaelgruber/sayar/internal/store"
)

type memKV struct {
	mu   sync.Mutex
	data map[string][]byte
}

func newMemKV() *memKV { return &memKV{data: map[string][]byte{}} }

func (m *memKV) GetValue(_ context.Context, key string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.data[key]
	if !ok {
		return nil, store.ErrNotFound
	}
	return v, nil
}

func (m *memKV) SetValue(_ context.Context, key string, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = value
	return nil
}

func (m *memKV) DeleteValue(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, key)
	return nil
}

type fakeDrive struct {
	mu          sync.Mutex
	folders     map[string]models.FolderSet
	files       map[string][]byte
	history     map[string][]byte
	initErr     error
	uploadErr   error
	deleteErr   error
	invalidated []string
	deleted     []string
	uploads     []models.FolderCategory
	nextID      int
}

func newFakeDrive() *fakeDrive {
	return &fakeDrive{
		folders: map[string]models.FolderSet{},
		files:   map[string][]byte{},
		history: map[string][]byte{},
	}
}

func (d *fakeDrive) Initialize(_ context.Context, email string) (models.FolderSet, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.initErr != nil {
		return models.FolderSet{}, d.initErr
	}
	set := models.FolderSet{
		UserEmail:          email,
		RootFolderID:       "root-" + email,
		TimetablesFolderID: "tt-" + email,
		StudentsFolderID:   "st-" + email,
		DocumentsFolderID:  "doc-" + email,
	}
	d.folders[email] = set
	return set, nil
}

func (d *fakeDrive) Invalidate(_ context.Context, email string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	delete(d.folders, email)
	d.invalidated = append(d.invalidated, email)
	return nil
}

func (d *fakeDrive) Folders(_ context.Context, email string) (models.FolderSet, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	set, ok := d.folders[email]
	if !ok {
		return models.FolderSet{}, errors.New("drive folders not initialized")
	}
	return set, nil
}

func (d *fakeDrive) UploadTo(_ context.Context, email string, category models.FolderCategory, name, mimeType string, content []byte) (models.DriveFile, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.uploadErr != nil {
		return models.DriveFile{}, d.uploadErr
	}
	if _, ok := d.folders[email]; !ok {
		return models.DriveFile{}, errors.New("drive folders not initialized")
	}
	d.nextID++
	id := fmt.Sprintf("file-%d", d.nextID)
	d.files[id] = content
	d.uploads = append(d.uploads, category)
	return models.DriveFile{ID: id, Name: name, MimeType: mimeType}, nil
}

func (d *fakeDrive) Delete(_ context.Context, fileID string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.deleteErr != nil {
		return d.deleteErr
	}
	delete(d.files, fileID)
	d.deleted = append(d.deleted, fileID)
	return nil
}

func (d *fakeDrive) SaveChatHistory(_ context.Context, email string, data []byte) (models.DriveFile, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.history[email] = data
	return models.DriveFile{ID: "history-" + email, Name: "chat_history.json"}, nil
}

func (d *fakeDrive) LoadChatHistory(_ context.Context, email string) ([]byte, bool, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	data, ok := d.history[email]
	return data, ok, nil
}

type fakeArchive struct {
	owner    string
	messages []models.ChatMessage
	err      error
}

func (a *fakeArchive) SaveConversation(_ context.Context, owner, title string, messages []models.ChatMessage) (*models.Conversation, error) {
	if a.err != nil {
		return nil, a.err
	}
	a.owner = owner
	a.messages = messages
	return &models.Conversation{Owner: owner, Title: title, MessageCount: len(messages)}, nil
}

type fixedSettings struct{ s models.AppSettings }

func (f fixedSettings) Current(context.Context) (models.AppSettings, error) { return f.s, nil }

type echoGenerator struct{}

func (echoGenerator) Generate(_ context.Context, req llm.GenerateRequest) (llm.GenerateResponse, error) {
	last := req.Turns[len(req.Turns)-1]
	return llm.GenerateResponse{Candidates: []string{"echo: " + last.Text}}, nil
}

type studentList []models.Student

func (l studentList) ListStudents(context.Context) ([]models.Student, error) { return l, nil }
