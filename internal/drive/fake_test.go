package drive

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/raphaelgruber/sayar/internal/models"
)

type fakeNode struct {
	id       string
	name     string
	parent   string
	mimeType string
	content  []byte
	seq      int
}

// fakeBackend is an in-memory Backend. createErr fails CreateFolder for the
// named folder until cleared.
type fakeBackend struct {
	mu        sync.Mutex
	nodes     map[string]*fakeNode
	seq       int
	creates   []string
	updates   int
	createErr map[string]error
	findErr   error
}

func newFakeBackend() *fakeBackend {
	return &fakeBackend{nodes: make(map[string]*fakeNode), createErr: make(map[string]error)}
}

func (f *fakeBackend) add(name, parent, mimeType string, content []byte) *fakeNode {
	f.seq++
	n := &fakeNode{id: fmt.Sprintf("id-%d", f.seq), name: name, parent: parent, mimeType: mimeType, content: content, seq: f.seq}
	f.nodes[n.id] = n
	return n
}

func (f *fakeBackend) children(parent string) []*fakeNode {
	var out []*fakeNode
	for _, n := range f.nodes {
		if n.parent == parent {
			out = append(out, n)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].seq < out[j].seq })
	return out
}

func (f *fakeBackend) createCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.creates)
}

func (f *fakeBackend) FindFolder(_ context.Context, name, parentID string) (string, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.findErr != nil {
		return "", false, f.findErr
	}
	for _, n := range f.children(parentID) {
		if n.name == name && n.mimeType == models.FolderMimeType {
			return n.id, true, nil
		}
	}
	return "", false, nil
}

func (f *fakeBackend) CreateFolder(_ context.Context, name, parentID string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.createErr[name]; err != nil {
		return "", err
	}
	f.creates = append(f.creates, name)
	return f.add(name, parentID, models.FolderMimeType, nil).id, nil
}

func (f *fakeBackend) UploadFile(_ context.Context, name, mimeType string, content []byte, parentID string) (models.DriveFile, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.nodes[parentID]; !ok {
		return models.DriveFile{}, errors.New("googleapi: Error 404: File not found")
	}
	n := f.add(name, parentID, mimeType, content)
	size := int64(len(content))
	return models.DriveFile{ID: n.id, Name: name, MimeType: mimeType, Size: &size}, nil
}

func (f *fakeBackend) UpdateFile(_ context.Context, fileID, mimeType string, content []byte) (models.DriveFile, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	n, ok := f.nodes[fileID]
	if !ok {
		return models.DriveFile{}, errors.New("not found")
	}
	f.updates++
	f.seq++
	n.content, n.mimeType, n.seq = content, mimeType, f.seq
	return models.DriveFile{ID: n.id, Name: n.name, MimeType: mimeType}, nil
}

func (f *fakeBackend) ListFiles(_ context.Context, folderID string) ([]models.DriveFile, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	kids := f.children(folderID)
	out := make([]models.DriveFile, 0, len(kids))
	for i := len(kids) - 1; i >= 0; i-- {
		out = append(out, models.DriveFile{ID: kids[i].id, Name: kids[i].name, MimeType: kids[i].mimeType})
	}
	return out, nil
}

func (f *fakeBackend) DownloadFile(_ context.Context, fileID string) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	n, ok := f.nodes[fileID]
	if !ok {
		return nil, errors.New("not found")
	}
	return append([]byte(nil), n.content...), nil
}

func (f *fakeBackend) DeleteFile(_ context.Context, fileID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.nodes[fileID]; !ok {
		return errors.New("not found")
	}
	delete(f.nodes, fileID)
	return nil
}
