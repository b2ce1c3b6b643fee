package blobstore

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"
)

// MemoryStore keeps folders and files in process memory.
type MemoryStore struct {
	mu      sync.RWMutex
	folders map[string]Folder // by name
	objects map[string][]StoredObject
	data    map[string][]byte
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		folders: make(map[string]Folder),
		objects: make(map[string][]StoredObject),
		data:    make(map[string][]byte),
	}
}

func (m *MemoryStore) FindFolder(_ context.Context, name string) (Folder, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	f, ok := m.folders[name]
	if !ok {
		return Folder{}, ErrFolderNotFound
	}
	return f, nil
}

func (m *MemoryStore) CreateFolder(_ context.Context, name string) (Folder, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	id := uuid.NewString()
	f := Folder{ID: id, Name: name, URL: "memory://folders/" + id}
	m.folders[name] = f
	return f, nil
}

func (m *MemoryStore) Put(_ context.Context, folderID string, obj Object) (StoredObject, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	found := false
	for _, f := range m.folders {
		if f.ID == folderID {
			found = true
			break
		}
	}
	if !found {
		return StoredObject{}, fmt.Errorf("put %q: %w", obj.Name, ErrFolderNotFound)
	}

	id := uuid.NewString()
	stored := StoredObject{
		ID:       id,
		Name:     obj.Name,
		URL:      "memory://files/" + id,
		MIMEType: ResolveMIMEType(obj.MIMEType, obj.Data),
		Size:     int64(len(obj.Data)),
	}
	m.objects[folderID] = append(m.objects[folderID], stored)
	m.data[id] = append([]byte(nil), obj.Data...)
	return stored, nil
}

// Objects lists what was stored in a folder, oldest first.
func (m *MemoryStore) Objects(folderID string) []StoredObject {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]StoredObject(nil), m.objects[folderID]...)
}

// Content returns the bytes of a stored file.
func (m *MemoryStore) Content(id string) ([]byte, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	b, ok := m.data[id]
	return b, ok
}
