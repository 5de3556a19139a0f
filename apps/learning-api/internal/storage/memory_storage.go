package storage

import (
	"context"
	"sync"
)

// MemoryStorage keeps objects in memory. Used in development when no
// bucket is configured, and in tests.
type MemoryStorage struct {
	mu      sync.RWMutex
	objects map[string]*Object
	baseURL string
}

// NewMemoryStorage creates a new MemoryStorage
func NewMemoryStorage(baseURL string) *MemoryStorage {
	if baseURL == "" {
		baseURL = "http://localhost/uploads"
	}
	return &MemoryStorage{
		objects: make(map[string]*Object),
		baseURL: baseURL,
	}
}

func (m *MemoryStorage) Upload(ctx context.Context, obj *Object) (*StoredObject, error) {
	key := objectKey(obj.Folder, obj.OriginalName)

	m.mu.Lock()
	m.objects[key] = obj
	m.mu.Unlock()

	return &StoredObject{StorageID: key, URL: publicURL(m.baseURL, key)}, nil
}

func (m *MemoryStorage) Delete(ctx context.Context, storageID string) error {
	m.mu.Lock()
	delete(m.objects, storageID)
	m.mu.Unlock()
	return nil
}

// Has reports whether an object is stored under storageID
func (m *MemoryStorage) Has(storageID string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.objects[storageID]
	return ok
}

// Len returns the number of stored objects
func (m *MemoryStorage) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.objects)
}
