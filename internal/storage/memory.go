package storage

import (
	"context"
	"fmt"
	"net/url"
	"sync"
	"time"
)

// Object is a stored blob.
type Object struct {
	ContentType string
	Body        []byte
}

// MemoryStorage keeps objects in process. Download URLs point at baseURL and
// are not signed. Used with the memory database driver and in tests.
type MemoryStorage struct {
	mu      sync.RWMutex
	baseURL string
	objects map[string]Object
}

func NewMemoryStorage(baseURL string) *MemoryStorage {
	return &MemoryStorage{baseURL: baseURL, objects: make(map[string]Object)}
}

func (m *MemoryStorage) PutObject(ctx context.Context, objectKey, contentType string, body []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.objects[objectKey] = Object{ContentType: contentType, Body: append([]byte(nil), body...)}
	return nil
}

func (m *MemoryStorage) GeneratePresignedDownloadURL(ctx context.Context, objectKey string, expires time.Duration) (string, error) {
	m.mu.RLock()
	_, ok := m.objects[objectKey]
	m.mu.RUnlock()
	if !ok {
		return "", ErrObjectNotFound
	}
	if expires <= 0 {
		expires = DefaultPresignedURLExpiry
	}
	q := url.Values{"expires": {time.Now().Add(expires).UTC().Format(time.RFC3339)}}
	return fmt.Sprintf("%s/%s?%s", m.baseURL, url.PathEscape(objectKey), q.Encode()), nil
}

func (m *MemoryStorage) DeleteObject(ctx context.Context, objectKey string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.objects, objectKey)
	return nil
}

// Get returns a stored object.
func (m *MemoryStorage) Get(objectKey string) (Object, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	o, ok := m.objects[objectKey]
	return o, ok
}

var _ FileStorage = (*MemoryStorage)(nil)
