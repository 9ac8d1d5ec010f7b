package storage

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"
)

// MemoryStore is a map-backed ObjectStore for tests and local runs
// without a MinIO endpoint. It is safe for concurrent use.
type MemoryStore struct {
	mu      sync.Mutex
	objects map[string]memoryObject

	// FailPut, when set, makes every Put return the given error. Used
	// to simulate store outages in tests.
	FailPut error
	// FailSign, when set, makes every SignedURL call fail.
	FailSign error
}

type memoryObject struct {
	data        []byte
	contentType string
}

// NewMemoryStore returns an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{objects: make(map[string]memoryObject)}
}

func (m *MemoryStore) Put(_ context.Context, key string, data []byte, contentType string, overwrite bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FailPut != nil {
		return m.FailPut
	}
	if _, ok := m.objects[key]; ok && !overwrite {
		return ErrKeyExists
	}
	stored := make([]byte, len(data))
	copy(stored, data)
	m.objects[key] = memoryObject{data: stored, contentType: contentType}
	return nil
}

func (m *MemoryStore) Get(_ context.Context, key string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	obj, ok := m.objects[key]
	if !ok {
		return nil, ErrNotFound
	}
	out := make([]byte, len(obj.data))
	copy(out, obj.data)
	return out, nil
}

func (m *MemoryStore) Stat(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.objects[key]; !ok {
		return ErrNotFound
	}
	return nil
}

func (m *MemoryStore) List(_ context.Context, prefix string) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var found []string
	for key := range m.objects {
		if strings.HasPrefix(key, prefix) {
			found = append(found, key)
		}
	}
	sort.Strings(found)
	return found, nil
}

func (m *MemoryStore) Delete(_ context.Context, objectKeys ...string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, key := range objectKeys {
		delete(m.objects, key)
	}
	return nil
}

func (m *MemoryStore) SignedURL(_ context.Context, key string, ttl time.Duration) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FailSign != nil {
		return "", m.FailSign
	}
	if _, ok := m.objects[key]; !ok {
		return "", ErrNotFound
	}
	return fmt.Sprintf("https://store.invalid/models/%s?expires=%d", key, int64(ttl.Seconds())), nil
}

func (m *MemoryStore) PublicURL(key string) string {
	return "https://store.invalid/models/" + key
}

// ContentType reports the content type recorded for key, for test
// assertions.
func (m *MemoryStore) ContentType(key string) string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.objects[key].contentType
}
