package storage

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"
)

// Memory is an in-process Storage for tests. Failures can be injected per
// call through UploadErr and DeleteErr.
type Memory struct {
	mu      sync.Mutex
	objects map[string]File
	deleted []string

	// UploadErr, when set, is consulted before each upload; a non-nil
	// result fails that upload.
	UploadErr func(prefix string, f File) error
	// DeleteErr, when set, is consulted before each delete.
	DeleteErr func(key string) error
}

func NewMemory() *Memory {
	return &Memory{objects: make(map[string]File)}
}

func (m *Memory) Upload(ctx context.Context, prefix string, f File) (Object, error) {
	if err := ctx.Err(); err != nil {
		return Object{}, err
	}
	if m.UploadErr != nil {
		if err := m.UploadErr(prefix, f); err != nil {
			return Object{}, err
		}
	}

	key := NewKey(prefix, f.Name, time.Now())
	m.mu.Lock()
	m.objects[key] = f
	m.mu.Unlock()
	return Object{Key: key, URL: "https://media.test/" + key}, nil
}

func (m *Memory) Delete(ctx context.Context, key string) error {
	m.mu.Lock()
	m.deleted = append(m.deleted, key)
	m.mu.Unlock()

	if m.DeleteErr != nil {
		if err := m.DeleteErr(key); err != nil {
			return fmt.Errorf("deleting object %s: %w", key, err)
		}
	}

	m.mu.Lock()
	delete(m.objects, key)
	m.mu.Unlock()
	return nil
}

// Has reports whether key is currently stored.
func (m *Memory) Has(key string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.objects[key]
	return ok
}

// Keys returns the stored keys in sorted order.
func (m *Memory) Keys() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	keys := make([]string, 0, len(m.objects))
	for k := range m.objects {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Deleted returns every key Delete was called with, in call order,
// including failed attempts.
func (m *Memory) Deleted() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.deleted...)
}
