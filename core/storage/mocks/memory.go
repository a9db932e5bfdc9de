package mocks

import (
	"context"
	"sort"
	"strings"
	"sync"

	"project-aggregator/core/storage"
)

// MemoryStore is an in-memory document store with the adapter's key
// semantics. Puts are recorded in order.
type MemoryStore struct {
	mu   sync.Mutex
	docs map[string][]byte
	puts []string

	// Fail, when set, is returned by every operation on a key it matches.
	Fail func(op, key string) error
}

// NewMemoryStore creates an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{docs: make(map[string][]byte)}
}

func (m *MemoryStore) fail(op, key string) error {
	if m.Fail == nil {
		return nil
	}
	return m.Fail(op, key)
}

// Put stores a copy of data under key.
func (m *MemoryStore) Put(_ context.Context, key string, data []byte) (string, error) {
	if err := m.fail("put", key); err != nil {
		return "", err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.docs[key] = append([]byte(nil), data...)
	m.puts = append(m.puts, key)
	return key, nil
}

// Get returns the document under key or a *storage.NotFoundError.
func (m *MemoryStore) Get(_ context.Context, key string) ([]byte, error) {
	if err := m.fail("get", key); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	data, ok := m.docs[key]
	if !ok {
		return nil, &storage.NotFoundError{Key: key}
	}
	return append([]byte(nil), data...), nil
}

// List returns the sorted keys starting with prefix.
func (m *MemoryStore) List(_ context.Context, prefix string) ([]string, error) {
	if err := m.fail("list", prefix); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	keys := []string{}
	for key := range m.docs {
		if strings.HasPrefix(key, prefix) {
			keys = append(keys, key)
		}
	}
	sort.Strings(keys)
	return keys, nil
}

// Has reports whether key holds a document.
func (m *MemoryStore) Has(key string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.docs[key]
	return ok
}

// Document returns the raw document under key.
func (m *MemoryStore) Document(key string) string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return string(m.docs[key])
}

// Puts returns the keys written, in order.
func (m *MemoryStore) Puts() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.puts...)
}
