package fanin

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"

	"project-aggregator/core/storage"
)

// Results exposes the outputs of a fan-out group by position. ok is false
// with a nil error when the group holds no sibling at index.
type Results interface {
	Result(ctx context.Context, group string, index int) (raw []byte, ok bool, err error)
}

// MemoryResults keeps sibling outputs in process memory.
type MemoryResults struct {
	mu     sync.RWMutex
	groups map[string]map[int][]byte
}

// NewMemoryResults creates an empty in-memory result set.
func NewMemoryResults() *MemoryResults {
	return &MemoryResults{groups: make(map[string]map[int][]byte)}
}

// Set records raw as the output of sibling index in group.
func (m *MemoryResults) Set(group string, index int, raw []byte) {
	m.mu.Lock()
	defer m.mu.Unlock()
	g, ok := m.groups[group]
	if !ok {
		g = make(map[int][]byte)
		m.groups[group] = g
	}
	g[index] = raw
}

// SetJSON encodes v and records it as the output of sibling index in group.
func (m *MemoryResults) SetJSON(group string, index int, v any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode sibling %d of %q: %w", index, group, err)
	}
	m.Set(group, index, raw)
	return nil
}

// Result implements Results.
func (m *MemoryResults) Result(_ context.Context, group string, index int) ([]byte, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	raw, ok := m.groups[group][index]
	return raw, ok, nil
}

// Getter is the read side of the storage adapter.
type Getter interface {
	Get(ctx context.Context, key string) ([]byte, error)
}

// StoreResults reads sibling outputs persisted in the object store under
// {prefix}{group}/{index}.json.
type StoreResults struct {
	store  Getter
	prefix string
}

// NewStoreResults creates a Results view over persisted sibling outputs.
func NewStoreResults(store Getter, prefix string) *StoreResults {
	return &StoreResults{store: store, prefix: prefix}
}

// SiblingKey returns the document key of sibling index in group.
func SiblingKey(prefix, group string, index int) string {
	return fmt.Sprintf("%s%s/%08d.json", prefix, group, index)
}

// Result implements Results. A missing document ends the group; any other
// storage failure is returned unchanged.
func (s *StoreResults) Result(ctx context.Context, group string, index int) ([]byte, bool, error) {
	raw, err := s.store.Get(ctx, SiblingKey(s.prefix, group, index))
	if errors.Is(err, storage.ErrNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return raw, true, nil
}

// Lister is the listing side of the storage adapter.
type Lister interface {
	Getter
	List(ctx context.Context, prefix string) ([]string, error)
}

// ListingResults derives a group from the documents stored directly under a
// prefix: sibling i is the i-th key in sorted order. Keys nested deeper
// belong to other namespaces and are not part of the group. The listing is taken once, on
// the first request.
type ListingResults struct {
	store  Lister
	prefix string

	once sync.Once
	keys []string
	err  error
}

// NewListingResults creates a store-derived group over prefix.
func NewListingResults(store Lister, prefix string) *ListingResults {
	return &ListingResults{store: store, prefix: prefix}
}

// Keys returns the listing snapshot backing the group.
func (l *ListingResults) Keys(ctx context.Context) ([]string, error) {
	l.once.Do(func() {
		keys, err := l.store.List(ctx, l.prefix)
		if err != nil {
			l.err = fmt.Errorf("list %q: %w", l.prefix, err)
			return
		}
		for _, key := range keys {
			// Only direct children of the prefix are members.
			name := strings.TrimPrefix(key, l.prefix)
			if name == "" || strings.Contains(name, "/") {
				continue
			}
			l.keys = append(l.keys, key)
		}
	})
	return l.keys, l.err
}

// Result implements Results.
func (l *ListingResults) Result(ctx context.Context, _ string, index int) ([]byte, bool, error) {
	keys, err := l.Keys(ctx)
	if err != nil {
		return nil, false, err
	}
	if index < 0 || index >= len(keys) {
		return nil, false, nil
	}
	raw, err := l.store.Get(ctx, keys[index])
	if errors.Is(err, storage.ErrNotFound) {
		// Deleted after the listing was taken.
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return raw, true, nil
}
