package documents

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"project-aggregator/core/fanin"
)

// Backend is the object store capability documents are kept in.
// *storage.Adapter satisfies it.
type Backend interface {
	Put(ctx context.Context, key string, data []byte) (string, error)
	Get(ctx context.Context, key string) ([]byte, error)
	List(ctx context.Context, prefix string) ([]string, error)
}

// Store persists one document kind under the keys its strategy derives.
type Store struct {
	name     string
	backend  Backend
	strategy KeyStrategy
}

// NewStore creates a store named name.
func NewStore(name string, backend Backend, strategy KeyStrategy) *Store {
	return &Store{name: name, backend: backend, strategy: strategy}
}

// Name returns the store name.
func (s *Store) Name() string { return s.name }

// Strategy returns the key derivation rule of the store.
func (s *Store) Strategy() KeyStrategy { return s.strategy }

// Store writes doc under the key derived from args and returns that key.
// A []byte document is written as is; anything else is encoded as JSON.
func (s *Store) Store(ctx context.Context, args Args, doc any) (string, error) {
	key, err := s.strategy.Key(args)
	if err != nil {
		return "", fmt.Errorf("%s: %w", s.name, err)
	}

	var data []byte
	switch v := doc.(type) {
	case []byte:
		data = v
	case json.RawMessage:
		data = v
	default:
		data, err = json.Marshal(doc)
		if err != nil {
			return "", fmt.Errorf("%s: encode %q: %w", s.name, key, err)
		}
	}
	return s.backend.Put(ctx, key, data)
}

// RetrieveRaw returns the bytes stored under the key derived from args.
// The storage error is returned unwrapped in kind, so errors.Is(err,
// storage.ErrNotFound) tells an absent document from an unreachable store.
func (s *Store) RetrieveRaw(ctx context.Context, args Args) ([]byte, error) {
	key, err := s.strategy.Key(args)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", s.name, err)
	}
	return s.backend.Get(ctx, key)
}

// Retrieve decodes the JSON document stored under the key derived from args.
func (s *Store) Retrieve(ctx context.Context, args Args, v any) error {
	data, err := s.RetrieveRaw(ctx, args)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("%s: decode %q: %w", s.name, args.Entity, err)
	}
	return nil
}

// Listing returns the entity names stored under the namespace of args,
// sorted ascending.
func (s *Store) Listing(ctx context.Context, args Args) ([]string, error) {
	ns, err := s.strategy.Namespace(args)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", s.name, err)
	}
	keys, err := s.backend.List(ctx, ns)
	if err != nil {
		return nil, err
	}

	names := make([]string, 0, len(keys))
	for _, key := range keys {
		name := strings.TrimPrefix(key, ns)
		// Only direct children are entities.
		if name == "" || strings.Contains(name, "/") {
			continue
		}
		names = append(names, name)
	}
	return names, nil
}

// Group exposes the documents under the namespace of args as a store-derived
// fan-in group: sibling i is the i-th key in sorted order.
func (s *Store) Group(args Args) (*fanin.ListingResults, error) {
	ns, err := s.strategy.Namespace(args)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", s.name, err)
	}
	return fanin.NewListingResults(s.backend, ns), nil
}
