package reconcile

import (
	"context"
	"fmt"
	"sort"

	"golang.org/x/sync/errgroup"
)

// Reconcile loads both indices concurrently and returns one result per key,
// sorted by key.
func Reconcile(ctx context.Context, adapter Adapter) ([]Result, error) {
	var storage, db Index

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		if storage, err = adapter.LoadStorage(gctx); err != nil {
			return fmt.Errorf("%s: load storage index: %w", adapter.Name(), err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		if db, err = adapter.LoadDB(gctx); err != nil {
			return fmt.Errorf("%s: load db index: %w", adapter.Name(), err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return Compare(storage, db), nil
}

// Compare builds the union of keys of both indices and reports presence and
// checksum mismatches per key.
func Compare(storage, db Index) []Result {
	keys := make(map[string]struct{}, len(storage)+len(db))
	for key := range storage {
		keys[key] = struct{}{}
	}
	for key := range db {
		keys[key] = struct{}{}
	}

	results := make([]Result, 0, len(keys))
	for key := range keys {
		results = append(results, buildResult(key, storage, db))
	}
	sort.Slice(results, func(i, j int) bool { return results[i].Key < results[j].Key })
	return results
}

func buildResult(key string, storage, db Index) Result {
	s, inStorage := storage[key]
	d, inDB := db[key]

	result := Result{
		Key:            key,
		StoragePresent: inStorage,
		DBPresent:      inDB,
		Mismatch:       []string{},
	}

	if len(d.Metadata)+len(s.Metadata) > 0 {
		result.Metadata = make(map[string]string, len(d.Metadata)+len(s.Metadata))
		for k, v := range d.Metadata {
			result.Metadata[k] = v
		}
		for k, v := range s.Metadata {
			result.Metadata[k] = v
		}
	}

	if inStorage && inDB && s.Checksum != "" && d.Checksum != "" && s.Checksum != d.Checksum {
		result.Mismatch = append(result.Mismatch, fmt.Sprintf("checksum: storage=%s db=%s", s.Checksum, d.Checksum))
	}
	return result
}
