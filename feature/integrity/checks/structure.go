package checks

import (
	"context"
	"fmt"
)

// Lister lists stored keys under a prefix.
type Lister interface {
	List(ctx context.Context, prefix string) ([]string, error)
}

// CheckStructure returns the namespaces holding no document at all.
func CheckStructure(ctx context.Context, store Lister, prefixes []string) ([]string, error) {
	var missing []string
	for _, prefix := range prefixes {
		keys, err := store.List(ctx, prefix)
		if err != nil {
			return nil, fmt.Errorf("failed to list %s: %w", prefix, err)
		}
		if len(keys) == 0 {
			missing = append(missing, prefix)
		}
	}
	return missing, nil
}
