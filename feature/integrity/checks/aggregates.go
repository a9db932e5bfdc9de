package checks

import (
	"context"
	"errors"
	"fmt"

	"project-aggregator/core/fanin"
	"project-aggregator/core/storage"
)

// CheckAggregates returns the aggregate keys with no stored document.
func CheckAggregates(ctx context.Context, store fanin.Getter, keys []string) ([]string, error) {
	var missing []string
	for _, key := range keys {
		_, err := store.Get(ctx, key)
		if errors.Is(err, storage.ErrNotFound) {
			missing = append(missing, key)
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", key, err)
		}
	}
	return missing, nil
}

// VectorSpaceReport describes the stored project2vec aggregate.
type VectorSpaceReport struct {
	Projects int    `json:"projects"`
	Width    int    `json:"width"`
	Status   string `json:"status"` // "ok", "inconsistent"
	Detail   string `json:"detail,omitempty"`
}

// CheckVectorSpace verifies every stored vector has the same width and that
// the metadata names one project per row.
func CheckVectorSpace(space fanin.VectorSpace) VectorSpaceReport {
	report := VectorSpaceReport{Projects: len(space.Names), Status: "ok"}
	if len(space.Names) != len(space.Vectors) {
		report.Status = "inconsistent"
		report.Detail = fmt.Sprintf("%d projects for %d vectors", len(space.Names), len(space.Vectors))
		return report
	}
	for i, v := range space.Vectors {
		if i == 0 {
			report.Width = len(v)
			continue
		}
		if len(v) != report.Width {
			report.Status = "inconsistent"
			report.Detail = fmt.Sprintf("vector of %s has width %d, expected %d", space.Names[i], len(v), report.Width)
			return report
		}
	}
	return report
}
