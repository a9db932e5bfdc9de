package fanin

import (
	"context"
	"fmt"
	"slices"
	"sort"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Counts maps a normalized key to its number of occurrences.
type Counts map[string]int

// NormalizeKey lower-cases and trims a counting key.
func NormalizeKey(key string) string {
	return cases.Lower(language.Und).String(strings.TrimSpace(key))
}

// Add folds other into c. Keys are normalized and empty keys are dropped.
// A negative count is rejected; c is left unmodified in that case.
func (c Counts) Add(other Counts) error {
	for key, count := range other {
		if count < 0 {
			return fmt.Errorf("negative count %d for %q", count, key)
		}
	}
	for key, count := range other {
		key = NormalizeKey(key)
		if key == "" {
			continue
		}
		c[key] += count
	}
	return nil
}

// Keys returns the keys of c in ascending order.
func (c Counts) Keys() []string {
	keys := make([]string, 0, len(c))
	for key := range c {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

// MergeCounts sums every sibling table of the group. The result depends only
// on the multiset of sibling counts, never on arrival order.
func MergeCounts(ctx context.Context, it *Iterator[Counts]) (Counts, error) {
	total := Counts{}
	for {
		part, ok, err := it.Next(ctx)
		if err != nil {
			return nil, err
		}
		if !ok {
			return total, nil
		}
		if err := total.Add(part); err != nil {
			return nil, &DataError{Group: it.Group(), Index: it.Count() - 1, Reason: err.Error()}
		}
	}
}

// VectorEntry is one sibling's contribution to a vector space.
type VectorEntry struct {
	Name   string `json:"project"`
	Vector []int  `json:"vector"`
}

// VectorSpace holds two aligned sequences sorted by name: entry i of Names
// and entry i of Vectors describe the same entity.
type VectorSpace struct {
	Names   []string
	Vectors [][]int
}

// Len returns the number of entities.
func (vs VectorSpace) Len() int { return len(vs.Names) }

// Width returns the vector width, or 0 for an empty space.
func (vs VectorSpace) Width() int {
	if len(vs.Vectors) == 0 {
		return 0
	}
	return len(vs.Vectors[0])
}

// AssembleVectorSpace collects every sibling entry and sorts them by name.
// When width is positive every vector must have exactly that many
// components; otherwise all vectors must share the width of the first one.
// Two siblings reporting different vectors for the same name fail the
// reduction; identical duplicates collapse into one entry.
func AssembleVectorSpace(ctx context.Context, it *Iterator[VectorEntry], width int) (VectorSpace, error) {
	entries := make(map[string][]int)
	expected, widthSet := width, width > 0

	for {
		entry, ok, err := it.Next(ctx)
		if err != nil {
			return VectorSpace{}, err
		}
		if !ok {
			break
		}
		index := it.Count() - 1

		if entry.Name == "" {
			return VectorSpace{}, &DataError{Group: it.Group(), Index: index, Reason: "vector entry without a name"}
		}
		if !widthSet {
			expected, widthSet = len(entry.Vector), true
		}
		if len(entry.Vector) != expected {
			return VectorSpace{}, &DataError{
				Group:  it.Group(),
				Index:  index,
				Entity: entry.Name,
				Reason: fmt.Sprintf("vector width %d, expected %d", len(entry.Vector), expected),
			}
		}
		if prev, seen := entries[entry.Name]; seen {
			if slices.Equal(prev, entry.Vector) {
				continue
			}
			return VectorSpace{}, &DataError{
				Group:  it.Group(),
				Index:  index,
				Entity: entry.Name,
				Reason: "conflicting vectors for the same entity",
			}
		}
		entries[entry.Name] = slices.Clone(entry.Vector)
	}

	space := VectorSpace{
		Names:   make([]string, 0, len(entries)),
		Vectors: make([][]int, 0, len(entries)),
	}
	for name := range entries {
		space.Names = append(space.Names, name)
	}
	sort.Strings(space.Names)
	for _, name := range space.Names {
		space.Vectors = append(space.Vectors, entries[name])
	}
	return space, nil
}
