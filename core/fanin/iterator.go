package fanin

import (
	"context"
	"encoding/json"
	"fmt"

	"project-aggregator/core/metrics"
)

// Decoder turns a raw sibling output into a typed value.
type Decoder[T any] func(raw []byte) (T, error)

// JSONDecoder decodes sibling outputs as JSON documents.
func JSONDecoder[T any]() Decoder[T] {
	return func(raw []byte) (T, error) {
		var v T
		err := json.Unmarshal(raw, &v)
		return v, err
	}
}

// Iterator yields the results of a fan-out group in index order, stopping at
// the first absent index. It is single use: once exhausted or failed it keeps
// reporting the same terminal outcome.
type Iterator[T any] struct {
	results Results
	group   string
	decode  Decoder[T]

	next int
	done bool
	err  error
}

// NewIterator creates an iterator over group starting at index 0.
func NewIterator[T any](results Results, group string, decode Decoder[T]) *Iterator[T] {
	if decode == nil {
		decode = JSONDecoder[T]()
	}
	return &Iterator[T]{results: results, group: group, decode: decode}
}

// Group returns the fan-out group name.
func (it *Iterator[T]) Group() string { return it.group }

// Count returns how many siblings have been yielded so far.
func (it *Iterator[T]) Count() int { return it.next }

// Next returns the next sibling result. ok is false once the group is
// exhausted. An index that is absent while its successor is present is
// reported as a *DataError.
func (it *Iterator[T]) Next(ctx context.Context) (T, bool, error) {
	var zero T
	if it.err != nil {
		return zero, false, it.err
	}
	if it.done {
		return zero, false, nil
	}

	index := it.next
	raw, ok, err := it.results.Result(ctx, it.group, index)
	if err != nil {
		it.err = fmt.Errorf("fetch sibling %d of group %q: %w", index, it.group, err)
		return zero, false, it.err
	}

	if !ok {
		_, ahead, err := it.results.Result(ctx, it.group, index+1)
		if err != nil {
			it.err = fmt.Errorf("fetch sibling %d of group %q: %w", index+1, it.group, err)
			return zero, false, it.err
		}
		if ahead {
			it.err = &DataError{Group: it.group, Index: index, Reason: "sibling missing before end of group"}
			return zero, false, it.err
		}
		it.done = true
		return zero, false, nil
	}

	v, err := it.decode(raw)
	if err != nil {
		it.err = &DataError{Group: it.group, Index: index, Reason: fmt.Sprintf("undecodable sibling result: %v", err)}
		return zero, false, it.err
	}

	it.next++
	metrics.ObserveSibling(it.group)
	return v, true, nil
}

// Collect drains the iterator.
func (it *Iterator[T]) Collect(ctx context.Context) ([]T, error) {
	var out []T
	for {
		v, ok, err := it.Next(ctx)
		if err != nil {
			return nil, err
		}
		if !ok {
			return out, nil
		}
		out = append(out, v)
	}
}
