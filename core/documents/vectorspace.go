package documents

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"

	"project-aggregator/core/fanin"
)

// Metadata table header of a persisted vector space.
var metadataHeader = []string{"index", "project"}

// ErrMalformedTable is returned when a persisted vector space table cannot
// be decoded.
var ErrMalformedTable = errors.New("malformed vector space table")

// VectorSpaceStore persists a vector space as two paired tab-separated
// tables: a metadata table mapping row index to project name and a matrix
// with one row of integers per project.
type VectorSpaceStore struct {
	backend  Backend
	strategy KeyStrategy
}

// NewVectorSpaceStore creates the vector space store.
func NewVectorSpaceStore(backend Backend, metaKey, matrixKey string) *VectorSpaceStore {
	return &VectorSpaceStore{backend: backend, strategy: PairedKeys(metaKey, matrixKey)}
}

// Keys returns the metadata and matrix keys.
func (s *VectorSpaceStore) Keys() (meta, matrix string) {
	keys, _ := s.strategy.Keys(Args{})
	return keys[0], keys[1]
}

// StoreVectorSpace writes both tables, matrix first. A crash between the two
// writes can leave them disagreeing until the next successful store.
func (s *VectorSpaceStore) StoreVectorSpace(ctx context.Context, space fanin.VectorSpace) ([]string, error) {
	if len(space.Names) != len(space.Vectors) {
		return nil, fmt.Errorf("%w: %d names for %d vectors", ErrMalformedTable, len(space.Names), len(space.Vectors))
	}
	metaKey, matrixKey := s.Keys()

	matrix, err := EncodeMatrix(space.Vectors)
	if err != nil {
		return nil, err
	}
	meta, err := EncodeMetadata(space.Names)
	if err != nil {
		return nil, err
	}

	if _, err := s.backend.Put(ctx, matrixKey, matrix); err != nil {
		return nil, err
	}
	if _, err := s.backend.Put(ctx, metaKey, meta); err != nil {
		return nil, err
	}
	return []string{metaKey, matrixKey}, nil
}

// RetrieveVectorSpace reads both tables and checks they describe the same
// number of projects.
func (s *VectorSpaceStore) RetrieveVectorSpace(ctx context.Context) (fanin.VectorSpace, error) {
	metaKey, matrixKey := s.Keys()

	meta, err := s.backend.Get(ctx, metaKey)
	if err != nil {
		return fanin.VectorSpace{}, err
	}
	matrix, err := s.backend.Get(ctx, matrixKey)
	if err != nil {
		return fanin.VectorSpace{}, err
	}

	names, err := DecodeMetadata(meta)
	if err != nil {
		return fanin.VectorSpace{}, err
	}
	vectors, err := DecodeMatrix(matrix, len(names))
	if err != nil {
		return fanin.VectorSpace{}, err
	}
	return fanin.VectorSpace{Names: names, Vectors: vectors}, nil
}

func newTSVWriter(buf *bytes.Buffer) *csv.Writer {
	w := csv.NewWriter(buf)
	w.Comma = '\t'
	return w
}

func newTSVReader(data []byte) *csv.Reader {
	r := csv.NewReader(bytes.NewReader(data))
	r.Comma = '\t'
	return r
}

// EncodeMetadata renders the metadata table: a header row followed by one
// "index<TAB>name" row per project.
func EncodeMetadata(names []string) ([]byte, error) {
	var buf bytes.Buffer
	w := newTSVWriter(&buf)
	if err := w.Write(metadataHeader); err != nil {
		return nil, err
	}
	for i, name := range names {
		if err := w.Write([]string{strconv.Itoa(i), name}); err != nil {
			return nil, err
		}
	}
	w.Flush()
	return buf.Bytes(), w.Error()
}

// DecodeMetadata parses a metadata table. Row indices must run 0, 1, 2, ...
func DecodeMetadata(data []byte) ([]string, error) {
	r := newTSVReader(data)
	r.FieldsPerRecord = len(metadataHeader)

	header, err := r.Read()
	if err != nil {
		return nil, fmt.Errorf("%w: metadata header: %v", ErrMalformedTable, err)
	}
	if header[0] != metadataHeader[0] || header[1] != metadataHeader[1] {
		return nil, fmt.Errorf("%w: unexpected metadata header %q", ErrMalformedTable, header)
	}

	names := make([]string, 0)
	for {
		record, err := r.Read()
		if err == io.EOF {
			return names, nil
		}
		if err != nil {
			return nil, fmt.Errorf("%w: metadata: %v", ErrMalformedTable, err)
		}
		index, err := strconv.Atoi(record[0])
		if err != nil || index != len(names) {
			return nil, fmt.Errorf("%w: metadata row %d has index %q", ErrMalformedTable, len(names), record[0])
		}
		names = append(names, record[1])
	}
}

// EncodeMatrix renders one row of tab-separated integers per vector.
func EncodeMatrix(vectors [][]int) ([]byte, error) {
	var buf bytes.Buffer
	w := newTSVWriter(&buf)
	for _, vector := range vectors {
		row := make([]string, len(vector))
		for i, v := range vector {
			row[i] = strconv.Itoa(v)
		}
		if err := w.Write(row); err != nil {
			return nil, err
		}
	}
	w.Flush()
	return buf.Bytes(), w.Error()
}

// DecodeMatrix parses a matrix table holding rows vectors of equal width.
func DecodeMatrix(data []byte, rows int) ([][]int, error) {
	vectors := make([][]int, 0, rows)

	// Zero width vectors are written as blank lines, which the reader skips.
	if len(bytes.TrimSpace(data)) == 0 {
		if bytes.Count(data, []byte("\n")) != rows {
			return nil, fmt.Errorf("%w: matrix has no rows, expected %d", ErrMalformedTable, rows)
		}
		for i := 0; i < rows; i++ {
			vectors = append(vectors, []int{})
		}
		return vectors, nil
	}

	r := newTSVReader(data)
	for {
		record, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: matrix: %v", ErrMalformedTable, err)
		}
		vector := make([]int, len(record))
		for i, field := range record {
			v, err := strconv.Atoi(field)
			if err != nil {
				return nil, fmt.Errorf("%w: matrix row %d column %d: %q", ErrMalformedTable, len(vectors), i, field)
			}
			vector[i] = v
		}
		vectors = append(vectors, vector)
	}

	if len(vectors) != rows {
		return nil, fmt.Errorf("%w: matrix has %d rows, metadata has %d", ErrMalformedTable, len(vectors), rows)
	}
	return vectors, nil
}
