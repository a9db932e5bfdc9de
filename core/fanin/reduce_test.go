package fanin

import (
	"context"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func countsGroup(t *testing.T, parts []Counts) *Iterator[Counts] {
	t.Helper()
	results := NewMemoryResults()
	for i, part := range parts {
		require.NoError(t, results.SetJSON("keywords", i, part))
	}
	return NewIterator[Counts](results, "keywords", nil)
}

func vectorGroup(t *testing.T, entries []VectorEntry) *Iterator[VectorEntry] {
	t.Helper()
	results := NewMemoryResults()
	for i, entry := range entries {
		require.NoError(t, results.SetJSON("project2vec", i, entry))
	}
	return NewIterator[VectorEntry](results, "project2vec", nil)
}

func TestMergeCounts(t *testing.T) {
	parts := []Counts{
		{"web": 2, "Flask": 1},
		{},
		{"web": 1, "flask": 3, "": 4},
		{"http": 5},
	}

	total, err := MergeCounts(context.Background(), countsGroup(t, parts))
	require.NoError(t, err)
	assert.Equal(t, Counts{"web": 3, "flask": 4, "http": 5}, total)
	assert.Equal(t, []string{"flask", "http", "web"}, total.Keys())
}

func TestMergeCounts_OrderIndependent(t *testing.T) {
	parts := []Counts{
		{"a": 1, "b": 2},
		{"b": 3, "c": 1},
		{"a": 7},
		{"d": 2, "c": 2},
		{"e": 1},
	}
	want, err := MergeCounts(context.Background(), countsGroup(t, parts))
	require.NoError(t, err)

	rng := rand.New(rand.NewSource(42))
	for i := 0; i < 20; i++ {
		shuffled := append([]Counts(nil), parts...)
		rng.Shuffle(len(shuffled), func(a, b int) { shuffled[a], shuffled[b] = shuffled[b], shuffled[a] })

		got, err := MergeCounts(context.Background(), countsGroup(t, shuffled))
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}
}

func TestMergeCounts_Empty(t *testing.T) {
	total, err := MergeCounts(context.Background(), countsGroup(t, nil))
	require.NoError(t, err)
	assert.NotNil(t, total)
	assert.Empty(t, total)
}

func TestMergeCounts_NegativeCount(t *testing.T) {
	total, err := MergeCounts(context.Background(), countsGroup(t, []Counts{{"a": 1}, {"b": -1}}))
	assert.Nil(t, total)
	var dataErr *DataError
	require.ErrorAs(t, err, &dataErr)
	assert.Equal(t, 1, dataErr.Index)
}

func TestMergeCounts_GapFailsWithoutPartialResult(t *testing.T) {
	results := NewMemoryResults()
	for _, i := range []int{0, 1, 3} {
		require.NoError(t, results.SetJSON("keywords", i, Counts{"a": 1}))
	}
	total, err := MergeCounts(context.Background(), NewIterator[Counts](results, "keywords", nil))
	assert.Nil(t, total)
	assert.ErrorIs(t, err, ErrData)
}

func TestAssembleVectorSpace_SortedAndAligned(t *testing.T) {
	entries := []VectorEntry{
		{Name: "requests", Vector: []int{1, 1, 0}},
		{Name: "flask", Vector: []int{0, 1, 0}},
		{Name: "numpy", Vector: []int{0, 0, 1}},
		{Name: "aiohttp", Vector: []int{1, 0, 0}},
	}

	space, err := AssembleVectorSpace(context.Background(), vectorGroup(t, entries), 3)
	require.NoError(t, err)
	assert.Equal(t, []string{"aiohttp", "flask", "numpy", "requests"}, space.Names)
	assert.Equal(t, 4, space.Len())
	assert.Equal(t, 3, space.Width())

	byName := make(map[string][]int)
	for _, entry := range entries {
		byName[entry.Name] = entry.Vector
	}
	for i, name := range space.Names {
		assert.Equal(t, byName[name], space.Vectors[i], name)
	}
}

func TestAssembleVectorSpace_Empty(t *testing.T) {
	space, err := AssembleVectorSpace(context.Background(), vectorGroup(t, nil), 0)
	require.NoError(t, err)
	assert.NotNil(t, space.Names)
	assert.NotNil(t, space.Vectors)
	assert.Empty(t, space.Names)
	assert.Empty(t, space.Vectors)
	assert.Equal(t, 0, space.Width())
}

func TestAssembleVectorSpace_ZeroVectorStillPresent(t *testing.T) {
	entries := []VectorEntry{
		{Name: "beta", Vector: []int{0, 0}},
		{Name: "alpha", Vector: []int{1, 0}},
	}
	space, err := AssembleVectorSpace(context.Background(), vectorGroup(t, entries), 2)
	require.NoError(t, err)
	assert.Equal(t, []string{"alpha", "beta"}, space.Names)
	assert.Equal(t, [][]int{{1, 0}, {0, 0}}, space.Vectors)
}

func TestAssembleVectorSpace_Conflicts(t *testing.T) {
	tests := []struct {
		name    string
		entries []VectorEntry
		width   int
		wantErr bool
	}{
		{
			name: "ConflictingDuplicate",
			entries: []VectorEntry{
				{Name: "flask", Vector: []int{1, 0}},
				{Name: "flask", Vector: []int{0, 1}},
			},
			wantErr: true,
		},
		{
			name: "IdenticalDuplicate",
			entries: []VectorEntry{
				{Name: "flask", Vector: []int{1, 0}},
				{Name: "flask", Vector: []int{1, 0}},
			},
		},
		{
			name: "WidthMismatch",
			entries: []VectorEntry{
				{Name: "a", Vector: []int{1, 0}},
				{Name: "b", Vector: []int{1}},
			},
			wantErr: true,
		},
		{
			name: "EmptyFirstVector",
			entries: []VectorEntry{
				{Name: "alpha", Vector: []int{}},
				{Name: "beta", Vector: []int{1, 0}},
			},
			wantErr: true,
		},
		{
			name:    "VocabularyWidth",
			entries: []VectorEntry{{Name: "a", Vector: []int{1, 0}}},
			width:   3,
			wantErr: true,
		},
		{
			name:    "Unnamed",
			entries: []VectorEntry{{Vector: []int{1}}},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			space, err := AssembleVectorSpace(context.Background(), vectorGroup(t, tt.entries), tt.width)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrData)
				assert.Empty(t, space.Names)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, []string{"flask"}, space.Names)
		})
	}
}
