package project2vec_test

import (
	"context"
	"encoding/json"
	"testing"

	"project-aggregator/core/documents"
	"project-aggregator/core/fanin"
	"project-aggregator/core/flow"
	"project-aggregator/core/storage"
	"project-aggregator/core/storage/mocks"
	"project-aggregator/feature/project2vec"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newFixture(t *testing.T) (*project2vec.Service, *documents.Stores, *mocks.MemoryStore) {
	t.Helper()
	store := mocks.NewMemoryStore()
	stores := documents.NewStores(documents.Config{
		InfoNamespaced:    true,
		InfoFlow:          "pypiProjectInfo",
		InfoTask:          "ProjectInfoTask",
		ReadmePrefix:      "readme/",
		KeywordsKey:       "aggregates/keywords.json",
		VectorMetadataKey: "aggregates/project2vec/metadata.tsv",
		VectorMatrixKey:   "aggregates/project2vec/matrix.tsv",
	}, store)
	ctx := context.Background()

	_, err := stores.Keywords.StoreKeywords(ctx, fanin.Counts{"web": 3, "c++": 1, "orm": 2, "numpy": 1})
	require.NoError(t, err)

	infos := map[string]string{
		"flask":  "A micro web framework.",
		"django": "The Web framework with an ORM",
	}
	for name, desc := range infos {
		raw, err := json.Marshal(documents.ProjectInfo{Info: documents.ProjectMeta{Name: name, Description: desc}})
		require.NoError(t, err)
		_, err = stores.ProjectInfo.StoreProjectInfo(ctx, name, raw)
		require.NoError(t, err)
	}
	_, err = stores.Readme.StoreReadme(ctx, documents.Readme{PackageName: "pybind11", Content: "Seamless C++ bindings, works with NumPy."})
	require.NoError(t, err)

	return project2vec.NewService(stores, zap.NewNop()), stores, store
}

func TestTokenize(t *testing.T) {
	got := project2vec.Tokenize("Bindings for C++ and ASP.NET. Machine-learning, web!")
	for _, token := range []string{"bindings", "for", "c++", "and", "asp.net", "machine-learning", "web"} {
		assert.Contains(t, got, token)
	}
	assert.NotContains(t, got, "asp.net.")
	assert.NotContains(t, got, "web!")
}

func TestVectorize(t *testing.T) {
	vocabulary := []string{"c++", "numpy", "orm", "web"}

	assert.Equal(t, []int{0, 0, 0, 0}, project2vec.Vectorize(vocabulary))
	assert.Equal(t, []int{0, 0, 0, 1}, project2vec.Vectorize(vocabulary, "", "web web"))
	assert.Equal(t, []int{1, 1, 0, 0}, project2vec.Vectorize(vocabulary, "C++", "numpy."))
	// Substrings of tokens are not hits.
	assert.Equal(t, []int{0, 0, 0, 0}, project2vec.Vectorize(vocabulary, "webassembly sorm"))
	assert.Empty(t, project2vec.Vectorize(nil, "web"))
}

func TestService_Vocabulary(t *testing.T) {
	svc, _, _ := newFixture(t)

	vocabulary, err := svc.Vocabulary(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"c++", "numpy", "orm", "web"}, vocabulary)
}

func TestService_VocabularyMissing(t *testing.T) {
	svc := project2vec.NewService(documents.NewStores(documents.Config{KeywordsKey: "k.json"}, mocks.NewMemoryStore()), zap.NewNop())

	_, err := svc.Vocabulary(context.Background())
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestService_DocumentsAreOptional(t *testing.T) {
	svc, _, _ := newFixture(t)
	ctx := context.Background()

	docs, err := svc.Documents(ctx, "flask")
	require.NoError(t, err)
	assert.Equal(t, []string{"A micro web framework."}, docs)

	docs, err = svc.Documents(ctx, "pybind11")
	require.NoError(t, err)
	assert.Equal(t, []string{"Seamless C++ bindings, works with NumPy."}, docs)

	docs, err = svc.Documents(ctx, "unknown")
	require.NoError(t, err)
	assert.Empty(t, docs)
}

func TestService_DocumentsStoreFailure(t *testing.T) {
	svc, _, store := newFixture(t)
	store.Fail = func(op, key string) error {
		if key == "readme/flask" {
			return &storage.TransportError{Op: op, Key: key, Err: assert.AnError}
		}
		return nil
	}

	_, err := svc.Documents(context.Background(), "flask")
	assert.ErrorIs(t, err, assert.AnError)
	assert.NotErrorIs(t, err, storage.ErrNotFound)
}

func TestService_Build(t *testing.T) {
	svc, stores, _ := newFixture(t)
	ctx := context.Background()

	space, keys, err := svc.Build(ctx, flow.NewLocalRunner(), []string{"pybind11", "flask", "django", "unknown"})
	require.NoError(t, err)
	assert.Equal(t, []string{"aggregates/project2vec/metadata.tsv", "aggregates/project2vec/matrix.tsv"}, keys)

	assert.Equal(t, []string{"django", "flask", "pybind11", "unknown"}, space.Names)
	assert.Equal(t, [][]int{
		{0, 0, 1, 1},
		{0, 0, 0, 1},
		{1, 1, 0, 0},
		{0, 0, 0, 0},
	}, space.Vectors)

	stored, err := stores.VectorSpace.RetrieveVectorSpace(ctx)
	require.NoError(t, err)
	assert.Equal(t, space, stored)
}

func TestService_ReduceRejectsWrongWidth(t *testing.T) {
	svc, _, _ := newFixture(t)
	results := fanin.NewMemoryResults()
	require.NoError(t, results.SetJSON(project2vec.Group, 0, fanin.VectorEntry{Name: "flask", Vector: []int{1, 0}}))

	_, err := svc.Reduce(context.Background(), results, 4)
	assert.ErrorIs(t, err, fanin.ErrData)
}
