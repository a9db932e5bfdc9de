package keywords_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"project-aggregator/core/documents"
	"project-aggregator/core/fanin"
	"project-aggregator/core/flow"
	"project-aggregator/core/storage"
	"project-aggregator/core/storage/mocks"
	"project-aggregator/feature/keywords"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type staticTags map[string]int

func (s staticTags) Tags(context.Context) (map[string]int, error) { return s, nil }

type failingTags struct{}

func (failingTags) Tags(context.Context) (map[string]int, error) {
	return nil, errors.New("archive unavailable")
}

func newStores(t *testing.T) (*documents.Stores, *mocks.MemoryStore) {
	t.Helper()
	store := mocks.NewMemoryStore()
	stores := documents.NewStores(documents.Config{
		InfoNamespaced: true,
		InfoFlow:       "pypiProjectInfo",
		InfoTask:       "ProjectInfoTask",
		TopicsPrefix:   "github/topics/",
		KeywordsKey:    "aggregates/keywords.json",
	}, store)

	ctx := context.Background()
	for name, kw := range map[string]string{
		"flask":    "wsgi web,framework",
		"django":   "Web;Framework  orm",
		"requests": "",
	} {
		raw, err := json.Marshal(documents.ProjectInfo{Info: documents.ProjectMeta{Name: name, Keywords: kw}})
		require.NoError(t, err)
		_, err = stores.ProjectInfo.StoreProjectInfo(ctx, name, raw)
		require.NoError(t, err)
	}
	_, err := stores.Topics.StoreTopics(ctx, documents.Topics{PackageName: "flask", Topics: []string{"wsgi", "python"}})
	require.NoError(t, err)
	return stores, store
}

func TestExtract(t *testing.T) {
	tests := []struct {
		in   string
		want fanin.Counts
	}{
		{"", fanin.Counts{}},
		{"web", fanin.Counts{"web": 1}},
		{"Web web WEB", fanin.Counts{"web": 3}},
		{"a+b,c;d\te\nf", fanin.Counts{"a": 1, "b": 1, "c": 1, "d": 1, "e": 1, "f": 1}},
		{" ,, ;", fanin.Counts{}},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, keywords.Extract(tt.in))
		})
	}
}

func TestService_FanOutThenReduce(t *testing.T) {
	stores, _ := newStores(t)
	svc := keywords.NewService(stores, nil, zap.NewNop())
	ctx := context.Background()

	runner := flow.NewLocalRunner(flow.WithConcurrency(2))
	results, err := runner.FanOut(ctx, keywords.Group,
		flow.Entities(documents.Args{}, []string{"flask", "django", "requests"}), svc.Job())
	require.NoError(t, err)

	total, err := svc.Reduce(ctx, results)
	require.NoError(t, err)
	assert.Equal(t, fanin.Counts{"wsgi": 1, "web": 2, "framework": 2, "orm": 1}, total)
}

func TestService_JobMissingInfoFails(t *testing.T) {
	stores, _ := newStores(t)
	svc := keywords.NewService(stores, nil, zap.NewNop())

	_, err := flow.NewLocalRunner().FanOut(context.Background(), keywords.Group,
		flow.Entities(documents.Args{}, []string{"flask", "absent"}), svc.Job())
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestService_FromStoreMatchesFanOut(t *testing.T) {
	stores, _ := newStores(t)
	svc := keywords.NewService(stores, nil, zap.NewNop())

	total, err := svc.FromProjectInfo(context.Background())
	require.NoError(t, err)
	assert.Equal(t, fanin.Counts{"wsgi": 1, "web": 2, "framework": 2, "orm": 1}, total)
}

func TestService_FromProjectInfoFlatLayout(t *testing.T) {
	store := mocks.NewMemoryStore()
	stores := documents.NewStores(documents.Config{
		ReadmePrefix:      "readme/",
		TopicsPrefix:      "github/topics/",
		KeywordsKey:       "aggregates/keywords.json",
		VectorMetadataKey: "aggregates/project2vec/metadata.tsv",
		VectorMatrixKey:   "aggregates/project2vec/matrix.tsv",
	}, store)
	ctx := context.Background()

	raw, err := json.Marshal(documents.ProjectInfo{Info: documents.ProjectMeta{Name: "flask", Keywords: "wsgi web"}})
	require.NoError(t, err)
	_, err = stores.ProjectInfo.StoreProjectInfo(ctx, "flask", raw)
	require.NoError(t, err)

	// Documents of other namespaces share the bucket root with flat info keys.
	_, err = stores.Readme.StoreReadme(ctx, documents.Readme{PackageName: "flask", Content: "# Flask"})
	require.NoError(t, err)
	_, err = stores.Topics.StoreTopics(ctx, documents.Topics{PackageName: "flask", Topics: []string{"python"}})
	require.NoError(t, err)
	_, err = stores.VectorSpace.StoreVectorSpace(ctx, fanin.VectorSpace{Names: []string{"flask"}, Vectors: [][]int{{1, 0}}})
	require.NoError(t, err)

	names, err := stores.ProjectInfo.ProjectListing(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"flask"}, names)

	total, err := keywords.NewService(stores, nil, zap.NewNop()).FromProjectInfo(ctx)
	require.NoError(t, err)
	assert.Equal(t, fanin.Counts{"wsgi": 1, "web": 1}, total)
}

func TestService_Collect(t *testing.T) {
	stores, _ := newStores(t)
	svc := keywords.NewService(stores, staticTags{"Python": 100, "flask": 7}, zap.NewNop())
	ctx := context.Background()

	total, err := svc.Collect(ctx, []string{keywords.SourcePyPI, keywords.SourceGitHub, keywords.SourceStackOverflow})
	require.NoError(t, err)
	assert.Equal(t, fanin.Counts{
		"wsgi": 2, "web": 2, "framework": 2, "orm": 1, "python": 101, "flask": 7,
	}, total)

	_, err = svc.Collect(ctx, []string{"bogus"})
	assert.EqualError(t, err, `unknown keyword source "bogus"`)
}

func TestService_CollectSourceFailure(t *testing.T) {
	stores, _ := newStores(t)
	svc := keywords.NewService(stores, failingTags{}, zap.NewNop())

	total, err := svc.Collect(context.Background(), []string{keywords.SourcePyPI, keywords.SourceStackOverflow})
	assert.Nil(t, total)
	assert.ErrorContains(t, err, "archive unavailable")
}

func TestService_NoTagSource(t *testing.T) {
	stores, _ := newStores(t)
	svc := keywords.NewService(stores, nil, zap.NewNop())

	total, err := svc.FromStackOverflow(context.Background())
	require.NoError(t, err)
	assert.Empty(t, total)
}

func TestCombine(t *testing.T) {
	total, err := keywords.Combine(fanin.Counts{"a": 1}, nil, fanin.Counts{"A": 2, "b": 1})
	require.NoError(t, err)
	assert.Equal(t, fanin.Counts{"a": 3, "b": 1}, total)

	_, err = keywords.Combine(fanin.Counts{"a": 1}, fanin.Counts{"a": -1})
	assert.ErrorContains(t, err, "keyword source 1")
}

func TestService_Store(t *testing.T) {
	stores, backend := newStores(t)
	svc := keywords.NewService(stores, nil, zap.NewNop())

	key, err := svc.Store(context.Background(), fanin.Counts{"web": 2})
	require.NoError(t, err)
	assert.Equal(t, "aggregates/keywords.json", key)
	assert.JSONEq(t, `{"web":2}`, backend.Document(key))

	// Last write wins.
	_, err = svc.Store(context.Background(), fanin.Counts{"orm": 1})
	require.NoError(t, err)
	got, err := stores.Keywords.RetrieveKeywords(context.Background())
	require.NoError(t, err)
	assert.Equal(t, fanin.Counts{"orm": 1}, got)
}
