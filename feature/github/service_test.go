package github_test

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"project-aggregator/core/documents"
	"project-aggregator/core/fanin"
	"project-aggregator/core/flow"
	"project-aggregator/core/resolve"
	"project-aggregator/core/source"
	"project-aggregator/core/storage/mocks"
	"project-aggregator/feature/github"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newService(t *testing.T) (*github.Service, *documents.TopicsStore) {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/prescriptions/fl_/flask/gh_link.yaml":
			fmt.Fprint(w, "units:\n  wraps:\n    - run:\n        justification:\n          - link: https://github.com/pallets/flask\n")
		case "/api/repos/pallets/flask/topics":
			fmt.Fprint(w, `{"names":["wsgi","Web"]}`)
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	t.Cleanup(srv.Close)

	gh, err := source.NewGitHub(source.Config{
		PrescriptionsURL: srv.URL + "/prescriptions",
		GitHubAPIURL:     srv.URL + "/api",
		GitHubToken:      "t",
	}, source.NewClient(5, nil), nil)
	require.NoError(t, err)

	topics := documents.NewTopicsStore(mocks.NewMemoryStore(), "github/topics/")
	return github.NewService(gh, topics, zap.NewNop()), topics
}

func TestService_Repository(t *testing.T) {
	svc, _ := newService(t)

	link, err := svc.Repository(context.Background(), "flask")
	require.NoError(t, err)
	assert.Equal(t, github.RepositoryLink{
		PackageName: "flask",
		Project:     "pallets",
		Repo:        "flask",
		URL:         "https://github.com/pallets/flask",
	}, link)

	_, err = svc.Repository(context.Background(), "unknown")
	assert.ErrorIs(t, err, resolve.ErrUnresolved)
}

func TestService_FetchTopics(t *testing.T) {
	svc, store := newService(t)

	doc, err := svc.FetchTopics(context.Background(), "flask")
	require.NoError(t, err)
	assert.Equal(t, []string{"wsgi", "Web"}, doc.Topics)

	stored, err := store.RetrieveTopics(context.Background(), "flask")
	require.NoError(t, err)
	assert.Equal(t, doc, stored)
}

func TestService_TopicsGroup(t *testing.T) {
	svc, _ := newService(t)
	runner := flow.NewLocalRunner()

	results, err := runner.FanOut(context.Background(), github.TopicsGroup,
		flow.Entities(documents.Args{}, []string{"flask"}), svc.TopicsJob())
	require.NoError(t, err)

	docs, err := fanin.NewIterator[documents.Topics](results, github.TopicsGroup, nil).Collect(context.Background())
	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.Equal(t, "pallets/flask", docs[0].Repository)
}
