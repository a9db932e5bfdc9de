package source

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"project-aggregator/core/resolve"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const ghLinkYAML = `units:
  wraps:
    - name: flask_gh_link
      run:
        justification:
          - type: INFO
            message: Repository of flask
            link: https://github.com/pallets/flask
`

func newTestClient() *Client {
	return NewClient(5, nil)
}

func TestError_Classification(t *testing.T) {
	tests := []struct {
		name     string
		status   int
		fatal    bool
		notFound bool
	}{
		{"Transport", 0, true, false},
		{"Unauthorized", 401, true, false},
		{"Forbidden", 403, true, false},
		{"RateLimited", 429, true, false},
		{"NotFound", 404, false, true},
		{"ServerError", 500, false, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := &Error{Source: "github", URL: "https://x", StatusCode: tt.status}
			assert.Equal(t, tt.fatal, err.Fatal())
			assert.Equal(t, tt.notFound, err.NotFound())
			assert.Equal(t, !tt.fatal, errors.Is(err, resolve.ErrMiss))
			assert.ErrorIs(t, err, ErrSource)
		})
	}
}

func TestClient_Get(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/ok":
			assert.Equal(t, "v", r.Header.Get("X-Test"))
			fmt.Fprint(w, "body")
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer srv.Close()

	c := newTestClient()
	body, err := c.Get(context.Background(), "test", "e", srv.URL+"/ok", map[string]string{"X-Test": "v"})
	require.NoError(t, err)
	assert.Equal(t, "body", string(body))

	_, err = c.Get(context.Background(), "test", "e", srv.URL+"/missing", nil)
	var srcErr *Error
	require.ErrorAs(t, err, &srcErr)
	assert.True(t, srcErr.NotFound())
}

func TestClient_TransportFailureIsFatal(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	addr := srv.URL
	srv.Close()

	_, err := newTestClient().Get(context.Background(), "test", "e", addr, nil)
	var srcErr *Error
	require.ErrorAs(t, err, &srcErr)
	assert.True(t, srcErr.Fatal())
}

func TestPyPI(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/simple/":
			assert.Equal(t, "application/vnd.pypi.simple.v1+json", r.Header.Get("Accept"))
			fmt.Fprint(w, `{"projects":[{"name":"requests"},{"name":"flask"},{"name":""}]}`)
		case "/pypi/flask/json":
			fmt.Fprint(w, `{"info":{"name":"flask","keywords":"web"}}`)
		case "/pypi/broken/json":
			fmt.Fprint(w, `{not json`)
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer srv.Close()

	p := NewPyPI(srv.URL+"/", newTestClient())

	names, err := p.ListPackages(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"flask", "requests"}, names)

	info, err := p.ProjectInfo(context.Background(), "flask")
	require.NoError(t, err)
	assert.JSONEq(t, `{"info":{"name":"flask","keywords":"web"}}`, string(info))

	_, err = p.ProjectInfo(context.Background(), "broken")
	assert.Error(t, err)

	_, err = p.ProjectInfo(context.Background(), "absent")
	var srcErr *Error
	require.ErrorAs(t, err, &srcErr)
	assert.Equal(t, http.StatusNotFound, srcErr.StatusCode)
}

func TestParseRepository(t *testing.T) {
	tests := []struct {
		link    string
		want    Repository
		wantErr bool
	}{
		{link: "https://github.com/pallets/flask", want: Repository{"pallets", "flask"}},
		{link: "https://www.github.com/pallets/flask/tree/main", want: Repository{"pallets", "flask"}},
		{link: "https://github.com/pallets/flask.git", want: Repository{"pallets", "flask"}},
		{link: "https://gitlab.com/pallets/flask", wantErr: true},
		{link: "https://github.com/pallets", wantErr: true},
		{link: "", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.link, func(t *testing.T) {
			got, err := ParseRepository(tt.link)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrNotGitHub)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestGitHub_Prescription(t *testing.T) {
	var hits atomic.Int32
	var probed []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		probed = append(probed, r.URL.Path)
		if r.URL.Path == "/prescriptions/f_/flask/gh_link.yaml" {
			fmt.Fprint(w, ghLinkYAML)
			return
		}
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	g, err := NewGitHub(Config{PrescriptionsURL: srv.URL + "/prescriptions"}, newTestClient(), nil)
	require.NoError(t, err)

	repo, err := g.Prescription(context.Background(), "flask")
	require.NoError(t, err)
	assert.Equal(t, Repository{Project: "pallets", Repo: "flask"}, repo)
	assert.Equal(t, []string{
		"/prescriptions/fl_/flask/gh_link.yaml",
		"/prescriptions/f_/flask/gh_link.yaml",
	}, probed)

	// Cached.
	_, err = g.Prescription(context.Background(), "flask")
	require.NoError(t, err)
	assert.Equal(t, int32(2), hits.Load())
}

func TestGitHub_PrescriptionExhausted(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	g, err := NewGitHub(Config{PrescriptionsURL: srv.URL}, newTestClient(), nil)
	require.NoError(t, err)

	_, err = g.Prescription(context.Background(), "flask")
	var rerr *resolve.ResolutionError
	require.ErrorAs(t, err, &rerr)
	assert.Len(t, rerr.Tried, 3)
}

func TestGitHub_PrescriptionRateLimited(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	g, err := NewGitHub(Config{PrescriptionsURL: srv.URL}, newTestClient(), nil)
	require.NoError(t, err)

	_, err = g.Prescription(context.Background(), "flask")
	var srcErr *Error
	require.ErrorAs(t, err, &srcErr)
	assert.True(t, srcErr.Fatal())
	assert.Equal(t, int32(1), hits.Load())
}

func TestGitHub_Topics(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/repos/pallets/flask/topics", r.URL.Path)
		assert.Equal(t, "token secret", r.Header.Get("Authorization"))
		assert.Contains(t, r.Header.Get("Accept"), "mercy-preview")
		fmt.Fprint(w, `{"names":["wsgi","flask"]}`)
	}))
	defer srv.Close()

	g, err := NewGitHub(Config{GitHubAPIURL: srv.URL, GitHubToken: "secret"}, newTestClient(), nil)
	require.NoError(t, err)

	topics, err := g.Topics(context.Background(), Repository{Project: "pallets", Repo: "flask"})
	require.NoError(t, err)
	assert.Equal(t, []string{"wsgi", "flask"}, topics)
}

func TestGitHub_ReadmeCandidates(t *testing.T) {
	g, err := NewGitHub(Config{GitHubRawURL: "https://raw.example"}, newTestClient(), nil)
	require.NoError(t, err)

	got := g.ReadmeCandidates(Repository{Project: "pallets", Repo: "flask"})
	assert.Equal(t, "https://raw.example/pallets/flask/master/README.md", got[0].Address)
}

func TestTravis(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "3", r.Header.Get("Travis-API-Version"))
		assert.Equal(t, "token tk", r.Header.Get("Authorization"))

		switch r.URL.Path {
		case "/owner/thoth/repos":
			if r.URL.Query().Get("offset") == "0" {
				fmt.Fprint(w, `{"repositories":[{"slug":"thoth/a"},{"slug":"thoth/b"}],"@pagination":{"is_last":false,"count":3}}`)
				return
			}
			assert.Equal(t, "2", r.URL.Query().Get("offset"))
			fmt.Fprint(w, `{"repositories":[{"slug":"thoth/c"}],"@pagination":{"is_last":true,"count":3}}`)
		case "/repo/thoth/a/builds":
			if r.URL.Query().Get("offset") == "" {
				fmt.Fprint(w, `{"builds":[],"@pagination":{"count":42}}`)
				return
			}
			fmt.Fprint(w, `{"builds":[
				{"id":7,"finished_at":"2018-01-01T00:00:00Z","jobs":[{"id":70},{"id":71}]},
				{"id":8,"finished_at":null,"jobs":[{"id":80}]}
			]}`)
		case "/job/70/log.txt":
			fmt.Fprint(w, "\x1b[32mok\x1b[0m café")
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer srv.Close()

	tr := NewTravis(srv.URL, "tk", newTestClient())
	ctx := context.Background()

	repos, err := tr.ActiveRepos(ctx, "thoth")
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b", "c"}, repos)

	count, err := tr.BuildsCount(ctx, "thoth", "a")
	require.NoError(t, err)
	assert.Equal(t, 42, count)

	builds, err := tr.Builds(ctx, "thoth", "a", 3)
	require.NoError(t, err)
	assert.Equal(t, []Build{{ID: 7, Jobs: []int64{70, 71}}}, builds)

	log, err := tr.JobLog(ctx, 70)
	require.NoError(t, err)
	assert.Equal(t, "ok caf", CleanLog(log))
}

func TestStackOverflow_Tags(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `<?xml version="1.0" encoding="utf-8"?>
<tags>
  <row Id="1" TagName="python" Count="1500" />
  <row Id="2" TagName="flask" Count="40" />
  <row Id="3" TagName="broken" Count="many" />
  <row Id="4" Count="3" />
</tags>`)
	}))
	defer srv.Close()

	tags, err := NewStackOverflow(srv.URL+"/Tags.xml", newTestClient(), nil).Tags(context.Background())
	require.NoError(t, err)
	assert.Equal(t, map[string]int{"python": 1500, "flask": 40}, tags)
}
