package source

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"regexp"
	"strconv"
	"strings"
)

// Travis reads the Travis CI API v3.
type Travis struct {
	base   string
	token  string
	client *Client
}

// NewTravis creates a Travis CI source.
func NewTravis(base, token string, client *Client) *Travis {
	return &Travis{base: strings.TrimSuffix(base, "/"), token: token, client: client}
}

type pagination struct {
	Count  int  `json:"count"`
	IsLast bool `json:"is_last"`
}

// Build is a finished build with its job ids.
type Build struct {
	ID   int64   `json:"build"`
	Jobs []int64 `json:"jobs"`
}

func (t *Travis) get(ctx context.Context, entity, path string, query url.Values) ([]byte, error) {
	target := t.base + path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}
	headers := map[string]string{"Travis-API-Version": "3"}
	if t.token != "" {
		headers["Authorization"] = "token " + t.token
	}
	return t.client.Get(ctx, "travis", entity, target, headers)
}

func repoSlug(org, repo string) string {
	return url.PathEscape(org + "/" + repo)
}

// ActiveRepos lists the active repositories of org, following pagination.
// Names are returned without the organization.
func (t *Travis) ActiveRepos(ctx context.Context, org string) ([]string, error) {
	var repos []string
	offset := 0
	for {
		query := url.Values{"active": {"true"}, "offset": {strconv.Itoa(offset)}}
		body, err := t.get(ctx, org, "/owner/"+url.PathEscape(org)+"/repos", query)
		if err != nil {
			return nil, err
		}

		var page struct {
			Repositories []struct {
				Slug string `json:"slug"`
			} `json:"repositories"`
			Pagination pagination `json:"@pagination"`
		}
		if err := json.Unmarshal(body, &page); err != nil {
			return nil, fmt.Errorf("decode repositories of %q: %w", org, err)
		}

		for _, r := range page.Repositories {
			_, name, ok := strings.Cut(r.Slug, "/")
			if !ok {
				name = r.Slug
			}
			repos = append(repos, name)
		}

		if page.Pagination.IsLast || len(page.Repositories) == 0 {
			return repos, nil
		}
		offset += len(page.Repositories)
	}
}

// BuildsCount returns the number of builds of org/repo.
func (t *Travis) BuildsCount(ctx context.Context, org, repo string) (int, error) {
	body, err := t.get(ctx, org+"/"+repo, "/repo/"+repoSlug(org, repo)+"/builds", url.Values{"limit": {"1"}})
	if err != nil {
		return 0, err
	}
	var page struct {
		Pagination pagination `json:"@pagination"`
	}
	if err := json.Unmarshal(body, &page); err != nil {
		return 0, fmt.Errorf("decode builds of %s/%s: %w", org, repo, err)
	}
	return page.Pagination.Count, nil
}

// Builds returns the finished build at offset of org/repo. Each offset
// addresses one build so offsets can be fetched by independent siblings.
func (t *Travis) Builds(ctx context.Context, org, repo string, offset int) ([]Build, error) {
	query := url.Values{"offset": {strconv.Itoa(offset)}, "limit": {"1"}}
	body, err := t.get(ctx, org+"/"+repo, "/repo/"+repoSlug(org, repo)+"/builds", query)
	if err != nil {
		return nil, err
	}

	var page struct {
		Builds []struct {
			ID         int64   `json:"id"`
			FinishedAt *string `json:"finished_at"`
			Jobs       []struct {
				ID int64 `json:"id"`
			} `json:"jobs"`
		} `json:"builds"`
	}
	if err := json.Unmarshal(body, &page); err != nil {
		return nil, fmt.Errorf("decode builds of %s/%s: %w", org, repo, err)
	}

	builds := make([]Build, 0, len(page.Builds))
	for _, b := range page.Builds {
		if b.FinishedAt == nil || *b.FinishedAt == "" {
			continue
		}
		build := Build{ID: b.ID, Jobs: make([]int64, 0, len(b.Jobs))}
		for _, j := range b.Jobs {
			build.Jobs = append(build.Jobs, j.ID)
		}
		builds = append(builds, build)
	}
	return builds, nil
}

// JobLog returns the plain text log of a job.
func (t *Travis) JobLog(ctx context.Context, jobID int64) (string, error) {
	id := strconv.FormatInt(jobID, 10)
	body, err := t.get(ctx, id, "/job/"+id+"/log.txt", nil)
	if err != nil {
		return "", err
	}
	return string(body), nil
}

var ansiEscape = regexp.MustCompile("\x1b\\[.*?[@-~]")

// CleanLog strips terminal escape sequences and non-ASCII characters.
func CleanLog(log string) string {
	log = ansiEscape.ReplaceAllString(log, "")
	var b strings.Builder
	b.Grow(len(log))
	for i := 0; i < len(log); i++ {
		if log[i] < 0x80 {
			b.WriteByte(log[i])
		}
	}
	return b.String()
}
