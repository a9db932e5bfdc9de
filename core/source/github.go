package source

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"project-aggregator/core/resolve"

	lru "github.com/hashicorp/golang-lru/v2"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

// ErrNotGitHub is returned when a link does not point at a GitHub repository.
var ErrNotGitHub = errors.New("not a GitHub repository link")

// Repository identifies a GitHub repository.
type Repository struct {
	Project string `json:"project"`
	Repo    string `json:"repo"`
}

func (r Repository) String() string {
	return r.Project + "/" + r.Repo
}

// ParseRepository extracts the owner and repository from a GitHub URL such
// as https://github.com/pallets/flask.
func ParseRepository(link string) (Repository, error) {
	u, err := url.Parse(strings.TrimSpace(link))
	if err != nil {
		return Repository{}, fmt.Errorf("%w: %q: %v", ErrNotGitHub, link, err)
	}
	host := strings.TrimPrefix(strings.ToLower(u.Host), "www.")
	if host != "github.com" {
		return Repository{}, fmt.Errorf("%w: %q", ErrNotGitHub, link)
	}
	parts := strings.Split(strings.Trim(u.Path, "/"), "/")
	if len(parts) < 2 || parts[0] == "" || parts[1] == "" {
		return Repository{}, fmt.Errorf("%w: %q has no owner and repository", ErrNotGitHub, link)
	}
	return Repository{Project: parts[0], Repo: strings.TrimSuffix(parts[1], ".git")}, nil
}

// prescription is the part of a gh_link.yaml file holding the repository link.
type prescription struct {
	Units struct {
		Wraps []struct {
			Run struct {
				Justification []struct {
					Link string `yaml:"link"`
				} `yaml:"justification"`
			} `yaml:"run"`
		} `yaml:"wraps"`
	} `yaml:"units"`
}

func (p prescription) link() string {
	if len(p.Units.Wraps) == 0 || len(p.Units.Wraps[0].Run.Justification) == 0 {
		return ""
	}
	return p.Units.Wraps[0].Run.Justification[0].Link
}

// GitHub reads raw files, prescriptions and the REST API.
type GitHub struct {
	cfg    Config
	client *Client
	logger *zap.Logger
	links  *lru.Cache[string, Repository]
	probe  *resolve.Resolver[[]byte]
}

// NewGitHub creates a GitHub source.
func NewGitHub(cfg Config, client *Client, logger *zap.Logger) (*GitHub, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	size := cfg.CacheSize
	if size <= 0 {
		size = 1024
	}
	links, err := lru.New[string, Repository](size)
	if err != nil {
		return nil, err
	}
	g := &GitHub{cfg: cfg, client: client, logger: logger, links: links}
	g.probe = resolve.New("prescription", g.rawProbe, logger)
	return g, nil
}

func (g *GitHub) authHeaders() map[string]string {
	headers := map[string]string{}
	if g.cfg.GitHubToken != "" {
		headers["Authorization"] = "token " + g.cfg.GitHubToken
	}
	return headers
}

// Raw fetches a raw file. Non-fatal failures match resolve.ErrMiss, so Raw
// can be used directly as a resolver probe.
func (g *GitHub) Raw(ctx context.Context, rawURL string) ([]byte, error) {
	return g.client.Get(ctx, "github", "", rawURL, g.authHeaders())
}

func (g *GitHub) rawProbe(ctx context.Context, c resolve.Candidate) ([]byte, error) {
	return g.Raw(ctx, c.Address)
}

// Prescription resolves the repository of a package through its gh_link.yaml
// prescription. Results are cached by package name.
func (g *GitHub) Prescription(ctx context.Context, name string) (Repository, error) {
	if repo, ok := g.links.Get(name); ok {
		return repo, nil
	}

	candidates := resolve.PrefixCandidates(g.cfg.PrescriptionsURL, name, "gh_link.yaml")
	body, winner, err := g.probe.Resolve(ctx, name, candidates)
	if err != nil {
		return Repository{}, err
	}

	var doc prescription
	if err := yaml.Unmarshal(body, &doc); err != nil {
		return Repository{}, fmt.Errorf("parse prescription %s: %w", winner.Address, err)
	}
	link := doc.link()
	if link == "" {
		return Repository{}, fmt.Errorf("prescription %s holds no repository link", winner.Address)
	}
	repo, err := ParseRepository(link)
	if err != nil {
		return Repository{}, err
	}

	g.links.Add(name, repo)
	return repo, nil
}

// ReadmeCandidates returns the README locations of repo in probing order.
func (g *GitHub) ReadmeCandidates(repo Repository) []resolve.Candidate {
	branch := g.cfg.ReadmeBranch
	if branch == "" {
		branch = "master"
	}
	return resolve.ReadmeCandidates(g.cfg.GitHubRawURL, repo.Project, repo.Repo, branch)
}

// Topics returns the topics of repo.
func (g *GitHub) Topics(ctx context.Context, repo Repository) ([]string, error) {
	headers := g.authHeaders()
	if _, ok := headers["Authorization"]; !ok {
		g.logger.Warn("No GitHub token configured, API requests will be throttled")
	}
	headers["Accept"] = "application/vnd.github.mercy-preview+json, application/vnd.github.v3+json"

	apiURL := fmt.Sprintf("%s/repos/%s/%s/topics", strings.TrimSuffix(g.cfg.GitHubAPIURL, "/"),
		url.PathEscape(repo.Project), url.PathEscape(repo.Repo))
	body, err := g.client.Get(ctx, "github", repo.String(), apiURL, headers)
	if err != nil {
		return nil, err
	}

	var payload struct {
		Names []string `json:"names"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, fmt.Errorf("decode topics of %s: %w", repo, err)
	}
	if payload.Names == nil {
		payload.Names = []string{}
	}
	return payload.Names, nil
}
