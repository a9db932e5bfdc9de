package source

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"sort"
	"strings"
)

// PyPI reads the Python package index.
type PyPI struct {
	base   string
	client *Client
}

// NewPyPI creates a PyPI source rooted at base (e.g. https://pypi.org).
func NewPyPI(base string, client *Client) *PyPI {
	return &PyPI{base: strings.TrimSuffix(base, "/"), client: client}
}

type simpleIndex struct {
	Projects []struct {
		Name string `json:"name"`
	} `json:"projects"`
}

// ListPackages returns every project name of the simple index, sorted.
func (p *PyPI) ListPackages(ctx context.Context) ([]string, error) {
	body, err := p.client.Get(ctx, "pypi", "", p.base+"/simple/", map[string]string{
		"Accept": "application/vnd.pypi.simple.v1+json",
	})
	if err != nil {
		return nil, err
	}

	var index simpleIndex
	if err := json.Unmarshal(body, &index); err != nil {
		return nil, fmt.Errorf("decode pypi simple index: %w", err)
	}

	names := make([]string, 0, len(index.Projects))
	for _, project := range index.Projects {
		if project.Name != "" {
			names = append(names, project.Name)
		}
	}
	sort.Strings(names)
	return names, nil
}

// ProjectInfo returns the JSON API document of the latest release of name.
func (p *PyPI) ProjectInfo(ctx context.Context, name string) (json.RawMessage, error) {
	body, err := p.client.Get(ctx, "pypi", name, p.base+"/pypi/"+url.PathEscape(name)+"/json", map[string]string{
		"Accept": "application/json",
	})
	if err != nil {
		return nil, err
	}
	if !json.Valid(body) {
		return nil, fmt.Errorf("pypi %q: response is not valid JSON", name)
	}
	return json.RawMessage(body), nil
}
