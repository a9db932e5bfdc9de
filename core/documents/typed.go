package documents

import (
	"context"
	"encoding/json"

	"project-aggregator/core/fanin"
)

// ProjectInfo is the subset of the PyPI JSON API document the jobs read.
// The full upstream document is stored unchanged.
type ProjectInfo struct {
	Info ProjectMeta `json:"info"`
}

// ProjectMeta holds the "info" section of a PyPI project document.
type ProjectMeta struct {
	Name        string            `json:"name"`
	Summary     string            `json:"summary"`
	Description string            `json:"description"`
	Keywords    string            `json:"keywords"`
	HomePage    string            `json:"home_page"`
	ProjectURLs map[string]string `json:"project_urls"`
}

// ProjectInfoStore keeps one PyPI info document per project.
type ProjectInfoStore struct {
	*Store
	flow string
	task string
}

// NewProjectInfoStore creates the project info store for the configured layout.
func NewProjectInfoStore(backend Backend, cfg Config) *ProjectInfoStore {
	return &ProjectInfoStore{
		Store: NewStore("ProjectInfoStore", backend, EntityKeyed(cfg.InfoPrefix, cfg.InfoNamespaced)),
		flow:  cfg.InfoFlow,
		task:  cfg.InfoTask,
	}
}

// Args returns the arguments addressing the info document of project.
func (s *ProjectInfoStore) Args(project string) Args {
	return Args{Flow: s.flow, Task: s.task, Entity: project}
}

// StoreProjectInfo writes the raw upstream document of project.
func (s *ProjectInfoStore) StoreProjectInfo(ctx context.Context, project string, raw json.RawMessage) (string, error) {
	return s.Store.Store(ctx, s.Args(project), raw)
}

// RetrieveProjectInfo reads the info document of project.
func (s *ProjectInfoStore) RetrieveProjectInfo(ctx context.Context, project string) (ProjectInfo, error) {
	var info ProjectInfo
	err := s.Retrieve(ctx, s.Args(project), &info)
	return info, err
}

// ProjectListing returns every project with a stored info document.
func (s *ProjectInfoStore) ProjectListing(ctx context.Context) ([]string, error) {
	return s.Listing(ctx, s.Args(""))
}

// Readme is a README located for a project.
type Readme struct {
	Type        string `json:"type"`
	Content     string `json:"content"`
	PackageName string `json:"package_name"`
	URL         string `json:"url"`
}

// ReadmeStore keeps one README document per project under a fixed prefix.
type ReadmeStore struct {
	*Store
}

// NewReadmeStore creates the README store.
func NewReadmeStore(backend Backend, prefix string) *ReadmeStore {
	return &ReadmeStore{Store: NewStore("ReadmeStore", backend, EntityKeyed(prefix, false))}
}

// StoreReadme writes the README of readme.PackageName.
func (s *ReadmeStore) StoreReadme(ctx context.Context, readme Readme) (string, error) {
	return s.Store.Store(ctx, Args{Entity: readme.PackageName}, readme)
}

// RetrieveReadme reads the README of project.
func (s *ReadmeStore) RetrieveReadme(ctx context.Context, project string) (Readme, error) {
	var readme Readme
	err := s.Retrieve(ctx, Args{Entity: project}, &readme)
	return readme, err
}

// Topics is the list of GitHub topics of a project.
type Topics struct {
	PackageName string   `json:"package_name"`
	Repository  string   `json:"repository"`
	Topics      []string `json:"topics"`
}

// TopicsStore keeps one topics document per project.
type TopicsStore struct {
	*Store
}

// NewTopicsStore creates the topics store.
func NewTopicsStore(backend Backend, prefix string) *TopicsStore {
	return &TopicsStore{Store: NewStore("TopicsStore", backend, EntityKeyed(prefix, false))}
}

// StoreTopics writes the topics of topics.PackageName.
func (s *TopicsStore) StoreTopics(ctx context.Context, topics Topics) (string, error) {
	return s.Store.Store(ctx, Args{Entity: topics.PackageName}, topics)
}

// RetrieveTopics reads the topics of project.
func (s *TopicsStore) RetrieveTopics(ctx context.Context, project string) (Topics, error) {
	var topics Topics
	err := s.Retrieve(ctx, Args{Entity: project}, &topics)
	return topics, err
}

// KeywordsStore keeps the single aggregated keyword table.
type KeywordsStore struct {
	*Store
}

// NewKeywordsStore creates the keyword table store.
func NewKeywordsStore(backend Backend, key string) *KeywordsStore {
	return &KeywordsStore{Store: NewStore("AggregatedKeywordsStore", backend, FixedKey(key))}
}

// StoreKeywords replaces the aggregated keyword table.
func (s *KeywordsStore) StoreKeywords(ctx context.Context, counts fanin.Counts) (string, error) {
	if counts == nil {
		counts = fanin.Counts{}
	}
	return s.Store.Store(ctx, Args{}, counts)
}

// RetrieveKeywords reads the aggregated keyword table.
func (s *KeywordsStore) RetrieveKeywords(ctx context.Context) (fanin.Counts, error) {
	counts := fanin.Counts{}
	if err := s.Retrieve(ctx, Args{}, &counts); err != nil {
		return nil, err
	}
	return counts, nil
}
