package github

import (
	"context"
	"fmt"

	"project-aggregator/core/documents"
	"project-aggregator/core/flow"
	"project-aggregator/core/source"

	"go.uber.org/zap"
)

// TopicsGroup is the fan-out group of topics siblings.
const TopicsGroup = "github-topics"

// RepositoryLink ties a package to its GitHub repository.
type RepositoryLink struct {
	PackageName string `json:"package_name"`
	Project     string `json:"project"`
	Repo        string `json:"repo"`
	URL         string `json:"url"`
}

// Service gathers GitHub information of packages.
type Service struct {
	github *source.GitHub
	topics *documents.TopicsStore
	logger *zap.Logger
}

// NewService creates a new GitHub service.
func NewService(github *source.GitHub, topics *documents.TopicsStore, logger *zap.Logger) *Service {
	return &Service{
		github: github,
		topics: topics,
		logger: logger,
	}
}

// Repository resolves the repository of project through its prescription.
func (s *Service) Repository(ctx context.Context, project string) (RepositoryLink, error) {
	repo, err := s.github.Prescription(ctx, project)
	if err != nil {
		return RepositoryLink{}, err
	}
	return RepositoryLink{
		PackageName: project,
		Project:     repo.Project,
		Repo:        repo.Repo,
		URL:         "https://github.com/" + repo.String(),
	}, nil
}

// FetchTopics resolves the repository of project, reads its topics and
// stores them.
func (s *Service) FetchTopics(ctx context.Context, project string) (documents.Topics, error) {
	repo, err := s.github.Prescription(ctx, project)
	if err != nil {
		return documents.Topics{}, err
	}
	names, err := s.github.Topics(ctx, repo)
	if err != nil {
		return documents.Topics{}, err
	}

	doc := documents.Topics{PackageName: project, Repository: repo.String(), Topics: names}
	key, err := s.topics.StoreTopics(ctx, doc)
	if err != nil {
		return documents.Topics{}, fmt.Errorf("store topics of %q: %w", project, err)
	}
	s.logger.Debug("Stored topics",
		zap.String("entity", project),
		zap.Int("topics", len(names)),
		zap.String("key", key))
	return doc, nil
}

// RepositoryJob is the per-project repository resolution job.
func (s *Service) RepositoryJob() flow.Job {
	return flow.JobFunc(func(ctx context.Context, args documents.Args) (any, error) {
		return s.Repository(ctx, args.Entity)
	})
}

// TopicsJob is the per-project topics job. Its output is the stored
// document, so a topics group can be reduced without reading the store.
func (s *Service) TopicsJob() flow.Job {
	return flow.JobFunc(func(ctx context.Context, args documents.Args) (any, error) {
		return s.FetchTopics(ctx, args.Entity)
	})
}
