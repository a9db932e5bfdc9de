package readme

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"project-aggregator/core/documents"
	"project-aggregator/core/flow"
	"project-aggregator/core/resolve"
	"project-aggregator/core/source"
	"project-aggregator/core/storage"

	"go.uber.org/zap"
)

// Group is the fan-out group of README siblings.
const Group = "readme"

// Service locates project READMEs on GitHub and stores them.
type Service struct {
	github   *source.GitHub
	info     *documents.ProjectInfoStore
	readmes  *documents.ReadmeStore
	resolver *resolve.Resolver[[]byte]
	logger   *zap.Logger
}

// NewService creates a new README service.
func NewService(github *source.GitHub, info *documents.ProjectInfoStore, readmes *documents.ReadmeStore, logger *zap.Logger) *Service {
	return &Service{
		github:  github,
		info:    info,
		readmes: readmes,
		resolver: resolve.New("readme", func(ctx context.Context, c resolve.Candidate) ([]byte, error) {
			return github.Raw(ctx, c.Address)
		}, logger),
		logger: logger,
	}
}

// Repository returns the GitHub repository of project. Links of the stored
// info document are tried first (home page, then project URLs by label);
// without a usable link the gh_link prescription decides.
func (s *Service) Repository(ctx context.Context, project string) (source.Repository, error) {
	info, err := s.info.RetrieveProjectInfo(ctx, project)
	switch {
	case err == nil:
		for _, link := range infoLinks(info.Info) {
			if repo, err := source.ParseRepository(link); err == nil {
				return repo, nil
			}
		}
	case errors.Is(err, storage.ErrNotFound):
		// Info not mirrored yet.
	default:
		return source.Repository{}, err
	}

	repo, err := s.github.Prescription(ctx, project)
	if err != nil {
		return source.Repository{}, fmt.Errorf("repository of %q: %w", project, err)
	}
	return repo, nil
}

func infoLinks(meta documents.ProjectMeta) []string {
	links := []string{meta.HomePage}
	labels := make([]string, 0, len(meta.ProjectURLs))
	for label := range meta.ProjectURLs {
		labels = append(labels, label)
	}
	sort.Strings(labels)
	for _, label := range labels {
		links = append(links, meta.ProjectURLs[label])
	}
	return links
}

// Locate finds the README of project, trying every markup in priority order.
func (s *Service) Locate(ctx context.Context, project string) (documents.Readme, error) {
	repo, err := s.Repository(ctx, project)
	if err != nil {
		return documents.Readme{}, err
	}

	content, winner, err := s.resolver.Resolve(ctx, project, s.github.ReadmeCandidates(repo))
	if err != nil {
		return documents.Readme{}, err
	}
	return documents.Readme{
		Type:        winner.Label,
		Content:     string(content),
		PackageName: project,
		URL:         winner.Address,
	}, nil
}

// Fetch locates the README of project and stores it. It returns the key
// written.
func (s *Service) Fetch(ctx context.Context, project string) (string, error) {
	readme, err := s.Locate(ctx, project)
	if err != nil {
		return "", err
	}
	key, err := s.readmes.StoreReadme(ctx, readme)
	if err != nil {
		return "", fmt.Errorf("store readme of %q: %w", project, err)
	}
	s.logger.Debug("Stored README",
		zap.String("entity", project),
		zap.String("type", readme.Type),
		zap.String("key", key))
	return key, nil
}

// Job is the per-project sibling job. Its output is the key written.
func (s *Service) Job() flow.Job {
	return flow.JobFunc(func(ctx context.Context, args documents.Args) (any, error) {
		return s.Fetch(ctx, args.Entity)
	})
}
