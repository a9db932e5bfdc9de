package pypi

import (
	"context"
	"fmt"

	"project-aggregator/core/documents"
	"project-aggregator/core/fanin"
	"project-aggregator/core/flow"
	"project-aggregator/core/source"

	"go.uber.org/zap"
)

// InfoGroup is the fan-out group of project info siblings.
const InfoGroup = "pypi-info"

// Service handles PyPI listing and project info retrieval.
type Service struct {
	pypi   *source.PyPI
	info   *documents.ProjectInfoStore
	logger *zap.Logger
}

// NewService creates a new PyPI service.
func NewService(pypi *source.PyPI, info *documents.ProjectInfoStore, logger *zap.Logger) *Service {
	return &Service{
		pypi:   pypi,
		info:   info,
		logger: logger,
	}
}

// ListProjects returns every project name known to the package index.
func (s *Service) ListProjects(ctx context.Context, limit int) ([]string, error) {
	names, err := s.pypi.ListPackages(ctx)
	if err != nil {
		return nil, fmt.Errorf("list pypi projects: %w", err)
	}
	if limit > 0 && len(names) > limit {
		names = names[:limit]
	}
	s.logger.Info("Listed PyPI projects", zap.Int("count", len(names)))
	return names, nil
}

// StoredProjects returns every project with a stored info document.
func (s *Service) StoredProjects(ctx context.Context, limit int) ([]string, error) {
	names, err := s.info.ProjectListing(ctx)
	if err != nil {
		return nil, fmt.Errorf("list stored projects: %w", err)
	}
	if limit > 0 && len(names) > limit {
		names = names[:limit]
	}
	return names, nil
}

// Items turns project names into fan-out arguments addressing their info
// documents.
func (s *Service) Items(names []string) []documents.Args {
	return flow.Entities(s.info.Args(""), names)
}

// FetchProjectInfo downloads the info document of project and stores it
// unchanged. It returns the key written.
func (s *Service) FetchProjectInfo(ctx context.Context, project string) (string, error) {
	raw, err := s.pypi.ProjectInfo(ctx, project)
	if err != nil {
		return "", err
	}
	key, err := s.info.StoreProjectInfo(ctx, project, raw)
	if err != nil {
		return "", fmt.Errorf("store info of %q: %w", project, err)
	}
	s.logger.Debug("Stored project info", zap.String("entity", project), zap.String("key", key))
	return key, nil
}

// InfoJob is the per-project sibling job. Its output is the key written.
func (s *Service) InfoJob() flow.Job {
	return flow.JobFunc(func(ctx context.Context, args documents.Args) (any, error) {
		return s.FetchProjectInfo(ctx, args.Entity)
	})
}

// Sync fetches the info document of every project in names as one fan-out
// group and returns the keys written in input order.
func (s *Service) Sync(ctx context.Context, runner *flow.Runner, names []string) ([]string, error) {
	results, err := runner.FanOut(ctx, InfoGroup, s.Items(names), s.InfoJob())
	if err != nil {
		return nil, err
	}
	return fanin.NewIterator[string](results, InfoGroup, nil).Collect(ctx)
}
