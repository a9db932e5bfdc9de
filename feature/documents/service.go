package documents

import (
	"context"
	"encoding/json"

	"project-aggregator/core/documents"
	"project-aggregator/core/fanin"

	"go.uber.org/zap"
)

// Service reads stored documents and aggregates.
type Service struct {
	stores *documents.Stores
	logger *zap.Logger
}

// NewService creates a new documents service.
func NewService(stores *documents.Stores, logger *zap.Logger) *Service {
	return &Service{stores: stores, logger: logger}
}

// ProjectInfo returns the raw info document of project.
func (s *Service) ProjectInfo(ctx context.Context, project string) (json.RawMessage, error) {
	return s.stores.ProjectInfo.RetrieveRaw(ctx, s.stores.ProjectInfo.Args(project))
}

// Projects returns every project with a stored info document.
func (s *Service) Projects(ctx context.Context) ([]string, error) {
	return s.stores.ProjectInfo.ProjectListing(ctx)
}

// Readme returns the stored README of project.
func (s *Service) Readme(ctx context.Context, project string) (documents.Readme, error) {
	return s.stores.Readme.RetrieveReadme(ctx, project)
}

// Topics returns the stored GitHub topics of project.
func (s *Service) Topics(ctx context.Context, project string) (documents.Topics, error) {
	return s.stores.Topics.RetrieveTopics(ctx, project)
}

// Keywords returns the aggregated keyword table.
func (s *Service) Keywords(ctx context.Context) (fanin.Counts, error) {
	return s.stores.Keywords.RetrieveKeywords(ctx)
}

// VectorSpace returns the stored project2vec vector space.
func (s *Service) VectorSpace(ctx context.Context) (fanin.VectorSpace, error) {
	return s.stores.VectorSpace.RetrieveVectorSpace(ctx)
}
