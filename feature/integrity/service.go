package integrity

import (
	"context"
	"errors"

	"project-aggregator/core/documents"
	"project-aggregator/core/storage"
	"project-aggregator/feature/integrity/checks"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Schema names the table a schema check inspects and the columns it needs.
type Schema struct {
	Table   string
	Columns []string
}

// Service handles integrity checks.
type Service struct {
	backend documents.Backend
	cfg     documents.Config
	spaces  *documents.VectorSpaceStore
	db      *gorm.DB
	schema  Schema
	logger  *zap.Logger
}

// NewService creates a new integrity service. db may be nil, in which case
// the schema check reports an error.
func NewService(backend documents.Backend, cfg documents.Config, db *gorm.DB, schema Schema, logger *zap.Logger) *Service {
	return &Service{
		backend: backend,
		cfg:     cfg,
		spaces:  documents.NewVectorSpaceStore(backend, cfg.VectorMetadataKey, cfg.VectorMatrixKey),
		db:      db,
		schema:  schema,
		logger:  logger,
	}
}

// Namespaces lists the document namespaces a populated store must hold.
func (s *Service) Namespaces() []string {
	var prefixes []string
	if s.cfg.InfoNamespaced {
		prefixes = append(prefixes, s.cfg.InfoFlow+"/")
	} else if s.cfg.InfoPrefix != "" {
		prefixes = append(prefixes, s.cfg.InfoPrefix)
	}
	return append(prefixes, s.cfg.ReadmePrefix, s.cfg.TopicsPrefix)
}

// Aggregates lists the keys of the reduced documents.
func (s *Service) Aggregates() []string {
	return []string{s.cfg.KeywordsKey, s.cfg.VectorMetadataKey, s.cfg.VectorMatrixKey}
}

// CheckStructure returns the document namespaces that are empty.
func (s *Service) CheckStructure(ctx context.Context) ([]string, error) {
	return checks.CheckStructure(ctx, s.backend, s.Namespaces())
}

// CheckAggregates returns the aggregate keys that are missing.
func (s *Service) CheckAggregates(ctx context.Context) ([]string, error) {
	return checks.CheckAggregates(ctx, s.backend, s.Aggregates())
}

// CheckVectorSpace loads the stored vector space and checks its shape. A
// missing vector space is reported as storage.ErrNotFound.
func (s *Service) CheckVectorSpace(ctx context.Context) (checks.VectorSpaceReport, error) {
	space, err := s.spaces.RetrieveVectorSpace(ctx)
	if err != nil {
		return checks.VectorSpaceReport{}, err
	}
	return checks.CheckVectorSpace(space), nil
}

// CheckSchema validates the mirror table against the expected columns.
func (s *Service) CheckSchema() (*checks.SchemaReport, error) {
	return checks.CheckSchema(s.db, s.schema.Table, s.schema.Columns)
}

// Report runs every check, recording failures per check instead of
// aborting.
func (s *Service) Report(ctx context.Context) map[string]any {
	report := make(map[string]any)

	if missing, err := s.CheckStructure(ctx); err != nil {
		report["structure"] = map[string]any{"status": "error", "error": err.Error()}
	} else {
		report["structure"] = map[string]any{"status": "ok", "missing": missing}
	}

	if missing, err := s.CheckAggregates(ctx); err != nil {
		report["aggregates"] = map[string]any{"status": "error", "error": err.Error()}
	} else {
		report["aggregates"] = map[string]any{"status": "ok", "missing": missing}
	}

	if vs, err := s.CheckVectorSpace(ctx); errors.Is(err, storage.ErrNotFound) {
		report["vectorspace"] = map[string]any{"status": "missing"}
	} else if err != nil {
		report["vectorspace"] = map[string]any{"status": "error", "error": err.Error()}
	} else {
		report["vectorspace"] = vs
	}

	if schema, err := s.CheckSchema(); err != nil {
		report["schema"] = map[string]any{"status": "error", "error": err.Error()}
	} else {
		report["schema"] = schema
	}

	return report
}
