package sync

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"project-aggregator/core/database"
	"project-aggregator/core/documents"
	"project-aggregator/core/fanin"
	"project-aggregator/core/flow"

	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Group is the fan-out group of per-document sync siblings.
const Group = "sync"

// kindArg is the Args.Extra key holding the document kind.
const kindArg = "kind"

// Service mirrors stored result documents into the relational database.
type Service struct {
	backend  documents.Backend
	db       *gorm.DB
	prefixes map[string]string
	kinds    []string
	logger   *zap.Logger
	now      func() time.Time
}

// NewService creates a new sync service reading solver and analysis
// documents from the prefixes of cfg.
func NewService(backend documents.Backend, db *gorm.DB, cfg documents.Config, logger *zap.Logger) *Service {
	return &Service{
		backend: backend,
		db:      db,
		prefixes: map[string]string{
			KindSolver:   cfg.SolverPrefix,
			KindAnalysis: cfg.AnalysisPrefix,
		},
		kinds:  []string{KindSolver, KindAnalysis},
		logger: logger,
		now:    time.Now,
	}
}

// Migrate creates or updates the synced_documents table and verifies every
// expected column is present.
func (s *Service) Migrate(ctx context.Context) error {
	if err := s.db.WithContext(ctx).AutoMigrate(&SyncedDocument{}); err != nil {
		return fmt.Errorf("migrate synced documents: %w", err)
	}
	missing, err := database.MissingColumns(s.db.WithContext(ctx), SyncedDocument{}.TableName(), Columns)
	if err != nil {
		return err
	}
	if len(missing) > 0 {
		return fmt.Errorf("table %s is missing columns %v", SyncedDocument{}.TableName(), missing)
	}
	return nil
}

// Listing returns one Args per stored solver and analysis document, solver
// documents first.
func (s *Service) Listing(ctx context.Context) ([]documents.Args, error) {
	var items []documents.Args
	for _, kind := range s.kinds {
		prefix := s.prefixes[kind]
		s.logger.Info("Listing documents", zap.String("kind", kind), zap.String("prefix", prefix))

		keys, err := s.backend.List(ctx, prefix)
		if err != nil {
			return nil, fmt.Errorf("list %s documents: %w", kind, err)
		}
		for _, key := range keys {
			id := strings.TrimPrefix(key, prefix)
			if id == "" || strings.HasSuffix(id, "/") {
				continue
			}
			items = append(items, documents.Args{Flow: Group, Entity: id}.With(kindArg, kind))
		}
	}
	return items, nil
}

// SyncDocument reads one stored document and upserts it by document id.
func (s *Service) SyncDocument(ctx context.Context, kind, documentID string) (SyncedDocument, error) {
	prefix, ok := s.prefixes[kind]
	if !ok {
		return SyncedDocument{}, fmt.Errorf("unknown document kind %q", kind)
	}

	s.logger.Debug("Retrieving document", zap.String("kind", kind), zap.String("document_id", documentID))
	raw, err := s.backend.Get(ctx, prefix+documentID)
	if err != nil {
		return SyncedDocument{}, err
	}
	if !json.Valid(raw) {
		return SyncedDocument{}, fmt.Errorf("%s document %q is not valid JSON", kind, documentID)
	}

	sum := sha256.Sum256(raw)
	doc := SyncedDocument{
		DocumentID: documentID,
		Kind:       kind,
		Payload:    string(raw),
		Checksum:   hex.EncodeToString(sum[:]),
		SyncedAt:   s.now().UTC(),
	}

	err = s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "document_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"kind", "payload", "checksum", "synced_at"}),
	}).Create(&doc).Error
	if err != nil {
		return SyncedDocument{}, fmt.Errorf("upsert %s document %q: %w", kind, documentID, err)
	}

	s.logger.Debug("Synced document", zap.String("kind", kind), zap.String("document_id", documentID))
	return doc, nil
}

// Job is the per-document sync sibling job. Its output is the synced row
// without payload.
func (s *Service) Job() flow.Job {
	return flow.JobFunc(func(ctx context.Context, args documents.Args) (any, error) {
		return s.SyncDocument(ctx, args.Get(kindArg), args.Entity)
	})
}

// Sync mirrors every listed document as one fan-out group and returns the
// number of documents synced.
func (s *Service) Sync(ctx context.Context, runner *flow.Runner) (int, error) {
	items, err := s.Listing(ctx)
	if err != nil {
		return 0, err
	}
	results, err := runner.FanOut(ctx, Group, items, s.Job())
	if err != nil {
		return 0, err
	}
	synced, err := fanin.NewIterator[SyncedDocument](results, Group, nil).Collect(ctx)
	if err != nil {
		return 0, err
	}
	s.logger.Info("Documents synced", zap.Int("count", len(synced)))
	return len(synced), nil
}

// Counts returns the number of synced rows per kind.
func (s *Service) Counts(ctx context.Context) (map[string]int64, error) {
	var rows []struct {
		Kind  string
		Total int64
	}
	err := s.db.WithContext(ctx).Model(&SyncedDocument{}).
		Select("kind, count(*) as total").
		Group("kind").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("count synced documents: %w", err)
	}
	counts := make(map[string]int64, len(rows))
	for _, row := range rows {
		counts[row.Kind] = row.Total
	}
	return counts, nil
}
