package sync

import (
	"context"
	"fmt"

	"project-aggregator/core/reconcile"

	"go.uber.org/zap"
)

// Name identifies the reconciled model.
func (s *Service) Name() string {
	return SyncedDocument{}.TableName()
}

// LoadStorage indexes the stored documents by id. Checksums are left empty
// so that listing never downloads a document.
func (s *Service) LoadStorage(ctx context.Context) (reconcile.Index, error) {
	items, err := s.Listing(ctx)
	if err != nil {
		return nil, err
	}
	index := make(reconcile.Index, len(items))
	for _, args := range items {
		index[args.Entity] = reconcile.Item{Metadata: map[string]string{kindArg: args.Get(kindArg)}}
	}
	return index, nil
}

// LoadDB indexes the synced rows by document id.
func (s *Service) LoadDB(ctx context.Context) (reconcile.Index, error) {
	var rows []SyncedDocument
	err := s.db.WithContext(ctx).Select("document_id", "kind", "checksum").Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("load synced documents: %w", err)
	}
	index := make(reconcile.Index, len(rows))
	for _, row := range rows {
		index[row.DocumentID] = reconcile.Item{
			Checksum: row.Checksum,
			Metadata: map[string]string{kindArg: row.Kind},
		}
	}
	return index, nil
}

// SyncDB upserts the stored documents with the given ids.
func (s *Service) SyncDB(ctx context.Context, keys []string) error {
	items, err := s.Listing(ctx)
	if err != nil {
		return err
	}
	kinds := make(map[string]string, len(items))
	for _, args := range items {
		kinds[args.Entity] = args.Get(kindArg)
	}

	for _, id := range keys {
		kind, ok := kinds[id]
		if !ok {
			return fmt.Errorf("document %q is no longer stored", id)
		}
		if _, err := s.SyncDocument(ctx, kind, id); err != nil {
			return err
		}
	}
	return nil
}

// DeleteDB removes the rows of the given document ids.
func (s *Service) DeleteDB(ctx context.Context, keys []string) error {
	err := s.db.WithContext(ctx).Where("document_id IN ?", keys).Delete(&SyncedDocument{}).Error
	if err != nil {
		return fmt.Errorf("delete synced documents: %w", err)
	}
	s.logger.Info("Deleted orphaned rows", zap.Int("count", len(keys)))
	return nil
}

// Plan compares the stored documents with the synced rows.
func (s *Service) Plan(ctx context.Context, opts reconcile.Options) (*reconcile.Plan, error) {
	return reconcile.ReconcileWithPlan(ctx, s, opts)
}

// Apply executes a plan built by Plan.
func (s *Service) Apply(ctx context.Context, plan *reconcile.Plan, opts reconcile.Options) (int, error) {
	return reconcile.ApplyPlan(ctx, s, plan, opts)
}
