package cmd

import (
	"fmt"

	docsync "project-aggregator/feature/sync"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// syncCmd represents the sync command
var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Mirror solver and analysis documents into the database",
	Long:  `Migrates the synced_documents table and upserts every stored solver and analysis document.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		a, err := bootstrap(ctx)
		if err != nil {
			return err
		}
		defer a.close()

		db, err := a.connectDB(false)
		if err != nil {
			return err
		}

		svc := docsync.NewService(a.store, db, a.cfg.Documents, a.logger)
		if err := svc.Migrate(ctx); err != nil {
			return fmt.Errorf("failed to migrate: %w", err)
		}

		synced, err := svc.Sync(ctx, a.runner())
		if err != nil {
			return fmt.Errorf("document sync failed: %w", err)
		}

		counts, err := svc.Counts(ctx)
		if err != nil {
			return err
		}
		a.logger.Info("Document sync completed",
			zap.Int("synced", synced),
			zap.Int64(docsync.KindSolver, counts[docsync.KindSolver]),
			zap.Int64(docsync.KindAnalysis, counts[docsync.KindAnalysis]))
		return nil
	},
}

func init() {
	RootCmd.AddCommand(syncCmd)
}
