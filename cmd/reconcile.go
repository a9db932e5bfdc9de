package cmd

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"project-aggregator/core/reconcile"
	docsync "project-aggregator/feature/sync"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	purgeFlag  bool
	repairFlag bool
	dryRunFlag bool
	yesConfirm bool
)

// reconcileCmd compares stored documents with the synced rows.
var reconcileCmd = &cobra.Command{
	Use:   "reconcile",
	Short: "Reconcile stored documents with the synced database rows",
	Long: `Reports documents missing from the database and rows whose document is gone.
Optionally sync the missing documents or purge the orphaned rows.

Examples:
  # Report only
  sync reconcile

  # Purge orphaned rows (with interactive confirmation)
  sync reconcile --purge

  # Sync missing documents and purge orphans, non-interactive
  sync reconcile --sync --purge --yes`,
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

		opts := reconcile.Options{DoPurge: purgeFlag, DoSync: repairFlag, DryRun: dryRunFlag}

		a.logger.Info("Planning reconciliation...")
		plan, err := svc.Plan(ctx, opts)
		if err != nil {
			return fmt.Errorf("failed to plan reconciliation: %w", err)
		}
		printReconcileReport(a.logger, plan)

		if !purgeFlag && !repairFlag {
			a.logger.Info("No actions requested. Use --purge to delete orphaned rows or --sync to store missing documents.")
			return nil
		}
		if dryRunFlag {
			a.logger.Info("Dry-run mode: No changes were made.")
			return nil
		}
		if len(plan.Actions) == 0 {
			a.logger.Info("No actions required based on current flags.")
			return nil
		}
		if !confirmDestructiveAction() {
			a.logger.Warn("Operation cancelled by user. No changes were made.")
			return nil
		}

		opts.Confirmed = true
		a.logger.Info("Applying actions...")
		executed, err := svc.Apply(ctx, plan, opts)
		if err != nil {
			return fmt.Errorf("failed to apply plan: %w", err)
		}
		a.logger.Info("Successfully executed actions", zap.Int("count", executed))
		return nil
	},
}

func init() {
	syncCmd.AddCommand(reconcileCmd)

	reconcileCmd.Flags().BoolVar(&purgeFlag, "purge", false, "Delete rows whose document is no longer stored")
	reconcileCmd.Flags().BoolVar(&repairFlag, "sync", false, "Sync stored documents missing from the database")
	reconcileCmd.Flags().BoolVar(&dryRunFlag, "dry-run", false, "Force dry-run (no mutations even with --yes)")
	reconcileCmd.Flags().BoolVar(&yesConfirm, "yes", false, "Auto-confirm destructive actions (non-interactive)")
}

// printReconcileReport logs the plan summary and a sample of its actions.
func printReconcileReport(l *zap.Logger, plan *reconcile.Plan) {
	s := plan.Summary

	l.Info("Reconciliation report",
		zap.Int("total_items", s.TotalItems),
		zap.Int("missing_storage", s.MissingStorage),
		zap.Int("missing_db", s.MissingDB),
		zap.Int("mismatches", s.Mismatches),
	)

	if len(plan.Actions) == 0 {
		return
	}
	l.Info("Planned actions",
		zap.Int("purge_actions", s.PurgeActions),
		zap.Int("sync_actions", s.SyncActions),
		zap.Int("total_actions", len(plan.Actions)),
	)

	maxShow := min(5, len(plan.Actions))
	for _, action := range plan.Actions[:maxShow] {
		l.Info("Sample action",
			zap.String("type", string(action.Type)),
			zap.String("key", action.Key),
			zap.String("reason", action.Reason),
		)
	}
	if len(plan.Actions) > maxShow {
		l.Info("Additional actions not shown", zap.Int("count", len(plan.Actions)-maxShow))
	}
}

// confirmDestructiveAction prompts the user for confirmation or uses --yes flag.
func confirmDestructiveAction() bool {
	if yesConfirm {
		fmt.Println("\nAuto-confirmed via --yes flag")
		return true
	}

	fmt.Print("\nType 'yes' to confirm destructive actions: ")
	reader := bufio.NewReader(os.Stdin)
	response, err := reader.ReadString('\n')
	if err != nil {
		return false
	}
	return strings.TrimSpace(response) == "yes"
}
