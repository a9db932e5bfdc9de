package cmd

import (
	"context"
	"encoding/json"
	"fmt"

	"project-aggregator/feature/integrity"
	docsync "project-aggregator/feature/sync"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// integrityCmd represents the integrity command
var integrityCmd = &cobra.Command{
	Use:   "integrity",
	Short: "Perform integrity checks on the document store",
	Long:  `Checks that document namespaces are populated, that the aggregates exist and are consistent, and that the mirror table schema is complete.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runIntegrity(cmd.Context(), func(ctx context.Context, svc *integrity.Service) (any, error) {
			return svc.Report(ctx), nil
		})
	},
}

// structureCmd represents the integrity structure command
var structureCmd = &cobra.Command{
	Use:   "structure",
	Short: "Check that every document namespace is populated",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runIntegrity(cmd.Context(), func(ctx context.Context, svc *integrity.Service) (any, error) {
			return svc.CheckStructure(ctx)
		})
	},
}

// aggregatesCmd represents the integrity aggregates command
var aggregatesCmd = &cobra.Command{
	Use:   "aggregates",
	Short: "Check that the aggregate documents exist",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runIntegrity(cmd.Context(), func(ctx context.Context, svc *integrity.Service) (any, error) {
			return svc.CheckAggregates(ctx)
		})
	},
}

// vectorspaceCmd represents the integrity vectorspace command
var vectorspaceCmd = &cobra.Command{
	Use:   "vectorspace",
	Short: "Check the shape of the stored vector space",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runIntegrity(cmd.Context(), func(ctx context.Context, svc *integrity.Service) (any, error) {
			return svc.CheckVectorSpace(ctx)
		})
	},
}

// schemaCmd represents the integrity schema command
var schemaCmd = &cobra.Command{
	Use:   "schema",
	Short: "Check the synced documents table schema",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runIntegrity(cmd.Context(), func(ctx context.Context, svc *integrity.Service) (any, error) {
			return svc.CheckSchema()
		})
	},
}

func init() {
	RootCmd.AddCommand(integrityCmd)
	integrityCmd.AddCommand(structureCmd, aggregatesCmd, vectorspaceCmd, schemaCmd)
}

func runIntegrity(ctx context.Context, check func(context.Context, *integrity.Service) (any, error)) error {
	a, err := bootstrap(ctx)
	if err != nil {
		return err
	}
	defer a.close()

	// Database is optional, the schema check reports its absence
	db, _ := a.connectDB(true)
	schema := integrity.Schema{Table: docsync.SyncedDocument{}.TableName(), Columns: docsync.Columns}
	svc := integrity.NewService(a.store, a.cfg.Documents, db, schema, a.logger)

	a.logger.Info("Running integrity checks...")
	report, err := check(ctx, svc)
	if err != nil {
		a.logger.Error("Integrity check failed", zap.Error(err))
		return err
	}

	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal report: %w", err)
	}
	fmt.Println(string(data))
	return nil
}
