package cmd

import (
	"fmt"

	"project-aggregator/core/documents"
	"project-aggregator/core/flow"
	"project-aggregator/feature/readme"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// readmeCmd represents the readme command
var readmeCmd = &cobra.Command{
	Use:   "readme [project...]",
	Short: "Locate and store project READMEs",
	Long: `Resolves the GitHub repository of each project, probes the README candidates
in order and stores the first one found. Projects without a README are skipped.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		a, err := bootstrap(ctx)
		if err != nil {
			return err
		}
		defer a.close()

		gh, err := a.github()
		if err != nil {
			return err
		}
		svc := readme.NewService(gh, a.stores.ProjectInfo, a.stores.Readme, a.logger)

		names, err := a.projects(ctx, args)
		if err != nil {
			return err
		}

		results, err := a.runner().FanOut(ctx, readme.Group,
			flow.Entities(documents.Args{Flow: readme.Group}, names),
			flow.Tolerate(svc.Job(), unresolved))
		if err != nil {
			return fmt.Errorf("readme collection failed: %w", err)
		}

		stored, skipped, err := tally(ctx, results, readme.Group)
		if err != nil {
			return err
		}
		a.logger.Info("README collection completed", zap.Int("stored", stored), zap.Int("skipped", skipped))
		return nil
	},
}

func init() {
	RootCmd.AddCommand(readmeCmd)
}
