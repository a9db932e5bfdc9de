package cmd

import (
	"fmt"

	"project-aggregator/feature/pypi"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// pypiCmd represents the pypi command
var pypiCmd = &cobra.Command{
	Use:   "pypi",
	Short: "Mirror PyPI project metadata",
}

// pypiListCmd represents the pypi list command
var pypiListCmd = &cobra.Command{
	Use:   "list",
	Short: "List the projects known to the package index",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := bootstrap(cmd.Context())
		if err != nil {
			return err
		}
		defer a.close()

		names, err := pypi.NewService(a.pypi(), a.stores.ProjectInfo, a.logger).ListProjects(cmd.Context(), a.cfg.Flow.Limit)
		if err != nil {
			return err
		}
		for _, name := range names {
			fmt.Println(name)
		}
		return nil
	},
}

// pypiSyncCmd represents the pypi sync command
var pypiSyncCmd = &cobra.Command{
	Use:   "sync [project...]",
	Short: "Store the info document of every project",
	Long:  `Fetches the PyPI JSON document of the given projects, or of every indexed project, as one fan-out group.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		a, err := bootstrap(ctx)
		if err != nil {
			return err
		}
		defer a.close()

		svc := pypi.NewService(a.pypi(), a.stores.ProjectInfo, a.logger)
		names := a.limit(args)
		if len(names) == 0 {
			if names, err = svc.ListProjects(ctx, a.cfg.Flow.Limit); err != nil {
				return err
			}
		}

		keys, err := svc.Sync(ctx, a.runner(), names)
		if err != nil {
			return fmt.Errorf("pypi sync failed: %w", err)
		}
		a.logger.Info("PyPI sync completed", zap.Int("stored", len(keys)))
		return nil
	},
}

func init() {
	RootCmd.AddCommand(pypiCmd)
	pypiCmd.AddCommand(pypiListCmd, pypiSyncCmd)
}
