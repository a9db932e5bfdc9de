package cmd

import (
	"fmt"

	"project-aggregator/feature/travis"

	"github.com/spf13/cobra"
)

var (
	orgFlag       string
	maxBuildsFlag int
)

// travisCmd represents the travis command
var travisCmd = &cobra.Command{
	Use:   "travis",
	Short: "Collect CI build logs of an organization",
	Long: `Counts the builds of every active repository, fans out one sibling per build
page and stores the cleaned job logs of every finished build.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		a, err := bootstrap(ctx)
		if err != nil {
			return err
		}
		defer a.close()

		org := orgFlag
		if org == "" {
			org = a.cfg.Flow.TravisOrganization
		}
		maxBuilds := maxBuildsFlag
		if maxBuilds <= 0 {
			maxBuilds = a.cfg.Flow.MaxBuilds
		}

		svc := travis.NewService(a.travis(), a.store, a.cfg.Documents.LogsPrefix, a.logger)
		summary, err := svc.Collect(ctx, a.runner(), org, maxBuilds)
		if err != nil {
			return fmt.Errorf("log collection failed: %w", err)
		}
		fmt.Printf("Repositories: %d\nBuilds: %d\nJobs: %d\n", summary.Repositories, summary.Builds, summary.Jobs)
		return nil
	},
}

func init() {
	RootCmd.AddCommand(travisCmd)
	travisCmd.Flags().StringVar(&orgFlag, "org", "", "Travis organization (overrides FLOW_TRAVIS_ORGANIZATION)")
	travisCmd.Flags().IntVar(&maxBuildsFlag, "max-builds", 0, "Builds per repository to collect, 0 for all")
}
