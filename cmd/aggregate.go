package cmd

import (
	"fmt"
	"time"

	"project-aggregator/core/documents"
	"project-aggregator/core/flow"
	"project-aggregator/feature/github"
	"project-aggregator/feature/project2vec"
	"project-aggregator/feature/pypi"
	"project-aggregator/feature/readme"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// aggregateCmd represents the aggregate command
var aggregateCmd = &cobra.Command{
	Use:   "aggregate [project...]",
	Short: "Run the whole aggregation pipeline",
	Long: `Runs every flow in one run: PyPI info, READMEs, GitHub topics, the keyword table
and the project2vec vector space. Projects without a README or a repository are
skipped; any other failure stops the pipeline.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		startTime := time.Now()

		a, err := bootstrap(ctx)
		if err != nil {
			return err
		}
		defer a.close()

		gh, err := a.github()
		if err != nil {
			return err
		}
		runner := a.runner()
		l := a.logger.With(zap.String("run_id", runner.RunID()))

		info := pypi.NewService(a.pypi(), a.stores.ProjectInfo, a.logger)
		names := a.limit(args)
		if len(names) == 0 {
			if names, err = info.ListProjects(ctx, a.cfg.Flow.Limit); err != nil {
				return err
			}
		}

		l.Info("Fetching project info...", zap.Int("projects", len(names)))
		if _, err := info.Sync(ctx, runner, names); err != nil {
			return fmt.Errorf("pypi stage failed: %w", err)
		}

		l.Info("Collecting READMEs...")
		readmes := readme.NewService(gh, a.stores.ProjectInfo, a.stores.Readme, a.logger)
		results, err := runner.FanOut(ctx, readme.Group,
			flow.Entities(documents.Args{Flow: readme.Group}, names),
			flow.Tolerate(readmes.Job(), unresolved))
		if err != nil {
			return fmt.Errorf("readme stage failed: %w", err)
		}
		withReadme, _, err := tally(ctx, results, readme.Group)
		if err != nil {
			return err
		}

		l.Info("Collecting topics...")
		topics := github.NewService(gh, a.stores.Topics, a.logger)
		results, err = runner.FanOut(ctx, github.TopicsGroup,
			flow.Entities(documents.Args{Flow: github.TopicsGroup}, names),
			flow.Tolerate(topics.TopicsJob(), unresolved))
		if err != nil {
			return fmt.Errorf("topics stage failed: %w", err)
		}
		withTopics, _, err := tally(ctx, results, github.TopicsGroup)
		if err != nil {
			return err
		}

		l.Info("Aggregating keywords...")
		counts, err := aggregateKeywords(ctx, a, runner, a.cfg.Flow.KeywordSources, false, nil)
		if err != nil {
			return fmt.Errorf("keywords stage failed: %w", err)
		}

		l.Info("Building vector space...")
		space, _, err := project2vec.NewService(a.stores, a.logger).Build(ctx, runner, names)
		if err != nil {
			return fmt.Errorf("project2vec stage failed: %w", err)
		}

		executionTime := time.Since(startTime)

		fmt.Println("\n=== Aggregation Summary ===")
		fmt.Printf("Projects: %d\n", len(names))
		fmt.Printf("READMEs: %d\n", withReadme)
		fmt.Printf("Topics: %d\n", withTopics)
		fmt.Printf("Keywords: %d\n", len(counts))
		fmt.Printf("Vector Width: %d\n", space.Width())
		fmt.Printf("Execution Time: %s\n", executionTime.String())

		l.Info("Aggregation completed",
			zap.Int("projects", len(names)),
			zap.Int("readmes", withReadme),
			zap.Int("topics", withTopics),
			zap.Int("keywords", len(counts)),
			zap.Duration("execution_time", executionTime),
		)
		return nil
	},
}

func init() {
	RootCmd.AddCommand(aggregateCmd)
}
