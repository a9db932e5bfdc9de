package cmd

import (
	"context"
	"fmt"
	"slices"

	"project-aggregator/core/documents"
	"project-aggregator/core/fanin"
	"project-aggregator/core/flow"
	"project-aggregator/feature/keywords"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	sourcesFlag []string
	fanoutFlag  bool
)

// keywordsCmd represents the keywords command
var keywordsCmd = &cobra.Command{
	Use:   "keywords [project...]",
	Short: "Aggregate the keyword table",
	Long: `Counts keywords from the configured sources (PyPI info documents, GitHub topics,
StackOverflow tags), combines them and replaces the stored keyword table.
With --fanout the PyPI keywords are counted per project as one fan-out group.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		a, err := bootstrap(ctx)
		if err != nil {
			return err
		}
		defer a.close()

		sources := sourcesFlag
		if len(sources) == 0 {
			sources = a.cfg.Flow.KeywordSources
		}

		var names []string
		if _, perProject := fanoutSources(sources, fanoutFlag); perProject {
			if names, err = a.projects(ctx, args); err != nil {
				return err
			}
		}

		counts, err := aggregateKeywords(ctx, a, a.runner(), sources, fanoutFlag, names)
		if err != nil {
			return err
		}
		fmt.Printf("Stored %d keywords\n", len(counts))
		return nil
	},
}

// fanoutSources splits the PyPI source off sources when it is to be counted
// per project. perProject is false when fanout is off or PyPI is not selected.
func fanoutSources(sources []string, fanout bool) (rest []string, perProject bool) {
	if !fanout || !slices.Contains(sources, keywords.SourcePyPI) {
		return sources, false
	}
	rest = make([]string, 0, len(sources))
	for _, source := range sources {
		if source != keywords.SourcePyPI {
			rest = append(rest, source)
		}
	}
	return rest, true
}

// aggregateKeywords counts sources and stores the combined table. When fanout
// is set and PyPI is among sources, PyPI keywords are counted over names as a
// fan-out group.
func aggregateKeywords(ctx context.Context, a *app, runner *flow.Runner, sources []string, fanout bool, names []string) (fanin.Counts, error) {
	svc := keywords.NewService(a.stores, a.tagSource(), a.logger)

	var tables []fanin.Counts
	sources, perProject := fanoutSources(sources, fanout)
	if perProject {
		results, err := runner.FanOut(ctx, keywords.Group,
			flow.Entities(documents.Args{Flow: keywords.Group}, names), svc.Job())
		if err != nil {
			return nil, fmt.Errorf("keyword fan-out failed: %w", err)
		}
		table, err := svc.Reduce(ctx, results)
		if err != nil {
			return nil, err
		}
		tables = append(tables, table)
	}

	collected, err := svc.Collect(ctx, sources)
	if err != nil {
		return nil, err
	}
	counts, err := keywords.Combine(append(tables, collected)...)
	if err != nil {
		return nil, err
	}
	if _, err := svc.Store(ctx, counts); err != nil {
		return nil, err
	}
	a.logger.Info("Keyword aggregation completed", zap.Strings("sources", sources), zap.Bool("fanout", fanout), zap.Int("keywords", len(counts)))
	return counts, nil
}

func init() {
	RootCmd.AddCommand(keywordsCmd)
	keywordsCmd.Flags().StringSliceVar(&sourcesFlag, "sources", nil, "Keyword sources to combine (pypi, github, stackoverflow)")
	keywordsCmd.Flags().BoolVar(&fanoutFlag, "fanout", false, "Count PyPI keywords per project as a fan-out group")
}
