package cmd

import (
	"encoding/json"
	"fmt"

	"project-aggregator/core/documents"
	"project-aggregator/core/flow"
	"project-aggregator/feature/github"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// githubCmd represents the github command
var githubCmd = &cobra.Command{
	Use:   "github",
	Short: "Resolve GitHub repositories and collect topics",
}

// githubRepoCmd represents the github repo command
var githubRepoCmd = &cobra.Command{
	Use:   "repo [project]",
	Short: "Print the GitHub repository prescribed for a project",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := bootstrap(cmd.Context())
		if err != nil {
			return err
		}
		defer a.close()

		gh, err := a.github()
		if err != nil {
			return err
		}
		link, err := github.NewService(gh, a.stores.Topics, a.logger).Repository(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		data, err := json.MarshalIndent(link, "", "  ")
		if err != nil {
			return err
		}
		fmt.Println(string(data))
		return nil
	},
}

// githubTopicsCmd represents the github topics command
var githubTopicsCmd = &cobra.Command{
	Use:   "topics [project...]",
	Short: "Store the repository topics of every project",
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
		svc := github.NewService(gh, a.stores.Topics, a.logger)

		names, err := a.projects(ctx, args)
		if err != nil {
			return err
		}

		results, err := a.runner().FanOut(ctx, github.TopicsGroup,
			flow.Entities(documents.Args{Flow: github.TopicsGroup}, names),
			flow.Tolerate(svc.TopicsJob(), unresolved))
		if err != nil {
			return fmt.Errorf("topics collection failed: %w", err)
		}

		stored, skipped, err := tally(ctx, results, github.TopicsGroup)
		if err != nil {
			return err
		}
		a.logger.Info("Topics collection completed", zap.Int("stored", stored), zap.Int("skipped", skipped))
		return nil
	},
}

func init() {
	RootCmd.AddCommand(githubCmd)
	githubCmd.AddCommand(githubRepoCmd, githubTopicsCmd)
}
