package cmd

import (
	"fmt"

	"project-aggregator/feature/project2vec"

	"github.com/spf13/cobra"
)

// project2vecCmd represents the project2vec command
var project2vecCmd = &cobra.Command{
	Use:   "project2vec [project...]",
	Short: "Build the project vector space",
	Long: `Vectorizes the description and README of every project over the stored keyword
vocabulary, reduces the vectors in index order and stores the vector space.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		a, err := bootstrap(ctx)
		if err != nil {
			return err
		}
		defer a.close()

		names, err := a.projects(ctx, args)
		if err != nil {
			return err
		}

		space, keys, err := project2vec.NewService(a.stores, a.logger).Build(ctx, a.runner(), names)
		if err != nil {
			return fmt.Errorf("project2vec failed: %w", err)
		}
		fmt.Printf("Stored %d vectors of width %d: %v\n", space.Len(), space.Width(), keys)
		return nil
	},
}

func init() {
	RootCmd.AddCommand(project2vecCmd)
}
