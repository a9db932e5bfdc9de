package cmd

import (
	"fmt"
	"os"

	"project-aggregator/core/logger"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// RootCmd represents the base command when called without any subcommands
var RootCmd = &cobra.Command{
	Use:   "project-aggregator",
	Short: "Python project aggregation service",
	Long: `Project Aggregator mirrors Python project metadata into an S3 compatible store
and reduces it into aggregates: a keyword table and the project2vec vector space.
Per-project work runs as fan-out groups whose results are reduced in index order.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// limitFlag overrides flow.limit for every command.
var limitFlag int

func init() {
	RootCmd.PersistentFlags().IntVar(&limitFlag, "limit", 0, "Process at most this many projects (overrides FLOW_LIMIT)")
}

func Execute() {
	if err := RootCmd.Execute(); err != nil {
		// Console encoding with the development config reads best on a terminal
		cfg := &logger.Config{
			Level:  "debug",
			Format: "console",
		}

		l, logErr := logger.New(cfg)
		if logErr == nil {
			l.Error("command failed", zap.Error(err))
			_ = l.Sync()
		} else {
			fmt.Println(err)
		}
		os.Exit(1)
	}
}
