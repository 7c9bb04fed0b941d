package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var depsCmd = &cobra.Command{
	Use:   "deps",
	Short: "Analyze the workspace's import graph (analyzeDependencies)",
	Long: `Builds the adjacency map over every indexed file's imports, reports
import cycles, and ranks files by in- and out-degree.

EXAMPLES:
    codegrep deps
    codegrep deps --root ./src`,
	RunE: runDeps,
}

func init() {
	rootCmd.AddCommand(depsCmd)
}

func runDeps(cmd *cobra.Command, args []string) error {
	c, _, err := buildCore(cmd)
	if err != nil {
		return fmt.Errorf("deps: %w", err)
	}
	analysis, err := c.deps.AnalyzeDependencies()
	if err != nil {
		return fmt.Errorf("analyzeDependencies: %w", err)
	}
	return printResult(analysis)
}
