package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/73ai/code-context/internal/model"
)

var (
	insightNoCallGraph bool
	insightNoCode      bool
	insightMaxChanges  int
)

var insightCmd = &cobra.Command{
	Use:   "insight TARGET",
	Short: "Compose a file, directory, or symbol insight (getInsight)",
	Long: `TARGET is classified as an absolute path, a workspace-relative path, a
directory, or a symbol name (exact match first, substring fallback second).
An ambiguous symbol name reports every candidate rather than guessing.

EXAMPLES:
    codegrep insight internal/projindex/projindex.go
    codegrep insight internal/projindex
    codegrep insight ReindexFile`,
	Args: cobra.ExactArgs(1),
	RunE: runInsight,
}

func init() {
	insightCmd.Flags().BoolVar(&insightNoCallGraph, "no-call-graph", false, "omit callers/callees for symbol targets")
	insightCmd.Flags().BoolVar(&insightNoCode, "no-code", false, "omit source bodies for symbol targets")
	insightCmd.Flags().IntVar(&insightMaxChanges, "max-changes", 10, "max recent-commits entries for file targets")
	rootCmd.AddCommand(insightCmd)
}

func runInsight(cmd *cobra.Command, args []string) error {
	c, _, err := buildCore(cmd)
	if err != nil {
		return fmt.Errorf("insight: %w", err)
	}

	opts := model.InsightOptions{
		IncludeCallGraph: !insightNoCallGraph,
		IncludeCode:      !insightNoCode,
		MaxChanges:       insightMaxChanges,
	}
	result, err := c.insight.GetInsight(args[0], opts)
	if err != nil {
		return fmt.Errorf("getInsight: %w", err)
	}
	return printResult(result)
}
