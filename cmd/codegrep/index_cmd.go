package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var indexCmd = &cobra.Command{
	Use:   "index",
	Short: "Index the workspace and report indexing stats",
	Long: `Scans the workspace root, parses every recognized source file, and
populates the in-process Project Index. The index lives only for this
process's lifetime — there is no on-disk index to rebuild or clear.

EXAMPLES:
    codegrep index
    codegrep index --root ./src --workers 8`,
	RunE: runIndex,
}

func init() {
	rootCmd.AddCommand(indexCmd)
}

func runIndex(cmd *cobra.Command, args []string) error {
	_, stats, err := buildCore(cmd)
	if err != nil {
		return fmt.Errorf("index: %w", err)
	}
	return printResult(stats)
}
