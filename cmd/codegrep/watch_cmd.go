package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Index the workspace, then watch it and reindex on change",
	Long: `Performs a full index, transitions the Project Index into the Watching
state, and blocks until interrupted. Created/modified files are reindexed;
deleted files are removed from the index. Reindex errors are logged and do
not stop the watcher.

EXAMPLES:
    codegrep watch --root ./src`,
	RunE: runWatch,
}

func init() {
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, args []string) error {
	c, stats, err := buildCore(cmd)
	if err != nil {
		return fmt.Errorf("watch: %w", err)
	}
	if err := printResult(stats); err != nil {
		return err
	}

	if err := c.index.StartWatching(); err != nil {
		return fmt.Errorf("startWatching: %w", err)
	}
	defer c.index.StopWatching()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	fmt.Fprintln(os.Stderr, "stopping watcher")
	return nil
}
