package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var fileCmd = &cobra.Command{
	Use:   "file",
	Short: "Query a single indexed file",
}

var fileSymbolsCmd = &cobra.Command{
	Use:   "symbols PATH",
	Short: "List a file's top-level visible symbols (getFileSymbols)",
	Args:  cobra.ExactArgs(1),
	RunE:  runFileSymbols,
}

var fileTreeCmd = &cobra.Command{
	Use:   "tree PATH",
	Short: "Print a file's full symbol tree (getTree)",
	Args:  cobra.ExactArgs(1),
	RunE:  runFileTree,
}

func init() {
	fileCmd.AddCommand(fileSymbolsCmd, fileTreeCmd)
	rootCmd.AddCommand(fileCmd)
}

func runFileSymbols(cmd *cobra.Command, args []string) error {
	c, _, err := buildCore(cmd)
	if err != nil {
		return fmt.Errorf("file symbols: %w", err)
	}
	symbols, err := c.index.GetFileSymbols(args[0])
	if err != nil {
		return fmt.Errorf("getFileSymbols: %w", err)
	}
	return printResult(symbols)
}

func runFileTree(cmd *cobra.Command, args []string) error {
	c, _, err := buildCore(cmd)
	if err != nil {
		return fmt.Errorf("file tree: %w", err)
	}
	tree, err := c.index.GetTree(args[0])
	if err != nil {
		return fmt.Errorf("getTree: %w", err)
	}
	return printResult(tree)
}
