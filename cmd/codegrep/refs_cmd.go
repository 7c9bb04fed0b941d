package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var refsCmd = &cobra.Command{
	Use:   "refs",
	Short: "Reference and call-graph search (§4.8)",
}

var refsFindCmd = &cobra.Command{
	Use:   "find NAME",
	Short: "Find every reference to a symbol name (findReferences)",
	Args:  cobra.ExactArgs(1),
	RunE:  runRefsFind,
}

var refsCallersCmd = &cobra.Command{
	Use:   "callers NAME",
	Short: "Find call sites of a symbol name (getCallers)",
	Args:  cobra.ExactArgs(1),
	RunE:  runRefsCallers,
}

var refsCalleesCmd = &cobra.Command{
	Use:   "callees PATH QUALIFIED_NAME",
	Short: "Find what a symbol calls (getCallees)",
	Args:  cobra.ExactArgs(2),
	RunE:  runRefsCallees,
}

func init() {
	refsCmd.AddCommand(refsFindCmd, refsCallersCmd, refsCalleesCmd)
	rootCmd.AddCommand(refsCmd)
}

func runRefsFind(cmd *cobra.Command, args []string) error {
	c, _, err := buildCore(cmd)
	if err != nil {
		return fmt.Errorf("refs find: %w", err)
	}
	refs, err := c.search.FindReferences(args[0])
	if err != nil {
		return fmt.Errorf("findReferences: %w", err)
	}
	return printResult(refs)
}

func runRefsCallers(cmd *cobra.Command, args []string) error {
	c, _, err := buildCore(cmd)
	if err != nil {
		return fmt.Errorf("refs callers: %w", err)
	}
	callers, err := c.search.GetCallers(args[0])
	if err != nil {
		return fmt.Errorf("getCallers: %w", err)
	}
	return printResult(callers)
}

func runRefsCallees(cmd *cobra.Command, args []string) error {
	c, _, err := buildCore(cmd)
	if err != nil {
		return fmt.Errorf("refs callees: %w", err)
	}
	callees, err := c.search.GetCallees(args[0], args[1])
	if err != nil {
		return fmt.Errorf("getCallees: %w", err)
	}
	return printResult(callees)
}
