package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/73ai/code-context/internal/model"
	"github.com/73ai/code-context/internal/projindex"
)

var (
	searchKinds      []string
	searchMaxResults int
)

var searchCmd = &cobra.Command{
	Use:   "search PATTERN",
	Short: "Search indexed symbols by name (searchSymbols)",
	Long: `Matches PATTERN, a case-insensitive regular expression, against every
indexed symbol's name or qualified name.

EXAMPLES:
    codegrep search handleRequest
    codegrep search "^New" --kind function --max-results 20`,
	Args: cobra.ExactArgs(1),
	RunE: runSearch,
}

func init() {
	searchCmd.Flags().StringSliceVar(&searchKinds, "kind", nil, "restrict to these symbol kinds (repeatable)")
	searchCmd.Flags().IntVar(&searchMaxResults, "max-results", 0, "cap the number of results (0 = unlimited)")
	rootCmd.AddCommand(searchCmd)
}

func runSearch(cmd *cobra.Command, args []string) error {
	c, _, err := buildCore(cmd)
	if err != nil {
		return fmt.Errorf("search: %w", err)
	}

	kinds := make([]model.SymbolKind, len(searchKinds))
	for i, k := range searchKinds {
		kinds[i] = model.SymbolKind(k)
	}

	results, truncated, err := c.index.SearchSymbols(projindex.SearchOptions{
		Pattern:    args[0],
		Kinds:      kinds,
		MaxResults: searchMaxResults,
	})
	if err != nil {
		return fmt.Errorf("searchSymbols: %w", err)
	}

	return printResult(struct {
		Results   []model.IndexedSymbol `json:"results"`
		Truncated bool                  `json:"truncated"`
	}{results, truncated})
}
