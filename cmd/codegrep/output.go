package main

import (
	"encoding/json"
	"fmt"
	"os"
)

// printResult renders v as pretty JSON to stdout. The core's operations all
// return plain structs/slices, so a single JSON encoder is enough output
// surface for every subcommand; anything richer (coloring, paging) is
// explicitly out of scope per §1.
func printResult(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encode output: %w", err)
	}
	return nil
}
