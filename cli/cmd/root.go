// Package cmd implements the usagetop CLI commands.
package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

const version = "0.1.0"

var rootCmd = &cobra.Command{
	Use:     "usagetop",
	Short:   "Aggregate API usage into daily and per-model cost reports",
	Version: version,
	Long: `usagetop fetches per-day usage data from the usage API, estimates
costs from a pricing table, and aggregates everything into a report of
daily summaries, per-model summaries, and range totals.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the CLI. Errors are printed to stderr here so main stays
// a thin exit-code wrapper.
func Execute() error {
	err := rootCmd.Execute()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	}
	return err
}

// printJSON writes v to stdout as indented JSON, the interchange format
// the rendering layer consumes.
func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
