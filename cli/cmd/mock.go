package cmd

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/usagetop/usagetop/internal/mock"
)

var mockCmd = &cobra.Command{
	Use:   "mock",
	Short: "Print a deterministic synthetic usage report",
	Long: `Generates 30 days of synthetic usage from a fixed-seed generator and
prints the aggregated report as JSON. Useful for demos and for wiring
up renderers without an API key.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return printJSON(mock.Generate(time.Now()))
	},
}

func init() {
	rootCmd.AddCommand(mockCmd)
}
