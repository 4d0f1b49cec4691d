package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/usagetop/usagetop/internal/aggregator"
	"github.com/usagetop/usagetop/internal/config"
	"github.com/usagetop/usagetop/internal/fetch"
	"github.com/usagetop/usagetop/internal/logging"
)

var (
	reportStart   string
	reportEnd     string
	reportDays    int
	reportAPIKey  string
	reportBaseURL string
)

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Fetch and aggregate usage for a date range",
	Long: `Fetches per-day usage for the given range (default: the last 30
days), aggregates it into a usage report, and prints the report as JSON.

Days are fetched in concurrent batches of five. If the very first
request fails the whole report is aborted; any later failed day is
treated as empty.`,
	Example: `  usagetop report
  usagetop report --days 7
  usagetop report --start 2024-01-01 --end 2024-01-31`,
	RunE: runReport,
}

func init() {
	reportCmd.Flags().StringVar(&reportStart, "start", "", "Start date (YYYY-MM-DD)")
	reportCmd.Flags().StringVar(&reportEnd, "end", "", "End date (YYYY-MM-DD, inclusive)")
	reportCmd.Flags().IntVar(&reportDays, "days", 0, "Report window in days, ending today")
	reportCmd.Flags().StringVar(&reportAPIKey, "api-key", "", "API key (overrides configured key)")
	reportCmd.Flags().StringVar(&reportBaseURL, "base-url", "", "Usage API base URL (overrides configured URL)")
	rootCmd.AddCommand(reportCmd)
}

func runReport(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	apiKey := reportAPIKey
	if apiKey == "" {
		apiKey = cfg.APIKey
	}
	if apiKey == "" {
		return fmt.Errorf("no API key configured; run 'usagetop config --api-key <key>' or pass --api-key")
	}

	baseURL := reportBaseURL
	if baseURL == "" {
		baseURL = cfg.BaseURL
	}

	start, end, err := resolveRange(cfg, time.Now())
	if err != nil {
		return err
	}

	log := logging.New(cfg.Logging)
	defer log.Sync()

	client := fetch.NewClient(baseURL, apiKey)
	orch := fetch.NewOrchestrator(client, log)

	batches, err := orch.FetchRange(cmd.Context(), start, end)
	if err != nil {
		return fmt.Errorf("fetching usage: %w", err)
	}

	return printJSON(aggregator.Aggregate(batches))
}

// resolveRange turns the flag combination into an inclusive [start, end]
// pair. Explicit dates win over --days, which wins over the configured
// default window.
func resolveRange(cfg *config.Config, now time.Time) (time.Time, time.Time, error) {
	if (reportStart == "") != (reportEnd == "") {
		return time.Time{}, time.Time{}, fmt.Errorf("--start and --end must be given together")
	}

	if reportStart != "" {
		start, err := time.Parse("2006-01-02", reportStart)
		if err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("invalid --start date %q, use YYYY-MM-DD", reportStart)
		}
		end, err := time.Parse("2006-01-02", reportEnd)
		if err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("invalid --end date %q, use YYYY-MM-DD", reportEnd)
		}
		if start.After(end) {
			return time.Time{}, time.Time{}, fmt.Errorf("--start %s is after --end %s", reportStart, reportEnd)
		}
		return start, end, nil
	}

	days := reportDays
	if days <= 0 {
		days = cfg.Days
	}
	end := now.Truncate(24 * time.Hour)
	return end.AddDate(0, 0, -(days - 1)), end, nil
}
