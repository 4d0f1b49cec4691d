package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/usagetop/usagetop/internal/config"
)

var (
	configAPIKey  string
	configBaseURL string
	configDays    int
	configShow    bool
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Configure the API key and report defaults",
	Example: `  usagetop config --api-key sk-xxx
  usagetop config --days 7
  usagetop config --show`,
	RunE: runConfig,
}

func init() {
	configCmd.Flags().StringVar(&configAPIKey, "api-key", "", "API key for the usage API")
	configCmd.Flags().StringVar(&configBaseURL, "base-url", "", "Usage API base URL")
	configCmd.Flags().IntVar(&configDays, "days", 0, "Default report window in days")
	configCmd.Flags().BoolVar(&configShow, "show", false, "Show the current configuration")
	rootCmd.AddCommand(configCmd)
}

func runConfig(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	if configShow {
		if cfg.APIKey == "" {
			fmt.Println("No API key configured. Run 'usagetop config --api-key <key>' to configure.")
		} else {
			fmt.Printf("API Key: %s\n", maskKey(cfg.APIKey))
		}
		if cfg.BaseURL != "" {
			fmt.Printf("Base URL: %s\n", cfg.BaseURL)
		}
		fmt.Printf("Default window: %d days\n", cfg.Days)
		return nil
	}

	if configAPIKey == "" && configBaseURL == "" && configDays == 0 {
		return cmd.Help()
	}

	if configAPIKey != "" {
		cfg.APIKey = configAPIKey
	}
	if configBaseURL != "" {
		cfg.BaseURL = configBaseURL
	}
	if configDays > 0 {
		cfg.Days = configDays
	}

	if err := config.Save(cfg); err != nil {
		return fmt.Errorf("saving config: %w", err)
	}

	fmt.Println("Configuration saved.")
	return nil
}

// maskKey keeps just enough of the key to recognize it.
func maskKey(key string) string {
	if len(key) <= 8 {
		return "****"
	}
	return key[:6] + "..." + key[len(key)-4:]
}
