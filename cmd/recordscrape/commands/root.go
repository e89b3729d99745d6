package commands

import (
	"context"
	"fmt"
	"recordscrape/internal/config"
	"recordscrape/lib/telemetry"

	"github.com/spf13/cobra"
)

var (
	configPath string
	logLevel   string
	logJSON    bool
)

var rootCmd = &cobra.Command{
	Use:   "recordscrape",
	Short: "recordscrape fills a column of a tabular dataset with text scraped from each record's web page.",
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		telemetry.InitSlog(telemetry.LogOptions{
			Level:  logLevel,
			JSON:   logJSON,
			Output: cmd.ErrOrStderr(),
		})
	},
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", config.DefaultName, "The job config file.")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "One of debug, info, warn or error.")
	rootCmd.PersistentFlags().BoolVar(&logJSON, "log-json", false, "Log JSON lines instead of colored text.")
}

func ExecuteContext(ctx context.Context) error {
	err := rootCmd.ExecuteContext(ctx)
	if err != nil {
		fmt.Fprintln(rootCmd.ErrOrStderr(), err)
	}
	return err
}

// loadConfig reads the job config, logging settings from the file apply
// unless they were given as flags.
func loadConfig(cmd *cobra.Command) (config.Config, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return config.Config{}, err
	}

	flags := cmd.Flags()
	if !flags.Changed("log-level") && cfg.Logging.Level != "" {
		logLevel = cfg.Logging.Level
	}
	if !flags.Changed("log-json") && cfg.Logging.JSON {
		logJSON = true
	}
	telemetry.InitSlog(telemetry.LogOptions{
		Level:  logLevel,
		JSON:   logJSON,
		Output: cmd.ErrOrStderr(),
	})
	return cfg, nil
}
