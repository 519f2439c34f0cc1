package main

import (
	"os"

	"github.com/spf13/cobra"

	"joblog/internal/cli"
	"joblog/internal/config"
	"joblog/internal/log"
)

func rootCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "joblog",
		Short: "Record hauling jobs and summarize them by week",
		Long: `joblog keeps a list of jobs in a single persisted snapshot, serves it over
HTTP and mirrors it to Google Sheets through a background worker.`,
		SilenceUsage: true,
	}
	cmd.PersistentFlags().StringSlice("env-file", []string{".env"}, "Env files to load before reading configuration")
	cmd.PersistentFlags().String("log-level", "", "Override LOG_LEVEL (debug, info, warn, error)")

	cmd.AddCommand(serveCommand())
	cmd.AddCommand(workerCommand())
	cmd.AddCommand(summaryCommand())
	return cmd
}

// bootstrap loads env files and configuration and sets up logging.
func bootstrap(cmd *cobra.Command) (*config.Config, *log.Logger, error) {
	envFiles, _ := cmd.Flags().GetStringSlice("env-file")
	cli.LoadEnvFile(envFiles...)

	level, _ := cmd.Flags().GetString("log-level")
	if level == "" {
		level = os.Getenv("LOG_LEVEL")
	}
	logger := cli.SetupLogger(level)

	cfg, err := cli.LoadAndValidateConfig(logger)
	if err != nil {
		return nil, nil, err
	}
	return cfg, logger, nil
}

func main() {
	if err := rootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}
