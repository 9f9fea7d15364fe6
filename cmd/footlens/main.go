// Command footlens preprocesses football injury tables and serves the injury
// impact dashboard.
//
// Usage:
//
//	footlens serve --data data/player_injuries_impact.csv
//	footlens process --data injuries.xlsx --out injuries_augmented.csv
//	footlens export --team Arsenal --severity Severe --out arsenal.xlsx
//	footlens stats --season 2020/21
package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"footlens/internal/config"
	apperrors "footlens/internal/errors"
	"footlens/internal/infrastructure"
)

type rootOptions struct {
	configFile string
	envFile    string
	dataFile   string
	logLevel   string
	logFormat  string
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	root := &cobra.Command{
		Use:          "footlens",
		Short:        "Football injury impact analytics",
		SilenceUsage: true,
	}

	root.PersistentFlags().StringVar(&opts.configFile, "config", os.Getenv(config.EnvPrefix+"_CONFIG"), "YAML config file")
	root.PersistentFlags().StringVar(&opts.envFile, "env-file", ".env", "dotenv file loaded before the environment")
	root.PersistentFlags().StringVar(&opts.dataFile, "data", "", "injury table (.csv or .xlsx), overrides paths.data_file")
	root.PersistentFlags().StringVar(&opts.logLevel, "log-level", "", "log level (debug, info, warn, error)")
	root.PersistentFlags().StringVar(&opts.logFormat, "log-format", "", "log format (json, text)")

	root.AddCommand(serveCmd(opts))
	root.AddCommand(processCmd(opts))
	root.AddCommand(exportCmd(opts))
	root.AddCommand(statsCmd(opts))
	root.AddCommand(versionCmd())

	return root
}

// load resolves configuration and the logger for a command
func (o *rootOptions) load() (*config.Config, *slog.Logger, error) {
	cfg, err := config.LoadWithOptions(config.Options{
		ConfigFile: o.configFile,
		EnvFile:    o.envFile,
	})
	if err != nil {
		return nil, nil, apperrors.NewConfigError("failed to load configuration", err)
	}

	if o.dataFile != "" {
		cfg.Paths.DataFile = o.dataFile
	}
	if o.logLevel != "" {
		cfg.Logging.Level = o.logLevel
	}
	if o.logFormat != "" {
		cfg.Logging.Format = o.logFormat
	}

	logger, err := infrastructure.InitializeLogger(cfg.Logging)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	return cfg, logger, nil
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", config.AppName, config.AppVersion)
		},
	}
}
