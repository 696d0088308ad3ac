// Package cmd provides the CLI commands for obkit
package cmd

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/sirosfoundation/obkit/pkg/config"
)

var (
	// Version is set during build
	Version = "dev"
	// Commit is set during build
	Commit = "unknown"
)

// errValidationFailed is returned when at least one document did not pass.
var errValidationFailed = errors.New("validation failed")

var (
	configFile string
	logLevel   string
	logFormat  string
	language   string
)

// Set up by the root PersistentPreRunE before any command runs.
var (
	cfg    *config.Config
	logger *slog.Logger
)

var rootCmd = &cobra.Command{
	Use:   "obkit",
	Short: "Validate, normalize and convert Open Badges",
	Long: `obkit works with Open Badges 2.0 assertions and Open Badges 3.0
verifiable credentials in JSON, YAML or CBOR. It tells the versions apart,
validates them, normalizes them into one flat view, and converts between them.

Example usage:
  obkit validate assertion.json
  obkit normalize badges/*.json --sort issuanceDate --desc
  obkit convert assertion.json --to ob3 -o credential.json
  obkit batch --input ./badges --output ./site --to ob3`,
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: setup,
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "", "Configuration file path")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level: debug, info, warn, error (default: info)")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "", "Log format: text or json (default: text)")
	rootCmd.PersistentFlags().StringVar(&language, "language", "", "Language used to order names when sorting (default: en-US)")

	rootCmd.AddCommand(versionCmd)
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "obkit %s (commit: %s)\n", Version, Commit)
	},
}

// setup builds the configuration from defaults, config file and flags, and
// the logger from it.
func setup(cmd *cobra.Command, args []string) error {
	c := config.DefaultConfig()

	if configFile != "" {
		fileCfg, err := config.LoadFromFile(configFile)
		if err != nil {
			return fmt.Errorf("failed to load config file: %w", err)
		}
		c.Merge(fileCfg)
	}

	c.Merge(&config.Config{
		LogLevel:  logLevel,
		LogFormat: logFormat,
		Language:  language,
	})

	if err := c.ValidateSettings(); err != nil {
		return err
	}

	level, _ := c.SlogLevel()
	opts := &slog.HandlerOptions{Level: level}
	var handler slog.Handler
	if c.LogFormat == "json" {
		handler = slog.NewJSONHandler(cmd.ErrOrStderr(), opts)
	} else {
		handler = slog.NewTextHandler(cmd.ErrOrStderr(), opts)
	}

	cfg = c
	logger = slog.New(handler)
	return nil
}
