package cmd

import (
	"errors"
	"io/fs"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

// Version information (set via ldflags at build time)
var (
	Version = "0.0.1-dev"
	Commit  = "unknown"
)

// CLI flags that override config file values
var (
	cfgFile      string
	envFile      string
	logLevel     string
	logFormat    string
	batchSize    int
	sleepSeconds float64
)

var rootCmd = &cobra.Command{
	Use:   "gomask",
	Short: "Database column masking with synthetic data",
	Long: `gomask replaces sensitive column values in MySQL and PostgreSQL tables
with realistic synthetic data, one job at a time.

Features:
  - Names, companies, phone numbers, dates, codes and coordinates
  - Gender-aware names with matching email addresses
  - Uniqueness tracking per job
  - Foreign key columns are never rewritten
  - Per-job or per-batch transactions with row-level error isolation`,
	Version:           Version,
	PersistentPreRunE: loadEnvFile,
	SilenceUsage:      true,
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "gomask.yaml",
		"Path to configuration file")
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", ".env",
		"Dotenv file loaded before the configuration (ignored when missing)")

	// Logging overrides
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "",
		"Override log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "",
		"Override log format (json, text)")

	// Processing overrides
	rootCmd.PersistentFlags().IntVar(&batchSize, "batch-size", 0,
		"Override batch size (rows fetched per batch)")
	rootCmd.PersistentFlags().Float64Var(&sleepSeconds, "sleep", 0,
		"Override sleep seconds between batches")
}

// loadEnvFile makes .env values visible to ${VAR} substitution in the config.
// Variables already set in the environment win.
func loadEnvFile(cmd *cobra.Command, args []string) error {
	if envFile == "" {
		return nil
	}
	if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return nil
}

// GetConfigFile returns the config file path
func GetConfigFile() string {
	return cfgFile
}

// CLIOverrides contains flag values that override config file settings
type CLIOverrides struct {
	LogLevel     string
	LogFormat    string
	BatchSize    int
	SleepSeconds float64
}

// GetCLIOverrides returns the CLI flag override values
func GetCLIOverrides() CLIOverrides {
	return CLIOverrides{
		LogLevel:     logLevel,
		LogFormat:    logFormat,
		BatchSize:    batchSize,
		SleepSeconds: sleepSeconds,
	}
}
