// Package cmd contains all the CLI commands for the application,
// built using the Cobra library.
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/oss-values/issue-stats/internal/config"
)

var rootCmd = &cobra.Command{
	Use:   "issue-stats",
	Short: "Collects and analyzes the closed-issue history of a GitHub repository.",
	Long: `issue-stats downloads the closed issues of a public GitHub repository
together with their comment threads, classifies each issue against a fixed
taxonomy of social/organizational values, and aggregates the results into
monthly and per-contributor reports.`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose/debug logging")
	rootCmd.PersistentFlags().StringP("config", "c", "", "Path to a YAML config file")
}

// newLogger builds the logger every command injects into its collaborators.
// Debug level under --verbose, info otherwise; always to stderr so reports
// on stdout stay clean.
func newLogger(verbose bool) *zap.Logger {
	cfg := zap.NewDevelopmentConfig()
	cfg.OutputPaths = []string{"stderr"}
	if !verbose {
		cfg.Level = zap.NewAtomicLevelAt(zap.InfoLevel)
	}
	logger, err := cfg.Build()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to build logger: %v\n", err)
		os.Exit(1)
	}
	return logger
}

// loadConfig reads the configured YAML file, or returns defaults when no
// file was given.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	path, _ := cmd.InheritedFlags().GetString("config")
	if path == "" {
		return config.Default(), nil
	}
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open config file: %w", err)
	}
	defer file.Close()
	return config.Load(file)
}

func fatal(format string, args ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(1)
}
