package cmd

import (
	"context"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/oss-values/issue-stats/internal/gateway"
	"github.com/oss-values/issue-stats/internal/storage"
)

var collectCmd = &cobra.Command{
	Use:   "collect",
	Short: "Downloads closed issues and their comments into a CSV table",
	Long: `Downloads up to --max-issues closed issues of the given repository in
ascending creation order, excluding bot authors and pull requests, and writes
them as a CSV table for the analyze command. If the download fails no output
file is written.`,
	Run: func(cmd *cobra.Command, args []string) {
		ctx := context.Background()

		verbose, _ := cmd.InheritedFlags().GetBool("verbose")
		logger := newLogger(verbose)
		defer logger.Sync()

		cfg, err := loadConfig(cmd)
		if err != nil {
			fatal("Invalid configuration: %v", err)
		}

		owner, _ := cmd.Flags().GetString("owner")
		repo, _ := cmd.Flags().GetString("repo")
		output, _ := cmd.Flags().GetString("output")
		maxIssues, _ := cmd.Flags().GetInt("max-issues")
		if maxIssues <= 0 {
			maxIssues = cfg.GitHub.MaxIssues
		}
		format, _ := cmd.Flags().GetString("format")
		if format == "" {
			format = cfg.GitHub.TableFormat
		}

		token, err := cfg.ResolveGitHubToken()
		if err != nil {
			fatal("GitHub token not available: %v", err)
		}

		gw, err := gateway.New(token, cfg.RetryPolicy(), cfg.GitHub.PageSize, logger)
		if err != nil {
			fatal("Failed to create GitHub gateway: %v", err)
		}

		records, err := gw.CollectClosedIssues(ctx, owner, repo, maxIssues)
		if err != nil {
			fatal("Failed to collect issues: %v", err)
		}

		file, err := os.Create(output)
		if err != nil {
			fatal("Failed to create output file: %v", err)
		}
		defer file.Close()
		if err := storage.WriteIssues(file, records, format); err != nil {
			fatal("Failed to write issue table: %v", err)
		}

		logger.Info("issue table written",
			zap.String("output", output),
			zap.Int("issues", len(records)))
	},
}

func init() {
	rootCmd.AddCommand(collectCmd)
	collectCmd.Flags().StringP("owner", "o", "", "Repository owner (required)")
	collectCmd.Flags().StringP("repo", "r", "", "Repository name (required)")
	collectCmd.MarkFlagRequired("owner")
	collectCmd.MarkFlagRequired("repo")
	collectCmd.Flags().String("output", "closed_issues.csv", "Output CSV file")
	collectCmd.Flags().Int("max-issues", 0, "Maximum number of issues to download (default from config)")
	collectCmd.Flags().String("format", "", "Table format: summary or full (default from config)")
}
