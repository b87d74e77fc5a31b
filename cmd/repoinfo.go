package cmd

import (
	"context"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/oss-values/issue-stats/internal/gateway"
	"github.com/oss-values/issue-stats/internal/report"
)

var repoInfoCmd = &cobra.Command{
	Use:   "repo-info",
	Short: "Writes a summary of releases, branches, milestones and labels",
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

		token, err := cfg.ResolveGitHubToken()
		if err != nil {
			fatal("GitHub token not available: %v", err)
		}

		gw, err := gateway.New(token, cfg.RetryPolicy(), cfg.GitHub.PageSize, logger)
		if err != nil {
			fatal("Failed to create GitHub gateway: %v", err)
		}

		info, err := gw.FetchRepoInfo(ctx, owner, repo)
		if err != nil {
			fatal("Failed to fetch repository info: %v", err)
		}

		file, err := os.Create(output)
		if err != nil {
			fatal("Failed to create output file: %v", err)
		}
		defer file.Close()
		if err := report.WriteRepoInfo(file, info); err != nil {
			fatal("Failed to write repository summary: %v", err)
		}

		logger.Info("repository summary written", zap.String("output", output))
	},
}

func init() {
	rootCmd.AddCommand(repoInfoCmd)
	repoInfoCmd.Flags().StringP("owner", "o", "", "Repository owner (required)")
	repoInfoCmd.Flags().StringP("repo", "r", "", "Repository name (required)")
	repoInfoCmd.MarkFlagRequired("owner")
	repoInfoCmd.MarkFlagRequired("repo")
	repoInfoCmd.Flags().String("output", "repo_info.txt", "Output report file")
}
