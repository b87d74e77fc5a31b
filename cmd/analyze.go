package cmd

import (
	"context"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/oss-values/issue-stats/internal/classify"
	"github.com/oss-values/issue-stats/internal/config"
	"github.com/oss-values/issue-stats/internal/report"
	"github.com/oss-values/issue-stats/internal/storage"
	"github.com/oss-values/issue-stats/internal/usecase"
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Classifies a collected issue table and writes the monthly report",
	Long: `Reads a CSV table produced by collect, classifies every issue against
the value taxonomy month by month, accumulates per-contributor activity, and
writes a plain-text report. Fatal input problems (such as a missing column)
produce no report file.`,
	Run: func(cmd *cobra.Command, args []string) {
		ctx := context.Background()

		verbose, _ := cmd.InheritedFlags().GetBool("verbose")
		logger := newLogger(verbose)
		defer logger.Sync()

		cfg, err := loadConfig(cmd)
		if err != nil {
			fatal("Invalid configuration: %v", err)
		}
		if strategy, _ := cmd.Flags().GetString("strategy"); strategy != "" {
			cfg.Classifier.Strategy = strategy
			if err := cfg.Validate(); err != nil {
				fatal("Invalid configuration: %v", err)
			}
		}

		input, _ := cmd.Flags().GetString("input")
		output, _ := cmd.Flags().GetString("output")

		file, err := os.Open(input)
		if err != nil {
			fatal("Failed to open issue table: %v", err)
		}
		records, err := storage.ReadIssues(file, logger)
		file.Close()
		if err != nil {
			fatal("Failed to read issue table: %v", err)
		}

		classifier, err := buildClassifier(ctx, cfg, logger)
		if err != nil {
			fatal("Failed to create classifier: %v", err)
		}

		aggregator := usecase.NewAggregator(classifier, cfg.Report.TopContributors, cfg.Report.TopWords, logger)
		result, err := aggregator.Aggregate(ctx, records)
		if err != nil {
			fatal("Failed to aggregate issues: %v", err)
		}

		out, err := os.Create(output)
		if err != nil {
			fatal("Failed to create report file: %v", err)
		}
		defer out.Close()
		if err := report.Write(out, result); err != nil {
			fatal("Failed to write report: %v", err)
		}

		logger.Info("report written",
			zap.String("output", output),
			zap.Int("months", len(result.Months)))
	},
}

// buildClassifier creates the strategy the configuration asks for. The two
// strategies can disagree on the same input; the choice is explicit and no
// reconciliation is attempted.
func buildClassifier(ctx context.Context, cfg *config.Config, logger *zap.Logger) (classify.Classifier, error) {
	switch cfg.Classifier.Strategy {
	case classify.StrategyGemini:
		backend, err := classify.NewGeminiBackend(ctx, os.Getenv("GOOGLE_API_KEY"), cfg.Classifier.GeminiModel)
		if err != nil {
			return nil, err
		}
		return classify.NewGenerativeClassifier(backend, cfg.RetryPolicy(), logger), nil
	default:
		return classify.NewKeywordClassifier(), nil
	}
}

func init() {
	rootCmd.AddCommand(analyzeCmd)
	analyzeCmd.Flags().StringP("input", "i", "closed_issues.csv", "Input CSV table produced by collect")
	analyzeCmd.Flags().String("output", "issue_analysis.txt", "Output report file")
	analyzeCmd.Flags().String("strategy", "", "Classifier strategy override: keyword or gemini")
}
