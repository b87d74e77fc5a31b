// Package usecase contains the business logic of the application.
package usecase

import (
	"context"
	"errors"
	"sort"
	"strings"

	"github.com/montanaflynn/stats"
	"go.uber.org/zap"

	"github.com/oss-values/issue-stats/internal/classify"
	"github.com/oss-values/issue-stats/internal/domain"
)

// ErrNoUsableRecords marks an input table where no record carried a usable
// creation timestamp. This is a configuration problem, not a data blip, so
// the aggregation aborts with no partial result.
var ErrNoUsableRecords = errors.New("no records with a usable created_at")

// Aggregator buckets issue records by month, classifies each one, and
// accumulates per-contributor activity. It owns its accumulators exclusively
// for the duration of one Aggregate call; runs are stateless.
type Aggregator struct {
	classifier      classify.Classifier
	topContributors int
	topWords        int
	logger          *zap.Logger
}

// NewAggregator creates an Aggregator instance.
func NewAggregator(classifier classify.Classifier, topContributors, topWords int, logger *zap.Logger) *Aggregator {
	return &Aggregator{
		classifier:      classifier,
		topContributors: topContributors,
		topWords:        topWords,
		logger:          logger,
	}
}

// Aggregate processes the immutable input table in one pass. Records with a
// zero creation time are skipped individually; every other record is
// classified exactly once and counted in exactly one month bucket.
func (a *Aggregator) Aggregate(ctx context.Context, records []domain.IssueRecord) (*domain.Report, error) {
	a.logger.Info("starting aggregation", zap.Int("records", len(records)))

	months := make(map[domain.MonthKey]*domain.MonthBucket)
	resolutionDays := make(map[domain.MonthKey][]float64)
	contributors := make(map[string]*domain.ContributorStats)
	var contributorOrder []string
	wordCounts := make(map[string]int)
	var wordOrder []string

	ensureContributor := func(login string) *domain.ContributorStats {
		cs, ok := contributors[login]
		if !ok {
			cs = &domain.ContributorStats{Login: login, LabelCounts: make(map[string]int)}
			contributors[login] = cs
			contributorOrder = append(contributorOrder, login)
		}
		return cs
	}

	processed := 0
	for _, record := range records {
		if record.CreatedAt.IsZero() {
			a.logger.Warn("skipping record without creation time", zap.Int("number", record.Number))
			continue
		}
		processed++

		key := domain.MonthOf(record.CreatedAt)
		bucket, ok := months[key]
		if !ok {
			bucket = domain.NewMonthBucket()
			months[key] = bucket
		}

		category := a.classifier.Classify(ctx, record.Title, record.Body)
		bucket.CategoryCounts[category]++
		bucket.TotalIssues++

		duration, hasDuration := record.ResolutionTime()
		if hasDuration {
			resolutionDays[key] = append(resolutionDays[key], duration.Hours()/24)
		}

		if record.Author != "" {
			author := ensureContributor(record.Author)
			author.IssuesOpened++
			if hasDuration {
				author.ParticipationTime += duration
			}
			for _, label := range record.Labels {
				author.LabelCounts[label]++
			}
		}
		for _, comment := range record.Comments {
			if comment.Author == "" {
				continue
			}
			ensureContributor(comment.Author).CommentsPosted++
			for _, word := range strings.Fields(strings.ToLower(comment.Body)) {
				if _, seen := wordCounts[word]; !seen {
					wordOrder = append(wordOrder, word)
				}
				wordCounts[word]++
			}
		}
	}

	if len(records) > 0 && processed == 0 {
		return nil, ErrNoUsableRecords
	}

	for key, days := range resolutionDays {
		if mean, err := stats.Mean(days); err == nil {
			months[key].MeanResolutionDays = mean
		}
		if median, err := stats.Median(days); err == nil {
			months[key].MedianResolutionDays = median
		}
	}

	report := &domain.Report{
		Months:          months,
		TopContributors: rankContributors(contributors, contributorOrder, a.topContributors),
		TopWords:        rankWords(wordCounts, wordOrder, a.topWords),
	}
	a.logger.Info("aggregation complete",
		zap.Int("months", len(months)),
		zap.Int("contributors", len(contributors)))
	return report, nil
}

// rankContributors sorts by activity descending with a stable tie-break on
// first-encountered order, and truncates to the top n.
func rankContributors(contributors map[string]*domain.ContributorStats, order []string, n int) []*domain.ContributorStats {
	ranked := make([]*domain.ContributorStats, 0, len(order))
	for _, login := range order {
		ranked = append(ranked, contributors[login])
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Activity() > ranked[j].Activity()
	})
	if n > 0 && len(ranked) > n {
		ranked = ranked[:n]
	}
	return ranked
}

func rankWords(counts map[string]int, order []string, n int) []domain.WordCount {
	ranked := make([]domain.WordCount, 0, len(order))
	for _, word := range order {
		ranked = append(ranked, domain.WordCount{Word: word, Count: counts[word]})
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Count > ranked[j].Count
	})
	if n > 0 && len(ranked) > n {
		ranked = ranked[:n]
	}
	return ranked
}
