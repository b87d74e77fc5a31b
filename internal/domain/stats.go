package domain

import (
	"fmt"
	"sort"
	"time"
)

// MonthKey groups records by the calendar year and month of their creation
// time, always evaluated in UTC.
type MonthKey struct {
	Year  int
	Month time.Month
}

// MonthOf derives the bucket key for a timestamp.
func MonthOf(t time.Time) MonthKey {
	u := t.UTC()
	return MonthKey{Year: u.Year(), Month: u.Month()}
}

// Before reports whether k is chronologically earlier than other.
func (k MonthKey) Before(other MonthKey) bool {
	if k.Year != other.Year {
		return k.Year < other.Year
	}
	return k.Month < other.Month
}

func (k MonthKey) String() string {
	return fmt.Sprintf("%04d-%02d", k.Year, int(k.Month))
}

// MonthBucket accumulates classification results for one calendar month.
type MonthBucket struct {
	CategoryCounts map[Category]int
	TotalIssues    int
	// Resolution time summary over the issues of the month that carry a
	// usable close date, in days.
	MeanResolutionDays   float64
	MedianResolutionDays float64
}

// NewMonthBucket returns an empty bucket with every category pre-seeded to
// zero, so reports always enumerate the full taxonomy.
func NewMonthBucket() *MonthBucket {
	counts := make(map[Category]int, len(Categories()))
	for _, c := range Categories() {
		counts[c] = 0
	}
	return &MonthBucket{CategoryCounts: counts}
}

// ContributorStats accumulates per-actor activity across the whole input
// table, independent of month bucketing.
type ContributorStats struct {
	Login          string
	IssuesOpened   int
	CommentsPosted int
	// ParticipationTime sums closed_at - created_at over issues this actor
	// authored. Comments contribute activity counts only, no duration.
	ParticipationTime time.Duration
	LabelCounts       map[string]int
}

// Activity is the total contribution count used for ranking.
func (c *ContributorStats) Activity() int {
	return c.IssuesOpened + c.CommentsPosted
}

// WordCount is one entry of the comment word frequency tally.
type WordCount struct {
	Word  string
	Count int
}

// Report is the aggregation output consumed by the report writer.
type Report struct {
	Months          map[MonthKey]*MonthBucket
	TopContributors []*ContributorStats
	TopWords        []WordCount
}

// SortedMonths returns the bucket keys in chronological order.
func (r *Report) SortedMonths() []MonthKey {
	keys := make([]MonthKey, 0, len(r.Months))
	for k := range r.Months {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i].Before(keys[j]) })
	return keys
}
