// Package report renders aggregation results as plain-text reports.
package report

import (
	"fmt"
	"io"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/oss-values/issue-stats/internal/domain"
)

const keywordSampleSize = 10

// Write renders the monthly analysis report: per-month category counts with
// percentages, the keyword listing, the ranked contributor list with label
// tallies, and the most frequent comment words.
func Write(w io.Writer, rep *domain.Report) error {
	var sb strings.Builder
	sb.WriteString("Monthly Issue Category Analysis:\n\n")

	for _, key := range rep.SortedMonths() {
		bucket := rep.Months[key]
		fmt.Fprintf(&sb, "Month: %s\n", key)
		fmt.Fprintf(&sb, "Total Issues Analyzed: %d\n\n", bucket.TotalIssues)
		sb.WriteString("Results:\n")
		for _, category := range domain.Categories() {
			count := bucket.CategoryCounts[category]
			percentage := 0.0
			if bucket.TotalIssues > 0 {
				percentage = float64(count) / float64(bucket.TotalIssues) * 100
			}
			fmt.Fprintf(&sb, "- %s: %d issues (%.2f%%)\n", category, count, percentage)
		}
		if bucket.MeanResolutionDays > 0 || bucket.MedianResolutionDays > 0 {
			fmt.Fprintf(&sb, "Resolution time: mean %.1f days, median %.1f days\n",
				bucket.MeanResolutionDays, bucket.MedianResolutionDays)
		}
		sb.WriteString("\n")
	}

	sb.WriteString("\nKeywords Used per Category:\n")
	for _, category := range domain.Categories() {
		keywords := domain.Keywords[category]
		if len(keywords) == 0 {
			continue
		}
		sample := keywords
		if len(sample) > keywordSampleSize {
			sample = sample[:keywordSampleSize]
		}
		fmt.Fprintf(&sb, "- %s: %s\n", category, strings.Join(sample, ", "))
	}

	fmt.Fprintf(&sb, "\nTop %d Contributors:\n", len(rep.TopContributors))
	for _, contributor := range rep.TopContributors {
		fmt.Fprintf(&sb, "- %s: %d contributions (participation: %s)\n",
			contributor.Login, contributor.Activity(), formatDuration(contributor.ParticipationTime))
		if len(contributor.LabelCounts) > 0 {
			sb.WriteString("  Labels:\n")
			for _, label := range sortedLabelNames(contributor.LabelCounts) {
				fmt.Fprintf(&sb, "    - %s: %d\n", label, contributor.LabelCounts[label])
			}
		}
	}

	if len(rep.TopWords) > 0 {
		sb.WriteString("\nMost Frequent Words in Comments:\n")
		for _, wc := range rep.TopWords {
			fmt.Fprintf(&sb, "- %s: %d occurrences\n", wc.Word, wc.Count)
		}
	}

	_, err := io.WriteString(w, sb.String())
	return err
}

// formatDuration renders a duration as days, hours, minutes and seconds.
func formatDuration(d time.Duration) string {
	days := int(d.Hours()) / 24
	hours := int(d.Hours()) % 24
	minutes := int(d.Minutes()) % 60
	seconds := int(d.Seconds()) % 60
	return fmt.Sprintf("%d days, %d hours, %d minutes, %d seconds", days, hours, minutes, seconds)
}

func sortedLabelNames(counts map[string]int) []string {
	names := make([]string, 0, len(counts))
	for name := range counts {
		names = append(names, name)
	}
	// Highest count first, name as tie-break, for stable output.
	sort.Slice(names, func(i, j int) bool {
		if counts[names[i]] != counts[names[j]] {
			return counts[names[i]] > counts[names[j]]
		}
		return names[i] < names[j]
	})
	return names
}

var semverPattern = regexp.MustCompile(`^v?(\d+)\.(\d+)\.(\d+)$`)

// WriteRepoInfo renders the repository metadata summary, including a
// breakdown of release tags by the semantic-version component they bump.
func WriteRepoInfo(w io.Writer, info *domain.RepoInfo) error {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Repository Analysis: %s/%s\n\n", info.Owner, info.Name)

	fmt.Fprintf(&sb, "Releases: %d\n", len(info.Releases))
	for _, release := range info.Releases {
		date := "unpublished"
		if !release.PublishedAt.IsZero() {
			date = release.PublishedAt.Format("2006-01-02")
		}
		fmt.Fprintf(&sb, "- %s (%s): %s\n", release.Name, release.TagName, date)
	}

	major, minor, patch, nonStandard := semverBreakdown(info.Releases)
	sb.WriteString("\nSemantic Versioning:\n")
	fmt.Fprintf(&sb, "- Major releases (x.0.0): %d\n", major)
	fmt.Fprintf(&sb, "- Minor releases (x.y.0): %d\n", minor)
	fmt.Fprintf(&sb, "- Patch releases (x.y.z): %d\n", patch)
	if len(nonStandard) > 0 {
		sb.WriteString("- Non-standard tags:\n")
		for _, tag := range nonStandard {
			fmt.Fprintf(&sb, "  - %s\n", tag)
		}
	}

	fmt.Fprintf(&sb, "\nBranches: %d\n", len(info.Branches))
	for _, branch := range info.Branches {
		fmt.Fprintf(&sb, "- %s\n", branch)
	}

	fmt.Fprintf(&sb, "\nMilestones: %d\n", len(info.Milestones))
	for _, milestone := range info.Milestones {
		fmt.Fprintf(&sb, "- %s: %s\n", milestone.Title, milestone.Description)
	}

	fmt.Fprintf(&sb, "\nLabels: %d\n", len(info.Labels))
	for _, label := range info.Labels {
		fmt.Fprintf(&sb, "- %s: %s\n", label.Name, label.Description)
	}

	_, err := io.WriteString(w, sb.String())
	return err
}

// semverBreakdown classifies each release tag by the version component it
// bumps: x.0.0 is a major release, x.y.0 a minor one, anything else with
// three numeric components a patch. Tags outside that shape are reported
// separately.
func semverBreakdown(releases []domain.ReleaseInfo) (major, minor, patch int, nonStandard []string) {
	for _, release := range releases {
		m := semverPattern.FindStringSubmatch(release.TagName)
		if m == nil {
			nonStandard = append(nonStandard, release.TagName)
			continue
		}
		switch {
		case m[2] == "0" && m[3] == "0":
			major++
		case m[3] == "0":
			minor++
		default:
			patch++
		}
	}
	return major, minor, patch, nonStandard
}
