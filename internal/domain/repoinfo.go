package domain

import "time"

// ReleaseInfo describes one published release.
type ReleaseInfo struct {
	Name        string
	TagName     string
	PublishedAt time.Time
}

// MilestoneInfo describes one milestone.
type MilestoneInfo struct {
	Title       string
	Description string
}

// LabelInfo describes one repository label.
type LabelInfo struct {
	Name        string
	Description string
}

// RepoInfo is the repository metadata summary produced by the repo-info
// command.
type RepoInfo struct {
	Owner      string
	Name       string
	Releases   []ReleaseInfo
	Branches   []string
	Milestones []MilestoneInfo
	Labels     []LabelInfo
}
