// Package domain contains the core data structures and domain logic for the application.
package domain

import "time"

// CommentRecord is a single comment on an issue. It is owned by its parent
// IssueRecord and has no independent lifecycle.
type CommentRecord struct {
	Author    string
	Body      string
	CreatedAt time.Time
}

// IssueRecord is the canonical form of a closed issue together with its
// comment thread, normalized from the upstream API payload. Records are
// constructed once at the fetch or CSV boundary and never mutated afterwards.
type IssueRecord struct {
	Number    int
	Title     string
	Body      string
	Author    string
	CreatedAt time.Time
	// ClosedAt is zero when the source table did not carry a close date.
	// Issues fetched under the closed-state filter always have it set.
	ClosedAt time.Time
	Labels   []string
	// Comments are in chronological order as returned by the upstream API.
	Comments []CommentRecord
}

// ResolutionTime returns how long the issue stayed open. The second return
// value is false when the record cannot support the computation.
func (r IssueRecord) ResolutionTime() (time.Duration, bool) {
	if r.CreatedAt.IsZero() || r.ClosedAt.IsZero() || r.ClosedAt.Before(r.CreatedAt) {
		return 0, false
	}
	return r.ClosedAt.Sub(r.CreatedAt), true
}
