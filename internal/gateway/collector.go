package gateway

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/go-github/v62/github"
	"go.uber.org/zap"

	"github.com/oss-values/issue-stats/internal/domain"
)

// isBot reports whether a login follows the bot naming convention. Bot
// activity is excluded before any comment fetch so it never costs quota.
func isBot(login string) bool {
	return strings.Contains(login, "[bot]") || strings.HasSuffix(login, "-bot")
}

// CollectClosedIssues retrieves up to maxIssues closed issues of owner/repo
// in ascending creation order, each with its full comment thread. A failed
// issue page aborts the whole collection; a failed comment thread degrades
// to an issue without comments.
func (g *Gateway) CollectClosedIssues(ctx context.Context, owner, repo string, maxIssues int) ([]domain.IssueRecord, error) {
	if maxIssues <= 0 {
		return nil, fmt.Errorf("max issues must be positive, got %d", maxIssues)
	}

	records := make([]domain.IssueRecord, 0, maxIssues)
	for page := 1; len(records) < maxIssues; page++ {
		opts := &github.IssueListByRepoOptions{
			State:     "closed",
			Sort:      "created",
			Direction: "asc",
			ListOptions: github.ListOptions{
				Page:    page,
				PerPage: g.pageSize,
			},
		}
		var issues []*github.Issue
		err := g.withRetry(ctx, fmt.Sprintf("list closed issues page %d", page), func() (*github.Response, error) {
			var resp *github.Response
			var err error
			issues, resp, err = g.client.Issues.ListByRepo(ctx, owner, repo, opts)
			return resp, err
		})
		if err != nil {
			return nil, err
		}
		if len(issues) == 0 {
			break
		}

		for _, issue := range issues {
			if len(records) >= maxIssues {
				break
			}
			author := issue.GetUser().GetLogin()
			// The issues endpoint also returns pull requests.
			if issue.IsPullRequest() || isBot(author) {
				g.logger.Debug("skipping issue",
					zap.Int("number", issue.GetNumber()),
					zap.String("author", author),
					zap.Bool("pull_request", issue.IsPullRequest()))
				continue
			}

			record := domain.IssueRecord{
				Number:    issue.GetNumber(),
				Title:     issue.GetTitle(),
				Body:      issue.GetBody(),
				Author:    author,
				CreatedAt: issue.GetCreatedAt().Time.UTC(),
			}
			if closed := issue.GetClosedAt(); !closed.Time.IsZero() {
				record.ClosedAt = closed.Time.UTC()
			}
			for _, label := range issue.Labels {
				record.Labels = append(record.Labels, label.GetName())
			}
			record.Comments = g.fetchComments(ctx, owner, repo, issue.GetNumber())
			records = append(records, record)
		}

		g.logger.Info("fetched issue page",
			zap.Int("page", page),
			zap.Int("collected", len(records)))

		if len(issues) < g.pageSize {
			break
		}
	}
	return records, nil
}

// fetchComments pulls the full comment thread of one issue. Failures are
// logged and yield an empty thread instead of aborting the collection.
func (g *Gateway) fetchComments(ctx context.Context, owner, repo string, number int) []domain.CommentRecord {
	var out []domain.CommentRecord
	for page := 1; ; page++ {
		opts := &github.IssueListCommentsOptions{
			ListOptions: github.ListOptions{
				Page:    page,
				PerPage: g.pageSize,
			},
		}
		var comments []*github.IssueComment
		err := g.withRetry(ctx, fmt.Sprintf("list comments for issue %d page %d", number, page), func() (*github.Response, error) {
			var resp *github.Response
			var err error
			comments, resp, err = g.client.Issues.ListComments(ctx, owner, repo, number, opts)
			return resp, err
		})
		if err != nil {
			g.logger.Warn("comment fetch failed, keeping issue without comments",
				zap.Int("issue", number),
				zap.Error(err))
			return nil
		}
		for _, comment := range comments {
			out = append(out, domain.CommentRecord{
				Author:    comment.GetUser().GetLogin(),
				Body:      comment.GetBody(),
				CreatedAt: comment.GetCreatedAt().Time.UTC(),
			})
		}
		if len(comments) < g.pageSize {
			break
		}
	}
	return out
}
