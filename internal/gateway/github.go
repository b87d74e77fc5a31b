// Package gateway provides a gateway to the GitHub REST API, wrapping the
// underlying client with rate-limit-aware pagination and bounded retries.
package gateway

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/google/go-github/v62/github"
	"go.uber.org/zap"
	"golang.org/x/oauth2"

	"github.com/gofri/go-github-ratelimit/github_ratelimit"

	"github.com/oss-values/issue-stats/internal/domain"
	"github.com/oss-values/issue-stats/internal/retry"
)

const maxPageSize = 100 // upstream API hard cap

// Gateway is the single entry point for all GitHub reads. It is stateless
// across calls except for the rate-limit budget reported by the last
// response, which governs the wait before the next request.
type Gateway struct {
	client   *github.Client
	policy   retry.Policy
	pageSize int
	logger   *zap.Logger

	lastRate github.Rate

	// Injected for testability.
	sleep  func(time.Duration)
	now    func() time.Time
	random func() float64
}

// New creates a Gateway authenticated with the given token. The transport
// stacks the secondary-rate-limit waiter under the oauth2 token source.
func New(token string, policy retry.Policy, pageSize int, logger *zap.Logger) (*Gateway, error) {
	rateLimitWaiter, err := github_ratelimit.NewRateLimitWaiter(nil, github_ratelimit.WithSingleSleepLimit(1*time.Hour, nil))
	if err != nil {
		return nil, fmt.Errorf("failed to create rate limit waiter: %w", err)
	}
	ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token})
	httpClient := &http.Client{
		Transport: &oauth2.Transport{
			Base:   rateLimitWaiter,
			Source: ts,
		},
	}
	return newGateway(github.NewClient(httpClient), policy, pageSize, logger), nil
}

func newGateway(client *github.Client, policy retry.Policy, pageSize int, logger *zap.Logger) *Gateway {
	if pageSize <= 0 || pageSize > maxPageSize {
		pageSize = maxPageSize
	}
	return &Gateway{
		client:   client,
		policy:   policy,
		pageSize: pageSize,
		logger:   logger,
		sleep:    time.Sleep,
		now:      time.Now,
	}
}

// FetchRepoInfo retrieves the repository metadata summary: releases,
// branches, milestones and labels. Each list is capped at one full page,
// which covers the repositories this tool is pointed at.
func (g *Gateway) FetchRepoInfo(ctx context.Context, owner, repo string) (*domain.RepoInfo, error) {
	info := &domain.RepoInfo{Owner: owner, Name: repo}
	opts := github.ListOptions{PerPage: g.pageSize}

	var releases []*github.RepositoryRelease
	err := g.withRetry(ctx, "list releases", func() (*github.Response, error) {
		var resp *github.Response
		var err error
		releases, resp, err = g.client.Repositories.ListReleases(ctx, owner, repo, &opts)
		return resp, err
	})
	if err != nil {
		return nil, err
	}
	for _, rel := range releases {
		info.Releases = append(info.Releases, domain.ReleaseInfo{
			Name:        rel.GetName(),
			TagName:     rel.GetTagName(),
			PublishedAt: rel.GetPublishedAt().Time.UTC(),
		})
	}

	var branches []*github.Branch
	err = g.withRetry(ctx, "list branches", func() (*github.Response, error) {
		var resp *github.Response
		var err error
		branches, resp, err = g.client.Repositories.ListBranches(ctx, owner, repo, &github.BranchListOptions{ListOptions: opts})
		return resp, err
	})
	if err != nil {
		return nil, err
	}
	for _, br := range branches {
		info.Branches = append(info.Branches, br.GetName())
	}

	var milestones []*github.Milestone
	err = g.withRetry(ctx, "list milestones", func() (*github.Response, error) {
		var resp *github.Response
		var err error
		milestones, resp, err = g.client.Issues.ListMilestones(ctx, owner, repo, &github.MilestoneListOptions{ListOptions: opts})
		return resp, err
	})
	if err != nil {
		return nil, err
	}
	for _, ms := range milestones {
		info.Milestones = append(info.Milestones, domain.MilestoneInfo{
			Title:       ms.GetTitle(),
			Description: ms.GetDescription(),
		})
	}

	var labels []*github.Label
	err = g.withRetry(ctx, "list labels", func() (*github.Response, error) {
		var resp *github.Response
		var err error
		labels, resp, err = g.client.Issues.ListLabels(ctx, owner, repo, &opts)
		return resp, err
	})
	if err != nil {
		return nil, err
	}
	for _, lb := range labels {
		info.Labels = append(info.Labels, domain.LabelInfo{
			Name:        lb.GetName(),
			Description: lb.GetDescription(),
		})
	}

	return info, nil
}
