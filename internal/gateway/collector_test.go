package gateway

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/go-github/v62/github"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/oss-values/issue-stats/internal/retry"
)

// testPolicy keeps backoff math trivial and deterministic.
var testPolicy = retry.Policy{MaxRetries: 3, InitialDelay: time.Second, Jitter: 0}

// setupTestGateway creates a Gateway that communicates with a mock HTTP
// server and records every sleep instead of blocking.
func setupTestGateway(t *testing.T, handler http.Handler, pageSize int) (*Gateway, *[]time.Duration) {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client := github.NewClient(server.Client())
	baseURL, err := url.Parse(server.URL + "/")
	require.NoError(t, err)
	client.BaseURL = baseURL

	g := newGateway(client, testPolicy, pageSize, zap.NewNop())
	sleeps := &[]time.Duration{}
	var mu sync.Mutex
	g.sleep = func(d time.Duration) {
		mu.Lock()
		defer mu.Unlock()
		*sleeps = append(*sleeps, d)
	}
	g.random = func() float64 { return 0 }
	return g, sleeps
}

func issueJSON(number int, author string, pullRequest bool) map[string]any {
	issue := map[string]any{
		"number":     number,
		"title":      fmt.Sprintf("issue %d", number),
		"body":       "body",
		"user":       map[string]any{"login": author},
		"created_at": "2021-01-01T00:00:00Z",
		"closed_at":  "2021-01-03T00:00:00Z",
		"labels":     []map[string]any{{"name": "bug"}},
	}
	if pullRequest {
		issue["pull_request"] = map[string]any{"url": "https://example.invalid/pr"}
	}
	return issue
}

// issuesHandler serves numbered issues across pages of the given size and
// empty comment threads, counting the requests per endpoint.
type issuesHandler struct {
	total    int
	pageSize int

	mu              sync.Mutex
	issuePageCalls  int
	commentedIssues []int
}

func (h *issuesHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if strings.Contains(r.URL.Path, "/comments") {
		parts := strings.Split(r.URL.Path, "/")
		number, _ := strconv.Atoi(parts[len(parts)-2])
		h.mu.Lock()
		h.commentedIssues = append(h.commentedIssues, number)
		h.mu.Unlock()
		fmt.Fprint(w, `[]`)
		return
	}

	h.mu.Lock()
	h.issuePageCalls++
	h.mu.Unlock()

	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	if page < 1 {
		page = 1
	}
	start := (page - 1) * h.pageSize
	var issues []map[string]any
	for i := start; i < start+h.pageSize && i < h.total; i++ {
		issues = append(issues, issueJSON(i+1, fmt.Sprintf("user-%d", i+1), false))
	}
	if issues == nil {
		issues = []map[string]any{}
	}
	json.NewEncoder(w).Encode(issues)
}

func TestCollectClosedIssues_PaginationTermination(t *testing.T) {
	testCases := []struct {
		name          string
		total         int
		pageSize      int
		maxIssues     int
		expectedPages int
		expectedCount int
	}{
		{
			name:          "stops on first short page",
			total:         5,
			pageSize:      2,
			maxIssues:     100,
			expectedPages: 3, // ceil(5/2)
			expectedCount: 5,
		},
		{
			name:          "stops on empty page when total is a page multiple",
			total:         4,
			pageSize:      2,
			maxIssues:     100,
			expectedPages: 3, // two full pages plus the empty one
			expectedCount: 4,
		},
		{
			name:          "never fetches more pages than the budget needs",
			total:         10,
			pageSize:      2,
			maxIssues:     3,
			expectedPages: 2, // ceil(3/2)
			expectedCount: 3,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			handler := &issuesHandler{total: tc.total, pageSize: tc.pageSize}
			g, _ := setupTestGateway(t, handler, tc.pageSize)

			records, err := g.CollectClosedIssues(context.Background(), "twbs", "bootstrap", tc.maxIssues)

			require.NoError(t, err)
			assert.Len(t, records, tc.expectedCount)
			assert.Equal(t, tc.expectedPages, handler.issuePageCalls)
		})
	}
}

func TestCollectClosedIssues_ExcludesBotsAndPullRequests(t *testing.T) {
	var commentedIssues []int
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.Contains(r.URL.Path, "/comments") {
			parts := strings.Split(r.URL.Path, "/")
			number, _ := strconv.Atoi(parts[len(parts)-2])
			commentedIssues = append(commentedIssues, number)
			fmt.Fprint(w, `[]`)
			return
		}
		page, _ := strconv.Atoi(r.URL.Query().Get("page"))
		if page > 1 {
			fmt.Fprint(w, `[]`)
			return
		}
		json.NewEncoder(w).Encode([]map[string]any{
			issueJSON(1, "renovate[bot]", false),
			issueJSON(2, "dependa-bot", false),
			issueJSON(3, "alice", false),
			issueJSON(4, "bob", true), // pull request
		})
	})
	g, _ := setupTestGateway(t, handler, 100)

	records, err := g.CollectClosedIssues(context.Background(), "twbs", "bootstrap", 100)

	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "alice", records[0].Author)
	assert.Equal(t, []string{"bug"}, records[0].Labels)
	// Excluded issues must not cost comment-fetch quota.
	assert.Equal(t, []int{3}, commentedIssues)
}

func TestCollectClosedIssues_CommentFailureDegradesToEmptyThread(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.Contains(r.URL.Path, "/comments") {
			w.WriteHeader(http.StatusNotFound)
			fmt.Fprint(w, `{"message": "Not Found"}`)
			return
		}
		page, _ := strconv.Atoi(r.URL.Query().Get("page"))
		if page > 1 {
			fmt.Fprint(w, `[]`)
			return
		}
		json.NewEncoder(w).Encode([]map[string]any{issueJSON(7, "alice", false)})
	})
	g, _ := setupTestGateway(t, handler, 100)

	records, err := g.CollectClosedIssues(context.Background(), "twbs", "bootstrap", 100)

	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Empty(t, records[0].Comments)
}

func TestCollectClosedIssues_TransientFailureRetriesThenAborts(t *testing.T) {
	attempts := 0
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		w.WriteHeader(http.StatusInternalServerError)
		fmt.Fprint(w, `{"message": "Internal Server Error"}`)
	})
	g, sleeps := setupTestGateway(t, handler, 100)

	records, err := g.CollectClosedIssues(context.Background(), "twbs", "bootstrap", 100)

	assert.ErrorIs(t, err, ErrPageFetch)
	assert.Nil(t, records)
	assert.Equal(t, testPolicy.MaxRetries+1, attempts)
	// Exponential backoff: 1s, 2s, 4s.
	assert.Equal(t, []time.Duration{time.Second, 2 * time.Second, 4 * time.Second}, *sleeps)
}

func TestCollectClosedIssues_PermanentFailureDoesNotRetry(t *testing.T) {
	attempts := 0
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		w.WriteHeader(http.StatusUnprocessableEntity)
		fmt.Fprint(w, `{"message": "Validation Failed"}`)
	})
	g, sleeps := setupTestGateway(t, handler, 100)

	_, err := g.CollectClosedIssues(context.Background(), "twbs", "bootstrap", 100)

	assert.ErrorIs(t, err, ErrPageFetch)
	assert.Equal(t, 1, attempts)
	assert.Empty(t, *sleeps)
}

func TestCollectClosedIssues_WaitsForRateLimitReset(t *testing.T) {
	resetUnix := time.Now().Add(30 * time.Second).Unix()
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-RateLimit-Limit", "60")
		w.Header().Set("X-RateLimit-Remaining", "0")
		w.Header().Set("X-RateLimit-Reset", strconv.FormatInt(resetUnix, 10))
		if strings.Contains(r.URL.Path, "/comments") {
			fmt.Fprint(w, `[]`)
			return
		}
		page, _ := strconv.Atoi(r.URL.Query().Get("page"))
		if page > 1 {
			fmt.Fprint(w, `[]`)
			return
		}
		json.NewEncoder(w).Encode([]map[string]any{issueJSON(1, "alice", false)})
	})
	g, sleeps := setupTestGateway(t, handler, 1)
	// Pin the clock 30s before the reported reset.
	g.now = func() time.Time { return time.Unix(resetUnix-30, 0) }

	records, err := g.CollectClosedIssues(context.Background(), "twbs", "bootstrap", 5)

	require.NoError(t, err)
	assert.Len(t, records, 1)
	// Every request after the first waits out the budget: reset-now plus one second.
	require.NotEmpty(t, *sleeps)
	for _, d := range *sleeps {
		assert.Equal(t, 31*time.Second, d)
	}
}

func TestFetchRepoInfo(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case strings.HasSuffix(r.URL.Path, "/releases"):
			fmt.Fprint(w, `[{"name": "v5", "tag_name": "v5.0.0", "published_at": "2021-05-05T00:00:00Z"}]`)
		case strings.HasSuffix(r.URL.Path, "/branches"):
			fmt.Fprint(w, `[{"name": "main"}, {"name": "v4-dev"}]`)
		case strings.HasSuffix(r.URL.Path, "/milestones"):
			fmt.Fprint(w, `[{"title": "v5.1.0", "description": "next minor"}]`)
		case strings.HasSuffix(r.URL.Path, "/labels"):
			fmt.Fprint(w, `[{"name": "bug", "description": "something broken"}]`)
		default:
			http.NotFound(w, r)
		}
	})
	g, _ := setupTestGateway(t, handler, 100)

	info, err := g.FetchRepoInfo(context.Background(), "twbs", "bootstrap")

	require.NoError(t, err)
	require.Len(t, info.Releases, 1)
	assert.Equal(t, "v5.0.0", info.Releases[0].TagName)
	assert.Equal(t, []string{"main", "v4-dev"}, info.Branches)
	require.Len(t, info.Milestones, 1)
	assert.Equal(t, "v5.1.0", info.Milestones[0].Title)
	require.Len(t, info.Labels, 1)
	assert.Equal(t, "bug", info.Labels[0].Name)
}

func TestIsBot(t *testing.T) {
	testCases := []struct {
		login string
		bot   bool
	}{
		{"renovate[bot]", true},
		{"dependa-bot", true},
		{"alice", false},
		{"botanist", false},
		{"robotnik", false},
	}
	for _, tc := range testCases {
		assert.Equal(t, tc.bot, isBot(tc.login), tc.login)
	}
}
