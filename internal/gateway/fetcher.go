package gateway

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/google/go-github/v62/github"
	"go.uber.org/zap"
)

// ErrPageFetch marks a page fetch that failed permanently or after
// exhausting retries. The enclosing collection must abort on it.
var ErrPageFetch = errors.New("page fetch failed")

type errorKind int

const (
	errPermanent errorKind = iota
	errTransient
	errRateLimited
)

// classifyError decides how a failed request is handled, based on the typed
// errors the client surfaces rather than string inspection.
func classifyError(err error) errorKind {
	var rateErr *github.RateLimitError
	if errors.As(err, &rateErr) {
		return errRateLimited
	}
	var abuseErr *github.AbuseRateLimitError
	if errors.As(err, &abuseErr) {
		return errRateLimited
	}
	var respErr *github.ErrorResponse
	if errors.As(err, &respErr) && respErr.Response != nil {
		switch {
		case respErr.Response.StatusCode == http.StatusTooManyRequests:
			return errRateLimited
		case respErr.Response.StatusCode >= 500:
			return errTransient
		default:
			return errPermanent
		}
	}
	// Connection-level failures have no response to inspect.
	return errTransient
}

// withRetry runs one API call under the retry discipline: waits out a spent
// rate-limit budget first, then retries transient and rate-limited failures
// with exponential backoff and jitter. Permanent failures are surfaced
// immediately. Either way the returned error wraps ErrPageFetch.
func (g *Gateway) withRetry(ctx context.Context, op string, call func() (*github.Response, error)) error {
	for attempt := 0; ; attempt++ {
		g.waitForQuota()

		resp, err := call()
		if resp != nil {
			g.lastRate = resp.Rate
		}
		if err == nil {
			return nil
		}
		if ctx.Err() != nil {
			return fmt.Errorf("%s: %w: %v", op, ErrPageFetch, ctx.Err())
		}

		kind := classifyError(err)
		if kind == errPermanent {
			return fmt.Errorf("%s: %w: %v", op, ErrPageFetch, err)
		}
		if attempt == g.policy.MaxRetries {
			return fmt.Errorf("%s: giving up after %d attempts: %w: %v", op, attempt+1, ErrPageFetch, err)
		}

		delay := g.policy.Backoff(attempt, g.random)
		g.logger.Warn("request failed, backing off",
			zap.String("op", op),
			zap.Int("attempt", attempt+1),
			zap.Duration("delay", delay),
			zap.Bool("rate_limited", kind == errRateLimited),
			zap.Error(err))
		g.sleep(delay)
	}
}

// waitForQuota blocks until the primary rate-limit budget resets when the
// previous response reported zero remaining requests.
func (g *Gateway) waitForQuota() {
	if g.lastRate.Remaining > 0 || g.lastRate.Reset.Time.IsZero() {
		return
	}
	wait := g.lastRate.Reset.Time.Sub(g.now())
	if wait <= 0 {
		return
	}
	wait += 1 * time.Second
	g.logger.Warn("rate limit exhausted, waiting for reset",
		zap.Duration("wait", wait),
		zap.Time("reset", g.lastRate.Reset.Time))
	g.sleep(wait)
}
