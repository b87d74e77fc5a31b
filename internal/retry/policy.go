// Package retry holds the bounded exponential backoff policy shared by the
// GitHub gateway and the generative classifier.
package retry

import (
	"math/rand"
	"time"
)

// Policy describes how transient and rate-limited failures are retried:
// up to MaxRetries additional attempts, with a delay that starts at
// InitialDelay and doubles each retry, plus a uniform random jitter in
// [0, Jitter] to avoid thundering-herd resynchronization.
type Policy struct {
	MaxRetries   int
	InitialDelay time.Duration
	Jitter       time.Duration
}

// Default returns the policy used throughout the pipeline.
func Default() Policy {
	return Policy{
		MaxRetries:   3,
		InitialDelay: 1 * time.Second,
		Jitter:       500 * time.Millisecond,
	}
}

// Backoff returns the delay preceding the given retry, zero-based. The
// random source is injected for testability; pass nil for rand.Float64.
func (p Policy) Backoff(retryIndex int, random func() float64) time.Duration {
	if random == nil {
		random = rand.Float64
	}
	delay := p.InitialDelay
	for i := 0; i < retryIndex; i++ {
		delay *= 2
	}
	if p.Jitter > 0 {
		delay += time.Duration(random() * float64(p.Jitter))
	}
	return delay
}
