package engine

import (
	"time"

	"github.com/cenkalti/backoff/v5"
)

// retryPolicy spaces resolution attempts with a constant backoff and stops
// once either cap is reached.
type retryPolicy struct {
	backoff    backoff.BackOff
	maxRetries int
	maxElapsed time.Duration
}

func newRetryPolicy(cfg Config) *retryPolicy {
	return &retryPolicy{
		backoff:    backoff.NewConstantBackOff(cfg.RetryDelay),
		maxRetries: cfg.MaxRetries,
		maxElapsed: cfg.MaxRetryElapsed,
	}
}

// next returns the delay before the next attempt, or backoff.Stop.
func (p *retryPolicy) next(attempts int, elapsed time.Duration) time.Duration {
	if p.maxRetries > 0 && attempts >= p.maxRetries {
		return backoff.Stop
	}
	delay := p.backoff.NextBackOff()
	if delay == backoff.Stop {
		return backoff.Stop
	}
	if p.maxElapsed > 0 && elapsed+delay > p.maxElapsed {
		return backoff.Stop
	}
	return delay
}
