package api

import (
	"context"
	"time"
)

// RetryPolicy is a bounded retry with a fixed delay, applied to every
// outbound call. The default predicate retries only 429 responses.
type RetryPolicy struct {
	// MaxAttempts is the total number of tries, including the first.
	MaxAttempts int
	// Delay is the fixed wait between tries.
	Delay time.Duration
	// ShouldRetry decides per status code. Nil means retry 429 only.
	ShouldRetry func(status int) bool
}

// DefaultRetryPolicy matches the storefront's historical behavior: up to 3
// attempts, 5s apart, on 429 only.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{MaxAttempts: 3, Delay: 5 * time.Second}
}

func (p RetryPolicy) attempts() int {
	if p.MaxAttempts < 1 {
		return 1
	}
	return p.MaxAttempts
}

func (p RetryPolicy) retryable(status int) bool {
	if p.ShouldRetry != nil {
		return p.ShouldRetry(status)
	}
	return status == 429
}

// wait sleeps for the policy delay or until ctx is done.
func (p RetryPolicy) wait(ctx context.Context) error {
	if p.Delay <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(p.Delay)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
