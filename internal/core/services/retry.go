package services

import (
	"context"
	"time"

	"github.com/SscSPs/secure_pay/internal/apperrors"
)

// RetryPolicy bounds transparent retries of store calls that failed as unavailable.
type RetryPolicy struct {
	MaxAttempts int
	BaseDelay   time.Duration
	MaxDelay    time.Duration
}

// DefaultRetryPolicy is used unless a service is given another one.
var DefaultRetryPolicy = RetryPolicy{MaxAttempts: 3, BaseDelay: 50 * time.Millisecond, MaxDelay: time.Second}

func (p RetryPolicy) delay(attempt int) time.Duration {
	d := p.BaseDelay << attempt
	if d <= 0 || d > p.MaxDelay {
		return p.MaxDelay
	}
	return d
}

// withStoreRetry runs op until it succeeds, fails with a non-retryable error, or the
// attempts run out. Only apperrors.ErrStoreUnavailable is retried; callers must pass
// operations that are safe to repeat.
func withStoreRetry[T any](ctx context.Context, p RetryPolicy, op func(context.Context) (T, error)) (T, error) {
	attempts := p.MaxAttempts
	if attempts < 1 {
		attempts = 1
	}
	var (
		result T
		err    error
	)
	for attempt := 0; attempt < attempts; attempt++ {
		result, err = op(ctx)
		if err == nil || !apperrors.IsRetryable(err) || attempt == attempts-1 {
			return result, err
		}
		timer := time.NewTimer(p.delay(attempt))
		select {
		case <-ctx.Done():
			timer.Stop()
			return result, err
		case <-timer.C:
		}
	}
	return result, err
}
