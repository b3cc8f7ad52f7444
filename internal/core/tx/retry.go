package tx

import (
	"context"
	"time"

	"ferreteria/internal/core/apperror"
	"ferreteria/pkg/logger"
)

// RetryPolicy governs re-execution of a whole unit of work when the store
// reports a serialization conflict or deadlock.
type RetryPolicy struct {
	// MaxAttempts is the total number of executions, including the first.
	MaxAttempts int

	// BaseDelay is the wait before the second attempt.
	BaseDelay time.Duration

	// Multiplier grows the delay exponentially per attempt.
	Multiplier float64

	// MaxDelay caps the backoff.
	MaxDelay time.Duration
}

// DefaultRetryPolicy returns the standard write-path policy.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		MaxAttempts: 3,
		BaseDelay:   100 * time.Millisecond,
		Multiplier:  2,
		MaxDelay:    2 * time.Second,
	}
}

// Backoff returns the wait before retrying after the given 1-based attempt.
func (p RetryPolicy) Backoff(attempt int) time.Duration {
	d := p.BaseDelay
	for i := 1; i < attempt; i++ {
		d = time.Duration(float64(d) * p.Multiplier)
		if d >= p.MaxDelay {
			return p.MaxDelay
		}
	}
	if d > p.MaxDelay {
		return p.MaxDelay
	}
	return d
}

// WithRetry executes fn inside a transaction via m, retrying the entire unit
// of work on serialization conflicts according to policy.
//
// The transaction is always rolled back by the Manager before the next
// attempt begins: RunInTransactionWithOptions only returns after commit or
// rollback has completed, so partial writes never survive into a retry.
// Non-conflict errors, and conflicts after the final attempt, propagate
// unchanged.
//
// fn must not perform non-idempotent side effects that escape the
// transactional boundary (external notifications, file writes); place those
// after WithRetry returns.
func WithRetry(ctx context.Context, m Manager, policy RetryPolicy, opts Options, fn func(ctx context.Context) error) error {
	if policy.MaxAttempts < 1 {
		policy.MaxAttempts = 1
	}

	var err error
	for attempt := 1; attempt <= policy.MaxAttempts; attempt++ {
		err = m.RunInTransactionWithOptions(ctx, opts, fn)
		if err == nil || !apperror.IsSerializationConflict(err) {
			return err
		}

		if attempt == policy.MaxAttempts {
			break
		}

		delay := policy.Backoff(attempt)
		logger.Warn(ctx, "transaction conflict, retrying",
			"attempt", attempt,
			"max_attempts", policy.MaxAttempts,
			"backoff", delay,
		)

		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return ctx.Err()
		}
	}

	return err
}
