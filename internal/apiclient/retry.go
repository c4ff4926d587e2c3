package apiclient

import (
	"context"
	"time"

	"github.com/Hassanein20/Senior-Project-dev/internal/apperror"
)

// RetryPolicy is a bounded retry with a fixed backoff between attempts. Only
// transport failures are retried; auth, CSRF and validation outcomes surface
// immediately.
type RetryPolicy struct {
	MaxAttempts int
	Backoff     time.Duration
}

// maxRetryAttempts caps any policy so no call is retried unboundedly.
const maxRetryAttempts = 3

// Do runs fn until it succeeds, fails with a non-retryable error or the
// attempt budget is spent. The last error is returned.
func (p RetryPolicy) Do(ctx context.Context, fn func() error) error {
	attempts := p.MaxAttempts
	if attempts < 1 {
		attempts = 1
	}
	if attempts > maxRetryAttempts {
		attempts = maxRetryAttempts
	}

	var err error
	for i := 1; i <= attempts; i++ {
		if err = fn(); err == nil {
			return nil
		}
		if !apperror.IsRetryable(err) || i == attempts {
			return err
		}
		select {
		case <-ctx.Done():
			return err
		case <-time.After(p.Backoff):
		}
	}
	return err
}
