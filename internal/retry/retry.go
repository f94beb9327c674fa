package retry

import (
	"context"
	"fmt"
	"math/rand"
	"time"
)

// Policy describes a bounded retry loop: max attempts, a backoff schedule
// growing by Multiplier from BaseDelay, and a predicate classifying which
// errors are worth retrying. A nil Retryable retries everything.
type Policy struct {
	MaxAttempts int
	BaseDelay   time.Duration
	Multiplier  float64
	Retryable   func(error) bool
}

// Do runs op until it succeeds, the error is not retryable, the attempt
// budget is exhausted, or ctx is cancelled. A small jitter (up to 250ms) is
// added to each delay.
func Do(ctx context.Context, p Policy, op func(ctx context.Context) error) error {
	if p.MaxAttempts < 1 {
		p.MaxAttempts = 1
	}
	if p.Multiplier <= 0 {
		p.Multiplier = 2.0
	}

	delay := p.BaseDelay
	var lastErr error

	for attempt := 1; attempt <= p.MaxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		lastErr = op(ctx)
		if lastErr == nil {
			return nil
		}

		if p.Retryable != nil && !p.Retryable(lastErr) {
			return lastErr
		}
		if attempt == p.MaxAttempts {
			break
		}

		jitter := time.Duration(rand.Intn(250)) * time.Millisecond
		select {
		case <-time.After(delay + jitter):
		case <-ctx.Done():
			return ctx.Err()
		}
		delay = time.Duration(float64(delay) * p.Multiplier)
	}

	return fmt.Errorf("all %d attempts failed: %w", p.MaxAttempts, lastErr)
}
