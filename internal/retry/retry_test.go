package retry

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDoSucceedsAfterTransientFailures(t *testing.T) {
	attempts := 0
	err := Do(context.Background(), Policy{MaxAttempts: 5, BaseDelay: time.Millisecond}, func(ctx context.Context) error {
		attempts++
		if attempts < 3 {
			return errors.New("transient")
		}
		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, 3, attempts)
}

func TestDoExhaustsBudget(t *testing.T) {
	attempts := 0
	err := Do(context.Background(), Policy{MaxAttempts: 3, BaseDelay: time.Millisecond}, func(ctx context.Context) error {
		attempts++
		return errors.New("still broken")
	})

	require.Error(t, err)
	assert.Equal(t, 3, attempts)
	assert.Contains(t, err.Error(), "all 3 attempts failed")
}

func TestDoNonRetryableStopsImmediately(t *testing.T) {
	fatal := errors.New("constraint violation")
	attempts := 0
	err := Do(context.Background(), Policy{
		MaxAttempts: 5,
		BaseDelay:   time.Millisecond,
		Retryable:   func(err error) bool { return !errors.Is(err, fatal) },
	}, func(ctx context.Context) error {
		attempts++
		return fatal
	})

	require.ErrorIs(t, err, fatal)
	assert.Equal(t, 1, attempts)
}

func TestDoHonorsContextCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := Do(ctx, Policy{MaxAttempts: 3, BaseDelay: time.Second}, func(ctx context.Context) error {
		return errors.New("never succeeds")
	})
	assert.ErrorIs(t, err, context.Canceled)
}
