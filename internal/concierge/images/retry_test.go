package images

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fastRetryConfig(attempts int) RetryConfig {
	cfg := DefaultRetryConfig()
	cfg.MaxAttempts = attempts
	cfg.InitialDelay = time.Millisecond
	cfg.MaxDelay = 2 * time.Millisecond
	return cfg
}

func TestWithRetrySucceedsFirstAttempt(t *testing.T) {
	calls := 0
	result, err := WithRetry(context.Background(), fastRetryConfig(3), "op", func() (*string, error) {
		calls++
		v := "ok"
		return &v, nil
	})

	require.NoError(t, err)
	assert.Equal(t, "ok", *result)
	assert.Equal(t, 1, calls)
}

func TestWithRetryRecoversFromRetryableError(t *testing.T) {
	calls := 0
	result, err := WithRetry(context.Background(), fastRetryConfig(3), "op", func() (*string, error) {
		calls++
		if calls < 3 {
			return nil, errors.New("connection refused")
		}
		v := "ok"
		return &v, nil
	})

	require.NoError(t, err)
	assert.Equal(t, "ok", *result)
	assert.Equal(t, 3, calls)
}

func TestWithRetryNonRetryableAbortsImmediately(t *testing.T) {
	calls := 0
	_, err := WithRetry(context.Background(), fastRetryConfig(5), "op", func() (*string, error) {
		calls++
		return nil, errors.New("status 401 unauthorized")
	})

	require.Error(t, err)
	assert.Equal(t, 1, calls)
}

func TestWithRetryExhaustsAttempts(t *testing.T) {
	calls := 0
	_, err := WithRetry(context.Background(), fastRetryConfig(3), "op", func() (*string, error) {
		calls++
		return nil, errors.New("503 service unavailable")
	})

	require.Error(t, err)
	assert.Equal(t, 3, calls)
	assert.Contains(t, err.Error(), "after 3 attempts")
}

func TestWithRetryHonorsContextCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	cfg := fastRetryConfig(5)
	cfg.InitialDelay = 50 * time.Millisecond

	calls := 0
	go func() {
		time.Sleep(5 * time.Millisecond)
		cancel()
	}()
	_, err := WithRetry(ctx, cfg, "op", func() (*string, error) {
		calls++
		return nil, errors.New("timeout")
	})

	require.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, calls)
}

func TestIsRetryable(t *testing.T) {
	patterns := DefaultRetryConfig().RetryableErrors

	assert.True(t, isRetryable(errors.New("dial tcp: TIMEOUT"), patterns))
	assert.True(t, isRetryable(errors.New("got 429 from upstream"), patterns))
	assert.False(t, isRetryable(errors.New("bad request"), patterns))
	assert.False(t, isRetryable(nil, patterns))
}
