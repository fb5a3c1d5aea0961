package llm

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/arbor"
)

func TestIsRateLimitError(t *testing.T) {
	assert.True(t, IsRateLimitError(errors.New("error, status code: 429")))
	assert.True(t, IsRateLimitError(errors.New("RESOURCE_EXHAUSTED: try later")))
	assert.True(t, IsRateLimitError(errors.New("Rate limit reached for requests")))
	assert.True(t, IsRateLimitError(errors.New("exceeded your current quota")))
	assert.False(t, IsRateLimitError(errors.New("invalid api key")))
	assert.False(t, IsRateLimitError(nil))
}

func TestExtractRetryDelay(t *testing.T) {
	assert.Equal(t, 12*time.Second, ExtractRetryDelay(errors.New("quota exceeded. Please retry in 12s")))
	assert.Equal(t, 1500*time.Millisecond, ExtractRetryDelay(errors.New("retryDelay: 1.5s")))
	assert.Zero(t, ExtractRetryDelay(errors.New("429 too many requests")))
	assert.Zero(t, ExtractRetryDelay(nil))
}

func TestCalculateBackoff(t *testing.T) {
	cfg := NewRetryConfig(3)

	assert.Equal(t, 2*time.Second, cfg.CalculateBackoff(0, 0))
	assert.Equal(t, 4*time.Second, cfg.CalculateBackoff(1, 0))
	assert.Equal(t, 8*time.Second, cfg.CalculateBackoff(2, 0))
	assert.Equal(t, 10*time.Second, cfg.CalculateBackoff(1, 5*time.Second))
	assert.Equal(t, DefaultMaxBackoff, cfg.CalculateBackoff(10, 0))
}

func TestNewRetryConfig_NegativeIsZero(t *testing.T) {
	assert.Equal(t, 0, NewRetryConfig(-1).MaxRetries)
}

func fastRetry(maxRetries int) *RetryConfig {
	cfg := NewRetryConfig(maxRetries)
	cfg.InitialBackoff = time.Millisecond
	cfg.MaxBackoff = 5 * time.Millisecond
	return cfg
}

func TestWithRetry_RetriesRateLimits(t *testing.T) {
	calls := 0
	result, err := withRetry(context.Background(), fastRetry(2), arbor.NewLogger(), "test", func() (string, error) {
		calls++
		if calls < 3 {
			return "", errors.New("status 429")
		}
		return "ok", nil
	})

	require.NoError(t, err)
	assert.Equal(t, "ok", result)
	assert.Equal(t, 3, calls)
}

func TestWithRetry_ZeroRetriesIsSingleShot(t *testing.T) {
	calls := 0
	_, err := withRetry(context.Background(), fastRetry(0), arbor.NewLogger(), "test", func() (string, error) {
		calls++
		return "", errors.New("status 429")
	})

	assert.Error(t, err)
	assert.Equal(t, 1, calls)
}

func TestWithRetry_OtherErrorsNotRetried(t *testing.T) {
	calls := 0
	_, err := withRetry(context.Background(), fastRetry(3), arbor.NewLogger(), "test", func() (int, error) {
		calls++
		return 0, errors.New("invalid api key")
	})

	assert.EqualError(t, err, "invalid api key")
	assert.Equal(t, 1, calls)
}

func TestWithRetry_ContextCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	cfg := NewRetryConfig(3)
	_, err := withRetry(ctx, cfg, arbor.NewLogger(), "test", func() (string, error) {
		return "", errors.New("status 429")
	})

	assert.ErrorIs(t, err, context.Canceled)
}
