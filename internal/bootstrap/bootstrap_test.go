package bootstrap

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lex-build-workers/internal/common/config"
	"lex-build-workers/internal/common/logger"
)

func TestRetryWithBackoff_SucceedsAfterRetries(t *testing.T) {
	calls := 0
	err := RetryWithBackoff(context.Background(), func() error {
		calls++
		if calls < 3 {
			return errors.New("connection refused")
		}
		return nil
	}, 5, time.Millisecond, logger.NewTestLogger(t), "dial")

	require.NoError(t, err)
	assert.Equal(t, 3, calls)
}

func TestRetryWithBackoff_GivesUp(t *testing.T) {
	calls := 0
	err := RetryWithBackoff(context.Background(), func() error {
		calls++
		return errors.New("connection refused")
	}, 3, time.Millisecond, logger.NewTestLogger(t), "dial")

	require.Error(t, err)
	assert.Equal(t, 3, calls)
	assert.Contains(t, err.Error(), "dial failed after 3 attempts")
	assert.Contains(t, err.Error(), "connection refused")
}

func TestRetryWithBackoff_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	calls := 0
	err := RetryWithBackoff(ctx, func() error {
		calls++
		cancel()
		return errors.New("connection refused")
	}, 5, time.Hour, logger.NewTestLogger(t), "dial")

	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, calls)
}

func TestNew_MemoryBackend(t *testing.T) {
	t.Setenv("AWS_ACCESS_KEY_ID", "test")
	t.Setenv("AWS_SECRET_ACCESS_KEY", "test")
	cfg := &config.Config{
		Repository: config.RepositoryConfig{Backend: "memory"},
		Oracle:     config.OracleConfig{Provider: "bedrock", ModelID: "model", MaxTokens: 1024},
		Build:      config.BuildConfig{MaxRepairAttempts: 5, ExportTimeout: 1000},
	}
	cfg.AWS.Region = "us-east-1"

	app, err := New(context.Background(), cfg, logger.NewTestLogger(t))
	require.NoError(t, err)
	defer app.Close()

	require.NotNil(t, app.Workers)
	assert.Len(t, app.Workers.Jobs(), 6)
	assert.NotNil(t, app.Tracker)
	assert.NotNil(t, app.Registry)
}
