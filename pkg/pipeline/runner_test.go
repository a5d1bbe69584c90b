package pipeline

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunner_SucceedsFirstAttempt(t *testing.T) {
	r := NewRunner(3, time.Minute)
	calls := 0
	r.execFn = func(context.Context, string, []string) error {
		calls++
		return nil
	}
	r.sleepFn = func(context.Context, time.Duration) {}

	result := r.Run(context.Background(), "collect", []string{"true"})
	assert.True(t, result.Success)
	assert.Equal(t, 1, result.Attempts)
	assert.Equal(t, 1, calls)
	assert.Empty(t, result.Error)
}

func TestRunner_FailsThenSucceeds(t *testing.T) {
	r := NewRunner(3, time.Minute)
	calls := 0
	r.execFn = func(context.Context, string, []string) error {
		calls++
		if calls <= 2 {
			return errors.New("transient failure")
		}
		return nil
	}

	var delays []time.Duration
	r.sleepFn = func(_ context.Context, d time.Duration) { delays = append(delays, d) }

	result := r.Run(context.Background(), "collect", []string{"flaky"})
	assert.True(t, result.Success)
	assert.Equal(t, 3, result.Attempts)
	assert.Equal(t, []time.Duration{2 * time.Second, 4 * time.Second}, delays, "2^attempt backoff")
}

func TestRunner_ExhaustsRetries(t *testing.T) {
	r := NewRunner(3, time.Minute)
	calls := 0
	r.execFn = func(context.Context, string, []string) error {
		calls++
		return errors.New("persistent failure")
	}
	r.sleepFn = func(context.Context, time.Duration) {}

	result := r.Run(context.Background(), "write", []string{"broken"})
	assert.False(t, result.Success)
	assert.Equal(t, 3, result.Attempts)
	assert.Equal(t, 3, calls, "exactly maxRetries attempts")
	assert.Equal(t, "persistent failure", result.Error)
}

func TestRunner_NoSleepAfterLastAttempt(t *testing.T) {
	r := NewRunner(2, time.Minute)
	r.execFn = func(context.Context, string, []string) error { return errors.New("fail") }

	sleeps := 0
	r.sleepFn = func(context.Context, time.Duration) { sleeps++ }

	r.Run(context.Background(), "publish", []string{"broken"})
	assert.Equal(t, 1, sleeps, "no backoff wait after the final attempt")
}

func TestRunner_Timeout(t *testing.T) {
	r := NewRunner(2, 10*time.Millisecond)
	r.execFn = func(ctx context.Context, _ string, _ []string) error {
		<-ctx.Done()
		return ctx.Err()
	}
	r.sleepFn = func(context.Context, time.Duration) {}

	result := r.Run(context.Background(), "publish", []string{"hang"})
	assert.False(t, result.Success)
	assert.Contains(t, result.Error, "timed out after")
}

func TestRunner_TimeoutDurationClampsToCeiling(t *testing.T) {
	r := NewRunner(2, time.Second)
	r.execFn = func(ctx context.Context, _ string, _ []string) error {
		<-ctx.Done()
		return ctx.Err()
	}
	r.sleepFn = func(context.Context, time.Duration) {}

	result := r.Run(context.Background(), "publish", []string{"hang"})
	assert.False(t, result.Success)
	assert.Equal(t, 2, result.Attempts)
	assert.Equal(t, 1, result.DurationSeconds, "last attempt's ceiling, not the sum across attempts")
}

func TestRunner_EmptyCommand(t *testing.T) {
	r := NewRunner(1, time.Minute)
	r.sleepFn = func(context.Context, time.Duration) {}

	result := r.Run(context.Background(), "collect", nil)
	require.False(t, result.Success)
	assert.Contains(t, result.Error, "no command")
}
