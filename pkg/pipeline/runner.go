package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"os/exec"
	"time"
)

// Result is the outcome of running one stage through the retry loop
type Result struct {
	Success         bool
	Attempts        int
	DurationSeconds int
	Error           string
}

// Runner executes one named stage command with bounded retries and
// exponential backoff. Each attempt gets its own timeout; a timeout counts
// as a failed attempt the same as a non-zero exit.
type Runner struct {
	maxRetries int
	timeout    time.Duration

	execFn  func(ctx context.Context, name string, command []string) error
	sleepFn func(ctx context.Context, d time.Duration)
}

// NewRunner creates a runner with the given retry budget and per-attempt
// timeout ceiling.
func NewRunner(maxRetries int, timeout time.Duration) *Runner {
	return &Runner{
		maxRetries: maxRetries,
		timeout:    timeout,
		execFn:     execCommand,
		sleepFn:    sleepCtx,
	}
}

// Run attempts the stage up to maxRetries times, waiting 2^attempt seconds
// between failed attempts. Stage output goes straight to the process streams
// for operator visibility, never parsed.
func (r *Runner) Run(ctx context.Context, name string, command []string) Result {
	var lastErr string
	var elapsed int

	for attempt := 1; attempt <= r.maxRetries; attempt++ {
		log.Printf("[INFO] stage %s attempt %d/%d", name, attempt, r.maxRetries)

		start := time.Now()
		attemptCtx, cancel := context.WithTimeout(ctx, r.timeout)
		err := r.execFn(attemptCtx, name, command)
		timedOut := errors.Is(attemptCtx.Err(), context.DeadlineExceeded)
		cancel()

		// each attempt reports its own wall clock, backoff waits excluded;
		// a timed-out attempt reports the timeout ceiling
		elapsed = int(time.Since(start).Seconds())
		if timedOut {
			elapsed = int(r.timeout.Seconds())
		}

		if err == nil && !timedOut {
			return Result{
				Success:         true,
				Attempts:        attempt,
				DurationSeconds: elapsed,
			}
		}

		if timedOut {
			lastErr = fmt.Sprintf("timed out after %s", r.timeout)
		} else {
			lastErr = err.Error()
		}
		log.Printf("[WARN] stage %s attempt %d/%d failed: %s", name, attempt, r.maxRetries, lastErr)

		if attempt < r.maxRetries {
			delay := time.Duration(1<<uint(attempt)) * time.Second
			log.Printf("[INFO] stage %s retrying in %s", name, delay)
			r.sleepFn(ctx, delay)
		}
	}

	if lastErr == "" {
		lastErr = "Max retries exceeded"
	}
	return Result{
		Success:         false,
		Attempts:        r.maxRetries,
		DurationSeconds: elapsed,
		Error:           lastErr,
	}
}

func execCommand(ctx context.Context, name string, command []string) error {
	if len(command) == 0 {
		return fmt.Errorf("stage %s has no command", name)
	}

	cmd := exec.CommandContext(ctx, command[0], command[1:]...) //nolint:gosec // commands come from operator config
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr

	if err := cmd.Run(); err != nil {
		return fmt.Errorf("stage %s: %w", name, err)
	}
	return nil
}

func sleepCtx(ctx context.Context, d time.Duration) {
	select {
	case <-time.After(d):
	case <-ctx.Done():
	}
}
