// Package retry implements the backoff policy shared by every call to the
// vision service.
package retry

import (
	"context"
	"fmt"
	"time"

	"github.com/kozaktomas/photo-culler/internal/constants"
	"github.com/kozaktomas/photo-culler/internal/logger"
)

// SleepFunc waits for d or until ctx is done.
type SleepFunc func(ctx context.Context, d time.Duration) error

// Governor retries a single operation while it fails with a retryable error.
// The wait before retry n (1-based) is n*BaseDelay. State lives only inside
// one Do call, so concurrent calls never share counters.
type Governor struct {
	MaxRetries  int
	BaseDelay   time.Duration
	IsRetryable func(error) bool
	Sleep       SleepFunc
	Log         *logger.Logger
}

// ExhaustedError is returned when every allowed retry failed with a retryable error.
type ExhaustedError struct {
	Attempts int
	Err      error
}

func (e *ExhaustedError) Error() string {
	return fmt.Sprintf("giving up after %d attempts: %v", e.Attempts, e.Err)
}

func (e *ExhaustedError) Unwrap() error {
	return e.Err
}

// New returns a governor with the default rate-limit policy.
func New(isRetryable func(error) bool, log *logger.Logger) *Governor {
	return &Governor{
		MaxRetries:  constants.MaxRateLimitRetries,
		BaseDelay:   constants.RateLimitBaseDelay,
		IsRetryable: isRetryable,
		Sleep:       ContextSleep,
		Log:         log,
	}
}

// Do runs op until it succeeds, fails with a non-retryable error, or the
// retry budget is spent.
func (g *Governor) Do(ctx context.Context, op func(ctx context.Context) error) error {
	sleep := g.Sleep
	if sleep == nil {
		sleep = ContextSleep
	}

	for attempt := 1; ; attempt++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		err := op(ctx)
		if err == nil {
			return nil
		}
		if g.IsRetryable == nil || !g.IsRetryable(err) {
			return err
		}
		if attempt > g.MaxRetries {
			return &ExhaustedError{Attempts: attempt, Err: err}
		}

		delay := time.Duration(attempt) * g.BaseDelay
		if g.Log != nil {
			g.Log.Warn("rate limited, retrying",
				"attempt", attempt,
				"max_retries", g.MaxRetries,
				"sleep", delay.String(),
				"error", err.Error(),
			)
		}
		if err := sleep(ctx, delay); err != nil {
			return err
		}
	}
}

// ContextSleep blocks for d, returning early with ctx.Err() on cancellation.
func ContextSleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
