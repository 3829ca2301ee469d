package retry

import (
	"context"
	"errors"
	"slices"
	"testing"
	"time"
)

var (
	errRateLimited = errors.New("429 too many requests")
	errAuth        = errors.New("401 unauthorized")
)

func isRateLimited(err error) bool {
	return errors.Is(err, errRateLimited)
}

// recordingSleep records requested delays without waiting.
type recordingSleep struct {
	delays []time.Duration
}

func (r *recordingSleep) sleep(ctx context.Context, d time.Duration) error {
	r.delays = append(r.delays, d)
	return ctx.Err()
}

func newTestGovernor(rec *recordingSleep) *Governor {
	return &Governor{
		MaxRetries:  3,
		BaseDelay:   5 * time.Second,
		IsRetryable: isRateLimited,
		Sleep:       rec.sleep,
	}
}

func TestDo_SucceedsFirstTry(t *testing.T) {
	rec := &recordingSleep{}
	calls := 0

	err := newTestGovernor(rec).Do(context.Background(), func(context.Context) error {
		calls++
		return nil
	})

	if err != nil {
		t.Fatalf("expected success, got %v", err)
	}
	if calls != 1 {
		t.Errorf("expected 1 call, got %d", calls)
	}
	if len(rec.delays) != 0 {
		t.Errorf("expected no delays, got %v", rec.delays)
	}
}

func TestDo_RateLimitedTwiceThenSucceeds(t *testing.T) {
	rec := &recordingSleep{}
	calls := 0

	err := newTestGovernor(rec).Do(context.Background(), func(context.Context) error {
		calls++
		if calls <= 2 {
			return errRateLimited
		}
		return nil
	})

	if err != nil {
		t.Fatalf("expected eventual success, got %v", err)
	}
	if calls != 3 {
		t.Errorf("expected 3 calls, got %d", calls)
	}
	expected := []time.Duration{5 * time.Second, 10 * time.Second}
	if !slices.Equal(rec.delays, expected) {
		t.Errorf("delays = %v; want %v", rec.delays, expected)
	}
}

func TestDo_AlwaysRateLimited(t *testing.T) {
	rec := &recordingSleep{}
	calls := 0

	err := newTestGovernor(rec).Do(context.Background(), func(context.Context) error {
		calls++
		return errRateLimited
	})

	if err == nil {
		t.Fatal("expected terminal failure")
	}
	var exhausted *ExhaustedError
	if !errors.As(err, &exhausted) {
		t.Fatalf("expected ExhaustedError, got %T: %v", err, err)
	}
	if exhausted.Attempts != 4 {
		t.Errorf("expected 4 attempts, got %d", exhausted.Attempts)
	}
	if !errors.Is(err, errRateLimited) {
		t.Error("expected exhausted error to wrap the last cause")
	}
	if calls != 4 {
		t.Errorf("expected 4 calls (3 retries), got %d", calls)
	}
	expected := []time.Duration{5 * time.Second, 10 * time.Second, 15 * time.Second}
	if !slices.Equal(rec.delays, expected) {
		t.Errorf("delays = %v; want %v", rec.delays, expected)
	}
}

func TestDo_NonRetryableErrorIsTerminal(t *testing.T) {
	rec := &recordingSleep{}
	calls := 0

	err := newTestGovernor(rec).Do(context.Background(), func(context.Context) error {
		calls++
		return errAuth
	})

	if !errors.Is(err, errAuth) {
		t.Fatalf("expected auth error, got %v", err)
	}
	if calls != 1 {
		t.Errorf("expected 1 call, got %d", calls)
	}
	if len(rec.delays) != 0 {
		t.Errorf("expected no delays, got %v", rec.delays)
	}
}

func TestDo_IndependentCallsDoNotShareCounters(t *testing.T) {
	rec := &recordingSleep{}
	g := newTestGovernor(rec)

	first := 0
	_ = g.Do(context.Background(), func(context.Context) error {
		first++
		return errRateLimited
	})

	second := 0
	err := g.Do(context.Background(), func(context.Context) error {
		second++
		if second == 1 {
			return errRateLimited
		}
		return nil
	})

	if err != nil {
		t.Fatalf("expected second call to succeed, got %v", err)
	}
	if first != 4 || second != 2 {
		t.Errorf("expected 4 and 2 calls, got %d and %d", first, second)
	}
}

func TestDo_CancelledDuringSleep(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	calls := 0

	g := &Governor{
		MaxRetries:  3,
		BaseDelay:   time.Hour,
		IsRetryable: isRateLimited,
		Sleep:       ContextSleep,
	}

	err := g.Do(ctx, func(context.Context) error {
		calls++
		cancel()
		return errRateLimited
	})

	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if calls != 1 {
		t.Errorf("expected 1 call, got %d", calls)
	}
}

func TestContextSleep_Elapses(t *testing.T) {
	if err := ContextSleep(context.Background(), time.Millisecond); err != nil {
		t.Errorf("expected nil, got %v", err)
	}
}

func TestNew_Defaults(t *testing.T) {
	g := New(isRateLimited, nil)

	if g.MaxRetries != 3 {
		t.Errorf("expected 3 retries, got %d", g.MaxRetries)
	}
	if g.BaseDelay != 5*time.Second {
		t.Errorf("expected 5s base delay, got %s", g.BaseDelay)
	}
}
