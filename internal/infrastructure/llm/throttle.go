package llm

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"newsdigest/internal/domain"
	"newsdigest/internal/ports"
)

// Throttle decorates a TextService with a global minimum inter-call
// interval and exponential-backoff retries for rate-limited calls. One
// instance is shared by every enrichment worker in the process; the mutex
// guards only the read-decide-write of the shared slot timestamp, so slow
// provider calls never let a second caller start early.
type Throttle struct {
	inner ports.TextService

	minInterval time.Duration
	baseBackoff time.Duration
	maxRetries  int
	logger      *slog.Logger

	mu   sync.Mutex
	last time.Time
}

var _ ports.TextService = (*Throttle)(nil)

// NewThrottle wraps inner with the given throttle policy.
func NewThrottle(inner ports.TextService, minInterval, baseBackoff time.Duration, maxRetries int, logger *slog.Logger) *Throttle {
	if maxRetries <= 0 {
		maxRetries = 5
	}
	return &Throttle{
		inner:       inner,
		minInterval: minInterval,
		baseBackoff: baseBackoff,
		maxRetries:  maxRetries,
		logger:      logger,
	}
}

// Generate reserves a call slot, issues the underlying call, and retries
// rate-limited failures with exponential backoff up to the retry budget.
// Non-retriable errors propagate immediately.
func (t *Throttle) Generate(ctx context.Context, prompt string, opts ports.GenerateOptions) (string, error) {
	var lastErr error

	for attempt := 0; attempt < t.maxRetries; attempt++ {
		if err := t.reserveSlot(ctx); err != nil {
			return "", err
		}

		out, err := t.inner.Generate(ctx, prompt, opts)
		if err == nil {
			return out, nil
		}
		if !errors.Is(err, domain.ErrRateLimited) {
			return "", err
		}

		lastErr = err
		backoff := t.baseBackoff * (1 << attempt)
		t.log("rate limit hit, backing off", "attempt", attempt, "wait", backoff)
		if err := sleepContext(ctx, backoff); err != nil {
			return "", err
		}
	}

	return "", fmt.Errorf("%w after %d attempts: %v", domain.ErrRetryExhausted, t.maxRetries, lastErr)
}

// reserveSlot atomically claims the next allowed call time and suspends the
// caller until it arrives. The slot advances by minInterval per reservation
// so concurrent callers space out exactly, regardless of call duration.
func (t *Throttle) reserveSlot(ctx context.Context) error {
	t.mu.Lock()
	now := time.Now()
	slot := t.last.Add(t.minInterval)
	if slot.Before(now) {
		slot = now
	}
	t.last = slot
	t.mu.Unlock()

	if wait := time.Until(slot); wait > 0 {
		t.log("throttle wait", "wait", wait)
		return sleepContext(ctx, wait)
	}
	return nil
}

func (t *Throttle) log(msg string, args ...any) {
	if t.logger != nil {
		t.logger.Debug(msg, args...)
	}
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
