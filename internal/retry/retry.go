// Package retry provides the bounded retry-with-backoff executor shared by
// every feature client in the SDK.
package retry

import (
	"context"
	"math/rand"
	"time"

	"github.com/rs/zerolog"
)

const (
	// MaxBackoff caps the delay between attempts.
	MaxBackoff = 30 * time.Second
	// JitterFactor is the upper bound of the uniform jitter applied to each
	// delay, as a fraction of the base delay.
	JitterFactor = 0.1
)

// Policy bounds a single operation's retry behaviour. A Policy is built
// fresh from the client's configuration snapshot for every call and is
// immutable for that call's lifetime.
type Policy struct {
	// MaxAttempts is the total number of attempts, including the first.
	// Must be at least 1.
	MaxAttempts int
	// BaseDelay is the delay before the second attempt; subsequent delays
	// double, up to MaxBackoff.
	BaseDelay time.Duration
	// Retryable decides whether a failed attempt may be repeated. A false
	// result surfaces the attempt's error to the caller unchanged.
	Retryable func(error) bool
}

// Config carries the policy plus the executor's collaborators.
type Config struct {
	Policy Policy
	// Label names the operation in warn events and exhaustion errors.
	Label  string
	Logger zerolog.Logger
	// Sleep suspends between attempts. Defaults to a context-aware timer
	// wait; tests inject a recording variant.
	Sleep func(context.Context, time.Duration) error
	// Exhausted builds the terminal error returned when the final attempt
	// fails with a retryable error. The callback keeps this package free of
	// a dependency on the public error type.
	Exhausted func(label string, attempts int, last error) error
}

// Do executes op up to cfg.Policy.MaxAttempts times.
//
// A failure the policy marks non-retryable propagates immediately and
// unchanged. A retryable failure on the final attempt is replaced by the
// error built by cfg.Exhausted. Between attempts Do waits
// min(BaseDelay * 2^(attempt-1) * (1+jitter), MaxBackoff) with jitter drawn
// uniformly from [0, JitterFactor), and emits one warn event per retry.
func Do[T any](ctx context.Context, cfg Config, op func(context.Context) (T, error)) (T, error) {
	var zero T

	maxAttempts := cfg.Policy.MaxAttempts
	if maxAttempts < 1 {
		maxAttempts = 1
	}
	sleep := cfg.Sleep
	if sleep == nil {
		sleep = SleepContext
	}

	for attempt := 1; ; attempt++ {
		result, err := op(ctx)
		if err == nil {
			return result, nil
		}

		if cfg.Policy.Retryable == nil || !cfg.Policy.Retryable(err) {
			return zero, err
		}

		if attempt >= maxAttempts {
			if cfg.Exhausted != nil {
				return zero, cfg.Exhausted(cfg.Label, maxAttempts, err)
			}
			return zero, err
		}

		delay := backoff(cfg.Policy.BaseDelay, attempt)

		cfg.Logger.Warn().
			Str("operation", cfg.Label).
			Int("attempt", attempt).
			Int("max_attempts", maxAttempts).
			Dur("delay", delay).
			Err(err).
			Msg("retrying after failure")

		if err := sleep(ctx, delay); err != nil {
			return zero, err
		}
	}
}

// backoff returns the delay after the given failed attempt (1-based).
func backoff(base time.Duration, attempt int) time.Duration {
	if base <= 0 {
		return 0
	}
	if attempt > 32 {
		return MaxBackoff
	}
	delay := float64(base) * float64(uint64(1)<<uint(attempt-1))
	delay *= 1 + rand.Float64()*JitterFactor
	if delay > float64(MaxBackoff) {
		return MaxBackoff
	}
	return time.Duration(delay)
}

// SleepContext suspends for d or until ctx is cancelled, whichever comes
// first. It returns the context's error on cancellation.
func SleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
