package retry

import (
	"context"
	"fmt"
	"math/rand"
	"time"
)

const defaultDelay = 100 * time.Millisecond

// Backoff returns the wait before re-attempt number attempt (1-based).
type Backoff func(attempt int) time.Duration

type ShouldRetry func(error) bool

// Config is an explicit retry policy: how many re-attempts, how long to
// wait between them and which errors are worth retrying at all.
// MaxAttempts zero is a real policy, a single call with no re-attempts.
type Config struct {
	MaxAttempts int
	Backoff     Backoff
	ShouldRetry ShouldRetry
}

func (c *Config) normalize() {
	if c.MaxAttempts < 0 {
		c.MaxAttempts = 0
	}

	if c.Backoff == nil {
		c.Backoff = ExponentialBackoff(defaultDelay)
	}

	if c.ShouldRetry == nil {
		c.ShouldRetry = alwaysRetry
	}
}

func alwaysRetry(error) bool {
	return true
}

// ExponentialBackoff waits 2^attempt * delay plus a small jitter.
func ExponentialBackoff(delay time.Duration) Backoff {
	return func(attempt int) time.Duration {
		base := 1 << attempt * delay
		half := int(base / 2)
		if half <= 0 {
			return base
		}
		return base + time.Duration(rand.Intn(half)+1)
	}
}

func LinearBackoff(delay time.Duration) Backoff {
	return func(attempt int) time.Duration {
		return delay
	}
}

func Do(ctx context.Context, c Config, fn func() error) error {
	_, err := DoWithResult(ctx, c, func() (struct{}, error) {
		return struct{}{}, fn()
	})
	return err
}

// DoWithResult runs fn up to 1+MaxAttempts times. It returns the first
// success, the first non-retryable error, or the last error once the
// attempts are exhausted. Waits respect ctx cancellation.
func DoWithResult[T any](ctx context.Context, c Config, fn func() (T, error)) (T, error) {
	var (
		zero, result T
		err          error
	)

	err = ctx.Err()
	if err != nil {
		return zero, err
	}

	c.normalize()
	timer := time.NewTimer(0)
	defer timer.Stop()

	for attempt := 0; ; attempt++ {
		result, err = fn()
		if err == nil || !c.ShouldRetry(err) {
			return result, err
		}

		if attempt >= c.MaxAttempts {
			return zero, err
		}

		wait := c.Backoff(attempt + 1)
		timer.Reset(wait)
		select {
		case <-ctx.Done():
			return zero, fmt.Errorf("%w: %w", ctx.Err(), err)
		case <-timer.C:
		}
	}
}
