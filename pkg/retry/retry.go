// Package retry provides the two retry shapes the tracker uses: exponential
// backoff bounded by the caller's poll interval for batch runs, and
// fixed-interval attempts for one-shot fetches. Both abort when the context
// is canceled so shutdown never waits out a backoff sleep.
package retry

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"
)

const (
	DefaultMaxAttempts = 3
	DefaultInterval    = 5 * time.Second
)

type Operation func() error

// ExponentialConfig bounds one exponential retry run. MaxElapsedTime is
// typically the caller's poll interval so a failing batch never overlaps
// the next tick.
type ExponentialConfig struct {
	InitialInterval time.Duration
	MaxElapsedTime  time.Duration
	OnRetry         func(error, time.Duration)
}

// Exponential retries fn with exponential backoff until it succeeds, the
// elapsed budget is spent, or ctx is canceled. Cancellation interrupts the
// backoff sleep, not just the next attempt.
func Exponential(ctx context.Context, fn Operation, cfg ExponentialConfig) error {
	if cfg.InitialInterval <= 0 {
		return errors.New("initial interval must be > 0")
	}

	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = cfg.InitialInterval
	if cfg.MaxElapsedTime > 0 {
		bo.MaxElapsedTime = cfg.MaxElapsedTime
	}

	return backoff.RetryNotify(backoff.Operation(fn), backoff.WithContext(bo, ctx), func(err error, next time.Duration) {
		if cfg.OnRetry != nil {
			cfg.OnRetry(err, next)
		}
	})
}

// Constant retries fn at a fixed interval for at most attempts calls.
func Constant(ctx context.Context, fn Operation, interval time.Duration, attempts int) error {
	if attempts <= 0 {
		attempts = 1
	}

	var err error
	for i := 1; i <= attempts; i++ {
		if err = fn(); err == nil {
			return nil
		}
		if i < attempts {
			select {
			case <-time.After(interval):
			case <-ctx.Done():
				return fmt.Errorf("aborted after %d attempt(s): %w: %w", i, ctx.Err(), err)
			}
		}
	}
	return fmt.Errorf("failed after %d attempts: %w", attempts, err)
}
