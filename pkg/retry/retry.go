// Package retry implements capped exponential backoff for transient store
// failures. Condition failures and business errors are never retried here;
// those are handled by the engine's optimistic retry loop.
package retry

import (
	"context"
	"database/sql/driver"
	"errors"
	"math/rand"
	"net"
	"time"
)

// Config controls the retry behavior.
type Config struct {
	Attempts    int
	BackoffBase time.Duration
	BackoffCap  time.Duration

	// CallTimeout bounds each individual attempt. Zero disables the bound;
	// the caller's context still applies.
	CallTimeout time.Duration
}

// DefaultConfig matches the store contract: up to 3 attempts of 2s each,
// backing off 50-400ms between them.
var DefaultConfig = Config{
	Attempts:    3,
	BackoffBase: 50 * time.Millisecond,
	BackoffCap:  400 * time.Millisecond,
	CallTimeout: 2 * time.Second,
}

// Do runs fn, retrying transient failures with jittered exponential backoff.
// An attempt that exceeds CallTimeout counts as transient as long as the
// caller's own context is still alive. Do stops early when ctx is done.
func Do(ctx context.Context, cfg Config, fn func(context.Context) error) error {
	if cfg.Attempts < 1 {
		cfg.Attempts = 1
	}

	var err error
	backoff := cfg.BackoffBase

	for attempt := 1; ; attempt++ {
		err = call(ctx, cfg.CallTimeout, fn)
		if err == nil || attempt >= cfg.Attempts {
			return err
		}

		timedOut := errors.Is(err, context.DeadlineExceeded) && ctx.Err() == nil
		if !IsTransient(err) && !timedOut {
			return err
		}

		sleep := backoff/2 + time.Duration(rand.Int63n(int64(backoff/2)+1))
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(sleep):
		}

		backoff *= 2
		if backoff > cfg.BackoffCap {
			backoff = cfg.BackoffCap
		}
	}
}

func call(ctx context.Context, timeout time.Duration, fn func(context.Context) error) error {
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}
	return fn(ctx)
}

// IsTransient classifies connection-level failures worth retrying. Expired
// deadlines are not transient on their own: the caller's budget is spent.
func IsTransient(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return false
	}
	if errors.Is(err, driver.ErrBadConn) {
		return true
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		return netErr.Timeout()
	}

	return false
}
