package retry

import (
	"context"
	"database/sql/driver"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

var testConfig = Config{
	Attempts:    3,
	BackoffBase: time.Millisecond,
	BackoffCap:  4 * time.Millisecond,
}

func TestDoSucceedsFirstTry(t *testing.T) {
	calls := 0
	err := Do(context.Background(), testConfig, func(ctx context.Context) error {
		calls++
		return nil
	})
	require.NoError(t, err)
	require.Equal(t, 1, calls)
}

func TestDoRetriesTransientFailures(t *testing.T) {
	calls := 0
	err := Do(context.Background(), testConfig, func(ctx context.Context) error {
		calls++
		if calls < 3 {
			return driver.ErrBadConn
		}
		return nil
	})
	require.NoError(t, err)
	require.Equal(t, 3, calls)
}

func TestDoGivesUpAfterBudget(t *testing.T) {
	calls := 0
	err := Do(context.Background(), testConfig, func(ctx context.Context) error {
		calls++
		return driver.ErrBadConn
	})
	require.ErrorIs(t, err, driver.ErrBadConn)
	require.Equal(t, 3, calls)
}

func TestDoDoesNotRetryBusinessErrors(t *testing.T) {
	sentinel := errors.New("condition failed")
	calls := 0
	err := Do(context.Background(), testConfig, func(ctx context.Context) error {
		calls++
		return sentinel
	})
	require.ErrorIs(t, err, sentinel)
	require.Equal(t, 1, calls)
}

func TestDoRetriesPerCallTimeout(t *testing.T) {
	cfg := testConfig
	cfg.CallTimeout = 5 * time.Millisecond

	calls := 0
	err := Do(context.Background(), cfg, func(ctx context.Context) error {
		calls++
		if calls == 1 {
			// Simulate an attempt that outlives its per-call deadline.
			<-ctx.Done()
			return ctx.Err()
		}
		return nil
	})
	require.NoError(t, err)
	require.Equal(t, 2, calls)
}

func TestDoStopsOnContextCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	calls := 0
	err := Do(ctx, testConfig, func(ctx context.Context) error {
		calls++
		cancel()
		return driver.ErrBadConn
	})
	require.ErrorIs(t, err, context.Canceled)
	require.Equal(t, 1, calls)
}

type timeoutErr struct{}

func (timeoutErr) Error() string { return "i/o timeout" }
func (timeoutErr) Timeout() bool { return true }

// net.Error still requires Temporary despite its deprecation.
func (timeoutErr) Temporary() bool { return true }

func TestIsTransient(t *testing.T) {
	require.False(t, IsTransient(nil))
	require.False(t, IsTransient(errors.New("boom")))
	require.False(t, IsTransient(context.DeadlineExceeded))
	require.False(t, IsTransient(context.Canceled))

	require.True(t, IsTransient(driver.ErrBadConn))
	require.True(t, IsTransient(fmt.Errorf("exec: %w", driver.ErrBadConn)))
	require.True(t, IsTransient(timeoutErr{}))
}
