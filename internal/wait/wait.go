// Package wait provides bounded, context-aware polling primitives.
//
// Every blocking wait in the sweep — "is the dialog visible yet", "has the
// acquisition dwell elapsed" — goes through this package so that no wait is
// ever unbounded and all timing logic lives in one place.
package wait

import (
	"context"
	"time"
)

// For polls cond every interval until it returns true or ceiling elapses.
//
// cond is evaluated immediately, then once per interval. The ceiling is a
// hard bound on the whole poll regardless of how long cond itself takes.
//
// Parameters:
//   - ctx: Context for cancellation
//   - clk: Clock driving the poll (wait.Real() in production)
//   - interval: Pause between evaluations of cond
//   - ceiling: Maximum total time to keep polling
//   - cond: Condition to wait for
//
// Returns:
//   - bool: true if cond became true within the ceiling
//   - error: ctx.Err() if the context was cancelled mid-poll
func For(ctx context.Context, clk Clock, interval, ceiling time.Duration, cond func() bool) (bool, error) {
	deadline := clk.Now().Add(ceiling)

	for {
		if err := ctx.Err(); err != nil {
			return false, err
		}
		if cond() {
			return true, nil
		}
		if !clk.Now().Before(deadline) {
			return false, nil
		}
		if err := clk.Sleep(ctx, interval); err != nil {
			return false, err
		}
	}
}

// Dwell sleeps for the full duration in poll-sized increments.
//
// The increments keep the single control thread responsive to cancellation
// without shortening or lengthening the dwell itself: the loop runs until
// the clock reports the duration has elapsed, so UI latency in the caller
// does not eat into acquisition time.
//
// Returns ctx.Err() if cancelled before the dwell completed.
func Dwell(ctx context.Context, clk Clock, duration, poll time.Duration) error {
	end := clk.Now().Add(duration)

	for clk.Now().Before(end) {
		step := poll
		if remaining := end.Sub(clk.Now()); remaining < step {
			step = remaining
		}
		if err := clk.Sleep(ctx, step); err != nil {
			return err
		}
	}
	return nil
}
