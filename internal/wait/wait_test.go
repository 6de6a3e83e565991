package wait

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestFor_ConditionAlreadyTrue(t *testing.T) {
	clk := NewFakeClock(time.Unix(0, 0))

	ok, err := For(context.Background(), clk, time.Second, 5*time.Second, func() bool { return true })
	if err != nil {
		t.Fatalf("For() error = %v", err)
	}
	if !ok {
		t.Error("For() = false, want true for immediately-true condition")
	}
	if len(clk.Sleeps()) != 0 {
		t.Errorf("For() slept %d times, want 0", len(clk.Sleeps()))
	}
}

func TestFor_ConditionBecomesTrue(t *testing.T) {
	clk := NewFakeClock(time.Unix(0, 0))

	calls := 0
	ok, err := For(context.Background(), clk, 500*time.Millisecond, 15*time.Second, func() bool {
		calls++
		return calls >= 3
	})
	if err != nil {
		t.Fatalf("For() error = %v", err)
	}
	if !ok {
		t.Error("For() = false, want true")
	}
	if got := len(clk.Sleeps()); got != 2 {
		t.Errorf("For() slept %d times, want 2", got)
	}
}

func TestFor_CeilingExpires(t *testing.T) {
	clk := NewFakeClock(time.Unix(0, 0))

	calls := 0
	ok, err := For(context.Background(), clk, time.Second, 3*time.Second, func() bool {
		calls++
		return false
	})
	if err != nil {
		t.Fatalf("For() error = %v", err)
	}
	if ok {
		t.Error("For() = true, want false after ceiling")
	}
	// Evaluated at t=0,1,2,3 then the deadline check stops the loop.
	if calls != 4 {
		t.Errorf("cond evaluated %d times, want 4", calls)
	}
}

func TestFor_ContextCancelled(t *testing.T) {
	clk := NewFakeClock(time.Unix(0, 0))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := For(ctx, clk, time.Second, 10*time.Second, func() bool { return false })
	if !errors.Is(err, context.Canceled) {
		t.Errorf("For() error = %v, want context.Canceled", err)
	}
}

func TestDwell_FullDuration(t *testing.T) {
	clk := NewFakeClock(time.Unix(0, 0))
	start := clk.Now()

	if err := Dwell(context.Background(), clk, 10*time.Second, 300*time.Millisecond); err != nil {
		t.Fatalf("Dwell() error = %v", err)
	}

	if elapsed := clk.Now().Sub(start); elapsed != 10*time.Second {
		t.Errorf("Dwell() advanced %v, want exactly 10s", elapsed)
	}
}

func TestDwell_LastStepTruncated(t *testing.T) {
	clk := NewFakeClock(time.Unix(0, 0))

	if err := Dwell(context.Background(), clk, time.Second, 300*time.Millisecond); err != nil {
		t.Fatalf("Dwell() error = %v", err)
	}

	sleeps := clk.Sleeps()
	if len(sleeps) != 4 {
		t.Fatalf("Dwell() slept %d times, want 4", len(sleeps))
	}
	if sleeps[3] != 100*time.Millisecond {
		t.Errorf("final sleep = %v, want truncated 100ms", sleeps[3])
	}
}

func TestDwell_Cancelled(t *testing.T) {
	clk := NewFakeClock(time.Unix(0, 0))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := Dwell(ctx, clk, time.Second, 100*time.Millisecond)
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Dwell() error = %v, want context.Canceled", err)
	}
}

func TestRealClock_SleepCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := Real().Sleep(ctx, time.Minute)
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Sleep() error = %v, want context.Canceled", err)
	}
}
