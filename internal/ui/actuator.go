package ui

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/lumenlab/sweep-core/internal/wait"
)

// Fixed micro-pauses within a click. These give the application's event
// loop time to process pointer movement and the click itself; they are not
// tunable per rig the way the retry timings are.
const (
	settleBeforeClick = 100 * time.Millisecond
	settleAfterClick  = 200 * time.Millisecond
	postConfirmPoll   = 200 * time.Millisecond
)

// Config holds the actuator's resilience parameters.
type Config struct {
	// RetryDelay is the pause between retries of one click.
	RetryDelay time.Duration

	// Ceiling bounds one whole Click call, independent of the retry
	// budget, so an almost-succeeding match loop cannot stall a sweep.
	Ceiling time.Duration

	// InterferencePixels is the pointer drift tolerated during a click
	// before the movement counts as external interference.
	InterferencePixels int

	// MaxInterference is the number of interference events within one
	// Click call that aborts the call.
	MaxInterference int
}

// ClickSpec describes one logical UI action: find this template, click it,
// and optionally verify the resulting state.
type ClickSpec struct {
	// Template is the path to the control's reference image.
	Template string

	// OffsetX and OffsetY shift the click point relative to the matched
	// region's centroid.
	OffsetX int
	OffsetY int

	// Retries is the attempt budget when the template is not found.
	Retries int

	// Confidence is the template match threshold.
	Confidence float64

	// PostConfirm, when set, is a template that must appear after the
	// click for the action to count as successful.
	PostConfirm string

	// PostConfirmTimeout bounds the wait for PostConfirm.
	PostConfirmTimeout time.Duration
}

// Logger is the minimal logging interface the actuator needs.
type Logger interface {
	Debug(msg string, args ...any)
	Warn(msg string, args ...any)
}

// Actuator performs robust clicks against an unreliable visual channel.
//
// One Click call walks the states Searching → Matched → Clicking →
// Verifying → Succeeded/Failed: template misses and transient errors are
// absorbed by the retry budget, but interference and the wall-clock
// ceiling abort immediately — those mean the world has stopped behaving
// as assumed, and retrying could produce a wrong click.
type Actuator struct {
	screen Screen
	clk    wait.Clock
	cfg    Config
	logger Logger
}

// New creates an Actuator.
//
// Parameters:
//   - screen: Pixel channel implementation
//   - clk: Clock for pauses and deadlines (wait.Real() in production)
//   - cfg: Resilience parameters
//   - logger: Logger instance
func New(screen Screen, clk wait.Clock, cfg Config, logger Logger) *Actuator {
	return &Actuator{
		screen: screen,
		clk:    clk,
		cfg:    cfg,
		logger: logger,
	}
}

// Click locates spec.Template on screen and clicks it, verifying the
// post-condition if one is given.
//
// Returns nil on success, or:
//   - ErrTemplateMissing if the template file does not exist (config fault)
//   - ErrDeadline if the whole attempt exceeded the ceiling
//   - ErrInterference if the pointer moved externally too many times
//   - ErrNoConfirmation if the click landed but PostConfirm never appeared
//   - ErrNotFound if the retry budget ran out without a match
//   - ctx.Err() if the context was cancelled mid-attempt
//
// A nil return guarantees a click happened with no excess pointer
// displacement and, when PostConfirm was set, that the confirmation
// template was observed.
func (a *Actuator) Click(ctx context.Context, spec ClickSpec) error {
	if _, err := os.Stat(spec.Template); err != nil {
		return fmt.Errorf("%w: %s", ErrTemplateMissing, spec.Template)
	}

	deadline := a.clk.Now().Add(a.cfg.Ceiling)
	interference := 0

	for attempt := 1; attempt <= spec.Retries; attempt++ {
		if !a.clk.Now().Before(deadline) {
			return fmt.Errorf("%w: %s after %v", ErrDeadline, spec.Template, a.cfg.Ceiling)
		}

		match, found, err := a.screen.Locate(spec.Template, spec.Confidence)
		if err != nil {
			// Transient capture/decode failure: consumes one retry.
			a.logger.Warn("template match error",
				"template", spec.Template,
				"attempt", attempt,
				"error", err,
			)
			if sleepErr := a.clk.Sleep(ctx, a.cfg.RetryDelay); sleepErr != nil {
				return sleepErr
			}
			continue
		}
		if !found {
			a.logger.Warn("template not found",
				"template", spec.Template,
				"attempt", attempt,
				"retries", spec.Retries,
			)
			if sleepErr := a.clk.Sleep(ctx, a.cfg.RetryDelay); sleepErr != nil {
				return sleepErr
			}
			continue
		}

		x, y := match.Center()
		x += spec.OffsetX
		y += spec.OffsetY

		a.logger.Debug("clicking template", "template", spec.Template, "x", x, "y", y)

		a.screen.MovePointer(x, y)
		if err := a.clk.Sleep(ctx, settleBeforeClick); err != nil {
			return err
		}
		beforeX, beforeY := a.screen.PointerPosition()
		a.screen.Click()
		if err := a.clk.Sleep(ctx, settleAfterClick); err != nil {
			return err
		}
		afterX, afterY := a.screen.PointerPosition()

		if abs(beforeX-afterX) > a.cfg.InterferencePixels || abs(beforeY-afterY) > a.cfg.InterferencePixels {
			interference++
			a.logger.Warn("pointer moved externally during click",
				"template", spec.Template,
				"count", interference,
				"max", a.cfg.MaxInterference,
			)
			if interference >= a.cfg.MaxInterference {
				return fmt.Errorf("%w: %d events clicking %s", ErrInterference, interference, spec.Template)
			}
			// Sub-threshold interference consumes one retry.
			if sleepErr := a.clk.Sleep(ctx, a.cfg.RetryDelay); sleepErr != nil {
				return sleepErr
			}
			continue
		}

		if spec.PostConfirm == "" {
			return nil
		}

		appeared, err := wait.For(ctx, a.clk, postConfirmPoll, spec.PostConfirmTimeout, func() bool {
			_, ok, locErr := a.screen.Locate(spec.PostConfirm, spec.Confidence)
			if locErr != nil {
				a.logger.Debug("post-confirm match error", "template", spec.PostConfirm, "error", locErr)
				return false
			}
			return ok
		})
		if err != nil {
			return err
		}
		if !appeared {
			return fmt.Errorf("%w: %s after clicking %s", ErrNoConfirmation, spec.PostConfirm, spec.Template)
		}
		return nil
	}

	return fmt.Errorf("%w: %s after %d attempts", ErrNotFound, spec.Template, spec.Retries)
}

// Visible reports whether a template is currently matchable on screen.
//
// A missing template file is a configuration fault; capture errors are
// logged and reported as not visible.
func (a *Actuator) Visible(template string, confidence float64) (bool, error) {
	if _, err := os.Stat(template); err != nil {
		return false, fmt.Errorf("%w: %s", ErrTemplateMissing, template)
	}
	_, found, err := a.screen.Locate(template, confidence)
	if err != nil {
		a.logger.Debug("visibility check error", "template", template, "error", err)
		return false, nil
	}
	return found, nil
}

// WaitVisible polls for a template until it appears or the timeout elapses.
//
// Returns:
//   - bool: true if the template appeared within the timeout
//   - error: ErrTemplateMissing for a missing file, or ctx.Err()
func (a *Actuator) WaitVisible(ctx context.Context, template string, confidence float64, poll, timeout time.Duration) (bool, error) {
	if _, err := os.Stat(template); err != nil {
		return false, fmt.Errorf("%w: %s", ErrTemplateMissing, template)
	}
	return wait.For(ctx, a.clk, poll, timeout, func() bool {
		_, found, err := a.screen.Locate(template, confidence)
		if err != nil {
			a.logger.Debug("poll match error", "template", template, "error", err)
			return false
		}
		return found
	})
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
