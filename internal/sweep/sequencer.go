package sweep

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/lumenlab/sweep-core/internal/combo"
	"github.com/lumenlab/sweep-core/internal/infrastructure/config"
	"github.com/lumenlab/sweep-core/internal/infrastructure/mqtt"
	"github.com/lumenlab/sweep-core/internal/journal"
	"github.com/lumenlab/sweep-core/internal/ui"
	"github.com/lumenlab/sweep-core/internal/wait"
)

// Scripted-sequence pauses within one combination. These are fixed parts
// of driving the dialog and toggle, not rig-tunable timings.
const (
	// tabPause separates the tab keystroke from the confirming enter.
	tabPause = 300 * time.Millisecond

	// dialogClosePause lets the save dialog dismiss after enter.
	dialogClosePause = time.Second

	// postStartPause separates the confirmed start click from the dwell.
	postStartPause = 500 * time.Millisecond
)

// toggleState is the sequencer's model of the acquisition application's
// hidden collection toggle, reconstructed from which confirmation
// template was last observed.
type toggleState int

const (
	toggleIdle toggleState = iota
	toggleCollecting
	toggleUnknown
)

func (s toggleState) String() string {
	switch s {
	case toggleIdle:
		return "idle"
	case toggleCollecting:
		return "collecting"
	default:
		return "unknown"
	}
}

// MotionGateway is the stage hardware surface the sequencer consumes.
// motion.Session implements it.
type MotionGateway interface {
	StageCount() int
	MoveTo(ctx context.Context, positions []float64) error
	Close() error
}

// Actuator is the guarded click surface. ui.Actuator implements it.
type Actuator interface {
	Click(ctx context.Context, spec ui.ClickSpec) error
	Visible(template string, confidence float64) (bool, error)
	WaitVisible(ctx context.Context, template string, confidence float64, poll, timeout time.Duration) (bool, error)
}

// Keyboard issues the scripted filename-entry keystrokes. ui.Screen
// implementations satisfy it.
type Keyboard interface {
	TypeText(text string)
	Press(key string)
	Hotkey(key string, modifiers ...string)
}

// Recorder persists run outcomes. journal.Journal implements it; nil
// disables recording.
type Recorder interface {
	StartRun(ctx context.Context, run journal.Run) (journal.Run, error)
	RecordCombination(ctx context.Context, runID string, rec journal.Record) error
	CompleteRun(ctx context.Context, runID, status string, produced, skipped int) error
}

// Publisher emits progress events. mqtt.Client implements it; nil
// disables publishing.
type Publisher interface {
	PublishSweepStarted(event mqtt.SweepEvent) error
	PublishSweepFinished(event mqtt.SweepEvent) error
	PublishCombination(event mqtt.CombinationEvent) error
}

// Telemetry records timing metrics. influxdb.Client implements it; nil
// disables telemetry.
type Telemetry interface {
	WriteCombinationMetric(runID string, ordinal int, artifact, outcome string, elapsed time.Duration)
	WriteSweepSummary(runID, status string, produced, skipped int, elapsed time.Duration)
}

// Logger is the minimal logging interface the sequencer needs.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

// Params collects the sequencer's collaborators and settings.
type Params struct {
	Combos   []combo.Combination
	Motion   MotionGateway
	Actuator Actuator
	Keyboard Keyboard
	Window   ui.Windower
	Clock    wait.Clock

	UI     config.UIConfig
	Timing config.SweepConfig

	// Dwell is the acquisition duration per combination.
	Dwell time.Duration

	// OutputDir is where the acquisition application is told to write
	// its artifacts.
	OutputDir string

	// Description and TableFile annotate the journal run.
	Description string
	TableFile   string

	Journal   Recorder  // optional
	Publisher Publisher // optional
	Telemetry Telemetry // optional

	Logger Logger
}

// Summary is the outcome of one sweep.
type Summary struct {
	RunID        string
	Combinations int
	Produced     int
	Skipped      int
	Elapsed      time.Duration
}

// templates holds the resolved on-disk paths of the control images.
type templates struct {
	fileTag    string
	saveDialog string
	start      string
	stop       string
}

// Sequencer drives one full sweep: motion, then the acquisition
// start → dwell → stop cycle per combination, with a skip-on-move-failure
// policy and unconditional teardown.
//
// Execution is strictly sequential: the stage controller and the screen
// are single-access resources, so nothing overlaps. Every wait is
// bounded.
type Sequencer struct {
	combos []combo.Combination
	motion MotionGateway
	act    Actuator
	keys   Keyboard
	window ui.Windower
	clk    wait.Clock

	ui     config.UIConfig
	timing config.SweepConfig
	tpl    templates
	dwell  time.Duration

	outputDir   string
	description string
	tableFile   string

	journal   Recorder
	publisher Publisher
	telemetry Telemetry
	logger    Logger

	toggle   toggleState
	produced int
	skipped  int
}

// New creates a Sequencer.
//
// Returns:
//   - *Sequencer: Ready sequencer
//   - error: ErrNoCombinations, or a missing required collaborator
func New(p Params) (*Sequencer, error) {
	if len(p.Combos) == 0 {
		return nil, ErrNoCombinations
	}
	if p.Motion == nil || p.Actuator == nil || p.Keyboard == nil || p.Window == nil {
		return nil, fmt.Errorf("sweep: motion, actuator, keyboard and window are required")
	}
	if p.Clock == nil {
		p.Clock = wait.Real()
	}

	return &Sequencer{
		combos: p.Combos,
		motion: p.Motion,
		act:    p.Actuator,
		keys:   p.Keyboard,
		window: p.Window,
		clk:    p.Clock,
		ui:     p.UI,
		timing: p.Timing,
		tpl: templates{
			fileTag:    filepath.Join(p.UI.TemplatesDir, p.UI.Templates.FileTag),
			saveDialog: filepath.Join(p.UI.TemplatesDir, p.UI.Templates.SaveDialog),
			start:      filepath.Join(p.UI.TemplatesDir, p.UI.Templates.Start),
			stop:       filepath.Join(p.UI.TemplatesDir, p.UI.Templates.Stop),
		},
		dwell:       p.Dwell,
		outputDir:   p.OutputDir,
		description: p.Description,
		tableFile:   p.TableFile,
		journal:     p.Journal,
		publisher:   p.Publisher,
		telemetry:   p.Telemetry,
		logger:      p.Logger,
		toggle:      toggleIdle,
	}, nil
}

// Run executes the whole sweep.
//
// The per-combination loop follows a fixed order: move (skip on
// failure), select the output file, confirm the save dialog, enter the
// artifact path, start collection with stop-confirmation, dwell, drain,
// stop collection with start-confirmation. Any failed confirmation is
// fatal for the remaining sweep. Teardown (move all stages to zero,
// close the hardware session) runs unconditionally, even after a fatal
// abort, and is not retried.
//
// Parameters:
//   - ctx: Context for cancellation between waits
//
// Returns:
//   - Summary: Tally of the run, valid even on error
//   - error: First fatal failure, or nil if the table was swept
func (s *Sequencer) Run(ctx context.Context) (Summary, error) {
	started := s.clk.Now()

	if err := s.checkStageCount(); err != nil {
		return Summary{Combinations: len(s.combos)}, err
	}

	runID := s.startRun(ctx)

	sweepErr := s.runSweep(ctx, runID)
	s.teardown(ctx)

	elapsed := s.clk.Now().Sub(started)
	status := journal.StatusCompleted
	if sweepErr != nil {
		status = journal.StatusAborted
	}
	s.finishRun(ctx, runID, status, elapsed)

	return Summary{
		RunID:        runID,
		Combinations: len(s.combos),
		Produced:     s.produced,
		Skipped:      s.skipped,
		Elapsed:      elapsed,
	}, sweepErr
}

// checkStageCount verifies every combination matches the hardware's
// stage count before anything moves.
func (s *Sequencer) checkStageCount() error {
	n := s.motion.StageCount()
	for _, c := range s.combos {
		if len(c.Positions) != n {
			return fmt.Errorf("%w: combination %d has %d positions, hardware has %d stages",
				ErrStageCount, c.Ordinal, len(c.Positions), n)
		}
	}
	return nil
}

// runSweep activates the window and executes the per-combination loop.
func (s *Sequencer) runSweep(ctx context.Context, runID string) error {
	if err := s.window.ActivateWindow(s.ui.WindowTitle); err != nil {
		return fmt.Errorf("%w: %q: %w", ErrWindowNotFound, s.ui.WindowTitle, err)
	}
	if err := s.clk.Sleep(ctx, s.ui.GetActivateSettle()); err != nil {
		return err
	}

	for _, c := range s.combos {
		if err := s.runCombination(ctx, runID, c); err != nil {
			s.logger.Error("aborting sweep",
				"combination", c.Ordinal,
				"toggle_state", s.toggle.String(),
				"error", err,
			)
			return err
		}
	}
	return nil
}

// runCombination executes one combination. A move failure records a skip
// and returns nil; every other failure is fatal for the sweep.
func (s *Sequencer) runCombination(ctx context.Context, runID string, c combo.Combination) error {
	artifact := c.ArtifactName()
	target := filepath.Join(s.outputDir, artifact)
	started := s.clk.Now()

	s.logger.Info("starting combination",
		"ordinal", c.Ordinal,
		"artifact", artifact,
		"positions", c.Positions,
	)

	if err := s.motion.MoveTo(ctx, c.Positions); err != nil {
		// A failed move never triggers any UI action for this
		// combination.
		s.logger.Warn("skipping combination: move failed",
			"artifact", artifact,
			"error", err,
		)
		s.skipped++
		s.record(ctx, runID, c, artifact, journal.OutcomeSkipped, err.Error(), s.clk.Now().Sub(started))
		return nil
	}
	if err := s.clk.Sleep(ctx, s.timing.GetMoveSettle()); err != nil {
		return err
	}

	if err := s.selectOutputFile(ctx, target); err != nil {
		s.record(ctx, runID, c, artifact, journal.OutcomeFatal, err.Error(), s.clk.Now().Sub(started))
		return err
	}

	if err := s.collect(ctx); err != nil {
		s.record(ctx, runID, c, artifact, journal.OutcomeFatal, err.Error(), s.clk.Now().Sub(started))
		return err
	}

	s.produced++
	elapsed := s.clk.Now().Sub(started)
	s.logger.Info("combination complete", "artifact", artifact, "elapsed", elapsed)
	s.record(ctx, runID, c, artifact, journal.OutcomeProduced, "", elapsed)
	return nil
}

// selectOutputFile engages the file-tag control, waits for the save
// dialog and enters the target path.
//
// The keystroke sequence is scripted, not retried: once the dialog has
// been confirmed open it is assumed to accept input reliably.
func (s *Sequencer) selectOutputFile(ctx context.Context, target string) error {
	err := s.act.Click(ctx, ui.ClickSpec{
		Template:   s.tpl.fileTag,
		OffsetX:    s.ui.FileTagOffsetX,
		Retries:    s.ui.Retries,
		Confidence: s.ui.Confidence,
	})
	if err != nil {
		return fmt.Errorf("engaging file-tag control: %w", err)
	}

	appeared, err := s.act.WaitVisible(ctx, s.tpl.saveDialog, s.ui.Confidence,
		s.ui.GetDialogPoll(), s.ui.GetDialogTimeout())
	if err != nil {
		return fmt.Errorf("waiting for save dialog: %w", err)
	}
	if !appeared {
		return fmt.Errorf("%w: after %v", ErrDialogTimeout, s.ui.GetDialogTimeout())
	}

	s.keys.Hotkey("a", "ctrl")
	s.keys.Press("delete")
	s.keys.TypeText(target)
	if err := s.clk.Sleep(ctx, s.ui.GetFilenameSettle()); err != nil {
		return err
	}
	s.keys.Press("tab")
	if err := s.clk.Sleep(ctx, tabPause); err != nil {
		return err
	}
	s.keys.Press("enter")
	return s.clk.Sleep(ctx, dialogClosePause)
}

// collect runs one acquisition cycle: start, dwell, drain, stop. Both
// toggle transitions require their opposite control as confirmation;
// failure leaves the toggle state unknown and is fatal.
func (s *Sequencer) collect(ctx context.Context) error {
	visible, err := s.act.Visible(s.tpl.start, s.ui.Confidence)
	if err != nil {
		return fmt.Errorf("checking start control: %w", err)
	}
	if !visible {
		return fmt.Errorf("%w: start control", ErrControlNotVisible)
	}

	err = s.act.Click(ctx, ui.ClickSpec{
		Template:           s.tpl.start,
		Retries:            s.ui.Retries,
		Confidence:         s.ui.Confidence,
		PostConfirm:        s.tpl.stop,
		PostConfirmTimeout: s.ui.GetPostConfirmTimeout(),
	})
	if err != nil {
		s.toggle = toggleUnknown
		return fmt.Errorf("start click did not toggle to collecting: %w", err)
	}
	s.toggle = toggleCollecting

	if err := s.clk.Sleep(ctx, postStartPause); err != nil {
		return err
	}

	// The dwell is the billed measurement time: it must not be
	// shortened or stretched by UI latency.
	if err := wait.Dwell(ctx, s.clk, s.dwell, s.timing.GetDwellPoll()); err != nil {
		return err
	}

	if err := s.clk.Sleep(ctx, s.timing.GetDrain()); err != nil {
		return err
	}

	visible, err = s.act.Visible(s.tpl.stop, s.ui.Confidence)
	if err != nil {
		return fmt.Errorf("checking stop control: %w", err)
	}
	if !visible {
		// Collection cannot be running without a stop control; the
		// start press must never have engaged.
		s.toggle = toggleUnknown
		return fmt.Errorf("%w: stop control after dwell", ErrControlNotVisible)
	}

	err = s.act.Click(ctx, ui.ClickSpec{
		Template:           s.tpl.stop,
		Retries:            s.ui.Retries,
		Confidence:         s.ui.StopConfidence,
		PostConfirm:        s.tpl.start,
		PostConfirmTimeout: s.ui.GetPostConfirmTimeout(),
	})
	if err != nil {
		s.toggle = toggleUnknown
		return fmt.Errorf("stop click did not toggle to idle: %w", err)
	}
	s.toggle = toggleIdle
	return nil
}

// teardown returns all stages to the zero vector and releases the
// hardware session. Best-effort and never retried: it runs after both
// clean completion and fatal aborts.
//
// The target is the literal zero vector, not per-stage logical home;
// the controller applies its own configured offsets.
func (s *Sequencer) teardown(ctx context.Context) {
	zero := make([]float64, s.motion.StageCount())

	s.logger.Info("returning stages to zero")
	if err := s.motion.MoveTo(ctx, zero); err != nil {
		s.logger.Error("zero move failed", "error", err)
	} else if err := s.clk.Sleep(ctx, s.timing.GetMoveSettle()); err == nil {
		s.logger.Info("stages at zero")
	}

	if err := s.motion.Close(); err != nil {
		s.logger.Error("closing hardware session failed", "error", err)
	}
}

// startRun opens the journal run and announces the sweep. Recording
// failures are logged, never fatal.
func (s *Sequencer) startRun(ctx context.Context) string {
	var runID string
	if s.journal != nil {
		run, err := s.journal.StartRun(ctx, journal.Run{
			Description: s.description,
			OutputDir:   s.outputDir,
			TableFile:   s.tableFile,
			StageCount:  s.motion.StageCount(),
		})
		if err != nil {
			s.logger.Warn("journal start failed", "error", err)
		} else {
			runID = run.ID
		}
	}

	if s.publisher != nil {
		err := s.publisher.PublishSweepStarted(mqtt.SweepEvent{
			RunID:        runID,
			Description:  s.description,
			Combinations: len(s.combos),
		})
		if err != nil {
			s.logger.Warn("publishing sweep start failed", "error", err)
		}
	}

	s.logger.Info("sweep started",
		"run_id", runID,
		"combinations", len(s.combos),
		"output_dir", s.outputDir,
		"dwell", s.dwell,
	)
	return runID
}

// finishRun finalizes the journal run and announces the outcome.
func (s *Sequencer) finishRun(ctx context.Context, runID, status string, elapsed time.Duration) {
	if s.journal != nil && runID != "" {
		if err := s.journal.CompleteRun(ctx, runID, status, s.produced, s.skipped); err != nil {
			s.logger.Warn("journal completion failed", "error", err)
		}
	}

	if s.publisher != nil {
		err := s.publisher.PublishSweepFinished(mqtt.SweepEvent{
			RunID:        runID,
			Description:  s.description,
			Combinations: len(s.combos),
			Produced:     s.produced,
			Skipped:      s.skipped,
			Status:       status,
		})
		if err != nil {
			s.logger.Warn("publishing sweep finish failed", "error", err)
		}
	}

	if s.telemetry != nil {
		s.telemetry.WriteSweepSummary(runID, status, s.produced, s.skipped, elapsed)
	}

	s.logger.Info("sweep finished",
		"run_id", runID,
		"status", status,
		"produced", s.produced,
		"skipped", s.skipped,
		"elapsed", elapsed,
	)
}

// record captures one combination outcome in the journal, the event
// stream and telemetry. Failures are logged, never fatal.
func (s *Sequencer) record(ctx context.Context, runID string, c combo.Combination, artifact, outcome, detail string, elapsed time.Duration) {
	if s.journal != nil && runID != "" {
		err := s.journal.RecordCombination(ctx, runID, journal.Record{
			Ordinal:   c.Ordinal,
			Artifact:  artifact,
			Positions: c.Positions,
			Outcome:   outcome,
			Detail:    detail,
			Elapsed:   elapsed,
		})
		if err != nil {
			s.logger.Warn("journal record failed", "ordinal", c.Ordinal, "error", err)
		}
	}

	if s.publisher != nil {
		err := s.publisher.PublishCombination(mqtt.CombinationEvent{
			RunID:     runID,
			Ordinal:   c.Ordinal,
			Artifact:  artifact,
			Outcome:   outcome,
			Detail:    detail,
			ElapsedMS: elapsed.Milliseconds(),
		})
		if err != nil {
			s.logger.Warn("publishing combination failed", "ordinal", c.Ordinal, "error", err)
		}
	}

	if s.telemetry != nil {
		s.telemetry.WriteCombinationMetric(runID, c.Ordinal, artifact, outcome, elapsed)
	}
}
