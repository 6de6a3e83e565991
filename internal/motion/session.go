package motion

import (
	"context"
	"fmt"
	"strings"
	"sync"
)

// Driver is the vendor-protocol surface a Session drives. The production
// implementation is XPSClient; tests substitute a fake.
type Driver interface {
	// Initialize prepares a positioner group for motion.
	Initialize(ctx context.Context, group string) error

	// Home runs the homing search for a group. When force is true the
	// group is killed and re-initialized first so homing runs even if
	// the controller believes the group is already referenced.
	Home(ctx context.Context, group string, force bool) error

	// MoveAbsolute moves one positioner to an absolute position.
	MoveAbsolute(ctx context.Context, positioner string, position float64) error

	// Close releases the controller connection.
	Close() error
}

// Logger is the minimal logging interface the session needs.
type Logger interface {
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Debug(msg string, args ...any)
}

// Session owns a fixed, ordered set of positioners for the lifetime of
// one sweep. Construction initializes and homes every group; after that
// the session is assumed ready for arbitrary move requests until Close.
//
// Positioner names follow the controller convention "Group.Positioner";
// the group prefix is everything before the first dot.
type Session struct {
	mu     sync.Mutex
	driver Driver
	stages []string
	ready  bool
	logger Logger
}

// NewSession connects the ordered stage list to a driver and brings the
// hardware to readiness: every distinct group is initialized and homed.
//
// Parameters:
//   - ctx: Context bounding the whole setup sequence
//   - driver: Vendor protocol driver
//   - stages: Ordered positioner names, one per table column
//   - forceHome: Re-home groups even if already referenced
//   - logger: Logger instance
//
// Returns:
//   - *Session: Ready session owning the driver
//   - error: Setup failure; the driver is closed before returning
func NewSession(ctx context.Context, driver Driver, stages []string, forceHome bool, logger Logger) (*Session, error) {
	if len(stages) == 0 {
		return nil, fmt.Errorf("%w: no stages configured", ErrNotReady)
	}

	s := &Session{
		driver: driver,
		stages: append([]string(nil), stages...),
		logger: logger,
	}

	for _, group := range s.groups() {
		logger.Info("initializing group", "group", group)
		if err := driver.Initialize(ctx, group); err != nil {
			driver.Close() //nolint:errcheck // Setup already failed
			return nil, fmt.Errorf("initializing group %s: %w", group, err)
		}
		logger.Info("homing group", "group", group, "force", forceHome)
		if err := driver.Home(ctx, group, forceHome); err != nil {
			driver.Close() //nolint:errcheck // Setup already failed
			return nil, fmt.Errorf("homing group %s: %w", group, err)
		}
	}

	s.ready = true
	logger.Info("motion session ready", "stages", len(stages))
	return s, nil
}

// groups returns the distinct group prefixes of the stage list, in first
// appearance order.
func (s *Session) groups() []string {
	seen := make(map[string]bool, len(s.stages))
	var out []string
	for _, stage := range s.stages {
		group := stage
		if i := strings.IndexByte(stage, '.'); i > 0 {
			group = stage[:i]
		}
		if !seen[group] {
			seen[group] = true
			out = append(out, group)
		}
	}
	return out
}

// StageCount returns the number of positioners the session drives.
func (s *Session) StageCount() int {
	return len(s.stages)
}

// Stages returns the ordered positioner names.
func (s *Session) Stages() []string {
	return append([]string(nil), s.stages...)
}

// MoveTo moves every stage to its entry in positions, in stage order.
//
// Moves are sequential: stage k+1 is not commanded until stage k's move
// completed. A rejected or failed move returns ErrMoveFailed identifying
// the stage; earlier stages keep the positions they already reached.
//
// Parameters:
//   - ctx: Context for cancellation
//   - positions: One absolute target per stage, in stage order
//
// Returns:
//   - error: ErrStageMismatch, ErrNotReady, or ErrMoveFailed
func (s *Session) MoveTo(ctx context.Context, positions []float64) error {
	if len(positions) != len(s.stages) {
		return fmt.Errorf("%w: got %d positions for %d stages", ErrStageMismatch, len(positions), len(s.stages))
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.ready {
		return ErrNotReady
	}

	for i, stage := range s.stages {
		s.logger.Debug("moving stage", "stage", stage, "position", positions[i])
		if err := s.driver.MoveAbsolute(ctx, stage, positions[i]); err != nil {
			return fmt.Errorf("%w: stage %s to %v: %w", ErrMoveFailed, stage, positions[i], err)
		}
	}
	return nil
}

// Close releases the hardware session. Safe to call once per session;
// subsequent MoveTo calls return ErrNotReady.
func (s *Session) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.ready {
		return nil
	}
	s.ready = false
	return s.driver.Close()
}
