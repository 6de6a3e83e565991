package motion

import "errors"

// Domain errors for the motion package.
var (
	// ErrNotConnected is returned when an operation requires a live
	// controller connection but none is open.
	ErrNotConnected = errors.New("motion: not connected to controller")

	// ErrConnectionFailed is returned when connecting to the motion
	// controller fails.
	ErrConnectionFailed = errors.New("motion: connection to controller failed")

	// ErrCommandFailed is returned when the controller rejects a command
	// with a nonzero status code.
	ErrCommandFailed = errors.New("motion: controller command failed")

	// ErrMoveFailed is returned when a move request fails; the session
	// treats this as recoverable so one bad target does not end a sweep.
	ErrMoveFailed = errors.New("motion: move failed")

	// ErrStageMismatch is returned when a position vector's length does
	// not match the session's stage count.
	ErrStageMismatch = errors.New("motion: position count does not match stage count")

	// ErrNotReady is returned when the session is used after Close or
	// before initialization completed.
	ErrNotReady = errors.New("motion: session not ready")
)
