package ui

import "errors"

// Domain errors for UI actuation.
//
// These errors can be checked using errors.Is() for error handling:
//
//	if errors.Is(err, ui.ErrInterference) {
//	    // pointer ownership was violated; do not retry silently
//	}
var (
	// ErrTemplateMissing is returned when a template image file does not
	// exist on disk. This is a configuration fault, not a transient
	// matching failure, so it is never retried.
	ErrTemplateMissing = errors.New("ui: template file missing")

	// ErrNotFound is returned when a template could not be located on
	// screen within the retry budget.
	ErrNotFound = errors.New("ui: template not found")

	// ErrInterference is returned when the pointer moved externally too
	// many times during one click attempt. The assumption that automation
	// is the only actor moving the pointer no longer holds.
	ErrInterference = errors.New("ui: pointer interference")

	// ErrDeadline is returned when a whole click attempt exceeded its
	// wall-clock ceiling, independent of the retry budget.
	ErrDeadline = errors.New("ui: click attempt exceeded ceiling")

	// ErrNoConfirmation is returned when a click landed but the required
	// post-condition template never appeared. The external application's
	// state must be treated as unknown by the caller.
	ErrNoConfirmation = errors.New("ui: post-condition never appeared")

	// ErrWindowNotFound is returned when the target window cannot be
	// located or foregrounded.
	ErrWindowNotFound = errors.New("ui: window not found")
)
