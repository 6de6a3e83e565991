// Package ui drives the acquisition application's graphical interface
// through screen-space automation.
//
// The application being driven exposes no scripting interface, so every
// interaction is a pointer or keyboard event aimed at a control located
// by template matching against a live screen capture. The package has
// three layers:
//
//   - Screen: the low-level surface (capture, locate, pointer, keyboard),
//     implemented for real hardware by RobotScreen
//   - Actuator: the guarded click state machine with retry budgets,
//     wall-clock ceilings, operator-interference detection and
//     post-click confirmation
//   - template matching: exact-scale confidence-thresholded search,
//     sufficient because templates are pixel captures of the same
//     display they are matched against
//
// All waits go through the wait package's Clock so tests can run the
// actuator against a fake clock without real sleeps.
package ui
