// Package motion manages the motorized stage hardware for a sweep.
//
// A Session owns an ordered set of positioners for the lifetime of one
// sweep: construction initializes and homes every group, MoveTo drives
// all stages to a target vector sequentially, and Close releases the
// controller. The vendor protocol sits behind the Driver interface;
// XPSClient implements it for Newport XPS-style controllers over their
// plain-text TCP command socket.
//
// Move failures are recoverable by contract: the caller skips the
// offending target and continues. Setup failures are fatal.
package motion
