// Package sweep runs a table-driven measurement sequence: for every
// combination in a loaded table it repositions the motorized stages,
// then drives the acquisition application's on-screen controls through
// one start → dwell → stop collection cycle, producing one artifact per
// combination.
//
// The sequencer owns the failure policy. Motion failures skip the
// affected combination and continue; any failed click confirmation is
// fatal because the acquisition application's collection toggle state
// can no longer be trusted. Regardless of outcome, teardown returns all
// stages to zero and releases the hardware session.
//
// Persistence (journal), progress events (MQTT) and timing telemetry
// (InfluxDB) are optional collaborators: a nil value disables that
// concern without changing sweep behavior.
package sweep
