// Package influxdb writes sweep timing telemetry to InfluxDB v2.
//
// Two measurements are recorded: sweep_combination (per-combination
// outcome and elapsed time) and sweep_run (final tally). Writes are
// batched and non-blocking so telemetry never slows the sequencer; the
// integration is optional and disabled by default.
package influxdb
