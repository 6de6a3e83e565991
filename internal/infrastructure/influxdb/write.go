package influxdb

import (
	"time"

	"github.com/influxdata/influxdb-client-go/v2/api/write"
)

// WriteCombinationMetric records one combination outcome with its timing.
//
// The write is non-blocking; data is batched and sent asynchronously.
//
// Parameters:
//   - runID: Journal run identifier
//   - ordinal: 1-based combination position in the table
//   - artifact: Output file name for the combination
//   - outcome: "produced", "skipped" or "fatal"
//   - elapsed: Wall-clock time spent on the combination
func (c *Client) WriteCombinationMetric(runID string, ordinal int, artifact, outcome string, elapsed time.Duration) {
	if !c.IsConnected() {
		return
	}

	point := write.NewPoint(
		"sweep_combination",
		map[string]string{
			"run_id":  runID,
			"outcome": outcome,
		},
		map[string]interface{}{
			"ordinal":    ordinal,
			"artifact":   artifact,
			"elapsed_ms": elapsed.Milliseconds(),
		},
		time.Now(),
	)

	c.writeAPI.WritePoint(point)
}

// WriteSweepSummary records the final tally of a run.
//
// Parameters:
//   - runID: Journal run identifier
//   - status: Terminal run status ("completed" or "aborted")
//   - produced: Number of artifacts produced
//   - skipped: Number of combinations skipped
//   - elapsed: Total sweep duration
func (c *Client) WriteSweepSummary(runID, status string, produced, skipped int, elapsed time.Duration) {
	if !c.IsConnected() {
		return
	}

	point := write.NewPoint(
		"sweep_run",
		map[string]string{
			"run_id": runID,
			"status": status,
		},
		map[string]interface{}{
			"produced":   produced,
			"skipped":    skipped,
			"elapsed_ms": elapsed.Milliseconds(),
		},
		time.Now(),
	)

	c.writeAPI.WritePoint(point)
}
