package mqtt

// Topic prefixes for sweep progress events.
//
// Scheme: sweepcore/{category}/{event}
const (
	// TopicPrefix is the base for all sweep topics.
	TopicPrefix = "sweepcore"

	// TopicPrefixSweep is the base for sweep progress topics.
	TopicPrefixSweep = "sweepcore/sweep"

	// TopicPrefixSystem is the base for system topics.
	TopicPrefixSystem = "sweepcore/system"
)

// Topics provides builders for sweep MQTT topics. Using these helpers
// keeps topic naming consistent across publisher and dashboards.
type Topics struct{}

// SweepStarted returns the topic announcing a new sweep run.
//
// Example: sweepcore/sweep/started
func (Topics) SweepStarted() string {
	return TopicPrefixSweep + "/started"
}

// SweepFinished returns the topic announcing sweep completion or abort.
//
// Example: sweepcore/sweep/finished
func (Topics) SweepFinished() string {
	return TopicPrefixSweep + "/finished"
}

// SweepCombination returns the topic for per-combination outcomes.
//
// Example: sweepcore/sweep/combination
func (Topics) SweepCombination() string {
	return TopicPrefixSweep + "/combination"
}

// SystemStatus returns the topic for online/offline status (also the
// LWT topic).
//
// Example: sweepcore/system/status
func (Topics) SystemStatus() string {
	return TopicPrefixSystem + "/status"
}
