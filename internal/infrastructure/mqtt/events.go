package mqtt

import (
	"encoding/json"
	"fmt"
	"time"
)

// SweepEvent announces a sweep run starting or finishing.
type SweepEvent struct {
	RunID        string `json:"run_id"`
	Description  string `json:"description"`
	Combinations int    `json:"combinations"`
	Produced     int    `json:"produced,omitempty"`
	Skipped      int    `json:"skipped,omitempty"`
	Status       string `json:"status,omitempty"`
	Timestamp    string `json:"timestamp"`
}

// CombinationEvent reports the outcome of one combination.
type CombinationEvent struct {
	RunID     string `json:"run_id"`
	Ordinal   int    `json:"ordinal"`
	Artifact  string `json:"artifact"`
	Outcome   string `json:"outcome"`
	Detail    string `json:"detail,omitempty"`
	ElapsedMS int64  `json:"elapsed_ms"`
	Timestamp string `json:"timestamp"`
}

// PublishSweepStarted announces a new sweep run.
func (c *Client) PublishSweepStarted(event SweepEvent) error {
	if event.Timestamp == "" {
		event.Timestamp = time.Now().UTC().Format(time.RFC3339)
	}
	return c.publishEvent(Topics{}.SweepStarted(), event)
}

// PublishSweepFinished announces sweep completion or abort.
func (c *Client) PublishSweepFinished(event SweepEvent) error {
	if event.Timestamp == "" {
		event.Timestamp = time.Now().UTC().Format(time.RFC3339)
	}
	return c.publishEvent(Topics{}.SweepFinished(), event)
}

// PublishCombination reports one combination outcome.
func (c *Client) PublishCombination(event CombinationEvent) error {
	if event.Timestamp == "" {
		event.Timestamp = time.Now().UTC().Format(time.RFC3339)
	}
	return c.publishEvent(Topics{}.SweepCombination(), event)
}

// publishEvent marshals and publishes an event at the configured QoS.
// Events are not retained; only status uses retained messages.
func (c *Client) publishEvent(topic string, event any) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("%w: marshalling event: %w", ErrPublishFailed, err)
	}
	return c.Publish(topic, payload, byte(c.cfg.QoS), false)
}
