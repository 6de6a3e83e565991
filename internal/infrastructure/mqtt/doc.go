// Package mqtt publishes sweep progress events to an MQTT broker.
//
// The sweep is a fire-and-forget publisher: run started/finished events,
// per-combination outcomes, and a retained online/offline status with an
// LWT so dashboards can tell a crashed sweep from a finished one. The
// broker connection is optional; when disabled in config the sequencer
// simply runs without a publisher.
//
// Built on eclipse/paho.mqtt.golang with auto-reconnect and exponential
// backoff handled by the library.
package mqtt
