package midi

import (
	"encoding/json"
	"fmt"
	"time"
)

// MQTT topics used by the bridge. Producers publish control values under
// midibridge/control/{source}; the bridge publishes health under
// midibridge/health.
const (
	topicPrefix = "midibridge"
)

// ControlSubscribeTopic returns the wildcard topic the bridge subscribes to
// for incoming control values.
func ControlSubscribeTopic() string {
	return topicPrefix + "/control/#"
}

// ControlTopic returns the publish topic for a named producer.
//
// Example: midibridge/control/leap-palm-y
func ControlTopic(source string) string {
	return fmt.Sprintf("%s/control/%s", topicPrefix, source)
}

// HealthTopic returns the bridge health status topic.
func HealthTopic() string {
	return topicPrefix + "/health"
}

// ControlValueMessage is published by producers to feed the pipeline.
// Topic: midibridge/control/{source}
type ControlValueMessage struct {
	// Index is the MIDI controller number, range [0, 120).
	Index int `json:"index"`

	// Value is the controller value, range [0, 128).
	Value int `json:"value"`

	// Source identifies the producer (e.g., "leap-palm-y").
	Source string `json:"source,omitempty"`

	// Timestamp is when the producer sampled the value (informational; the
	// staleness clock starts at enqueue, not here).
	Timestamp time.Time `json:"timestamp,omitempty"`
}

// ParseControlValueMessage decodes and range-checks a producer payload.
func ParseControlValueMessage(payload []byte) (ControlValueMessage, error) {
	var msg ControlValueMessage
	if err := json.Unmarshal(payload, &msg); err != nil {
		return ControlValueMessage{}, fmt.Errorf("parse control message: %w", err)
	}
	if msg.Index < 0 || msg.Index >= MaxControlIndex {
		return ControlValueMessage{}, fmt.Errorf("%w: index %d", ErrControlRange, msg.Index)
	}
	if msg.Value < 0 || msg.Value >= MaxControlValue {
		return ControlValueMessage{}, fmt.Errorf("%w: value %d", ErrControlRange, msg.Value)
	}
	return msg, nil
}

// HealthStatus represents the bridge's operational status.
type HealthStatus string

const (
	// HealthStarting indicates the bridge is initialising.
	HealthStarting HealthStatus = "starting"

	// HealthHealthy indicates normal operation.
	HealthHealthy HealthStatus = "healthy"

	// HealthDegraded indicates the bridge is running but the driver
	// connection is down.
	HealthDegraded HealthStatus = "degraded"

	// HealthStopping indicates the bridge is shutting down.
	HealthStopping HealthStatus = "stopping"
)

// HealthMessage is published periodically to the health topic.
// Topic: midibridge/health (retained)
type HealthMessage struct {
	BridgeID  string       `json:"bridge_id"`
	Status    HealthStatus `json:"status"`
	Version   string       `json:"version"`
	Timestamp time.Time    `json:"timestamp"`
	Uptime    int64        `json:"uptime_seconds"`

	// Pipeline statistics
	QueueDepth int    `json:"queue_depth"`
	Enqueued   uint64 `json:"updates_enqueued"`
	Forwarded  uint64 `json:"updates_forwarded"`
	Dropped    uint64 `json:"updates_dropped"`
	SendErrors uint64 `json:"send_errors"`

	// Driver connectivity
	DriverConnected bool `json:"driver_connected"`
}
