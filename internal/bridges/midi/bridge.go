package midi

import (
	"context"
	"fmt"
	"sync"
)

// MQTTClient is the interface for MQTT operations.
// This allows mocking in tests and flexibility in implementation.
type MQTTClient interface {
	// Publish sends a message to a topic.
	Publish(topic string, payload []byte, qos byte, retained bool) error

	// Subscribe registers a handler for a topic pattern.
	Subscribe(topic string, qos byte, handler func(topic string, payload []byte)) error

	// IsConnected returns true if connected to the broker.
	IsConnected() bool
}

// BridgeOptions holds configuration for creating a bridge.
type BridgeOptions struct {
	// BridgeID identifies this bridge in health messages.
	BridgeID string

	// Version is the bridge software version for health messages.
	Version string

	// Device is the running MIDI device the bridge feeds. Required.
	Device *Device

	// MQTTClient is the MQTT client implementation. Required.
	MQTTClient MQTTClient

	// Logger is optional structured logger.
	Logger Logger

	// HealthInterval overrides the default health reporting interval.
	HealthInterval HealthIntervalOption
}

// Bridge connects MQTT control-value producers to the MIDI device. It
// subscribes to the control topics, validates incoming messages, and feeds
// them into the device's delivery pipeline. Malformed or out-of-range
// messages are logged and dropped — a misbehaving producer cannot stall
// delivery.
//
// Thread Safety: all methods are safe for concurrent use.
type Bridge struct {
	id     string
	mqtt   MQTTClient
	device *Device
	health *HealthReporter

	stopOnce sync.Once

	// Logger
	logger   Logger
	loggerMu sync.RWMutex
}

// NewBridge creates a new bridge instance.
// Call Start() to begin operation.
func NewBridge(opts BridgeOptions) (*Bridge, error) {
	if opts.Device == nil {
		return nil, fmt.Errorf("midi: device is required")
	}
	if opts.MQTTClient == nil {
		return nil, fmt.Errorf("midi: MQTT client is required")
	}
	if opts.BridgeID == "" {
		opts.BridgeID = "midibridge"
	}

	b := &Bridge{
		id:     opts.BridgeID,
		mqtt:   opts.MQTTClient,
		device: opts.Device,
		logger: opts.Logger,
	}

	b.health = NewHealthReporter(HealthReporterConfig{
		BridgeID:  opts.BridgeID,
		Version:   opts.Version,
		Interval:  opts.HealthInterval.Duration,
		Publisher: opts.MQTTClient,
		Device:    opts.Device,
	})
	if opts.Logger != nil {
		b.health.SetLogger(opts.Logger)
	}

	return b, nil
}

// Start subscribes to control topics and begins health reporting.
func (b *Bridge) Start(ctx context.Context) error {
	if err := b.health.PublishStatus(HealthStarting); err != nil {
		b.logError("failed to publish starting status", err)
	}

	topic := ControlSubscribeTopic()
	if err := b.mqtt.Subscribe(topic, 1, b.handleControlMessage); err != nil {
		return fmt.Errorf("subscribe to control values: %w", err)
	}
	b.logInfo("subscribed to control values", "topic", topic)

	b.health.Start(ctx)

	if err := b.health.PublishNow(); err != nil {
		b.logError("failed to publish healthy status", err)
	}

	b.logInfo("bridge started", "bridge_id", b.id)
	return nil
}

// Stop gracefully shuts down the bridge. The device's lifecycle is owned by
// the caller and is not touched here.
func (b *Bridge) Stop() {
	b.stopOnce.Do(func() {
		b.health.Stop()
		b.logInfo("bridge stopped")
	})
}

// handleControlMessage feeds one producer message into the pipeline.
func (b *Bridge) handleControlMessage(topic string, payload []byte) {
	msg, err := ParseControlValueMessage(payload)
	if err != nil {
		b.logError("invalid control message dropped",
			fmt.Errorf("topic=%s: %w", topic, err))
		return
	}

	if err := b.device.EnqueueUpdate(uint8(msg.Index), uint8(msg.Value)); err != nil {
		b.logError("enqueue failed",
			fmt.Errorf("cc=%d value=%d: %w", msg.Index, msg.Value, err))
	}
}

// SetLogger sets the logger for the bridge.
func (b *Bridge) SetLogger(logger Logger) {
	b.loggerMu.Lock()
	b.logger = logger
	b.loggerMu.Unlock()

	if b.health != nil {
		b.health.SetLogger(logger)
	}
}

// logInfo logs an info message if logger is set.
func (b *Bridge) logInfo(msg string, keysAndValues ...any) {
	b.loggerMu.RLock()
	logger := b.logger
	b.loggerMu.RUnlock()

	if logger != nil {
		logger.Info(msg, keysAndValues...)
	}
}

// logError logs an error message if logger is set.
func (b *Bridge) logError(msg string, err error) {
	b.loggerMu.RLock()
	logger := b.logger
	b.loggerMu.RUnlock()

	if logger != nil {
		logger.Error(msg, "error", err)
	}
}
