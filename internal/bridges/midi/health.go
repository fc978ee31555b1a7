package midi

import (
	"context"
	"encoding/json"
	"sync"
	"time"
)

// defaultHealthInterval is how often health status is published.
const defaultHealthInterval = 30 * time.Second

// HealthIntervalOption wraps an optional health interval so the zero value
// of BridgeOptions picks the default.
type HealthIntervalOption struct {
	Duration time.Duration
}

// HealthPublisher is the interface for publishing health messages.
// This is typically implemented by an MQTT client.
type HealthPublisher interface {
	// Publish sends a message to a topic with the specified QoS and retention.
	Publish(topic string, payload []byte, qos byte, retained bool) error

	// IsConnected returns true if the publisher is connected.
	IsConnected() bool
}

// HealthReporterConfig holds configuration for the health reporter.
type HealthReporterConfig struct {
	// BridgeID is the bridge identifier for health messages.
	BridgeID string

	// Version is the bridge software version.
	Version string

	// Interval is how often to publish health status.
	// Default: 30 seconds.
	Interval time.Duration

	// Publisher is the MQTT client for publishing messages.
	Publisher HealthPublisher

	// Device provides pipeline statistics.
	Device *Device
}

// HealthReporter publishes periodic bridge health (pipeline statistics and
// driver connectivity) to the health topic.
type HealthReporter struct {
	bridgeID  string
	version   string
	startTime time.Time
	interval  time.Duration
	publisher HealthPublisher
	device    *Device

	// Shutdown coordination (stopOnce prevents double-close panics)
	done     chan struct{}
	wg       sync.WaitGroup
	stopOnce sync.Once

	// Logger (optional)
	logger   Logger
	loggerMu sync.RWMutex
}

// NewHealthReporter creates a new health reporter.
// Call Start to begin reporting.
func NewHealthReporter(cfg HealthReporterConfig) *HealthReporter {
	interval := cfg.Interval
	if interval == 0 {
		interval = defaultHealthInterval
	}

	return &HealthReporter{
		bridgeID:  cfg.BridgeID,
		version:   cfg.Version,
		startTime: time.Now(),
		interval:  interval,
		publisher: cfg.Publisher,
		device:    cfg.Device,
		done:      make(chan struct{}),
	}
}

// Start begins periodic health reporting.
func (h *HealthReporter) Start(ctx context.Context) {
	h.wg.Add(1)
	go h.reportLoop(ctx)
}

// Stop gracefully stops health reporting and publishes a final "stopping"
// status. Safe to call multiple times.
func (h *HealthReporter) Stop() {
	h.stopOnce.Do(func() {
		close(h.done)
		h.wg.Wait()

		//nolint:errcheck // Best-effort during shutdown, nothing we can do if it fails
		h.PublishStatus(HealthStopping)
	})
}

// reportLoop publishes health at the configured interval.
func (h *HealthReporter) reportLoop(ctx context.Context) {
	defer h.wg.Done()

	ticker := time.NewTicker(h.interval)
	defer ticker.Stop()

	for {
		select {
		case <-h.done:
			return
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := h.PublishNow(); err != nil {
				h.logError("health publish failed", err)
			}
		}
	}
}

// PublishNow publishes the current health status immediately. The status is
// healthy while the driver is connected, degraded otherwise.
func (h *HealthReporter) PublishNow() error {
	status := HealthHealthy
	if h.device != nil && !h.device.Stats().Driver.Connected {
		status = HealthDegraded
	}
	return h.PublishStatus(status)
}

// PublishStatus publishes a health message with the given status.
func (h *HealthReporter) PublishStatus(status HealthStatus) error {
	msg := HealthMessage{
		BridgeID:  h.bridgeID,
		Status:    status,
		Version:   h.version,
		Timestamp: time.Now().UTC(),
		Uptime:    int64(time.Since(h.startTime).Seconds()),
	}

	if h.device != nil {
		stats := h.device.Stats()
		msg.QueueDepth = stats.QueueDepth
		msg.Enqueued = stats.Enqueued
		msg.Forwarded = stats.Forwarded
		msg.Dropped = stats.Dropped
		msg.SendErrors = stats.SendErrors
		msg.DriverConnected = stats.Driver.Connected
	}

	payload, err := json.Marshal(msg)
	if err != nil {
		return err
	}

	return h.publisher.Publish(HealthTopic(), payload, 1, true)
}

// SetLogger sets the logger for the health reporter.
func (h *HealthReporter) SetLogger(logger Logger) {
	h.loggerMu.Lock()
	h.logger = logger
	h.loggerMu.Unlock()
}

// logError logs an error message if logger is set.
func (h *HealthReporter) logError(msg string, err error) {
	h.loggerMu.RLock()
	logger := h.logger
	h.loggerMu.RUnlock()

	if logger != nil {
		logger.Error(msg, "error", err)
	}
}
