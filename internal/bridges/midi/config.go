package midi

import (
	"fmt"
	"time"
)

// Default pipeline tuning.
const (
	// DefaultStalenessBound is the maximum age an update may have when the
	// worker examines it before it is dropped instead of delivered. The
	// reference behaviour is 2ms — a hard real-time target relative to the
	// wake latency, so it is carried as a knob rather than a constant.
	DefaultStalenessBound = 2 * time.Millisecond

	// DefaultWaitTimeout is how long the worker sleeps waiting for a signal
	// before waking to observe cancellation. Delivery latency does not
	// depend on it; it may be shortened freely.
	DefaultWaitTimeout = 2 * time.Second
)

// Config holds the delivery pipeline tuning for one device.
type Config struct {
	// Channel is the MIDI channel (0-15) stamped into every message.
	Channel uint8

	// PacketBufferSize is the capacity of the endpoint's outbound packet
	// buffer in bytes. Zero selects DefaultPacketBufferSize.
	PacketBufferSize int

	// StalenessBound is the maximum update age before the worker drops it.
	// Zero selects DefaultStalenessBound.
	StalenessBound time.Duration

	// WaitTimeout is the worker's idle wake interval.
	// Zero selects DefaultWaitTimeout.
	WaitTimeout time.Duration
}

// ApplyDefaults fills zero fields with the reference defaults.
func (c *Config) ApplyDefaults() {
	if c.PacketBufferSize == 0 {
		c.PacketBufferSize = DefaultPacketBufferSize
	}
	if c.StalenessBound == 0 {
		c.StalenessBound = DefaultStalenessBound
	}
	if c.WaitTimeout == 0 {
		c.WaitTimeout = DefaultWaitTimeout
	}
}

// Validate checks the configuration for values the pipeline cannot run with.
func (c Config) Validate() error {
	if c.Channel > MaxChannel {
		return fmt.Errorf("midi: channel %d out of range (0-%d)", c.Channel, MaxChannel)
	}
	if c.PacketBufferSize < 0 {
		return fmt.Errorf("midi: packet buffer size must not be negative, got %d", c.PacketBufferSize)
	}
	if c.PacketBufferSize > 0 && c.PacketBufferSize < messageSize {
		return fmt.Errorf("midi: packet buffer size %d below message size %d",
			c.PacketBufferSize, messageSize)
	}
	if c.StalenessBound < 0 {
		return fmt.Errorf("midi: staleness bound must not be negative, got %s", c.StalenessBound)
	}
	if c.WaitTimeout < 0 {
		return fmt.Errorf("midi: wait timeout must not be negative, got %s", c.WaitTimeout)
	}
	return nil
}
