package midi

import (
	"fmt"
	"sync"
	"sync/atomic"
	"time"
)

// DeviceState is the lifecycle state of a Device.
type DeviceState string

// Device lifecycle states. Transitions are strictly forward:
// Uninitialized → Running → ShuttingDown → Stopped.
const (
	StateUninitialized DeviceState = "uninitialized"
	StateRunning       DeviceState = "running"
	StateShuttingDown  DeviceState = "shutting_down"
	StateStopped       DeviceState = "stopped"
)

// DeviceOptions holds configuration for creating a device.
type DeviceOptions struct {
	// Driver is the established MIDI driver connection. Required.
	// The device takes ownership and closes it on shutdown.
	Driver Driver

	// Config is the pipeline tuning. Zero fields select defaults.
	Config Config

	// Logger is an optional structured logger.
	Logger Logger

	// Recorder is an optional telemetry recorder for delivery outcomes.
	Recorder TelemetryRecorder
}

// Device is the composition root of the delivery pipeline. It owns the
// update queue, the protocol endpoint, and the delivery worker, and manages
// their lifecycle as one unit.
//
// Thread Safety: all methods are safe for concurrent use. Any number of
// producers may call EnqueueUpdate; exactly one worker goroutine consumes.
type Device struct {
	cfg      Config
	driver   Driver
	queue    *UpdateQueue
	endpoint *Endpoint
	worker   *DeliveryWorker

	state   DeviceState
	stateMu sync.RWMutex

	// Shutdown coordination
	done     chan struct{}
	wg       sync.WaitGroup
	stopOnce sync.Once

	// Statistics
	enqueued atomic.Uint64

	// Logger (optional)
	logger   Logger
	loggerMu sync.RWMutex
}

// DeviceStats is a snapshot of pipeline statistics.
type DeviceStats struct {
	State      DeviceState
	QueueDepth int
	Enqueued   uint64
	Forwarded  uint64
	Dropped    uint64
	SendErrors uint64
	Driver     DriverStats
}

// NewDevice creates a device around an established driver connection.
// Call Init to start the pipeline.
func NewDevice(opts DeviceOptions) (*Device, error) {
	if opts.Driver == nil {
		return nil, fmt.Errorf("midi: driver is required")
	}

	cfg := opts.Config
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	d := &Device{
		cfg:    cfg,
		driver: opts.Driver,
		queue:  NewUpdateQueue(),
		state:  StateUninitialized,
		done:   make(chan struct{}),
		logger: opts.Logger,
	}

	d.endpoint = NewEndpoint(opts.Driver, cfg.Channel, cfg.PacketBufferSize)
	d.worker = NewDeliveryWorker(d.queue, d.endpoint, cfg)
	if opts.Logger != nil {
		d.worker.SetLogger(opts.Logger)
	}
	if opts.Recorder != nil {
		d.worker.SetRecorder(opts.Recorder)
	}

	return d, nil
}

// Init transitions the device to Running and spawns the delivery worker.
// Returns ErrAlreadyRunning if called twice or after shutdown.
func (d *Device) Init() error {
	d.stateMu.Lock()
	defer d.stateMu.Unlock()

	if d.state != StateUninitialized {
		return fmt.Errorf("%w: state %s", ErrAlreadyRunning, d.state)
	}
	if !d.driver.IsConnected() {
		return ErrNotConnected
	}

	d.state = StateRunning
	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		d.worker.run(d.done)
	}()

	d.logInfo("device running",
		"channel", d.cfg.Channel,
		"staleness_bound", d.cfg.StalenessBound.String(),
		"wait_timeout", d.cfg.WaitTimeout.String(),
	)
	return nil
}

// EnqueueUpdate validates, timestamps, and queues one control update.
// It never blocks beyond the queue lock. Out-of-range arguments return
// ErrControlRange; a device that is not running returns ErrNotRunning.
func (d *Device) EnqueueUpdate(index, value uint8) error {
	if d.State() != StateRunning {
		return ErrNotRunning
	}

	u, err := NewControlUpdate(index, value)
	if err != nil {
		return err
	}

	d.queue.Push(u)
	d.enqueued.Add(1)
	return nil
}

// SendNote forwards a note-on or note-off directly through the endpoint,
// bypassing the queue. Notes are event-like rather than value-like, so
// staleness downsampling does not apply; the endpoint's lock keeps this path
// from racing the worker over the packet buffer.
func (d *Device) SendNote(note, velocity uint8, on bool) error {
	if d.State() != StateRunning {
		return ErrNotRunning
	}
	return d.endpoint.ForwardNote(note, velocity, on)
}

// Shutdown stops the delivery worker, waits for it to exit, and closes the
// driver. Updates still queued are discarded — delivery is best-effort, not
// durable. Safe to call multiple times; Stopped is terminal.
func (d *Device) Shutdown() {
	d.stopOnce.Do(func() {
		d.setState(StateShuttingDown)

		close(d.done)
		d.wg.Wait()

		if leftover := d.queue.DrainAll(); len(leftover) > 0 {
			d.logInfo("discarding queued updates at shutdown", "count", len(leftover))
		}

		if err := d.driver.Close(); err != nil {
			d.logError("driver close failed", err)
		}

		d.setState(StateStopped)
		d.logInfo("device stopped")
	})
}

// State returns the current lifecycle state.
func (d *Device) State() DeviceState {
	d.stateMu.RLock()
	defer d.stateMu.RUnlock()
	return d.state
}

// Stats returns a snapshot of pipeline statistics.
func (d *Device) Stats() DeviceStats {
	ws := d.worker.Stats()
	return DeviceStats{
		State:      d.State(),
		QueueDepth: d.queue.Len(),
		Enqueued:   d.enqueued.Load(),
		Forwarded:  ws.Forwarded,
		Dropped:    ws.Dropped,
		SendErrors: ws.SendErrors,
		Driver:     d.driver.Stats(),
	}
}

// WaitTimeout returns the worker's idle wake interval. Shutdown latency is
// bounded by roughly this duration when the queue is idle.
func (d *Device) WaitTimeout() time.Duration {
	return d.cfg.WaitTimeout
}

// SetLogger sets the logger for the device and its worker.
func (d *Device) SetLogger(logger Logger) {
	d.loggerMu.Lock()
	d.logger = logger
	d.loggerMu.Unlock()

	if d.worker != nil {
		d.worker.SetLogger(logger)
	}
}

func (d *Device) setState(s DeviceState) {
	d.stateMu.Lock()
	d.state = s
	d.stateMu.Unlock()
}

// logInfo logs an info message if a logger is set.
func (d *Device) logInfo(msg string, keysAndValues ...any) {
	d.loggerMu.RLock()
	logger := d.logger
	d.loggerMu.RUnlock()

	if logger != nil {
		logger.Info(msg, keysAndValues...)
	}
}

// logError logs an error message if a logger is set.
func (d *Device) logError(msg string, err error) {
	d.loggerMu.RLock()
	logger := d.logger
	d.loggerMu.RUnlock()

	if logger != nil {
		logger.Error(msg, "error", err)
	}
}
