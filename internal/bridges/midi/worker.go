package midi

import (
	"sync"
	"sync/atomic"
	"time"
)

// TelemetryRecorder records per-update delivery outcomes. Implementations
// must not block: the worker calls these on the delivery path.
// It is optional — if nil, the worker operates without telemetry.
type TelemetryRecorder interface {
	// RecordDelivery records one forwarded update and its queue latency.
	RecordDelivery(index uint8, latency time.Duration)

	// RecordDrop records one update dropped for exceeding the staleness bound.
	RecordDrop(index uint8, age time.Duration)

	// RecordSendError records one failed driver send.
	RecordSendError()
}

// DeliveryWorker is the single consumer of the update queue. One iteration:
// wait for the queue's signal (or the idle timeout, which exists only so
// cancellation is observed while idle), drain the whole queue, then forward
// each fresh update in FIFO order — dropping updates older than the
// staleness bound instead of delivering them late.
//
// The queue lock is never held during a send: draining swaps the backlog out
// under the lock, delivery happens on the private batch. A send failure is
// logged and counted but does not stop the worker.
type DeliveryWorker struct {
	queue    *UpdateQueue
	endpoint *Endpoint

	staleness   time.Duration
	waitTimeout time.Duration

	recorder TelemetryRecorder

	// Statistics (atomic for performance)
	forwarded  atomic.Uint64
	dropped    atomic.Uint64
	sendErrors atomic.Uint64

	// Logger (optional)
	logger   Logger
	loggerMu sync.RWMutex
}

// WorkerStats holds delivery statistics.
type WorkerStats struct {
	Forwarded  uint64
	Dropped    uint64
	SendErrors uint64
}

// NewDeliveryWorker creates a worker for the given queue and endpoint.
// Zero durations select the package defaults. Call run on a goroutine.
func NewDeliveryWorker(queue *UpdateQueue, endpoint *Endpoint, cfg Config) *DeliveryWorker {
	cfg.ApplyDefaults()
	return &DeliveryWorker{
		queue:       queue,
		endpoint:    endpoint,
		staleness:   cfg.StalenessBound,
		waitTimeout: cfg.WaitTimeout,
	}
}

// SetRecorder sets an optional telemetry recorder. Must be called before the
// worker starts.
func (w *DeliveryWorker) SetRecorder(r TelemetryRecorder) {
	w.recorder = r
}

// SetLogger sets the logger for the worker.
func (w *DeliveryWorker) SetLogger(logger Logger) {
	w.loggerMu.Lock()
	w.logger = logger
	w.loggerMu.Unlock()
}

// Stats returns current delivery statistics.
func (w *DeliveryWorker) Stats() WorkerStats {
	return WorkerStats{
		Forwarded:  w.forwarded.Load(),
		Dropped:    w.dropped.Load(),
		SendErrors: w.sendErrors.Load(),
	}
}

// run is the drain-and-forward loop. It exits when done is closed, observed
// within at most one waitTimeout period even when the queue stays empty.
func (w *DeliveryWorker) run(done <-chan struct{}) {
	timer := time.NewTimer(w.waitTimeout)
	defer timer.Stop()

	for {
		if !timer.Stop() {
			select {
			case <-timer.C:
			default:
			}
		}
		timer.Reset(w.waitTimeout)

		select {
		case <-done:
			return
		case <-w.queue.Signal():
		case <-timer.C:
			// Idle wake: no work, just an opportunity to observe done.
			continue
		}

		batch := w.queue.DrainAll()
		if len(batch) == 0 {
			continue
		}
		w.deliver(batch)
	}
}

// deliver forwards a drained batch in FIFO order.
func (w *DeliveryWorker) deliver(batch []ControlUpdate) {
	for _, u := range batch {
		age := u.Age()
		if age > w.staleness {
			w.dropped.Add(1)
			w.logWarn("control update latency over bound, dropping",
				"cc", u.Index,
				"age_ms", float64(age.Microseconds())/1000.0,
				"bound_ms", float64(w.staleness.Microseconds())/1000.0,
			)
			if w.recorder != nil {
				w.recorder.RecordDrop(u.Index, age)
			}
			continue
		}

		if err := w.endpoint.Forward(u.Index, u.Value); err != nil {
			w.sendErrors.Add(1)
			w.logError("forward to endpoint failed", err)
			if w.recorder != nil {
				w.recorder.RecordSendError()
			}
			continue
		}

		w.forwarded.Add(1)
		if w.recorder != nil {
			w.recorder.RecordDelivery(u.Index, age)
		}
	}
}

// logWarn logs a warning if a logger is set.
func (w *DeliveryWorker) logWarn(msg string, keysAndValues ...any) {
	w.loggerMu.RLock()
	logger := w.logger
	w.loggerMu.RUnlock()

	if logger != nil {
		logger.Warn(msg, keysAndValues...)
	}
}

// logError logs an error if a logger is set.
func (w *DeliveryWorker) logError(msg string, err error) {
	w.loggerMu.RLock()
	logger := w.logger
	w.loggerMu.RUnlock()

	if logger != nil {
		logger.Error(msg, "error", err)
	}
}
