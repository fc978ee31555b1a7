package midi

import (
	"errors"
	"testing"
	"time"
)

func newRunningDevice(t *testing.T, driver *mockDriver) *Device {
	t.Helper()

	d, err := NewDevice(DeviceOptions{
		Driver: driver,
		Config: Config{StalenessBound: time.Minute},
	})
	if err != nil {
		t.Fatalf("NewDevice() error = %v", err)
	}
	if err := d.Init(); err != nil {
		t.Fatalf("Init() error = %v", err)
	}
	t.Cleanup(d.Shutdown)
	return d
}

func TestNewDevice_RequiresDriver(t *testing.T) {
	_, err := NewDevice(DeviceOptions{})
	if err == nil {
		t.Fatal("NewDevice() without driver expected error")
	}
}

func TestNewDevice_RejectsInvalidConfig(t *testing.T) {
	_, err := NewDevice(DeviceOptions{
		Driver: newMockDriver(),
		Config: Config{Channel: 16},
	})
	if err == nil {
		t.Fatal("NewDevice() with channel 16 expected error")
	}
}

func TestDevice_Lifecycle(t *testing.T) {
	driver := newMockDriver()
	d, err := NewDevice(DeviceOptions{Driver: driver})
	if err != nil {
		t.Fatalf("NewDevice() error = %v", err)
	}

	if d.State() != StateUninitialized {
		t.Errorf("State() = %s, want %s", d.State(), StateUninitialized)
	}

	// Operations before Init are rejected.
	if err := d.EnqueueUpdate(1, 1); !errors.Is(err, ErrNotRunning) {
		t.Errorf("EnqueueUpdate() before Init error = %v, want ErrNotRunning", err)
	}
	if err := d.SendNote(60, 100, true); !errors.Is(err, ErrNotRunning) {
		t.Errorf("SendNote() before Init error = %v, want ErrNotRunning", err)
	}

	if err := d.Init(); err != nil {
		t.Fatalf("Init() error = %v", err)
	}
	if d.State() != StateRunning {
		t.Errorf("State() = %s, want %s", d.State(), StateRunning)
	}

	// Double Init is rejected.
	if err := d.Init(); !errors.Is(err, ErrAlreadyRunning) {
		t.Errorf("second Init() error = %v, want ErrAlreadyRunning", err)
	}

	d.Shutdown()
	if d.State() != StateStopped {
		t.Errorf("State() = %s after Shutdown, want %s", d.State(), StateStopped)
	}
	if !driver.closed {
		t.Error("driver not closed on shutdown")
	}

	// Stopped is terminal.
	if err := d.Init(); !errors.Is(err, ErrAlreadyRunning) {
		t.Errorf("Init() after Shutdown error = %v, want ErrAlreadyRunning", err)
	}
	if err := d.EnqueueUpdate(1, 1); !errors.Is(err, ErrNotRunning) {
		t.Errorf("EnqueueUpdate() after Shutdown error = %v, want ErrNotRunning", err)
	}

	// Shutdown is idempotent.
	d.Shutdown()
}

func TestDevice_InitRequiresConnectedDriver(t *testing.T) {
	driver := newMockDriver()
	driver.Close()

	d, err := NewDevice(DeviceOptions{Driver: driver})
	if err != nil {
		t.Fatalf("NewDevice() error = %v", err)
	}
	if err := d.Init(); !errors.Is(err, ErrNotConnected) {
		t.Errorf("Init() with closed driver error = %v, want ErrNotConnected", err)
	}
}

// End-to-end: two producer updates come out of the driver as two complete
// control-change payloads in submission order.
func TestDevice_EndToEndDelivery(t *testing.T) {
	driver := newMockDriver()
	d := newRunningDevice(t, driver)

	if err := d.EnqueueUpdate(5, 100); err != nil {
		t.Fatalf("EnqueueUpdate() error = %v", err)
	}
	if err := d.EnqueueUpdate(5, 64); err != nil {
		t.Fatalf("EnqueueUpdate() error = %v", err)
	}

	waitFor(t, 2*time.Second, func() bool { return driver.sentCount() == 2 })

	sent := driver.sent()
	if string(sent[0]) != string([]byte{0xB0, 0x05, 100}) {
		t.Errorf("first payload = %v, want [0xB0 5 100]", sent[0])
	}
	if string(sent[1]) != string([]byte{0xB0, 0x05, 64}) {
		t.Errorf("second payload = %v, want [0xB0 5 64]", sent[1])
	}

	stats := d.Stats()
	if stats.Enqueued != 2 || stats.Forwarded != 2 {
		t.Errorf("Stats() = %+v, want 2 enqueued, 2 forwarded", stats)
	}
}

func TestDevice_EnqueueValidatesRange(t *testing.T) {
	d := newRunningDevice(t, newMockDriver())

	if err := d.EnqueueUpdate(MaxControlIndex, 0); !errors.Is(err, ErrControlRange) {
		t.Errorf("EnqueueUpdate(120, 0) error = %v, want ErrControlRange", err)
	}
	if err := d.EnqueueUpdate(0, MaxControlValue); !errors.Is(err, ErrControlRange) {
		t.Errorf("EnqueueUpdate(0, 128) error = %v, want ErrControlRange", err)
	}
}

// The direct note path bypasses the queue but shares the endpoint lock with
// the worker, so notes and control changes interleave as whole messages.
func TestDevice_SendNote(t *testing.T) {
	driver := newMockDriver()
	d := newRunningDevice(t, driver)

	if err := d.SendNote(60, 100, true); err != nil {
		t.Fatalf("SendNote(on) error = %v", err)
	}
	if err := d.SendNote(60, 0, false); err != nil {
		t.Fatalf("SendNote(off) error = %v", err)
	}

	sent := driver.sent()
	if len(sent) != 2 {
		t.Fatalf("driver received %d payloads, want 2", len(sent))
	}
	if sent[0][0] != 0x90 || sent[1][0] != 0x80 {
		t.Errorf("note statuses = %#x, %#x, want 0x90, 0x80", sent[0][0], sent[1][0])
	}
}

func TestDevice_ShutdownDiscardsQueued(t *testing.T) {
	driver := newMockDriver()
	// A failing driver keeps the worker from delivering while we shut down.
	driver.setSendErr(ErrSendFailed)

	d := newRunningDevice(t, driver)

	for i := 0; i < 10; i++ {
		if err := d.EnqueueUpdate(1, uint8(i)); err != nil {
			t.Fatalf("EnqueueUpdate() error = %v", err)
		}
	}

	d.Shutdown()

	// Whatever was still queued is gone; nothing delivered after stop.
	if depth := d.Stats().QueueDepth; depth != 0 {
		t.Errorf("queue depth after shutdown = %d, want 0", depth)
	}
}

func TestDevice_WaitTimeout(t *testing.T) {
	d, err := NewDevice(DeviceOptions{
		Driver: newMockDriver(),
		Config: Config{WaitTimeout: 3 * time.Second},
	})
	if err != nil {
		t.Fatalf("NewDevice() error = %v", err)
	}
	if got := d.WaitTimeout(); got != 3*time.Second {
		t.Errorf("WaitTimeout() = %v, want 3s", got)
	}
}

func TestDevice_StatsSnapshot(t *testing.T) {
	driver := newMockDriver()
	d := newRunningDevice(t, driver)

	stats := d.Stats()
	if stats.State != StateRunning {
		t.Errorf("stats.State = %s, want %s", stats.State, StateRunning)
	}
	if !stats.Driver.Connected {
		t.Error("stats.Driver.Connected = false, want true")
	}
}
