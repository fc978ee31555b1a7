package midi

import "errors"

// Domain errors for the MIDI bridge package.
var (
	// ErrControlRange is returned when a control index or value is outside
	// its valid range (index [0,120), value [0,128)).
	ErrControlRange = errors.New("midi: control index or value out of range")

	// ErrNoteRange is returned when a note number or velocity is outside
	// the 7-bit MIDI range.
	ErrNoteRange = errors.New("midi: note number or velocity out of range")

	// ErrBufferOverrun is returned when an encoded message does not fit in
	// the endpoint's packet buffer. The buffer is re-armed and the message
	// dropped; the pipeline keeps running.
	ErrBufferOverrun = errors.New("midi: packet buffer overrun")

	// ErrNotRunning is returned when an operation requires a running device
	// but the device has not been initialised or has been shut down.
	ErrNotRunning = errors.New("midi: device not running")

	// ErrAlreadyRunning is returned when Init is called on a device that is
	// already running or has already been stopped.
	ErrAlreadyRunning = errors.New("midi: device already initialised")

	// ErrNotConnected is returned when the driver connection is down.
	ErrNotConnected = errors.New("midi: not connected to MIDI driver")

	// ErrConnectionFailed is returned when the driver connection cannot be
	// established.
	ErrConnectionFailed = errors.New("midi: connection to MIDI driver failed")

	// ErrSendFailed is returned when submitting a payload to the driver fails.
	ErrSendFailed = errors.New("midi: driver send failed")
)
