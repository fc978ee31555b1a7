package midi

import (
	"fmt"
	"time"
)

// MIDI status bytes and ranges.
const (
	// StatusControlChange is the control-change status byte for channel 0.
	// The low nibble selects the channel (0-15).
	StatusControlChange byte = 0xB0

	// StatusNoteOn is the note-on status byte for channel 0.
	StatusNoteOn byte = 0x90

	// StatusNoteOff is the note-off status byte for channel 0.
	StatusNoteOff byte = 0x80

	// MaxControlIndex is the exclusive upper bound for control indices.
	// Indices 120-127 are channel mode messages, not controllers.
	MaxControlIndex = 120

	// MaxControlValue is the exclusive upper bound for control values
	// (7-bit data byte).
	MaxControlValue = 128

	// MaxChannel is the highest MIDI channel number.
	MaxChannel = 15

	// messageSize is the wire size of a channel voice message.
	messageSize = 3
)

// ControlUpdate is one change to a control parameter destined for the MIDI
// endpoint. It is immutable once constructed; only its FIFO position in the
// update queue matters.
type ControlUpdate struct {
	// Index is the MIDI controller number, range [0, 120).
	Index uint8

	// Value is the controller value, range [0, 128).
	Value uint8

	// Timestamp records when the update was enqueued. Staleness is measured
	// against this with the same clock (time.Since).
	Timestamp time.Time
}

// NewControlUpdate validates the control range and returns a timestamped
// update ready for the queue.
func NewControlUpdate(index, value uint8) (ControlUpdate, error) {
	if err := ValidateControl(index, value); err != nil {
		return ControlUpdate{}, err
	}
	return ControlUpdate{
		Index:     index,
		Value:     value,
		Timestamp: time.Now(),
	}, nil
}

// Age returns how long ago the update was enqueued.
func (u ControlUpdate) Age() time.Duration {
	return time.Since(u.Timestamp)
}

// String returns a human-readable representation of the update.
func (u ControlUpdate) String() string {
	return fmt.Sprintf("ControlUpdate{CC:%d, Value:%d, Age:%s}", u.Index, u.Value, u.Age())
}

// ValidateControl checks a control index/value pair against the MIDI ranges.
// Producers are expected to pre-validate; the endpoint checks again before
// encoding.
func ValidateControl(index, value uint8) error {
	if index >= MaxControlIndex {
		return fmt.Errorf("%w: index %d (max %d)", ErrControlRange, index, MaxControlIndex-1)
	}
	if value >= MaxControlValue {
		return fmt.Errorf("%w: value %d (max %d)", ErrControlRange, value, MaxControlValue-1)
	}
	return nil
}

// ValidateNote checks a note number/velocity pair against the 7-bit range.
func ValidateNote(note, velocity uint8) error {
	if note >= MaxControlValue {
		return fmt.Errorf("%w: note %d (max %d)", ErrNoteRange, note, MaxControlValue-1)
	}
	if velocity >= MaxControlValue {
		return fmt.Errorf("%w: velocity %d (max %d)", ErrNoteRange, velocity, MaxControlValue-1)
	}
	return nil
}

// EncodeControlChange builds the 3-byte control-change payload for the given
// channel:
//
//	Byte 0: status 0xB0 | channel
//	Byte 1: controller number
//	Byte 2: controller value
//
// The caller is responsible for range validation.
func EncodeControlChange(channel, index, value uint8) [3]byte {
	return [3]byte{StatusControlChange | (channel & 0x0F), index & 0x7F, value & 0x7F}
}

// EncodeNote builds the 3-byte note-on or note-off payload for the given
// channel. A note-off is encoded as status 0x80 rather than a zero-velocity
// note-on so receivers that distinguish the two see the real message.
func EncodeNote(channel, note, velocity uint8, on bool) [3]byte {
	status := StatusNoteOff
	if on {
		status = StatusNoteOn
	}
	return [3]byte{status | (channel & 0x0F), note & 0x7F, velocity & 0x7F}
}
