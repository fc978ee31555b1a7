package midi

import (
	"fmt"
	"sync"
)

// DefaultPacketBufferSize is the default capacity of the endpoint's outbound
// packet buffer, sized well above one encoded message plus overhead.
const DefaultPacketBufferSize = 512

// packetBuffer is a fixed-capacity encode buffer with a write cursor. The
// driver does not flush it implicitly, so it must be re-armed after every
// send — Endpoint owns that contract.
type packetBuffer struct {
	buf []byte
	n   int
}

func newPacketBuffer(capacity int) *packetBuffer {
	if capacity <= 0 {
		capacity = DefaultPacketBufferSize
	}
	return &packetBuffer{buf: make([]byte, capacity)}
}

// append copies msg at the write cursor. Returns ErrBufferOverrun if the
// message does not fit; the buffer is left unchanged.
func (p *packetBuffer) append(msg []byte) error {
	if p.n+len(msg) > len(p.buf) {
		return fmt.Errorf("%w: %d bytes used of %d, message needs %d",
			ErrBufferOverrun, p.n, len(p.buf), len(msg))
	}
	copy(p.buf[p.n:], msg)
	p.n += len(msg)
	return nil
}

// bytes returns the encoded content.
func (p *packetBuffer) bytes() []byte {
	return p.buf[:p.n]
}

// reset re-arms the buffer to an empty, writable state.
func (p *packetBuffer) reset() {
	p.n = 0
}

// Endpoint wraps the MIDI driver with the reusable outbound packet buffer.
//
// The buffer is written by the worker's control-change path and by the
// direct note path; a dedicated lock enforces the single-writer contract so
// exactly one encode touches the buffer at a time. After every send —
// successful or not — the buffer is re-armed before the lock is released,
// so the next encode always starts clean.
type Endpoint struct {
	driver  Driver
	channel uint8

	mu  sync.Mutex
	pkt *packetBuffer
}

// NewEndpoint creates an endpoint around an established driver connection.
// bufferSize <= 0 selects DefaultPacketBufferSize.
func NewEndpoint(driver Driver, channel uint8, bufferSize int) *Endpoint {
	return &Endpoint{
		driver:  driver,
		channel: channel & 0x0F,
		pkt:     newPacketBuffer(bufferSize),
	}
}

// Forward encodes one control change and submits it to the driver.
//
// Out-of-range arguments are a producer bug — enqueue validates before the
// update ever reaches the queue — but are re-checked here because the
// endpoint is the last owner of the wire format.
func (e *Endpoint) Forward(index, value uint8) error {
	if err := ValidateControl(index, value); err != nil {
		return err
	}
	msg := EncodeControlChange(e.channel, index, value)
	return e.submit(msg[:])
}

// ForwardNote encodes a note-on or note-off and submits it to the driver.
// It shares the packet buffer (and its lock) with the control path, so the
// two call sites can never race on the buffer.
func (e *Endpoint) ForwardNote(note, velocity uint8, on bool) error {
	if err := ValidateNote(note, velocity); err != nil {
		return err
	}
	msg := EncodeNote(e.channel, note, velocity, on)
	return e.submit(msg[:])
}

// submit encodes into the packet buffer, hands it to the driver, and re-arms
// the buffer whether or not the send succeeded.
func (e *Endpoint) submit(msg []byte) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	defer e.pkt.reset()

	if err := e.pkt.append(msg); err != nil {
		return err
	}
	return e.driver.Send(e.pkt.bytes())
}

// IsConnected reports whether the underlying driver connection is up.
func (e *Endpoint) IsConnected() bool {
	return e.driver.IsConnected()
}
