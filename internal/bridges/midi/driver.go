package midi

import (
	"context"
	"fmt"
	"net"
	"net/url"
	"sync"
	"sync/atomic"
	"time"
)

// Default timeouts for driver communication.
const (
	// defaultConnectTimeout is the maximum time to wait for the initial
	// driver connection.
	defaultConnectTimeout = 10 * time.Second

	// defaultWriteTimeout is the timeout for individual send operations.
	defaultWriteTimeout = 5 * time.Second
)

// DriverConfig holds MIDI driver connection configuration.
type DriverConfig struct {
	// Connection is the driver connection URL.
	// Supported formats:
	//   - "unix:///run/midid.sock" (Unix socket)
	//   - "tcp://localhost:7050" (TCP)
	Connection string

	// ConnectTimeout is the maximum time to wait for connection.
	// Default: 10 seconds.
	ConnectTimeout time.Duration

	// WriteTimeout is the timeout for send operations.
	// Default: 5 seconds.
	WriteTimeout time.Duration
}

// DriverStats holds operational statistics for the driver connection.
type DriverStats struct {
	MessagesTx   uint64
	ErrorsTotal  uint64
	LastActivity time.Time
	Connected    bool
}

// Logger interface for optional logging.
type Logger interface {
	Debug(msg string, keysAndValues ...any)
	Info(msg string, keysAndValues ...any)
	Warn(msg string, keysAndValues ...any)
	Error(msg string, keysAndValues ...any)
}

// Driver is the protocol driver interface the bridge depends on. It treats
// the underlying transport as a fixed, synchronous, fallible API: a failed
// send is reported, not retried here.
type Driver interface {
	// Send submits one encoded payload to the driver's receive path.
	Send(payload []byte) error

	// IsConnected reports whether the driver connection is up.
	IsConnected() bool

	// Stats returns operational statistics.
	Stats() DriverStats

	// Close releases the driver connection. Safe to call multiple times.
	Close() error
}

// Ensure SocketDriver implements Driver.
var _ Driver = (*SocketDriver)(nil)

// SocketDriver streams raw MIDI bytes to a virtual endpoint daemon over a
// Unix or TCP socket.
//
// Thread Safety: all methods are safe for concurrent use; writes are
// serialised on the connection lock.
type SocketDriver struct {
	cfg DriverConfig

	conn      net.Conn
	connMu    sync.Mutex
	connected bool

	closeOnce sync.Once

	// Statistics (atomic for performance)
	messagesTx   atomic.Uint64
	errorsTotal  atomic.Uint64
	lastActivity atomic.Int64 // Unix timestamp
}

// Dial connects to the MIDI endpoint daemon.
//
// Creation failure is not retried: the caller decides whether the process
// can continue without an endpoint.
func Dial(ctx context.Context, cfg DriverConfig) (*SocketDriver, error) {
	if cfg.ConnectTimeout == 0 {
		cfg.ConnectTimeout = defaultConnectTimeout
	}
	if cfg.WriteTimeout == 0 {
		cfg.WriteTimeout = defaultWriteTimeout
	}

	network, address, err := parseConnectionURL(cfg.Connection)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrConnectionFailed, err)
	}

	connectCtx := ctx
	if connectCtx == nil {
		connectCtx = context.Background()
	}
	connectCtx, cancel := context.WithTimeout(connectCtx, cfg.ConnectTimeout)
	defer cancel()

	var dialer net.Dialer
	conn, err := dialer.DialContext(connectCtx, network, address)
	if err != nil {
		return nil, fmt.Errorf("%w: dial failed: %w", ErrConnectionFailed, err)
	}

	d := &SocketDriver{
		cfg:       cfg,
		conn:      conn,
		connected: true,
	}
	d.lastActivity.Store(time.Now().Unix())

	return d, nil
}

// parseConnectionURL parses a driver connection URL into network and address.
func parseConnectionURL(connURL string) (network, address string, err error) {
	u, err := url.Parse(connURL)
	if err != nil {
		return "", "", fmt.Errorf("invalid URL: %w", err)
	}

	switch u.Scheme {
	case "unix":
		return "unix", u.Path, nil
	case "tcp":
		host := u.Host
		if host == "" {
			host = "localhost:7050"
		}
		return "tcp", host, nil
	default:
		return "", "", fmt.Errorf("unsupported scheme %q (use unix or tcp)", u.Scheme)
	}
}

// Send writes one payload to the socket. The payload is delivered as a
// single write so messages are never interleaved.
func (d *SocketDriver) Send(payload []byte) error {
	d.connMu.Lock()
	defer d.connMu.Unlock()

	if !d.connected || d.conn == nil {
		return ErrNotConnected
	}

	if err := d.conn.SetWriteDeadline(time.Now().Add(d.cfg.WriteTimeout)); err != nil {
		d.errorsTotal.Add(1)
		return fmt.Errorf("%w: set deadline: %w", ErrSendFailed, err)
	}

	if _, err := d.conn.Write(payload); err != nil {
		d.errorsTotal.Add(1)
		return fmt.Errorf("%w: write: %w", ErrSendFailed, err)
	}

	d.messagesTx.Add(1)
	d.lastActivity.Store(time.Now().Unix())

	return nil
}

// IsConnected returns true if the driver connection is up.
func (d *SocketDriver) IsConnected() bool {
	d.connMu.Lock()
	defer d.connMu.Unlock()
	return d.connected
}

// Stats returns current operational statistics.
func (d *SocketDriver) Stats() DriverStats {
	return DriverStats{
		MessagesTx:   d.messagesTx.Load(),
		ErrorsTotal:  d.errorsTotal.Load(),
		LastActivity: time.Unix(d.lastActivity.Load(), 0),
		Connected:    d.IsConnected(),
	}
}

// Close releases the driver connection. Safe to call multiple times.
func (d *SocketDriver) Close() error {
	d.closeOnce.Do(func() {
		d.connMu.Lock()
		d.connected = false
		if d.conn != nil {
			d.conn.Close()
		}
		d.connMu.Unlock()
	})
	return nil
}
