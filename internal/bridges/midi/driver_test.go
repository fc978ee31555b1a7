package midi

import (
	"context"
	"errors"
	"net"
	"testing"
	"time"
)

func TestParseConnectionURL(t *testing.T) {
	tests := []struct {
		name        string
		url         string
		wantNetwork string
		wantAddress string
		wantErr     bool
	}{
		{
			name:        "unix socket",
			url:         "unix:///run/midid.sock",
			wantNetwork: "unix",
			wantAddress: "/run/midid.sock",
		},
		{
			name:        "tcp with host and port",
			url:         "tcp://localhost:7050",
			wantNetwork: "tcp",
			wantAddress: "localhost:7050",
		},
		{
			name:        "tcp without host defaults",
			url:         "tcp://",
			wantNetwork: "tcp",
			wantAddress: "localhost:7050",
		},
		{
			name:    "unsupported scheme",
			url:     "http://localhost:7050",
			wantErr: true,
		},
		{
			name:    "garbage",
			url:     "://not-a-url",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			network, address, err := parseConnectionURL(tt.url)
			if (err != nil) != tt.wantErr {
				t.Fatalf("parseConnectionURL(%q) error = %v, wantErr %v", tt.url, err, tt.wantErr)
			}
			if err != nil {
				return
			}
			if network != tt.wantNetwork || address != tt.wantAddress {
				t.Errorf("parseConnectionURL(%q) = (%q, %q), want (%q, %q)",
					tt.url, network, address, tt.wantNetwork, tt.wantAddress)
			}
		})
	}
}

// startTestListener accepts one connection and streams everything it reads
// into the returned channel.
func startTestListener(t *testing.T) (addr string, received <-chan []byte) {
	t.Helper()

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	t.Cleanup(func() { ln.Close() })

	ch := make(chan []byte, 64)
	go func() {
		conn, err := ln.Accept()
		if err != nil {
			return
		}
		defer conn.Close()
		buf := make([]byte, 64)
		for {
			n, err := conn.Read(buf)
			if n > 0 {
				cp := make([]byte, n)
				copy(cp, buf[:n])
				ch <- cp
			}
			if err != nil {
				return
			}
		}
	}()

	return ln.Addr().String(), ch
}

func TestSocketDriver_DialAndSend(t *testing.T) {
	addr, received := startTestListener(t)

	driver, err := Dial(context.Background(), DriverConfig{
		Connection: "tcp://" + addr,
	})
	if err != nil {
		t.Fatalf("Dial() error = %v", err)
	}
	defer driver.Close()

	if !driver.IsConnected() {
		t.Fatal("IsConnected() = false after Dial")
	}

	payload := []byte{0xB0, 0x05, 100}
	if err := driver.Send(payload); err != nil {
		t.Fatalf("Send() error = %v", err)
	}

	select {
	case got := <-received:
		if string(got) != string(payload) {
			t.Errorf("received %v, want %v", got, payload)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("listener did not receive payload")
	}

	stats := driver.Stats()
	if stats.MessagesTx != 1 {
		t.Errorf("MessagesTx = %d, want 1", stats.MessagesTx)
	}
	if !stats.Connected {
		t.Error("stats.Connected = false, want true")
	}
}

func TestSocketDriver_DialFailure(t *testing.T) {
	_, err := Dial(context.Background(), DriverConfig{
		Connection:     "tcp://127.0.0.1:1", // nothing listens here
		ConnectTimeout: 500 * time.Millisecond,
	})
	if !errors.Is(err, ErrConnectionFailed) {
		t.Errorf("Dial() error = %v, want ErrConnectionFailed", err)
	}
}

func TestSocketDriver_DialInvalidURL(t *testing.T) {
	_, err := Dial(context.Background(), DriverConfig{
		Connection: "ftp://somewhere",
	})
	if !errors.Is(err, ErrConnectionFailed) {
		t.Errorf("Dial() error = %v, want ErrConnectionFailed", err)
	}
}

func TestSocketDriver_SendAfterClose(t *testing.T) {
	addr, _ := startTestListener(t)

	driver, err := Dial(context.Background(), DriverConfig{
		Connection: "tcp://" + addr,
	})
	if err != nil {
		t.Fatalf("Dial() error = %v", err)
	}

	if err := driver.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	if driver.IsConnected() {
		t.Error("IsConnected() = true after Close")
	}

	if err := driver.Send([]byte{0xB0, 1, 1}); !errors.Is(err, ErrNotConnected) {
		t.Errorf("Send() after Close error = %v, want ErrNotConnected", err)
	}

	// Close is idempotent.
	if err := driver.Close(); err != nil {
		t.Errorf("second Close() error = %v", err)
	}
}
